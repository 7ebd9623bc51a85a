package service

import (
	"context"
	"fmt"

	"rps_api/internal/domain"
	"rps_api/internal/game"
	"rps_api/internal/logger"
)

// OutcomeRecorder receives resolved outcomes for leaderboard accounting.
type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, m *domain.Match, out *game.Outcome) error
}

// MatchService owns the match lifecycle: invitations, state transitions and
// round resolution. All match mutation goes through here, and every operation
// reloads the match from the repository — there is no in-process caching, so
// transitions are always validated against the freshly read persisted status.
type MatchService struct {
	matches MatchRepo
	users   UserRepo
	stats   OutcomeRecorder
}

func NewMatchService(matches MatchRepo, users UserRepo, stats OutcomeRecorder) *MatchService {
	return &MatchService{matches: matches, users: users, stats: stats}
}

// Create opens a new match: the challenger invites an opponent and the match
// starts life as NotStarted until the opponent responds.
func (s *MatchService) Create(ctx context.Context, challengerID, opponentID int64) (*domain.Match, error) {
	if challengerID == opponentID {
		return nil, domain.E(domain.KindSelfChallenge, "cannot challenge yourself")
	}

	opponent, err := s.users.GetByID(ctx, opponentID)
	if err != nil {
		return nil, err
	}
	if opponent == nil {
		return nil, domain.E(domain.KindNotFound, "opponent not found")
	}

	m := &domain.Match{
		Player1ID: &challengerID,
		Player2ID: &opponentID,
		Status:    domain.StatusNotStarted,
	}
	if err := s.matches.Create(ctx, m); err != nil {
		return nil, err
	}
	logger.Info("match created", "match_id", m.ID, "challenger", challengerID, "opponent", opponentID)
	return m, nil
}

// RespondToInvitation lets the invited player accept or decline. Only the
// second participant of a NotStarted match may respond.
func (s *MatchService) RespondToInvitation(ctx context.Context, matchID, actorID int64, accept bool) (*domain.Match, error) {
	m, err := s.matches.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.E(domain.KindNotFound, "match not found")
	}

	if m.Player2ID == nil || *m.Player2ID != actorID {
		return nil, domain.E(domain.KindUnauthorized, "only the invited player may respond to the invitation")
	}
	if m.Status != domain.StatusNotStarted {
		return nil, domain.E(domain.KindInvalidState,
			fmt.Sprintf("invitation is no longer open, match is %s", m.Status))
	}

	target := domain.StatusCancelled
	if accept {
		target = domain.StatusInProgress
	}
	if err := s.transition(ctx, m, target); err != nil {
		return nil, err
	}
	logger.Info("invitation handled", "match_id", m.ID, "accepted", accept)
	return m, nil
}

// Get returns a match with its moves to one of its participants.
func (s *MatchService) Get(ctx context.Context, matchID, actorID int64) (*domain.Match, []*domain.Move, error) {
	m, moves, err := s.matches.GetWithMoves(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	if m == nil {
		return nil, nil, domain.E(domain.KindNotFound, "match not found")
	}
	if !m.HasParticipant(actorID) {
		return nil, nil, domain.E(domain.KindUnauthorized, "user is not a player in this match")
	}
	return m, moves, nil
}

// List returns the actor's matches, optionally filtered by status.
func (s *MatchService) List(ctx context.Context, actorID int64, status *domain.MatchStatus, limit, offset int) ([]*domain.Match, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.matches.ListForPlayer(ctx, actorID, status, limit, offset)
}

// EvaluateAndApply reloads the match, resolves the round and persists any
// required state change. A no-action resolution persists nothing; an
// already-completed match is a no-op read rather than an error, so repeated
// evaluation is idempotent.
func (s *MatchService) EvaluateAndApply(ctx context.Context, matchID int64) (*game.Outcome, *domain.Match, error) {
	m, moves, err := s.matches.GetWithMoves(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	if m == nil {
		return nil, nil, domain.E(domain.KindNotFound, "match not found")
	}

	if m.Status == domain.StatusCompleted {
		return &game.Outcome{Action: game.ActionNoAction, Message: "match is already completed"}, m, nil
	}

	out, err := game.Resolve(domain.SnapshotOf(m, moves))
	if err != nil {
		return nil, nil, err
	}

	if out.Status == nil {
		// nothing to persist: waiting for a move, or terminal read
		return &out, m, nil
	}

	if err := s.apply(ctx, m, &out); err != nil {
		return nil, nil, err
	}
	return &out, m, nil
}

// apply validates the requested transition against the current status and
// persists the resolution in a single update.
func (s *MatchService) apply(ctx context.Context, m *domain.Match, out *game.Outcome) error {
	if !m.Status.CanTransition(*out.Status) {
		return domain.E(domain.KindInvalidTransition,
			fmt.Sprintf("match cannot transition from %s to %s", m.Status, *out.Status))
	}

	from := m.Status
	m.Status = *out.Status
	m.WinnerID = out.WinnerID
	m.LoserID = out.LoserID
	m.IsTie = out.IsTie
	if err := s.matches.Update(ctx, m, from); err != nil {
		if domain.IsKind(err, domain.KindInvalidTransition) {
			// a concurrent evaluation won the write; its resolution and its
			// stats recording stand
			logger.Warn("match resolution lost a concurrent update", "match_id", m.ID)
			return nil
		}
		return err
	}
	logger.Info("match resolved", "match_id", m.ID, "action", out.Action.String(), "status", m.Status.String())

	if m.Status == domain.StatusCompleted && s.stats != nil {
		// leaderboard counters are a downstream consumer; a failure here
		// must not unwind an already resolved match
		if err := s.stats.RecordOutcome(ctx, m, out); err != nil {
			logger.Error("failed to record outcome in player stats", "match_id", m.ID, "error", err)
		}
	}
	return nil
}

// transition validates and persists a plain status change with no resolution
// fields.
func (s *MatchService) transition(ctx context.Context, m *domain.Match, target domain.MatchStatus) error {
	if !m.Status.CanTransition(target) {
		return domain.E(domain.KindInvalidTransition,
			fmt.Sprintf("match cannot transition from %s to %s", m.Status, target))
	}
	from := m.Status
	m.Status = target
	return s.matches.Update(ctx, m, from)
}

// ForceCancel moves a match to Cancelled regardless of pending moves, used
// when a participant account disappears mid-match. Terminal matches are left
// alone.
func (s *MatchService) ForceCancel(ctx context.Context, m *domain.Match) error {
	if m.Status.Terminal() {
		return nil
	}
	return s.transition(ctx, m, domain.StatusCancelled)
}

// CancelAllForPlayer bulk-cancels every active match the player participates
// in. A mismatch between matched and changed rows is reported as a partial
// failure, never as success.
func (s *MatchService) CancelAllForPlayer(ctx context.Context, playerID int64) error {
	matched, changed, err := s.matches.CancelAllForPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	if matched != changed {
		return domain.E(domain.KindPartialFailure,
			fmt.Sprintf("cancelled %d of %d active matches", changed, matched))
	}
	logger.Info("cancelled active matches for player", "player_id", playerID, "count", changed)
	return nil
}
