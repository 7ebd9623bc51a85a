package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"rps_api/internal/domain"
	"rps_api/internal/game"
	"rps_api/internal/storage"

	"github.com/google/uuid"
)

// allowed upload types and the content type sent to the classifier
var imageContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// GestureService ingests gesture images. Submission is a chain of writes to
// independent stores (blob store, classifier, move table, match row); every
// step pushes a compensating action so that a failure anywhere leaves the
// match looking untouched. A move becomes visible to other readers only after
// the whole chain has committed.
type GestureService struct {
	matchSvc *MatchService
	matches  MatchRepo
	moves    MoveRepo
	blobs    storage.BlobStore
	classify GestureClassifier
	maxSize  int64
}

func NewGestureService(matchSvc *MatchService, matches MatchRepo, moves MoveRepo,
	blobs storage.BlobStore, classify GestureClassifier, maxSize int64) *GestureService {
	return &GestureService{
		matchSvc: matchSvc,
		matches:  matches,
		moves:    moves,
		blobs:    blobs,
		classify: classify,
		maxSize:  maxSize,
	}
}

// Submit stores the image, obtains a verdict, records the move and
// re-evaluates the match. Preconditions are checked in a fixed order, each
// with its own error kind; the duplicate check is repeated by the moves
// table's unique index at write time, which is what decides races.
func (g *GestureService) Submit(ctx context.Context, matchID, actorID int64, filename string, image []byte) (*game.Outcome, *domain.Match, error) {
	m, moves, err := g.matches.GetWithMoves(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	if m == nil {
		return nil, nil, domain.E(domain.KindNotFound, "match not found")
	}

	if m.MissingParticipant() {
		if err := g.matchSvc.ForceCancel(ctx, m); err != nil {
			return nil, nil, err
		}
		return nil, nil, domain.E(domain.KindInvalidState,
			"match is cancelled as one of the players has been deleted")
	}
	if !m.HasParticipant(actorID) {
		return nil, nil, domain.E(domain.KindUnauthorized, "user is not a player in this match")
	}
	if m.Status != domain.StatusInProgress {
		return nil, nil, domain.E(domain.KindInvalidState,
			fmt.Sprintf("match is not in progress, current status is %s", m.Status))
	}
	snap := domain.SnapshotOf(m, moves)
	if (snap.Move1 != nil && snap.Move1.PlayerID == actorID) ||
		(snap.Move2 != nil && snap.Move2.PlayerID == actorID) {
		return nil, nil, domain.E(domain.KindAlreadySubmitted, "player has already submitted a move for this match")
	}

	contentType, err := g.validateImage(filename, image)
	if err != nil {
		return nil, nil, err
	}
	fileRef := uuid.NewString() + strings.ToLower(filepath.Ext(filename))

	var comp saga

	if err := g.blobs.Store(ctx, fileRef, contentType, image); err != nil {
		return nil, nil, err
	}
	comp.push("store image", func(ctx context.Context) error {
		return g.blobs.Delete(ctx, fileRef)
	})

	gesture, err := g.classify.Classify(ctx, fileRef, contentType, image)
	if err != nil {
		comp.rollback(ctx, "classify")
		return nil, nil, err
	}

	mv := &domain.Move{
		MatchID:  matchID,
		PlayerID: actorID,
		Gesture:  gesture,
		FileRef:  fileRef,
	}
	if err := g.moves.Add(ctx, mv); err != nil {
		comp.rollback(ctx, "record move")
		return nil, nil, err
	}
	comp.push("record move", func(ctx context.Context) error {
		return g.moves.Delete(ctx, mv.ID)
	})

	out, updated, err := g.matchSvc.EvaluateAndApply(ctx, matchID)
	if err != nil {
		comp.rollback(ctx, "evaluate match")
		return nil, nil, err
	}

	return out, updated, nil
}

// GetImage returns the stored image of a move to a participant of its match.
func (g *GestureService) GetImage(ctx context.Context, moveID, actorID int64) ([]byte, string, error) {
	mv, err := g.moves.Get(ctx, moveID)
	if err != nil {
		return nil, "", err
	}
	if mv == nil {
		return nil, "", domain.E(domain.KindNotFound, "move not found")
	}

	m, err := g.matches.Get(ctx, mv.MatchID)
	if err != nil {
		return nil, "", err
	}
	if m == nil {
		return nil, "", domain.E(domain.KindNotFound, "match not found")
	}
	if !m.HasParticipant(actorID) {
		return nil, "", domain.E(domain.KindUnauthorized, "user is not a player in this match")
	}

	return g.blobs.Read(ctx, mv.FileRef)
}

// ReportPrediction forwards a wrong-prediction report for one of the caller's
// own moves to the model API. Players cannot report moves they did not make.
func (g *GestureService) ReportPrediction(ctx context.Context, moveID, actorID, modelID int64, wrongPrediction bool) error {
	mv, err := g.moves.Get(ctx, moveID)
	if err != nil {
		return err
	}
	if mv == nil {
		return domain.E(domain.KindNotFound, "move not found")
	}
	if mv.PlayerID != actorID {
		return domain.E(domain.KindUnauthorized, "user did not make this move")
	}
	return g.classify.Feedback(ctx, modelID, wrongPrediction)
}

// DeleteAllForPlayer removes every move and stored image belonging to a
// player, used on account deletion. Individual failures are collected into a
// partial-failure report instead of stopping at the first.
func (g *GestureService) DeleteAllForPlayer(ctx context.Context, playerID int64) error {
	moves, err := g.moves.AllForPlayer(ctx, playerID)
	if err != nil {
		return err
	}

	var failed int
	for _, mv := range moves {
		if err := g.moves.Delete(ctx, mv.ID); err != nil {
			failed++
			continue
		}
		if err := g.blobs.Delete(ctx, mv.FileRef); err != nil && !domain.IsKind(err, domain.KindNotFound) {
			failed++
		}
	}
	if failed > 0 {
		return domain.E(domain.KindPartialFailure,
			fmt.Sprintf("failed to delete %d of %d moves", failed, len(moves)))
	}
	return nil
}

func (g *GestureService) validateImage(filename string, image []byte) (string, error) {
	if len(image) == 0 {
		return "", domain.E(domain.KindBadInput, "image is empty")
	}
	if g.maxSize > 0 && int64(len(image)) > g.maxSize {
		return "", domain.E(domain.KindBadInput,
			fmt.Sprintf("image exceeds maximum size of %d bytes", g.maxSize))
	}
	ct, ok := imageContentTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", domain.E(domain.KindBadInput, "file type not allowed, use png or jpeg")
	}
	return ct, nil
}
