package repository

import (
	"context"
	"errors"
	"fmt"

	"rps_api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MatchRepository struct {
	db *pgxpool.Pool
}

func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) Create(ctx context.Context, m *domain.Match) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO matches (player1_id, player2_id, status)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		m.Player1ID, m.Player2ID, m.Status,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return domain.Wrap(domain.KindStorage, "failed to create match", err)
	}
	return nil
}

const matchColumns = `id, player1_id, player2_id, status, winner_id, loser_id, is_tie, created_at, updated_at`

func (r *MatchRepository) Get(ctx context.Context, id int64) (*domain.Match, error) {
	row := r.db.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	return scanMatch(row)
}

// GetWithMoves loads a match and its submitted moves in one round trip.
func (r *MatchRepository) GetWithMoves(ctx context.Context, id int64) (*domain.Match, []*domain.Move, error) {
	m, err := r.Get(ctx, id)
	if err != nil || m == nil {
		return m, nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, match_id, player_id, gesture, file_ref, created_at
		 FROM moves WHERE match_id = $1 ORDER BY created_at`,
		id)
	if err != nil {
		return nil, nil, domain.Wrap(domain.KindStorage, "failed to load moves", err)
	}
	defer rows.Close()

	var moves []*domain.Move
	for rows.Next() {
		var mv domain.Move
		if err := rows.Scan(&mv.ID, &mv.MatchID, &mv.PlayerID, &mv.Gesture, &mv.FileRef, &mv.CreatedAt); err != nil {
			return nil, nil, domain.Wrap(domain.KindStorage, "failed to scan move", err)
		}
		moves = append(moves, &mv)
	}
	return m, moves, rows.Err()
}

// Update persists the mutable match fields, guarded by the status the caller
// read. A concurrent transition leaves the row untouched and surfaces as an
// invalid-transition error instead of a silent overwrite.
func (r *MatchRepository) Update(ctx context.Context, m *domain.Match, from domain.MatchStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE matches
		 SET status = $1, winner_id = $2, loser_id = $3, is_tie = $4, updated_at = now()
		 WHERE id = $5 AND status = $6`,
		m.Status, m.WinnerID, m.LoserID, m.IsTie, m.ID, from)
	if err != nil {
		return domain.Wrap(domain.KindStorage, "failed to update match", err)
	}
	if tag.RowsAffected() == 0 {
		cur, err := r.Get(ctx, m.ID)
		if err != nil {
			return err
		}
		if cur == nil {
			return domain.E(domain.KindNotFound, "match not found")
		}
		return domain.E(domain.KindInvalidTransition,
			fmt.Sprintf("match status changed concurrently, now %s", cur.Status))
	}
	return nil
}

// ListForPlayer returns the player's matches, newest first, optionally
// filtered by status.
func (r *MatchRepository) ListForPlayer(ctx context.Context, playerID int64, status *domain.MatchStatus, limit, offset int) ([]*domain.Match, error) {
	query := `SELECT ` + matchColumns + `
	          FROM matches
	          WHERE (player1_id = $1 OR player2_id = $1)`
	args := []any{playerID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.Wrap(domain.KindStorage, "failed to list matches", err)
	}
	defer rows.Close()

	var res []*domain.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

// CancelAllForPlayer bulk-transitions every non-terminal match the player
// participates in to Cancelled. It returns how many rows matched the
// predicate and how many were changed, so the caller can detect a partial
// write.
func (r *MatchRepository) CancelAllForPlayer(ctx context.Context, playerID int64) (matched, changed int64, err error) {
	err = r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM matches
		 WHERE (player1_id = $1 OR player2_id = $1) AND status IN ($2, $3)`,
		playerID, domain.StatusNotStarted, domain.StatusInProgress,
	).Scan(&matched)
	if err != nil {
		return 0, 0, domain.Wrap(domain.KindStorage, "failed to count active matches", err)
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE matches SET status = $4, updated_at = now()
		 WHERE (player1_id = $1 OR player2_id = $1) AND status IN ($2, $3)`,
		playerID, domain.StatusNotStarted, domain.StatusInProgress, domain.StatusCancelled)
	if err != nil {
		return matched, 0, domain.Wrap(domain.KindStorage, "failed to cancel matches", err)
	}
	return matched, tag.RowsAffected(), nil
}

func scanMatch(row pgx.Row) (*domain.Match, error) {
	var m domain.Match
	err := row.Scan(&m.ID, &m.Player1ID, &m.Player2ID, &m.Status,
		&m.WinnerID, &m.LoserID, &m.IsTie, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.Wrap(domain.KindStorage, "failed to read match", err)
	}
	return &m, nil
}
