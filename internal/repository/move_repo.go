package repository

import (
	"context"
	"errors"

	"rps_api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MoveRepository struct {
	db *pgxpool.Pool
}

func NewMoveRepository(db *pgxpool.Pool) *MoveRepository {
	return &MoveRepository{db: db}
}

// Add inserts a move. The unique index on (match_id, player_id) is the real
// duplicate guard: two racing submissions both pass the engine's precondition
// check, and the loser must surface here as already-submitted, not as a
// generic database error.
func (r *MoveRepository) Add(ctx context.Context, mv *domain.Move) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO moves (match_id, player_id, gesture, file_ref)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		mv.MatchID, mv.PlayerID, mv.Gesture, mv.FileRef,
	).Scan(&mv.ID, &mv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Wrap(domain.KindAlreadySubmitted, "player has already submitted a move for this match", err)
		}
		return domain.Wrap(domain.KindStorage, "failed to add move", err)
	}
	return nil
}

func (r *MoveRepository) Get(ctx context.Context, id int64) (*domain.Move, error) {
	var mv domain.Move
	err := r.db.QueryRow(ctx,
		`SELECT id, match_id, player_id, gesture, file_ref, created_at
		 FROM moves WHERE id = $1`, id,
	).Scan(&mv.ID, &mv.MatchID, &mv.PlayerID, &mv.Gesture, &mv.FileRef, &mv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.Wrap(domain.KindStorage, "failed to read move", err)
	}
	return &mv, nil
}

// Delete removes a move record. Used only by compensation and account
// deletion; moves are never mutated.
func (r *MoveRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM moves WHERE id = $1`, id)
	if err != nil {
		return domain.Wrap(domain.KindStorage, "failed to delete move", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.E(domain.KindNotFound, "move not found")
	}
	return nil
}

func (r *MoveRepository) AllForPlayer(ctx context.Context, playerID int64) ([]*domain.Move, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, match_id, player_id, gesture, file_ref, created_at
		 FROM moves WHERE player_id = $1`, playerID)
	if err != nil {
		return nil, domain.Wrap(domain.KindStorage, "failed to list moves", err)
	}
	defer rows.Close()

	var res []*domain.Move
	for rows.Next() {
		var mv domain.Move
		if err := rows.Scan(&mv.ID, &mv.MatchID, &mv.PlayerID, &mv.Gesture, &mv.FileRef, &mv.CreatedAt); err != nil {
			return nil, domain.Wrap(domain.KindStorage, "failed to scan move", err)
		}
		res = append(res, &mv)
	}
	return res, rows.Err()
}
