package repository

import (
	"context"
	"errors"
	"time"

	"rps_api/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RefreshTokenRepository struct {
	db *pgxpool.Pool
}

func NewRefreshTokenRepository(db *pgxpool.Pool) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Create issues a new refresh token for a device. Any previous token for the
// same (user, device) pair is revoked first so one device holds one session.
func (r *RefreshTokenRepository) Create(ctx context.Context, userID, deviceID int64, ttl time.Duration) (*domain.RefreshToken, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, domain.Wrap(domain.KindStorage, "failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`UPDATE refresh_tokens SET revoked = true WHERE user_id = $1 AND device_id = $2 AND NOT revoked`,
		userID, deviceID); err != nil {
		return nil, domain.Wrap(domain.KindStorage, "failed to revoke previous token", err)
	}

	token := &domain.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		DeviceID:  deviceID,
		ExpiresAt: time.Now().Add(ttl),
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO refresh_tokens (id, user_id, device_id, expires_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		token.ID, token.UserID, token.DeviceID, token.ExpiresAt,
	).Scan(&token.CreatedAt)
	if err != nil {
		return nil, domain.Wrap(domain.KindStorage, "failed to create refresh token", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.Wrap(domain.KindStorage, "failed to commit refresh token", err)
	}
	return token, nil
}

func (r *RefreshTokenRepository) Get(ctx context.Context, id string) (*domain.RefreshToken, error) {
	// a malformed id is indistinguishable from an unknown token to callers
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	var t domain.RefreshToken
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, device_id, expires_at, revoked, created_at
		 FROM refresh_tokens WHERE id = $1`, id,
	).Scan(&t.ID, &t.UserID, &t.DeviceID, &t.ExpiresAt, &t.Revoked, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.Wrap(domain.KindStorage, "failed to read refresh token", err)
	}
	return &t, nil
}

func (r *RefreshTokenRepository) Revoke(ctx context.Context, userID, deviceID int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE refresh_tokens SET revoked = true WHERE user_id = $1 AND device_id = $2 AND NOT revoked`,
		userID, deviceID)
	if err != nil {
		return domain.Wrap(domain.KindStorage, "failed to revoke refresh token", err)
	}
	return nil
}

func (r *RefreshTokenRepository) RevokeAll(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE refresh_tokens SET revoked = true WHERE user_id = $1 AND NOT revoked`, userID)
	if err != nil {
		return domain.Wrap(domain.KindStorage, "failed to revoke refresh tokens", err)
	}
	return nil
}
