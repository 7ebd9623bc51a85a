package repository

import (
	"context"
	"errors"

	"rps_api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the postgres error code pgx reports when a unique
// constraint rejects a write.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		u.Username, u.Email, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Wrap(domain.KindBadInput, "username or email already taken", err)
		}
		return domain.Wrap(domain.KindStorage, "failed to create user", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByUsernameOrEmail(ctx context.Context, name string) (*domain.User, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at
		 FROM users WHERE username = $1 OR email = $1`, name))
}

func (r *UserRepository) scanOne(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.Wrap(domain.KindStorage, "failed to read user", err)
	}
	return &u, nil
}

// Update persists profile fields. The password hash travels with them so a
// credential change reuses the same write.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET username = $1, email = $2, password_hash = $3 WHERE id = $4`,
		u.Username, u.Email, u.PasswordHash, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Wrap(domain.KindBadInput, "username or email already taken", err)
		}
		return domain.Wrap(domain.KindStorage, "failed to update user", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.E(domain.KindNotFound, "user not found")
	}
	return nil
}

// Search returns users whose username contains the query, for picking an
// opponent to challenge.
func (r *UserRepository) Search(ctx context.Context, query string, limit int) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, username, email, password_hash, created_at
		 FROM users
		 WHERE username ILIKE '%' || $1 || '%'
		 ORDER BY username
		 LIMIT $2`,
		query, limit)
	if err != nil {
		return nil, domain.Wrap(domain.KindStorage, "failed to search users", err)
	}
	defer rows.Close()

	var res []*domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, domain.Wrap(domain.KindStorage, "failed to scan user", err)
		}
		res = append(res, &u)
	}
	return res, rows.Err()
}

// Delete removes the user row. Match rows keep existing with the player
// reference set to NULL by the foreign key.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return domain.Wrap(domain.KindStorage, "failed to delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.E(domain.KindNotFound, "user not found")
	}
	return nil
}
