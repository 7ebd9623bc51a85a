package service

import (
	"context"
	"time"

	"rps_api/internal/domain"
)

// Repository contracts consumed by the services. The pgx implementations live
// in internal/repository; tests substitute in-memory fakes.

type MatchRepo interface {
	Create(ctx context.Context, m *domain.Match) error
	Get(ctx context.Context, id int64) (*domain.Match, error)
	GetWithMoves(ctx context.Context, id int64) (*domain.Match, []*domain.Move, error)
	Update(ctx context.Context, m *domain.Match, from domain.MatchStatus) error
	ListForPlayer(ctx context.Context, playerID int64, status *domain.MatchStatus, limit, offset int) ([]*domain.Match, error)
	CancelAllForPlayer(ctx context.Context, playerID int64) (matched, changed int64, err error)
}

type MoveRepo interface {
	Add(ctx context.Context, mv *domain.Move) error
	Get(ctx context.Context, id int64) (*domain.Move, error)
	Delete(ctx context.Context, id int64) error
	AllForPlayer(ctx context.Context, playerID int64) ([]*domain.Move, error)
}

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsernameOrEmail(ctx context.Context, name string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	Search(ctx context.Context, query string, limit int) ([]*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

type RefreshTokenRepo interface {
	Create(ctx context.Context, userID, deviceID int64, ttl time.Duration) (*domain.RefreshToken, error)
	Get(ctx context.Context, id string) (*domain.RefreshToken, error)
	Revoke(ctx context.Context, userID, deviceID int64) error
	RevokeAll(ctx context.Context, userID int64) error
}

type StatsRepo interface {
	Record(ctx context.Context, userID int64, result domain.WinStatus) error
}

// GestureClassifier is the external classification API. Implementations keep
// the one-re-auth-retry policy internal.
type GestureClassifier interface {
	Classify(ctx context.Context, filename, contentType string, image []byte) (domain.Gesture, error)
	Feedback(ctx context.Context, modelID int64, wrongPrediction bool) error
}
