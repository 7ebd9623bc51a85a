package repository

import (
	"context"
	"fmt"

	"rps_api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StatsRepository struct {
	db *pgxpool.Pool
}

func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

// Record applies one resolved result to the player's counters, creating the
// row on first play. The upsert keeps concurrent resolutions additive.
func (r *StatsRepository) Record(ctx context.Context, userID int64, result domain.WinStatus) error {
	var wins, losses, ties int
	switch result {
	case domain.WinStatusWon:
		wins = 1
	case domain.WinStatusLost:
		losses = 1
	case domain.WinStatusDraw:
		ties = 1
	default:
		return domain.E(domain.KindInvalidState, fmt.Sprintf("invalid win status %d", result))
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO player_stats (user_id, wins, losses, ties, games_played)
		 VALUES ($1, $2, $3, $4, 1)
		 ON CONFLICT (user_id) DO UPDATE SET
		   wins = player_stats.wins + $2,
		   losses = player_stats.losses + $3,
		   ties = player_stats.ties + $4,
		   games_played = player_stats.games_played + 1,
		   updated_at = now()`,
		userID, wins, losses, ties)
	if err != nil {
		return domain.Wrap(domain.KindStorage, "failed to update player stats", err)
	}
	return nil
}

func (r *StatsRepository) GetForPlayer(ctx context.Context, userID int64) (*domain.PlayerStats, error) {
	var s domain.PlayerStats
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, wins, losses, ties, games_played, created_at, updated_at
		 FROM player_stats WHERE user_id = $1`, userID,
	).Scan(&s.ID, &s.UserID, &s.Wins, &s.Losses, &s.Ties, &s.GamesPlayed, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			// player who never finished a match has all-zero stats
			return &domain.PlayerStats{UserID: userID}, nil
		}
		return nil, domain.Wrap(domain.KindStorage, "failed to read player stats", err)
	}
	return &s, nil
}

// LeaderboardEntry pairs stats with the player's visible identity.
type LeaderboardEntry struct {
	Rank     int                `json:"rank"`
	Username string             `json:"username"`
	Stats    domain.PlayerStats `json:"stats"`
}

// statsSortColumns maps API sort keys to SQL order expressions. The mapping
// is enumerated on purpose; nothing is resolved by reflection.
var statsSortColumns = map[domain.StatsSortKey]string{
	domain.SortByWins:        "s.wins DESC, s.ties DESC, s.losses ASC, s.games_played DESC",
	domain.SortByLosses:      "s.losses DESC, s.games_played DESC",
	domain.SortByTies:        "s.ties DESC, s.games_played DESC",
	domain.SortByGamesPlayed: "s.games_played DESC, s.wins DESC",
}

// Leaderboard returns ranked stats joined with usernames. Players whose
// accounts were deleted fall out of the board with their user row.
func (r *StatsRepository) Leaderboard(ctx context.Context, sortKey domain.StatsSortKey, limit, offset int) ([]LeaderboardEntry, error) {
	order, ok := statsSortColumns[sortKey]
	if !ok {
		return nil, domain.E(domain.KindBadInput, fmt.Sprintf("unknown sort key %q", sortKey))
	}

	rows, err := r.db.Query(ctx,
		`SELECT u.username, s.id, s.user_id, s.wins, s.losses, s.ties, s.games_played, s.created_at, s.updated_at
		 FROM player_stats s
		 JOIN users u ON u.id = s.user_id
		 ORDER BY `+order+`
		 LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, domain.Wrap(domain.KindStorage, "failed to load leaderboard", err)
	}
	defer rows.Close()

	var res []LeaderboardEntry
	rank := offset + 1
	for rows.Next() {
		var e LeaderboardEntry
		s := &e.Stats
		if err := rows.Scan(&e.Username, &s.ID, &s.UserID, &s.Wins, &s.Losses, &s.Ties,
			&s.GamesPlayed, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, domain.Wrap(domain.KindStorage, "failed to scan leaderboard row", err)
		}
		e.Rank = rank
		rank++
		res = append(res, e)
	}
	return res, rows.Err()
}
