package domain

import "time"

// PlayerStats holds the leaderboard counters for one player.
type PlayerStats struct {
	ID          int64     `db:"id" json:"-"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Wins        int       `db:"wins" json:"wins"`
	Losses      int       `db:"losses" json:"losses"`
	Ties        int       `db:"ties" json:"ties"`
	GamesPlayed int       `db:"games_played" json:"games_played"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
	UpdatedAt   time.Time `db:"updated_at" json:"-"`
}

// WinStatus is one player's result in a resolved match.
type WinStatus int

const (
	WinStatusWon WinStatus = iota
	WinStatusLost
	WinStatusDraw
)

// StatsSortKey enumerates the leaderboard orderings the API accepts. The
// mapping to SQL columns is explicit; nothing is looked up by field name.
type StatsSortKey string

const (
	SortByWins        StatsSortKey = "wins"
	SortByLosses      StatsSortKey = "losses"
	SortByTies        StatsSortKey = "ties"
	SortByGamesPlayed StatsSortKey = "games_played"
)

// ValidStatsSortKey reports whether k is an accepted sort key.
func ValidStatsSortKey(k StatsSortKey) bool {
	switch k {
	case SortByWins, SortByLosses, SortByTies, SortByGamesPlayed:
		return true
	}
	return false
}
