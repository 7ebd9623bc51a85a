package domain

import (
	"fmt"
	"time"
)

// MatchStatus is the lifecycle state of a match.
type MatchStatus int

const (
	StatusNotStarted MatchStatus = iota
	StatusInProgress
	StatusCompleted
	StatusCancelled
)

func (s MatchStatus) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusInProgress:
		return "in_progress"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ParseMatchStatus parses the string form used in API filters.
func ParseMatchStatus(s string) (MatchStatus, error) {
	switch s {
	case "not_started":
		return StatusNotStarted, nil
	case "in_progress":
		return StatusInProgress, nil
	case "completed":
		return StatusCompleted, nil
	case "cancelled":
		return StatusCancelled, nil
	}
	return 0, fmt.Errorf("unknown match status %q", s)
}

// validTransitions is the full transition table. Anything not listed here is
// rejected; Completed and Cancelled are terminal.
var validTransitions = map[MatchStatus][]MatchStatus{
	StatusNotStarted: {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether the state machine allows moving to next.
func (s MatchStatus) CanTransition(next MatchStatus) bool {
	for _, t := range validTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s MatchStatus) Terminal() bool {
	return len(validTransitions[s]) == 0
}

// Match is one two-player game session. Player ids are nullable because a
// player account may be deleted while the match record survives.
// Winner/loser/tie are populated only once the match is resolved.
type Match struct {
	ID        int64       `db:"id" json:"id"`
	Player1ID *int64      `db:"player1_id" json:"player1_id"`
	Player2ID *int64      `db:"player2_id" json:"player2_id"`
	Status    MatchStatus `db:"status" json:"status"`
	WinnerID  *int64      `db:"winner_id" json:"winner_id,omitempty"`
	LoserID   *int64      `db:"loser_id" json:"loser_id,omitempty"`
	IsTie     *bool       `db:"is_tie" json:"is_tie,omitempty"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// HasParticipant reports whether userID is one of the two players.
func (m *Match) HasParticipant(userID int64) bool {
	if m.Player1ID != nil && *m.Player1ID == userID {
		return true
	}
	if m.Player2ID != nil && *m.Player2ID == userID {
		return true
	}
	return false
}

// MissingParticipant reports whether either player account has been deleted.
func (m *Match) MissingParticipant() bool {
	return m.Player1ID == nil || m.Player2ID == nil
}

// Snapshot is the read model the resolver works on: the match plus each
// player's submitted move, if any. It carries no repository handles and is
// never written back.
type Snapshot struct {
	MatchID   int64
	Status    MatchStatus
	Player1ID *int64
	Player2ID *int64
	Move1     *Move
	Move2     *Move
}

// SnapshotOf builds a snapshot from a match and its moves. Moves belonging to
// neither current player (possible after an account deletion) are dropped.
func SnapshotOf(m *Match, moves []*Move) Snapshot {
	snap := Snapshot{
		MatchID:   m.ID,
		Status:    m.Status,
		Player1ID: m.Player1ID,
		Player2ID: m.Player2ID,
	}
	for _, mv := range moves {
		switch {
		case m.Player1ID != nil && mv.PlayerID == *m.Player1ID:
			snap.Move1 = mv
		case m.Player2ID != nil && mv.PlayerID == *m.Player2ID:
			snap.Move2 = mv
		}
	}
	return snap
}
