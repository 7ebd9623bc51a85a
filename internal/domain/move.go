package domain

import (
	"fmt"
	"time"
)

// Gesture is the classifier's verdict for a submitted image.
type Gesture string

const (
	GestureRock     Gesture = "rock"
	GesturePaper    Gesture = "paper"
	GestureScissors Gesture = "scissors"
)

// ParseGesture validates a gesture value coming from outside the process.
func ParseGesture(s string) (Gesture, error) {
	switch Gesture(s) {
	case GestureRock, GesturePaper, GestureScissors:
		return Gesture(s), nil
	}
	return "", fmt.Errorf("unknown gesture %q", s)
}

// Move is one player's submitted gesture for one match. Immutable after
// creation; deleted only as a compensating action when a later ingestion step
// fails. At most one move exists per (match, player), enforced by a unique
// index in storage.
type Move struct {
	ID        int64     `db:"id" json:"id"`
	MatchID   int64     `db:"match_id" json:"match_id"`
	PlayerID  int64     `db:"player_id" json:"player_id"`
	Gesture   Gesture   `db:"gesture" json:"gesture"`
	FileRef   string    `db:"file_ref" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
