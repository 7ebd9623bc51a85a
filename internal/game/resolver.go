// Package game holds the pure round-resolution logic. Resolve is
// deterministic, takes a read-only snapshot and performs no I/O, which is what
// keeps it independently testable.
package game

import (
	"fmt"

	"rps_api/internal/domain"
)

// Action is what the engine should do with a resolved round.
type Action int

const (
	ActionNoAction Action = iota
	ActionPlayer1Wins
	ActionPlayer2Wins
	ActionDraw
	ActionCancel
)

func (a Action) String() string {
	switch a {
	case ActionNoAction:
		return "no_action"
	case ActionPlayer1Wins:
		return "player1_wins"
	case ActionPlayer2Wins:
		return "player2_wins"
	case ActionDraw:
		return "draw"
	case ActionCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Outcome is one evaluation of a match snapshot. Status, winner, loser and tie
// are set only when the action requires a persistent change; the engine
// validates the transition against the freshly read match before applying it.
type Outcome struct {
	Action   Action             `json:"action"`
	Message  string             `json:"message"`
	IsTie    *bool              `json:"is_tie,omitempty"`
	WinnerID *int64             `json:"winner_id,omitempty"`
	LoserID  *int64             `json:"loser_id,omitempty"`
	Status   *domain.MatchStatus `json:"status,omitempty"`
}

// beats is the full cyclic relation. Any gesture value outside this table is a
// programming or classifier error and resolves to an explicit failure, never
// to a default winner.
var beats = map[domain.Gesture]domain.Gesture{
	domain.GestureRock:     domain.GestureScissors,
	domain.GestureScissors: domain.GesturePaper,
	domain.GesturePaper:    domain.GestureRock,
}

// Resolve maps a snapshot to an outcome.
//
// Cancelled matches resolve to no-action with an informational message.
// NotStarted and Completed are caller errors: the engine only evaluates
// matches it believes to be in progress, so being called in those states
// means stale or wrong input.
func Resolve(snap domain.Snapshot) (Outcome, error) {
	switch snap.Status {
	case domain.StatusCancelled:
		return cancelledInfo(snap), nil
	case domain.StatusNotStarted:
		return Outcome{}, domain.E(domain.KindInvalidState, "match has not started, nothing to evaluate")
	case domain.StatusCompleted:
		return Outcome{}, domain.E(domain.KindInvalidState, "match is already completed, nothing to evaluate")
	case domain.StatusInProgress:
		return evaluate(snap)
	default:
		return Outcome{}, domain.E(domain.KindInvalidState, fmt.Sprintf("unknown match status %d", snap.Status))
	}
}

func evaluate(snap domain.Snapshot) (Outcome, error) {
	if snap.Player1ID == nil || snap.Player2ID == nil {
		st := domain.StatusCancelled
		return Outcome{
			Action:  ActionCancel,
			Message: "match is cancelled as one of the players has been deleted",
			Status:  &st,
		}, nil
	}
	if snap.Move1 == nil || snap.Move2 == nil {
		return Outcome{Action: ActionNoAction, Message: waitingMessage(snap)}, nil
	}
	return decide(snap)
}

func cancelledInfo(snap domain.Snapshot) Outcome {
	msg := "match status: cancelled"
	if snap.Player1ID == nil || snap.Player2ID == nil {
		msg = "match is cancelled due to a missing player"
	}
	return Outcome{Action: ActionNoAction, Message: msg}
}

func waitingMessage(snap domain.Snapshot) string {
	switch {
	case snap.Move1 == nil && snap.Move2 != nil:
		return "waiting for player 1 to submit a gesture"
	case snap.Move2 == nil && snap.Move1 != nil:
		return "waiting for player 2 to submit a gesture"
	default:
		return "waiting for both players to submit gestures"
	}
}

func decide(snap domain.Snapshot) (Outcome, error) {
	g1, g2 := snap.Move1.Gesture, snap.Move2.Gesture
	if _, ok := beats[g1]; !ok {
		return Outcome{}, domain.E(domain.KindInvalidState, fmt.Sprintf("player 1 move carries unknown gesture %q", g1))
	}
	if _, ok := beats[g2]; !ok {
		return Outcome{}, domain.E(domain.KindInvalidState, fmt.Sprintf("player 2 move carries unknown gesture %q", g2))
	}

	completed := domain.StatusCompleted
	out := Outcome{Status: &completed}

	switch {
	case g1 == g2:
		tie := true
		out.Action = ActionDraw
		out.IsTie = &tie
		out.Message = fmt.Sprintf("it's a tie, both players submitted %s", g1)
	case beats[g1] == g2:
		tie := false
		out.Action = ActionPlayer1Wins
		out.IsTie = &tie
		out.WinnerID = snap.Player1ID
		out.LoserID = snap.Player2ID
		out.Message = fmt.Sprintf("player 1 wins, %s beats %s", g1, g2)
	default:
		tie := false
		out.Action = ActionPlayer2Wins
		out.IsTie = &tie
		out.WinnerID = snap.Player2ID
		out.LoserID = snap.Player1ID
		out.Message = fmt.Sprintf("player 2 wins, %s beats %s", g2, g1)
	}
	return out, nil
}
