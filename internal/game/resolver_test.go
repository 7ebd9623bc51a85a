package game

import (
	"strings"
	"testing"

	"rps_api/internal/domain"
)

func ptr(v int64) *int64 { return &v }

func snapshot(status domain.MatchStatus, g1, g2 domain.Gesture) domain.Snapshot {
	snap := domain.Snapshot{
		MatchID:   1,
		Status:    status,
		Player1ID: ptr(10),
		Player2ID: ptr(20),
	}
	if g1 != "" {
		snap.Move1 = &domain.Move{MatchID: 1, PlayerID: 10, Gesture: g1}
	}
	if g2 != "" {
		snap.Move2 = &domain.Move{MatchID: 1, PlayerID: 20, Gesture: g2}
	}
	return snap
}

func TestResolve_AllGesturePairs(t *testing.T) {
	cases := []struct {
		g1, g2 domain.Gesture
		want   Action
	}{
		{domain.GestureRock, domain.GestureScissors, ActionPlayer1Wins},
		{domain.GestureScissors, domain.GesturePaper, ActionPlayer1Wins},
		{domain.GesturePaper, domain.GestureRock, ActionPlayer1Wins},
		{domain.GestureScissors, domain.GestureRock, ActionPlayer2Wins},
		{domain.GesturePaper, domain.GestureScissors, ActionPlayer2Wins},
		{domain.GestureRock, domain.GesturePaper, ActionPlayer2Wins},
		{domain.GestureRock, domain.GestureRock, ActionDraw},
		{domain.GesturePaper, domain.GesturePaper, ActionDraw},
		{domain.GestureScissors, domain.GestureScissors, ActionDraw},
	}

	for _, tc := range cases {
		t.Run(string(tc.g1)+"_vs_"+string(tc.g2), func(t *testing.T) {
			out, err := Resolve(snapshot(domain.StatusInProgress, tc.g1, tc.g2))
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if out.Action != tc.want {
				t.Fatalf("action = %v, want %v", out.Action, tc.want)
			}
			if out.Status == nil || *out.Status != domain.StatusCompleted {
				t.Fatalf("status = %v, want completed", out.Status)
			}

			switch tc.want {
			case ActionDraw:
				if out.IsTie == nil || !*out.IsTie {
					t.Fatal("draw must set tie")
				}
				if out.WinnerID != nil || out.LoserID != nil {
					t.Fatal("draw must not set winner or loser")
				}
			case ActionPlayer1Wins:
				if out.WinnerID == nil || *out.WinnerID != 10 || out.LoserID == nil || *out.LoserID != 20 {
					t.Fatalf("wrong winner/loser: %v %v", out.WinnerID, out.LoserID)
				}
			case ActionPlayer2Wins:
				if out.WinnerID == nil || *out.WinnerID != 20 || out.LoserID == nil || *out.LoserID != 10 {
					t.Fatalf("wrong winner/loser: %v %v", out.WinnerID, out.LoserID)
				}
			}
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	snap := snapshot(domain.StatusInProgress, domain.GestureRock, domain.GestureScissors)
	first, err := Resolve(snap)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Resolve(snap)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if again.Action != first.Action || again.Message != first.Message {
			t.Fatalf("resolution changed between identical calls: %+v vs %+v", again, first)
		}
	}
}

func TestResolve_WaitingForMoves(t *testing.T) {
	cases := []struct {
		name     string
		g1, g2   domain.Gesture
		fragment string
	}{
		{"both_pending", "", "", "both players"},
		{"player1_pending", "", domain.GestureRock, "player 1"},
		{"player2_pending", domain.GestureRock, "", "player 2"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Resolve(snapshot(domain.StatusInProgress, tc.g1, tc.g2))
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if out.Action != ActionNoAction {
				t.Fatalf("action = %v, want no_action", out.Action)
			}
			if out.Status != nil {
				t.Fatal("waiting outcome must not request a status change")
			}
			if !strings.Contains(out.Message, tc.fragment) {
				t.Fatalf("message %q does not identify %q", out.Message, tc.fragment)
			}
		})
	}
}

func TestResolve_MissingPlayerCancels(t *testing.T) {
	snap := snapshot(domain.StatusInProgress, domain.GestureRock, domain.GestureScissors)
	snap.Player2ID = nil
	snap.Move2 = nil

	out, err := Resolve(snap)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out.Action != ActionCancel {
		t.Fatalf("action = %v, want cancel", out.Action)
	}
	if out.Status == nil || *out.Status != domain.StatusCancelled {
		t.Fatalf("status = %v, want cancelled", out.Status)
	}
}

func TestResolve_CancelledIsInformational(t *testing.T) {
	snap := snapshot(domain.StatusCancelled, "", "")
	out, err := Resolve(snap)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out.Action != ActionNoAction || out.Status != nil {
		t.Fatalf("cancelled match must resolve to a read-only no-action, got %+v", out)
	}

	snap.Player1ID = nil
	out, err = Resolve(snap)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.Contains(out.Message, "missing player") {
		t.Fatalf("message %q should mention the missing player", out.Message)
	}
}

func TestResolve_InvalidStates(t *testing.T) {
	for _, status := range []domain.MatchStatus{domain.StatusNotStarted, domain.StatusCompleted} {
		_, err := Resolve(snapshot(status, "", ""))
		if !domain.IsKind(err, domain.KindInvalidState) {
			t.Fatalf("status %v: err = %v, want invalid_state", status, err)
		}
	}
}

func TestResolve_UnknownGestureFailsLoud(t *testing.T) {
	snap := snapshot(domain.StatusInProgress, "lizard", domain.GestureRock)
	if _, err := Resolve(snap); !domain.IsKind(err, domain.KindInvalidState) {
		t.Fatalf("err = %v, want invalid_state for unknown gesture", err)
	}
}
