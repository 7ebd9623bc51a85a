package service

import (
	"context"

	"rps_api/internal/domain"
	"rps_api/internal/game"
)

// StatsService turns resolved outcomes into leaderboard counter updates.
type StatsService struct {
	stats StatsRepo
}

func NewStatsService(stats StatsRepo) *StatsService {
	return &StatsService{stats: stats}
}

// RecordOutcome credits both participants of a completed match.
func (s *StatsService) RecordOutcome(ctx context.Context, m *domain.Match, out *game.Outcome) error {
	switch out.Action {
	case game.ActionDraw:
		if m.Player1ID != nil {
			if err := s.stats.Record(ctx, *m.Player1ID, domain.WinStatusDraw); err != nil {
				return err
			}
		}
		if m.Player2ID != nil {
			if err := s.stats.Record(ctx, *m.Player2ID, domain.WinStatusDraw); err != nil {
				return err
			}
		}
	case game.ActionPlayer1Wins, game.ActionPlayer2Wins:
		if out.WinnerID != nil {
			if err := s.stats.Record(ctx, *out.WinnerID, domain.WinStatusWon); err != nil {
				return err
			}
		}
		if out.LoserID != nil {
			if err := s.stats.Record(ctx, *out.LoserID, domain.WinStatusLost); err != nil {
				return err
			}
		}
	}
	return nil
}
