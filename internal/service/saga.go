package service

import (
	"context"

	"rps_api/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
)

var sagaRollbacks = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "move_ingest_rollbacks_total",
		Help: "Compensating rollbacks run during move ingestion",
	},
	[]string{"failed_step"},
)

func init() {
	prometheus.MustRegister(sagaRollbacks)
}

// saga is an explicit undo stack for multi-step writes spanning independent
// stores. After each successful step the caller pushes its compensating
// action; on a later failure rollback runs them in reverse. Undo failures are
// logged and counted but never mask the error that triggered the rollback.
type saga struct {
	undos []undoStep
}

type undoStep struct {
	name string
	fn   func(context.Context) error
}

func (s *saga) push(name string, fn func(context.Context) error) {
	s.undos = append(s.undos, undoStep{name: name, fn: fn})
}

func (s *saga) rollback(ctx context.Context, failedStep string) {
	sagaRollbacks.WithLabelValues(failedStep).Inc()
	for i := len(s.undos) - 1; i >= 0; i-- {
		u := s.undos[i]
		if err := u.fn(ctx); err != nil {
			logger.Error("compensating action failed", "step", u.name, "after", failedStep, "error", err)
		} else {
			logger.Warn("compensated", "step", u.name, "after", failedStep)
		}
	}
	s.undos = nil
}
