package middleware

import "github.com/prometheus/client_golang/prometheus"

// Throttle counters are shared by every limiter in this package. The scope
// label says what the window is keyed on ("ip" or "player").
var (
	throttleAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "request_throttle_allowed_total",
			Help: "Requests that passed a throttle window",
		},
		[]string{"scope", "route"},
	)
	throttleRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "request_throttle_rejected_total",
			Help: "Requests rejected with 429 by a throttle window",
		},
		[]string{"scope", "route"},
	)
)

func init() {
	prometheus.MustRegister(throttleAllowed, throttleRejected)
}
