package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SettlementMetrics records outcomes and latency of settlement actions.
type SettlementMetrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewSettlementMetrics registers the settlement metrics on the provided registerer.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlements_total",
		Help: "Settlement actions by action and outcome.",
	}, []string{"action", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "settlement_duration_seconds",
		Help:    "Duration of settlement actions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"action"})
	reg.MustRegister(total, duration)
	return &SettlementMetrics{
		total:    total,
		duration: duration,
	}
}

// IncOutcome increments the counter for the given action/outcome pair.
func (s *SettlementMetrics) IncOutcome(action, outcome string) {
	if s == nil || s.total == nil {
		return
	}
	s.total.WithLabelValues(normalizeLabel(action), normalizeLabel(outcome)).Inc()
}

// ObserveDuration records the duration of the named settlement action.
func (s *SettlementMetrics) ObserveDuration(action string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(action)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
