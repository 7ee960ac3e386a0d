package observability

import (
	"context"

	"github.com/aretw0/ladon/pkg/automator"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by automation hooks.
type Metrics struct {
	Runs          *prometheus.CounterVec
	RunDuration   *prometheus.HistogramVec
	PhaseDuration *prometheus.HistogramVec
	PhasesSkipped *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ladon_runs_total",
				Help: "Total number of finished automation runs",
			},
			[]string{"script", "status"},
		),
		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ladon_run_duration_seconds",
				Help:    "Wall time of automation runs",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"script"},
		),
		PhaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ladon_phase_duration_seconds",
				Help:    "Duration of executed phases",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"script", "phase"},
		),
		PhasesSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ladon_phases_skipped_total",
				Help: "Total number of phases skipped, by reason",
			},
			[]string{"script", "phase", "reason"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Runs, m.RunDuration, m.PhaseDuration, m.PhasesSkipped)
	}
	return m
}

// Hooks returns automation hooks that record into m.
func (m *Metrics) Hooks() automator.Hooks {
	return automator.Hooks{
		OnPhaseEnd: func(_ context.Context, e *automator.PhaseEvent) {
			m.PhaseDuration.WithLabelValues(e.Script, e.Phase).Observe(e.Duration.Seconds())
		},
		OnPhaseSkipped: func(_ context.Context, e *automator.PhaseEvent) {
			m.PhasesSkipped.WithLabelValues(e.Script, e.Phase, e.Reason).Inc()
		},
		OnRunEnd: func(_ context.Context, e *automator.RunEvent) {
			m.Runs.WithLabelValues(e.Script, string(e.Status)).Inc()
			m.RunDuration.WithLabelValues(e.Script).Observe(e.Duration.Seconds())
		},
	}
}
