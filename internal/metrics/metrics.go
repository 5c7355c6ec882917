// Package metrics exposes Prometheus collectors for simulation runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the application registry served on /metrics.
var Registry = prometheus.NewRegistry()

type Metrics struct {
	// SimulationsTotal counts runs by outcome (ok, invalid, error).
	SimulationsTotal *prometheus.CounterVec

	// ValidationErrors counts rejected inputs by kind.
	ValidationErrors *prometheus.CounterVec

	// SuggestionsTotal counts generated suggestions by severity.
	SuggestionsTotal *prometheus.CounterVec

	// SuggestionsApplied counts suggestions accepted by callers.
	SuggestionsApplied prometheus.Counter

	SimulationDuration prometheus.Histogram

	// PeakBreachRisk is the peak hourly breach risk of the latest run.
	PeakBreachRisk prometheus.Gauge
}

// New registers the collectors on reg. A nil reg gets a private registry so
// tests can create as many instances as they like.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		SimulationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opsim",
			Name:      "simulations_total",
			Help:      "Simulation runs by outcome.",
		}, []string{"outcome"}),

		ValidationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opsim",
			Name:      "validation_errors_total",
			Help:      "Rejected simulation inputs by error kind.",
		}, []string{"kind"}),

		SuggestionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "opsim",
			Name:      "suggestions_total",
			Help:      "Generated staffing suggestions by severity.",
		}, []string{"severity"}),

		SuggestionsApplied: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "opsim",
			Name:      "suggestions_applied_total",
			Help:      "Suggestions accepted by callers.",
		}),

		SimulationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "opsim",
			Name:      "simulation_duration_seconds",
			Help:      "Time taken to run one simulation.",
			Buckets:   []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),

		PeakBreachRisk: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "opsim",
			Name:      "peak_breach_risk",
			Help:      "Peak hourly total breach risk of the latest simulation.",
		}),
	}
}
