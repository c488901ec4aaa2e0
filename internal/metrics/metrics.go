// Package metrics exports validation outcomes as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/funvibe/refined/internal/config"
	"github.com/funvibe/refined/internal/validation"
)

// Metrics observes wrapped calls.
type Metrics struct {
	// Calls by function and outcome (passed, rejected, unbound)
	Calls *prometheus.CounterVec

	// Rejected arguments by function and parameter
	Violations *prometheus.CounterVec

	// Time spent validating one call
	ValidateLatency *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg, or with the default
// registerer when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Calls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.MetricNamespace,
			Name:      "calls_total",
			Help:      "Total wrapped calls by function and validation outcome",
		}, []string{"function", "outcome"}),

		Violations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.MetricNamespace,
			Name:      "violations_total",
			Help:      "Total rejected arguments by function and parameter",
		}, []string{"function", "parameter"}),

		ValidateLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.MetricNamespace,
			Name:      "validate_duration_seconds",
			Help:      "Duration of argument validation for one call",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		}, []string{"function"}),
	}
}

// Observe implements validation.Observer.
func (m *Metrics) Observe(r validation.Report) {
	if m == nil {
		return
	}
	m.Calls.WithLabelValues(r.Function, r.Outcome).Inc()
	for _, f := range r.Failures {
		m.Violations.WithLabelValues(r.Function, f.Parameter).Inc()
	}
	if r.Outcome != config.OutcomeUnbound {
		m.ValidateLatency.WithLabelValues(r.Function).Observe(r.Duration.Seconds())
	}
}
