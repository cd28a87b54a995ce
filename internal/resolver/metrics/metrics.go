// Package metrics provides observability for the resolution pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects pipeline-level counters and latencies. A nil *Metrics is
// safe to call, so wiring stays optional in tests.
type Metrics struct {
	// Signal provider call latencies by source.
	SignalLatency *prometheus.HistogramVec

	// Provider failures by source and error category.
	ProviderFailures *prometheus.CounterVec

	// Resolution outcomes by winning source ("lock", "gps", "address",
	// "manual", "default", "unresolved").
	ResolutionOutcome *prometheus.CounterVec

	// Overall resolution latency including provider calls.
	ResolveLatency prometheus.Histogram
}

// New registers and returns the pipeline metrics.
func New() *Metrics {
	return &Metrics{
		SignalLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schemegate_signal_duration_seconds",
			Help:    "Duration of signal provider calls by source",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"source"}),

		ProviderFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "schemegate_signal_failures_total",
			Help: "Total provider failures by source and error category",
		}, []string{"source", "category"}),

		ResolutionOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "schemegate_resolution_outcomes_total",
			Help: "Total resolution outcomes by winning source",
		}, []string{"source"}),

		ResolveLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "schemegate_resolve_duration_seconds",
			Help:    "Duration of full resolution including signal gathering",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// ObserveSignalLatency records the duration of one provider call.
func (m *Metrics) ObserveSignalLatency(source string, d time.Duration) {
	if m != nil {
		m.SignalLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// IncrementProviderFailure records a provider failure.
func (m *Metrics) IncrementProviderFailure(source, category string) {
	if m != nil {
		m.ProviderFailures.WithLabelValues(source, category).Inc()
	}
}

// IncrementOutcome records the winning source of a resolution.
func (m *Metrics) IncrementOutcome(source string) {
	if m != nil {
		m.ResolutionOutcome.WithLabelValues(source).Inc()
	}
}

// ObserveResolveLatency records the total resolution duration.
func (m *Metrics) ObserveResolveLatency(d time.Duration) {
	if m != nil {
		m.ResolveLatency.Observe(d.Seconds())
	}
}
