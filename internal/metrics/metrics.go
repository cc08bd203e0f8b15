// Package metrics defines the Prometheus collectors for the indicator engine.
// Collectors are registered on a caller-supplied registerer; serving them
// over HTTP is left to the embedding program.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the indicator engine.
type Metrics struct {
	UpdatesTotal      *prometheus.CounterVec // labels: indicator
	ComputeDur        prometheus.Histogram
	WarmingIndicators prometheus.Gauge
	ResultsDropped    prometheus.Counter
	SymbolsTracked    prometheus.Gauge
}

// NewMetrics creates the collectors under namespace and registers them on reg.
// A nil reg leaves them unregistered, which is handy in tests.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		UpdatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Total indicator updates, by indicator type",
		}, []string{"indicator"}),
		ComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compute_duration_seconds",
			Help:      "Time to update every indicator for one bar",
			Buckets:   []float64{0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005},
		}),
		WarmingIndicators: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "warming_indicators",
			Help:      "Indicator instances that have not produced a defined value yet",
		}),
		ResultsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_dropped_total",
			Help:      "Results dropped because the output channel was full",
		}),
		SymbolsTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "symbols_tracked",
			Help:      "Symbols with live indicator state",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.UpdatesTotal,
			m.ComputeDur,
			m.WarmingIndicators,
			m.ResultsDropped,
			m.SymbolsTracked,
		)
	}

	return m
}
