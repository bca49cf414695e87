package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// insight service.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec   // labels: dataset, outcome={success,error,empty}
	UpstreamDuration *prometheus.HistogramVec // labels: dataset

	InsightQueries  *prometheus.CounterVec // labels: outcome={success,not_found,unit_required,error}
	InsightDuration prometheus.Histogram
	DensityCurves   prometheus.Counter

	UpstreamReady prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.InsightQueries,
		m.InsightDuration,
		m.DensityCurves,
		m.UpstreamReady,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "property_insight",
			Name:      "upstream_requests_total",
			Help:      "Open-data API requests by dataset and outcome.",
		}, []string{"dataset", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "property_insight",
			Name:      "upstream_request_duration_seconds",
			Help:      "Open-data API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"dataset"}),
		InsightQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "property_insight",
			Name:      "insight_queries_total",
			Help:      "Property insight queries by outcome.",
		}, []string{"outcome"}),
		InsightDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "property_insight",
			Name:      "insight_query_duration_seconds",
			Help:      "Duration of a complete insight query, including all upstream calls.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		DensityCurves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "property_insight",
			Name:      "density_curves_total",
			Help:      "Total neighbourhood density curves rendered.",
		}),
		UpstreamReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "property_insight",
			Name:      "upstream_ready",
			Help:      "1 once the open-data API has been reached successfully.",
		}),
	}
}
