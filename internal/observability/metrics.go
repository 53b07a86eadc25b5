package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sdg2"

// Metrics holds the Prometheus collectors for indicator resolution.
type Metrics struct {
	// Source adapter metrics.
	SourceRequests *prometheus.CounterVec   // labels: source, outcome={success,empty,error}
	SourceDuration *prometheus.HistogramVec // labels: source
	SourceRetries  *prometheus.CounterVec   // labels: source
	SourceFailures *prometheus.CounterVec   // labels: source, reason
	SourceUp       *prometheus.GaugeVec     // labels: source; last probe result

	// Resolver metrics.
	Resolves            *prometheus.CounterVec // labels: outcome={cached,live,fallback,error}
	CacheLookups        *prometheus.CounterVec // labels: kind={live,fallback}, result={hit,miss,error}
	Fallbacks           *prometheus.CounterVec // labels: reason={unavailable,empty,countries}
	DataQualityWarnings *prometheus.CounterVec // labels: indicator
	ResolveDuration     prometheus.Histogram

	// Row sink metrics.
	SinkPublished prometheus.Counter
	SinkErrors    prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		SourceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "Agency data requests by source and outcome.",
		}, []string{"source", "outcome"}),
		SourceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_request_duration_seconds",
			Help:      "Agency request duration in seconds, including retries.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"source"}),
		SourceRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_retries_total",
			Help:      "Retried agency requests by source.",
		}, []string{"source"}),
		SourceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_failures_total",
			Help:      "Agency failures by source and reason.",
		}, []string{"source", "reason"}),
		SourceUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "source_reachable",
			Help:      "1 when the last probe reached the source, 0 otherwise.",
		}, []string{"source"}),
		Resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolves_total",
			Help:      "Resolve calls by outcome.",
		}, []string{"outcome"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by entry kind and result.",
		}, []string{"kind", "result"}),
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Answers built from local tables instead of a source, by reason.",
		}, []string{"reason"}),
		DataQualityWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "data_quality_warnings_total",
			Help:      "Percentage values outside [0,100] returned by a source.",
		}, []string{"indicator"}),
		ResolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_duration_seconds",
			Help:      "End-to-end resolve duration in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 15},
		}),
		SinkPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_rows_published_total",
			Help:      "Rows published to the Kafka sink.",
		}),
		SinkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Failed Kafka sink publishes.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.SourceRequests,
		m.SourceDuration,
		m.SourceRetries,
		m.SourceFailures,
		m.SourceUp,
		m.Resolves,
		m.CacheLookups,
		m.Fallbacks,
		m.DataQualityWarnings,
		m.ResolveDuration,
		m.SinkPublished,
		m.SinkErrors,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates metrics registered with reg. One-shot commands pass a
// private registry.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
