package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// alert-to-feature pipeline.
type Metrics struct {
	FeedFetches       prometheus.Counter
	FeedFetchErrors   prometheus.Counter
	AlertsProcessed   prometheus.Counter
	AlertsSkipped     *prometheus.CounterVec // labels: reason={unusable,fetch,transform}
	FeaturesBuilt     prometheus.Counter
	SubmitErrors      prometheus.Counter
	FeaturesSubmitted prometheus.Counter
	PipelineRunning   prometheus.Gauge

	// Cycle metrics.
	CycleDuration prometheus.Histogram
	LinksPerCycle prometheus.Histogram

	// Alert fetch cache metrics.
	FetchCache *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FeedFetches,
		m.FeedFetchErrors,
		m.AlertsProcessed,
		m.AlertsSkipped,
		m.FeaturesBuilt,
		m.SubmitErrors,
		m.FeaturesSubmitted,
		m.PipelineRunning,
		m.CycleDuration,
		m.LinksPerCycle,
		m.FetchCache,
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
		FeedFetches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cap_etl",
			Name:      "feed_fetches_total",
			Help:      "Total feed documents fetched.",
		}),
		FeedFetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cap_etl",
			Name:      "feed_fetch_errors_total",
			Help:      "Total feed fetch failures (each aborts one cycle).",
		}),
		AlertsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cap_etl",
			Name:      "alerts_processed_total",
			Help:      "Total alert documents successfully converted to features.",
		}),
		AlertsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cap_etl",
			Name:      "alerts_skipped_total",
			Help:      "Alerts skipped, by reason.",
		}, []string{"reason"}),
		FeaturesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cap_etl",
			Name:      "features_built_total",
			Help:      "Total output features assembled.",
		}),
		SubmitErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cap_etl",
			Name:      "submit_errors_total",
			Help:      "Total failed collection submissions.",
		}),
		FeaturesSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cap_etl",
			Name:      "features_submitted_total",
			Help:      "Total features delivered to the sink.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cap_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cap_etl",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete fetch-transform-submit cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		LinksPerCycle: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cap_etl",
			Name:      "links_per_cycle",
			Help:      "Candidate alert links discovered per feed scan.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		FetchCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cap_etl",
			Name:      "alert_fetch_cache_total",
			Help:      "Alert document cache lookups by result.",
		}, []string{"result"}),
	}
}
