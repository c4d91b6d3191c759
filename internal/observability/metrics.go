package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the picker.
type Metrics struct {
	// Directory API metrics.
	APIRequests *prometheus.CounterVec   // labels: endpoint={countries,states,cities}, outcome={success,error,empty}
	APIDuration *prometheus.HistogramVec // labels: endpoint
	APICache    *prometheus.CounterVec   // labels: endpoint, result={hit,miss}

	// Cascade metrics.
	FetchFailures           *prometheus.CounterVec // labels: list
	StaleResponsesDiscarded *prometheus.CounterVec // labels: list

	// Front-end and event metrics.
	PageRenders              prometheus.Counter
	SelectionsPublished      prometheus.Counter
	SelectionPublishFailures prometheus.Counter
	SelectionEventsEnabled   prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.APIRequests,
		m.APIDuration,
		m.APICache,
		m.FetchFailures,
		m.StaleResponsesDiscarded,
		m.PageRenders,
		m.SelectionsPublished,
		m.SelectionPublishFailures,
		m.SelectionEventsEnabled,
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
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "location_picker",
			Name:      "api_requests_total",
			Help:      "Directory API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		APIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "location_picker",
			Name:      "api_duration_seconds",
			Help:      "Directory API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"endpoint"}),
		APICache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "location_picker",
			Name:      "api_cache_total",
			Help:      "Directory cache lookups by endpoint and result.",
		}, []string{"endpoint", "result"}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "location_picker",
			Name:      "fetch_failures_total",
			Help:      "Option list fetches that failed and left the list empty.",
		}, []string{"list"}),
		StaleResponsesDiscarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "location_picker",
			Name:      "stale_responses_discarded_total",
			Help:      "Fetch results dropped because a newer request superseded them.",
		}, []string{"list"}),
		PageRenders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "location_picker",
			Name:      "page_renders_total",
			Help:      "Server-rendered picker pages.",
		}),
		SelectionsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "location_picker",
			Name:      "selections_published_total",
			Help:      "Completed selections written to the event stream.",
		}),
		SelectionPublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "location_picker",
			Name:      "selection_publish_failures_total",
			Help:      "Completed selections that could not be written to the event stream.",
		}),
		SelectionEventsEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "location_picker",
			Name:      "selection_events_enabled",
			Help:      "1 when selection events are published, 0 otherwise.",
		}),
	}
}
