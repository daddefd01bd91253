// Package metrics provides Prometheus metrics for the ingestion pipeline
// and the review API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	// listingsProcessed counts listings by source and outcome (scored,
	// invalid, gated_out).
	listingsProcessed *prometheus.CounterVec
	// eventsEmitted counts emitted events by kind. UNCHANGED entities
	// emit nothing, so the series only grows when something happened.
	eventsEmitted *prometheus.CounterVec
	// batchDuration tracks end-to-end batch processing time.
	batchDuration prometheus.Histogram
	// entitiesTracked gauges the current entity population by status.
	entitiesTracked *prometheus.GaugeVec
	// scrapeErrors counts failed fetches by source.
	scrapeErrors *prometheus.CounterVec
}

// New creates and registers the pipeline metrics on a fresh registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.listingsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bizfinder_listings_processed_total",
			Help: "Listings processed per batch by source and outcome",
		},
		[]string{"source", "outcome"},
	)
	m.eventsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bizfinder_events_emitted_total",
			Help: "Scored opportunity events emitted by kind",
		},
		[]string{"kind"},
	)
	m.batchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bizfinder_batch_duration_seconds",
			Help:    "End-to-end batch processing duration",
			Buckets: prometheus.DefBuckets,
		},
	)
	m.entitiesTracked = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bizfinder_entities_tracked",
			Help: "Opportunity entities currently tracked by status",
		},
		[]string{"status"},
	)
	m.scrapeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bizfinder_scrape_errors_total",
			Help: "Failed source fetches by source",
		},
		[]string{"source"},
	)

	m.registry.MustRegister(
		m.listingsProcessed,
		m.eventsEmitted,
		m.batchDuration,
		m.entitiesTracked,
		m.scrapeErrors,
	)
	return m
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ListingProcessed records one processed listing.
func (m *Metrics) ListingProcessed(source, outcome string) {
	m.listingsProcessed.WithLabelValues(source, outcome).Inc()
}

// EventEmitted records one emitted event.
func (m *Metrics) EventEmitted(kind string) {
	m.eventsEmitted.WithLabelValues(kind).Inc()
}

// ObserveBatch records a batch duration in seconds.
func (m *Metrics) ObserveBatch(seconds float64) {
	m.batchDuration.Observe(seconds)
}

// SetEntityCount sets the tracked entity gauge for one status.
func (m *Metrics) SetEntityCount(status string, n int) {
	m.entitiesTracked.WithLabelValues(status).Set(float64(n))
}

// ScrapeError records one failed fetch.
func (m *Metrics) ScrapeError(source string) {
	m.scrapeErrors.WithLabelValues(source).Inc()
}
