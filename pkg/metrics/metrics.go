// Package metrics provides Prometheus metrics for the faceoff comparison
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Core business metrics
	comparisonsServed *prometheus.CounterVec // by selection mode
	votesTotal        prometheus.Counter
	skipsTotal        prometheus.Counter
	upsetsTotal       prometheus.Counter

	// Latency metrics
	selectionLatency prometheus.Histogram
	voteLatency      prometheus.Histogram

	// Catalog gauges
	catalogItems      prometheus.Gauge
	comparisonsLogged prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error tracking
	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance on a custom registry, so default Go
// runtime collectors stay out of the scrape.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with configuration options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "faceoff",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.comparisonsServed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "comparisons_served_total",
		Help:      "Total comparison pairs served, by selection mode",
	}, []string{"mode"})

	m.votesTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "votes_total",
		Help:      "Total decided votes processed",
	})

	m.skipsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "skips_total",
		Help:      "Total skipped comparisons",
	})

	m.upsetsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upsets_total",
		Help:      "Total votes where the lower-rated item won beyond the upset threshold",
	})

	m.selectionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "selection_latency_milliseconds",
		Help:      "Histogram of pair selection latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.voteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "vote_latency_milliseconds",
		Help:      "Histogram of vote processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.catalogItems = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_items",
		Help:      "Number of items tracked in the catalog",
	})

	m.comparisonsLogged = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "comparisons_logged",
		Help:      "Number of comparison rows in the append-only log",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by endpoint, method, and status code",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_total",
		Help:      "Total errors by component and reason",
	}, []string{"component", "reason"})
}

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RecordComparisonServed increments the served-pair counter for a mode.
func RecordComparisonServed(mode string) {
	globalManager.comparisonsServed.WithLabelValues(mode).Inc()
}

// RecordVote increments the decided-vote counter.
func RecordVote() {
	globalManager.votesTotal.Inc()
}

// RecordSkip increments the skipped-comparison counter.
func RecordSkip() {
	globalManager.skipsTotal.Inc()
}

// RecordUpset increments the upset counter.
func RecordUpset() {
	globalManager.upsetsTotal.Inc()
}

// RecordSelectionLatency records one pair selection duration in milliseconds.
func RecordSelectionLatency(ms float64) {
	globalManager.selectionLatency.Observe(ms)
}

// RecordVoteLatency records one vote processing duration in milliseconds.
func RecordVoteLatency(ms float64) {
	globalManager.voteLatency.Observe(ms)
}

// UpdateCatalogItems sets the catalog size gauge.
func UpdateCatalogItems(n int) {
	globalManager.catalogItems.Set(float64(n))
}

// UpdateComparisonsLogged sets the comparison log size gauge.
func UpdateComparisonsLogged(n int) {
	globalManager.comparisonsLogged.Set(float64(n))
}

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records one HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

// RecordErrorByComponent counts one error for a component and reason.
func RecordErrorByComponent(component, reason string) {
	globalManager.errorsByComponent.WithLabelValues(component, reason).Inc()
}
