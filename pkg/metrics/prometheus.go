// Package metrics provides Prometheus metrics for the roundelo rating service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes used as label values.
const (
	OutcomeComplete  = "complete"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Rating engine
	roundsProcessed prometheus.Counter
	emptyRounds     prometheus.Counter
	eventsProcessed prometheus.Counter
	runs            *prometheus.CounterVec
	runErrors       *prometheus.CounterVec
	runDuration     prometheus.Histogram
	ratedPlayers    prometheus.Gauge

	// Rating store
	storePlayers       prometheus.Gauge
	storeCommitLatency prometheus.Histogram

	// Import
	eventsImported  prometheus.Counter
	eventsDuplicate prometheus.Counter

	// Sweep
	sweepJobs    *prometheus.CounterVec
	sweepWorkers prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps default Go collectors out of the exposition.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "roundelo",
		subsystem:        "rating",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() {
	m.roundsProcessed = m.counter("rounds_processed_total", "Rounds folded into ratings")
	m.emptyRounds = m.counter("empty_rounds_total", "Rounds without participants carried forward unchanged")
	m.eventsProcessed = m.counter("events_processed_total", "Events fully processed by the engine")
	m.runs = m.counterVec("runs_total", "Engine runs by outcome", "outcome")
	m.runErrors = m.counterVec("run_errors_total", "Engine run failures by error kind", "kind")
	m.runDuration = m.histogram("run_duration_milliseconds", "Wall time of an engine run in milliseconds", m.histogramBuckets)
	m.ratedPlayers = m.gauge("rated_players", "Players in the latest published rating run")

	m.storePlayers = m.gauge("store_players", "Players seeded into the most recent rating store")
	m.storeCommitLatency = m.histogram("store_commit_latency_milliseconds", "Latency of committing one round index", m.histogramBuckets)

	m.eventsImported = m.counter("events_imported_total", "Events written to the placement store")
	m.eventsDuplicate = m.counter("events_duplicate_total", "Events skipped on import because their id was already seen")

	m.sweepJobs = m.counterVec("sweep_jobs_total", "Parameter sweep jobs by outcome", "outcome")
	m.sweepWorkers = m.gauge("sweep_workers", "Workers in the running parameter sweep")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "HTTP errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordRoundProcessed increments the processed rounds counter.
func RecordRoundProcessed() { globalManager.roundsProcessed.Inc() }

// RecordEmptyRound increments the empty rounds counter.
func RecordEmptyRound() { globalManager.emptyRounds.Inc() }

// RecordEventProcessed increments the processed events counter.
func RecordEventProcessed() { globalManager.eventsProcessed.Inc() }

// RecordRun records a finished run with its outcome and duration.
func RecordRun(outcome string, durationMs float64) {
	globalManager.runs.WithLabelValues(outcome).Inc()
	globalManager.runDuration.Observe(durationMs)
}

// RecordRunError counts a failed run by error kind.
func RecordRunError(kind string) { globalManager.runErrors.WithLabelValues(kind).Inc() }

// UpdateRatedPlayers sets the player count of the published run.
func UpdateRatedPlayers(count int) { globalManager.ratedPlayers.Set(float64(count)) }

// UpdateStorePlayers sets the seeded player count of the latest store.
func UpdateStorePlayers(count int) { globalManager.storePlayers.Set(float64(count)) }

// RecordStoreCommitLatency records a commit latency in milliseconds.
func RecordStoreCommitLatency(latencyMs float64) { globalManager.storeCommitLatency.Observe(latencyMs) }

// RecordEventImported increments the imported events counter.
func RecordEventImported() { globalManager.eventsImported.Inc() }

// RecordEventDuplicate increments the duplicate events counter.
func RecordEventDuplicate() { globalManager.eventsDuplicate.Inc() }

// RecordSweepJob counts a finished sweep job.
func RecordSweepJob(outcome string) { globalManager.sweepJobs.WithLabelValues(outcome).Inc() }

// UpdateSweepWorkers sets the sweep worker gauge.
func UpdateSweepWorkers(count int) { globalManager.sweepWorkers.Set(float64(count)) }

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint counts an HTTP error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
