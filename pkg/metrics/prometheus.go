// Package metrics provides Prometheus metrics for the aimtrack service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingestion
	entriesIngested  prometheus.Counter
	entriesDuplicate prometheus.Counter
	entriesRejected  *prometheus.CounterVec

	// Scoring
	energyLatency      prometheus.Histogram
	leaderboardUpdates prometheus.Counter
	totalPlayers       prometheus.Gauge

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level recorders

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry served on /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = newManager(WithPrometheusRegistry(customRegistry))
}

// newManager creates a metrics manager and registers its collectors.
func newManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "aimtrack",
		subsystem:        "energy",
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

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		Buckets: m.histogramBuckets,
	})
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.entriesIngested = m.counter("entries_ingested_total", "Total number of entries stored")
	m.entriesDuplicate = m.counter("entries_duplicate_total", "Total number of duplicate entry uploads")
	m.entriesRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "entries_rejected_total",
		Help: "Total number of entry uploads rejected, by reason",
	}, []string{"reason"})

	m.energyLatency = m.histogram("evaluation_latency_milliseconds", "Energy evaluation latency in milliseconds")
	m.leaderboardUpdates = m.counter("leaderboard_updates_total", "Total number of benchmark leaderboard updates")
	m.totalPlayers = m.gauge("total_players", "Number of players with at least one stored entry")

	m.queueSize = m.gauge("queue_size", "Current number of queued entries")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum number of queued entries")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue size divided by capacity")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Total number of entries enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Total number of entries dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of rejected enqueues")

	m.workerCount = m.gauge("worker_count", "Number of ingestion workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Time spent ingesting one entry")
	m.workerErrors = m.counter("worker_errors_total", "Total number of entries that failed ingestion")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "errors_by_component_total",
		Help: "Errors by component and type",
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordEntryIngested increments the stored entries counter.
func RecordEntryIngested() { globalManager.entriesIngested.Inc() }

// RecordEntryDuplicate increments the duplicate uploads counter.
func RecordEntryDuplicate() { globalManager.entriesDuplicate.Inc() }

// RecordEntryRejected counts an upload rejected for reason.
func RecordEntryRejected(reason string) {
	globalManager.entriesRejected.WithLabelValues(reason).Inc()
}

// RecordEnergyLatency records how long an energy evaluation took.
func RecordEnergyLatency(latencyMs float64) { globalManager.energyLatency.Observe(latencyMs) }

// RecordLeaderboardUpdate increments the leaderboard updates counter.
func RecordLeaderboardUpdate() { globalManager.leaderboardUpdates.Inc() }

// UpdateTotalPlayers sets the number of known players.
func UpdateTotalPlayers(count int) { globalManager.totalPlayers.Set(float64(count)) }

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) { globalManager.queueUtilization.Set(utilization) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError increments the rejected enqueue counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerProcessingLatency records the ingestion time of one entry.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
