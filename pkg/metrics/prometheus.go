// Package metrics provides Prometheus metrics for the AIME admin service.
package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the AIME service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Partner configuration
	configReloads        *prometheus.CounterVec
	configLastReloadUnix prometheus.Gauge
	configReloadDuration prometheus.Histogram
	partnersLoaded       prometheus.Gauge
	fixturesSkipped      prometheus.Counter

	// Domain operations
	routingDecisions *prometheus.CounterVec
	trendBuilds      *prometheus.CounterVec
	exports          *prometheus.CounterVec
	registryRecords  *prometheus.GaugeVec

	// File persistence
	persistenceWrites       *prometheus.CounterVec
	persistenceWriteLatency prometheus.Histogram

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init replaces the global manager and its registry with one built from
// opts. Call it once at startup before any metric is recorded or served.
func Init(opts ...Option) {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append(opts, WithPrometheusRegistry(customRegistry))...)
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "aime",
		subsystem:        "admin",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   m.histogramBuckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.configReloads = auto.NewCounterVec(
		m.counterOpts("config_reloads_total", "Partner configuration loads by result"),
		[]string{"result"},
	)
	m.configLastReloadUnix = auto.NewGauge(m.gaugeOpts("config_last_reload_unix", "Unix timestamp of the last successful partner configuration load"))
	m.configReloadDuration = auto.NewHistogram(m.histogramOpts("config_reload_duration_milliseconds", "Partner configuration load duration in milliseconds"))
	m.partnersLoaded = auto.NewGauge(m.gaugeOpts("partners_loaded", "Number of partners in the published configuration table"))
	m.fixturesSkipped = auto.NewCounter(m.counterOpts("fixtures_skipped_total", "Partner fixtures rejected during load"))

	m.routingDecisions = auto.NewCounterVec(
		m.counterOpts("routing_decisions_total", "Persona routing decisions by partner and matched clause"),
		[]string{"partner", "matched_by"},
	)
	m.trendBuilds = auto.NewCounterVec(
		m.counterOpts("trend_builds_total", "Synthetic trends built by metric and range"),
		[]string{"metric", "range"},
	)
	m.exports = auto.NewCounterVec(
		m.counterOpts("exports_total", "Snapshot exports by format and entity"),
		[]string{"format", "entity"},
	)
	m.registryRecords = auto.NewGaugeVec(
		m.gaugeOpts("registry_records", "Number of records held by each in-memory registry"),
		[]string{"registry"},
	)

	m.persistenceWrites = auto.NewCounterVec(
		m.counterOpts("persistence_writes_total", "JSON document writes by document and result"),
		[]string{"document", "result"},
	)
	m.persistenceWriteLatency = auto.NewHistogram(m.histogramOpts("persistence_write_latency_milliseconds", "JSON document write latency in milliseconds"))

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap memory in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
}

// Enabled reports whether recording is active.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval is the period used by RunSystemCollector.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Partner configuration metrics.

// RecordConfigReload records the outcome of a configuration load.
func RecordConfigReload(ok bool, durationMs float64, partners, skipped int) {
	if !globalManager.enabled {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	globalManager.configReloads.WithLabelValues(result).Inc()
	globalManager.configReloadDuration.Observe(durationMs)
	globalManager.fixturesSkipped.Add(float64(skipped))
	if ok {
		globalManager.partnersLoaded.Set(float64(partners))
		globalManager.configLastReloadUnix.Set(float64(time.Now().Unix()))
	}
}

// Domain metrics.

// RecordRoutingDecision counts a persona routing decision.
func RecordRoutingDecision(partner, matchedBy string) {
	if !globalManager.enabled {
		return
	}
	globalManager.routingDecisions.WithLabelValues(partner, matchedBy).Inc()
}

// RecordTrendBuild counts a synthesised trend.
func RecordTrendBuild(metric, rng string) {
	if !globalManager.enabled {
		return
	}
	globalManager.trendBuilds.WithLabelValues(metric, rng).Inc()
}

// RecordExport counts a snapshot export.
func RecordExport(format, entity string) {
	if !globalManager.enabled {
		return
	}
	globalManager.exports.WithLabelValues(format, entity).Inc()
}

// UpdateRegistryRecords sets the size of a named registry.
func UpdateRegistryRecords(registry string, count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.registryRecords.WithLabelValues(registry).Set(float64(count))
}

// Persistence metrics.

// RecordPersistenceWrite records a document write and its latency.
func RecordPersistenceWrite(document string, ok bool, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	globalManager.persistenceWrites.WithLabelValues(document, result).Inc()
	globalManager.persistenceWriteLatency.Observe(latencyMs)
}

// Error metrics.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System metrics.

// UpdateSystemMemoryUsage sets the heap memory in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// CollectSystem samples runtime statistics once.
func CollectSystem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	UpdateSystemMemoryUsage(ms.HeapInuse)
	UpdateSystemGoroutineCount(runtime.NumGoroutine())
}

// RunSystemCollector samples runtime statistics until ctx is done.
func RunSystemCollector(ctx context.Context) error {
	ticker := time.NewTicker(globalManager.refreshInterval)
	defer ticker.Stop()
	CollectSystem()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			CollectSystem()
		}
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
