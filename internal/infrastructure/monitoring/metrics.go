// Package monitoring provides Prometheus metrics and OpenTelemetry tracing
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsCollector handles Prometheus metrics collection. A nil collector is
// valid and records nothing.
type MetricsCollector struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Storage metrics
	storageWarningsTotal *prometheus.CounterVec
	storageRejectedTotal *prometheus.CounterVec
	storedBytes          *prometheus.GaugeVec

	// Business metrics
	recipesCreatedTotal prometheus.Counter
	recipesDeletedTotal prometheus.Counter
	planReplacesTotal   *prometheus.CounterVec
}

// NewMetricsCollector creates a collector registered on its own registry
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &MetricsCollector{
		logger:   logger,
		registry: registry,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		storageWarningsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "local_storage_warnings_total",
				Help: "Reads that found oversize or corrupt data and reset the key",
			},
			[]string{"code", "key"},
		),
		storageRejectedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "local_storage_rejected_writes_total",
				Help: "Writes refused because they exceeded the size budget",
			},
			[]string{"key"},
		),
		storedBytes: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "local_storage_bytes",
				Help: "Serialized size of the last committed document per key",
			},
			[]string{"key"},
		),

		recipesCreatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "recipes_created_total",
				Help: "Total number of recipes created",
			},
		),
		recipesDeletedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "recipes_deleted_total",
				Help: "Total number of recipes deleted",
			},
		),
		planReplacesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mealplan_replaces_total",
				Help: "Bulk meal plan replacements by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Registry exposes the underlying registry
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordRequest records one served HTTP request
func (m *MetricsCollector) RecordRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// StorageWarning counts a self-healed read
func (m *MetricsCollector) StorageWarning(code, key string) {
	if m == nil {
		return
	}
	m.storageWarningsTotal.WithLabelValues(code, key).Inc()
}

// StorageRejected counts a write refused by the size budget
func (m *MetricsCollector) StorageRejected(key string) {
	if m == nil {
		return
	}
	m.storageRejectedTotal.WithLabelValues(key).Inc()
}

// StoredBytes records the size of a committed document
func (m *MetricsCollector) StoredBytes(key string, size int) {
	if m == nil {
		return
	}
	m.storedBytes.WithLabelValues(key).Set(float64(size))
}

// RecipeCreated counts a created recipe
func (m *MetricsCollector) RecipeCreated() {
	if m == nil {
		return
	}
	m.recipesCreatedTotal.Inc()
}

// RecipeDeleted counts a deleted recipe
func (m *MetricsCollector) RecipeDeleted() {
	if m == nil {
		return
	}
	m.recipesDeletedTotal.Inc()
}

// PlanReplaced counts a bulk plan replacement with outcome ok, failed or partial
func (m *MetricsCollector) PlanReplaced(outcome string) {
	if m == nil {
		return
	}
	m.planReplacesTotal.WithLabelValues(outcome).Inc()
}
