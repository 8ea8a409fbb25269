// Package metrics provides Prometheus metrics for the tutor engine and its HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for OperationCompleted
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)

// Manager owns every collector. A nil *Manager is valid and records nothing.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	operations        *prometheus.CounterVec
	generationLatency *prometheus.HistogramVec
	generationErrors  *prometheus.CounterVec
	defaultedFields   *prometheus.CounterVec
	schemaViolations  *prometheus.CounterVec
	persistFailures   *prometheus.CounterVec
	themeCache        *prometheus.CounterVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom histogram buckets for latency metrics.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithRegistry registers the collectors on registry instead of a fresh one.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// NewManager creates a manager with its own registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tutor",
		histogramBuckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.operations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "operations_total",
		Help:      "Engine operations by outcome (ok, fallback, error)",
	}, []string{"operation", "outcome"})

	m.generationLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "generation_duration_seconds",
		Help:      "Latency of generation backend calls",
		Buckets:   m.histogramBuckets,
	}, []string{"operation"})

	m.generationErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "generation_errors_total",
		Help:      "Failed generation calls by kind (timeout, status, transport, malformed)",
	}, []string{"operation", "kind"})

	m.defaultedFields = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "defaulted_fields_total",
		Help:      "Response fields replaced by a default during normalization",
	}, []string{"operation"})

	m.schemaViolations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "schema_violations_total",
		Help:      "Responses that did not match the requested JSON schema",
	}, []string{"operation"})

	m.persistFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "persist_failures_total",
		Help:      "Storage writes that failed after an operation completed",
	}, []string{"operation"})

	m.themeCache = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "theme_cache_total",
		Help:      "Essay theme cache lookups by result (hit, miss, error)",
	}, []string{"result"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status code",
	}, []string{"method", "route", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   m.histogramBuckets,
	}, []string{"method", "route"})
}

// OperationCompleted counts a finished engine operation
func (m *Manager) OperationCompleted(operation, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// ObserveGeneration records the latency of one generation call
func (m *Manager) ObserveGeneration(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.generationLatency.WithLabelValues(operation).Observe(d.Seconds())
}

// GenerationFailed counts a failed generation call
func (m *Manager) GenerationFailed(operation, kind string) {
	if m == nil {
		return
	}
	m.generationErrors.WithLabelValues(operation, kind).Inc()
}

// FieldsDefaulted counts fields defaulted during normalization
func (m *Manager) FieldsDefaulted(operation string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.defaultedFields.WithLabelValues(operation).Add(float64(n))
}

// SchemaViolation counts a response that failed schema diagnostics
func (m *Manager) SchemaViolation(operation string) {
	if m == nil {
		return
	}
	m.schemaViolations.WithLabelValues(operation).Inc()
}

// PersistFailed counts a failed storage write
func (m *Manager) PersistFailed(operation string) {
	if m == nil {
		return
	}
	m.persistFailures.WithLabelValues(operation).Inc()
}

// ThemeCacheLookup counts a theme cache lookup
func (m *Manager) ThemeCacheLookup(result string) {
	if m == nil {
		return
	}
	m.themeCache.WithLabelValues(result).Inc()
}

// ObserveHTTP records one HTTP request
func (m *Manager) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Registry exposes the underlying registry
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
