// Package observability holds the Prometheus metrics exported by postpilot.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by the business counters.
const (
	OutcomeSuccess       = "success"
	OutcomeQuotaExceeded = "quota_exhausted"
	OutcomeProviderError = "provider_error"
	OutcomeInvalid       = "invalid_signature"
	OutcomeError         = "error"
)

// Metrics holds all Prometheus collectors. A nil *Metrics is valid and
// records nothing, so services can be constructed without metrics in tests.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	GenerationsTotal   *prometheus.CounterVec
	GenerationDuration prometheus.Histogram

	OrdersTotal        *prometheus.CounterVec
	VerificationsTotal *prometheus.CounterVec

	StoreOperationsTotal   *prometheus.CounterVec
	StoreOperationDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors on registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postpilot_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "postpilot_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		GenerationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postpilot_generations_total",
				Help: "Post generation requests by plan and outcome",
			},
			[]string{"plan", "outcome"},
		),
		GenerationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "postpilot_generation_duration_seconds",
				Help:    "Latency of calls to the text-generation provider",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
		),
		OrdersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postpilot_payment_orders_total",
				Help: "Payment orders created by plan and outcome",
			},
			[]string{"plan", "outcome"},
		),
		VerificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postpilot_payment_verifications_total",
				Help: "Payment verifications by plan and outcome",
			},
			[]string{"plan", "outcome"},
		),
		StoreOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postpilot_store_operations_total",
				Help: "User store operations by backend, operation and status",
			},
			[]string{"backend", "operation", "status"},
		),
		StoreOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "postpilot_store_operation_duration_seconds",
				Help:    "User store operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend", "operation"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.GenerationsTotal,
		m.GenerationDuration,
		m.OrdersTotal,
		m.VerificationsTotal,
		m.StoreOperationsTotal,
		m.StoreOperationDuration,
	)

	return m
}

// ObserveHTTP records a completed HTTP request. path should be the route
// pattern, not the raw URL, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// ObserveGeneration records the outcome of a generation request.
func (m *Metrics) ObserveGeneration(plan, outcome string) {
	if m == nil {
		return
	}
	m.GenerationsTotal.WithLabelValues(plan, outcome).Inc()
}

// ObserveProviderLatency records how long the text-generation provider took.
func (m *Metrics) ObserveProviderLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.GenerationDuration.Observe(d.Seconds())
}

// ObserveOrder records the outcome of an order creation.
func (m *Metrics) ObserveOrder(plan, outcome string) {
	if m == nil {
		return
	}
	m.OrdersTotal.WithLabelValues(plan, outcome).Inc()
}

// ObserveVerification records the outcome of a payment verification.
func (m *Metrics) ObserveVerification(plan, outcome string) {
	if m == nil {
		return
	}
	m.VerificationsTotal.WithLabelValues(plan, outcome).Inc()
}

// ObserveStore records a user store operation.
func (m *Metrics) ObserveStore(backend, operation string, err error, d time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.StoreOperationsTotal.WithLabelValues(backend, operation, status).Inc()
	m.StoreOperationDuration.WithLabelValues(backend, operation).Observe(d.Seconds())
}

// RegisterMetricsEndpoint registers GET /metrics on mux.
func RegisterMetricsEndpoint(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
