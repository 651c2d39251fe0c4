package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics holds all Prometheus metrics
type PrometheusMetrics struct {
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec
	HttpResponseSize    *prometheus.HistogramVec

	// Connect pipeline metrics
	ConnectTotal          *prometheus.CounterVec
	ConnectDuration       *prometheus.HistogramVec
	IntrospectedTables    *prometheus.HistogramVec
	IntrospectionDuration *prometheus.HistogramVec

	// Annotation store metrics
	AnnotationUpdates *prometheus.CounterVec
	StoreResets       *prometheus.CounterVec
}

var (
	metrics *PrometheusMetrics
)

// Init registers all metrics with the default registry. Call once at startup;
// until then every Record function is a no-op.
func Init() {
	metrics = &PrometheusMetrics{
		HttpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datascout_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HttpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "datascout_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		HttpResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "datascout_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "endpoint"},
		),

		ConnectTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datascout_connect_total",
				Help: "Total number of connect requests by outcome",
			},
			[]string{"engine", "outcome"},
		),
		ConnectDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "datascout_connect_duration_seconds",
				Help:    "End to end connect latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"engine"},
		),
		IntrospectedTables: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "datascout_introspected_tables",
				Help:    "Number of tables found per successful introspection",
				Buckets: []float64{1, 5, 10, 50, 100, 500, 1000},
			},
			[]string{"engine"},
		),
		IntrospectionDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "datascout_introspection_duration_seconds",
				Help:    "Catalog read time in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"engine"},
		),

		AnnotationUpdates: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datascout_annotation_updates_total",
				Help: "Total number of annotation updates by target and result",
			},
			[]string{"target", "result"},
		),
		StoreResets: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datascout_store_resets_total",
				Help: "Total number of annotation store resets by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Get returns the initialized metrics, or nil before Init
func Get() *PrometheusMetrics {
	return metrics
}

// RecordHTTPRequest records one served HTTP request
func RecordHTTPRequest(method, endpoint, status string, duration time.Duration, size int) {
	if metrics == nil {
		return
	}

	metrics.HttpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	metrics.HttpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	if size > 0 {
		metrics.HttpResponseSize.WithLabelValues(method, endpoint).Observe(float64(size))
	}
}

// RecordConnect records the outcome of one connect request
func RecordConnect(engine, outcome string, duration time.Duration) {
	if metrics == nil {
		return
	}

	metrics.ConnectTotal.WithLabelValues(engine, outcome).Inc()
	metrics.ConnectDuration.WithLabelValues(engine).Observe(duration.Seconds())
}

// RecordIntrospection records a completed catalog read
func RecordIntrospection(engine string, tables int, duration time.Duration) {
	if metrics == nil {
		return
	}

	metrics.IntrospectedTables.WithLabelValues(engine).Observe(float64(tables))
	metrics.IntrospectionDuration.WithLabelValues(engine).Observe(duration.Seconds())
}

// RecordAnnotationUpdate records one annotation write; result is "updated", "not_found" or "error"
func RecordAnnotationUpdate(target, result string) {
	if metrics == nil {
		return
	}

	metrics.AnnotationUpdates.WithLabelValues(target, result).Inc()
}

// RecordStoreReset records a reset attempt
func RecordStoreReset(outcome string) {
	if metrics == nil {
		return
	}

	metrics.StoreResets.WithLabelValues(outcome).Inc()
}
