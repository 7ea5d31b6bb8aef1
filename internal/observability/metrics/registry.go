// Package metrics holds the service's Prometheus collectors. All of them are
// registered with the default registry and served on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration buckets span fast health checks up to multi-chunk
	// summaries that approach the pipeline timeout.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 4, 8),
		},
		[]string{"method", "path"},
	)

	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 4, 8),
		},
		[]string{"method", "path"},
	)

	RateLimitRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limit_rejections_total",
			Help: "Requests rejected by the per-client rate limiter",
		},
	)

	RateLimitActiveClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_rate_limit_active_clients",
			Help: "Client IPs currently tracked by the rate limiter",
		},
	)
)

// Summarization metrics
var (
	// SummarizeRequestsTotal counts pipeline runs. outcome is success,
	// fallback, cached, invalid_input or an upstream error kind.
	SummarizeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summarize_requests_total",
			Help: "Total number of summarization pipeline runs",
		},
		[]string{"outcome", "length"},
	)

	SummarizeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "summarize_duration_seconds",
			Help:    "Time taken by the summarization pipeline",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
		[]string{"length"},
	)

	SummarizeChunks = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "summarize_chunks",
			Help:    "Number of chunks processed per pipeline run",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10},
		},
	)

	SummarizeFallbackTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "summarize_fallback_total",
			Help: "Pipeline runs answered with the fallback summary",
		},
	)

	// SummarizeTextLength observes text size in characters at stage
	// original (as submitted) and cleaned (after normalization and dedup).
	SummarizeTextLength = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "summarize_text_length_chars",
			Help:    "Submitted and cleaned text length in characters",
			Buckets: []float64{100, 250, 500, 1000, 2000, 4000, 8000, 15000, 30000},
		},
		[]string{"stage"},
	)
)

// Cache metrics
var (
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_cache_operations_total",
			Help: "Summary cache lookups and writes by result",
		},
		[]string{"backend", "result"}, // result: hit, miss, store, error
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "summary_cache_entries",
			Help: "Entries currently held by the summary cache",
		},
		[]string{"backend"},
	)

	CachePurgedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_cache_purged_total",
			Help: "Expired entries removed from the summary cache",
		},
		[]string{"backend"},
	)
)

// CircuitBreakerState is 0 while closed, 1 while half-open and 2 while open.
var CircuitBreakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
	},
	[]string{"circuit"},
)

// Database metrics
var (
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, requestSize, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	}
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}
