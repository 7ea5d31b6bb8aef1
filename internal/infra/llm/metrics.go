package llm

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRecorder receives one observation per completion attempt.
type MetricsRecorder interface {
	// RecordRequest records the outcome label and latency of one attempt.
	RecordRequest(provider, outcome string, duration time.Duration)

	// RecordTokens records the token usage reported by the provider.
	RecordTokens(provider string, tokens int)
}

// NoopMetrics discards all observations.
type NoopMetrics struct{}

func (NoopMetrics) RecordRequest(string, string, time.Duration) {}
func (NoopMetrics) RecordTokens(string, int)                    {}

// PrometheusMetrics implements MetricsRecorder with Prometheus collectors.
type PrometheusMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	tokens   *prometheus.CounterVec
}

var (
	prometheusMetricsInstance *PrometheusMetrics
	prometheusMetricsOnce     sync.Once
)

// registerOrExisting returns the already registered collector when c was registered before.
func registerOrExisting[C prometheus.Collector](c C) C {
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// NewPrometheusMetrics returns the process-wide recorder, registering it on first use.
func NewPrometheusMetrics() *PrometheusMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusMetrics{
			requests: registerOrExisting(prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "llm_completion_requests_total",
				Help: "Completion attempts by provider and outcome",
			}, []string{"provider", "outcome"})),
			duration: registerOrExisting(prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "llm_completion_duration_seconds",
				Help:    "Latency of completion attempts",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 9),
			}, []string{"provider", "outcome"})),
			tokens: registerOrExisting(prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "llm_completion_tokens_total",
				Help: "Tokens reported by the provider",
			}, []string{"provider"})),
		}
	})
	return prometheusMetricsInstance
}

// RecordRequest implements MetricsRecorder.
func (p *PrometheusMetrics) RecordRequest(provider, outcome string, duration time.Duration) {
	p.requests.WithLabelValues(provider, outcome).Inc()
	p.duration.WithLabelValues(provider, outcome).Observe(duration.Seconds())
}

// RecordTokens implements MetricsRecorder.
func (p *PrometheusMetrics) RecordTokens(provider string, tokens int) {
	if tokens > 0 {
		p.tokens.WithLabelValues(provider).Add(float64(tokens))
	}
}
