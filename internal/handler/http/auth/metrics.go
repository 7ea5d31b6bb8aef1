package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// authRequestsTotal counts bearer token checks by result.
	authRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_requests_total",
			Help: "Total bearer token validations by result",
		},
		[]string{"result"}, // result: success | failure
	)

	// authDuration tracks token validation latency.
	authDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "auth_duration_seconds",
			Help:    "Bearer token validation duration",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
	)
)

func recordAuth(result string, durationSeconds float64) {
	authRequestsTotal.WithLabelValues(result).Inc()
	authDuration.Observe(durationSeconds)
}
