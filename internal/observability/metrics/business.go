package metrics

import (
	"time"
)

// RecordSummarization records the outcome and latency of one pipeline run.
func RecordSummarization(outcome, length string, duration time.Duration) {
	SummarizeRequestsTotal.WithLabelValues(outcome, length).Inc()
	SummarizeDuration.WithLabelValues(length).Observe(duration.Seconds())
}

// RecordChunks records how many chunks a run split its text into.
func RecordChunks(n int) {
	if n > 0 {
		SummarizeChunks.Observe(float64(n))
	}
}

// RecordFallback counts a run that returned the fallback summary.
func RecordFallback() {
	SummarizeFallbackTotal.Inc()
}

// RecordTextLengths records the submitted and cleaned sizes of one input.
func RecordTextLengths(original, cleaned int) {
	SummarizeTextLength.WithLabelValues("original").Observe(float64(original))
	SummarizeTextLength.WithLabelValues("cleaned").Observe(float64(cleaned))
}

// RecordCacheResult counts a cache hit, miss, store or error.
func RecordCacheResult(backend, result string) {
	CacheOperationsTotal.WithLabelValues(backend, result).Inc()
}

// UpdateCacheEntries sets the current entry count of a cache backend.
func UpdateCacheEntries(backend string, n int) {
	CacheEntries.WithLabelValues(backend).Set(float64(n))
}

// RecordCachePurged counts entries removed by an expiry sweep.
func RecordCachePurged(backend string, n int64) {
	if n > 0 {
		CachePurgedTotal.WithLabelValues(backend).Add(float64(n))
	}
}

// RecordRateLimitRejection counts one request turned away with 429.
func RecordRateLimitRejection() {
	RateLimitRejectionsTotal.Inc()
}

// UpdateRateLimitClients sets the tracked client gauge.
func UpdateRateLimitClients(n int) {
	RateLimitActiveClients.Set(float64(n))
}

// UpdateCircuitState publishes the state of the named breaker.
func UpdateCircuitState(circuit string, state int) {
	CircuitBreakerState.WithLabelValues(circuit).Set(float64(state))
}

// RecordDBQuery records the duration of a database query.
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates the database connection pool gauges.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
