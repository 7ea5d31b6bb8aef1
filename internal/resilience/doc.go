// Package resilience groups the fault tolerance helpers used around the
// completion providers and the cache database.
//
//   - circuitbreaker wraps sony/gobreaker. Completion clients get one breaker
//     per provider; the PostgreSQL cache goes through DBCircuitBreaker.
//   - retry runs an operation with exponential backoff and jitter. Completion
//     calls retry only transient upstream errors, and the final aggregation
//     pass retries parse failures when FINAL_PASS_RETRIES is set.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.CompletionConfig("cerebras"))
//	completion, err := circuitbreaker.Do(cb, func() (*entity.Completion, error) {
//	    return client.Complete(ctx, prompt)
//	})
//	if errors.Is(err, circuitbreaker.ErrOpen) {
//	    // provider is failing; report 502 without calling it
//	}
//
//	err := retry.WithBackoff(ctx, retry.CompletionConfig(3), func() error {
//	    return performOperation()
//	})
package resilience
