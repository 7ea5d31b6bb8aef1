package circuitbreaker

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// DBCircuitBreaker wraps a database handle so that an unreachable cache
// database fails fast instead of stalling every summarization request.
type DBCircuitBreaker struct {
	cb *CircuitBreaker
	db *sql.DB
}

// DBConfig opens when every one of at least five calls in a minute failed
// and probes again after 30 seconds. Cache misses are healthy.
func DBConfig() Config {
	return Config{
		Name:      "cache-database",
		TripRatio: 1.0,
		MinCalls:  5,
		Window:    time.Minute,
		Cooldown:  30 * time.Second,
		Probes:    3,
		Healthy: func(err error) bool {
			return err == nil || errors.Is(err, sql.ErrNoRows)
		},
	}
}

// NewDBCircuitBreaker wraps db with DBConfig.
func NewDBCircuitBreaker(db *sql.DB) *DBCircuitBreaker {
	return NewDBCircuitBreakerWithConfig(db, DBConfig())
}

// NewDBCircuitBreakerWithConfig wraps db with a custom configuration.
func NewDBCircuitBreakerWithConfig(db *sql.DB, cfg Config) *DBCircuitBreaker {
	return &DBCircuitBreaker{cb: New(cfg), db: db}
}

// ExecContext executes a statement with circuit breaker protection.
func (dcb *DBCircuitBreaker) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return Do(dcb.cb, func() (sql.Result, error) {
		return dcb.db.ExecContext(ctx, query, args...)
	})
}

// QueryRowScan runs a single-row query and scans it into dest inside the
// breaker, so that row errors count against the circuit. sql.ErrNoRows is
// returned as is and does not count as a failure.
func (dcb *DBCircuitBreaker) QueryRowScan(ctx context.Context, query string, args []any, dest ...any) error {
	_, err := Do(dcb.cb, func() (struct{}, error) {
		return struct{}{}, dcb.db.QueryRowContext(ctx, query, args...).Scan(dest...)
	})
	return err
}

// PingContext checks connectivity with circuit breaker protection.
func (dcb *DBCircuitBreaker) PingContext(ctx context.Context) error {
	_, err := Do(dcb.cb, func() (struct{}, error) {
		return struct{}{}, dcb.db.PingContext(ctx)
	})
	return err
}

// State returns the current state of the circuit breaker.
func (dcb *DBCircuitBreaker) State() gobreaker.State {
	return dcb.cb.State()
}

// IsOpen returns true if the circuit breaker is in the open state.
func (dcb *DBCircuitBreaker) IsOpen() bool {
	return dcb.cb.IsOpen()
}
