package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"blog-summarizer/internal/domain/entity"
	"blog-summarizer/internal/observability/metrics"
	"blog-summarizer/internal/resilience/circuitbreaker"
)

// Postgres keeps summaries in the summary_cache table so that every
// replica shares them and they survive restarts.
type Postgres struct {
	db  *circuitbreaker.DBCircuitBreaker
	ttl time.Duration
	now func() time.Time
}

// NewPostgres wraps db with the database circuit breaker.
func NewPostgres(db *sql.DB, ttl time.Duration) *Postgres {
	return &Postgres{
		db:  circuitbreaker.NewDBCircuitBreaker(db),
		ttl: ttl,
		now: time.Now,
	}
}

// Get loads the summary stored under key unless it has expired.
func (c *Postgres) Get(ctx context.Context, key string) (*entity.AggregateResult, bool, error) {
	const query = `SELECT payload FROM summary_cache WHERE cache_key = $1 AND expires_at > $2`

	start := time.Now()
	var payload []byte
	err := c.db.QueryRowScan(ctx, query, []any{key, c.now()}, &payload)
	metrics.RecordDBQuery("cache_get", time.Since(start))

	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordCacheResult(BackendPostgres, "miss")
		return nil, false, nil
	}
	if err != nil {
		metrics.RecordCacheResult(BackendPostgres, "error")
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var rec record
	if err := json.Unmarshal(payload, &rec); err != nil {
		metrics.RecordCacheResult(BackendPostgres, "error")
		return nil, false, fmt.Errorf("cache get: decode payload: %w", err)
	}

	metrics.RecordCacheResult(BackendPostgres, "hit")
	return rec.result(), true, nil
}

// Set upserts res under key with a fresh expiry.
func (c *Postgres) Set(ctx context.Context, key string, res *entity.AggregateResult) error {
	const query = `
INSERT INTO summary_cache (cache_key, length, payload, expires_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (cache_key) DO UPDATE
SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at, created_at = now()`

	if key == "" || res == nil {
		return nil
	}
	payload, err := json.Marshal(toRecord(res))
	if err != nil {
		return fmt.Errorf("cache set: encode payload: %w", err)
	}

	start := time.Now()
	_, err = c.db.ExecContext(ctx, query, key, string(res.Length), payload, c.now().Add(c.ttl))
	metrics.RecordDBQuery("cache_set", time.Since(start))
	if err != nil {
		metrics.RecordCacheResult(BackendPostgres, "error")
		return fmt.Errorf("cache set: %w", err)
	}

	metrics.RecordCacheResult(BackendPostgres, "store")
	return nil
}

// Purge deletes expired rows and reports how many were removed.
func (c *Postgres) Purge(ctx context.Context) (int64, error) {
	const query = `DELETE FROM summary_cache WHERE expires_at <= $1`

	start := time.Now()
	res, err := c.db.ExecContext(ctx, query, c.now())
	metrics.RecordDBQuery("cache_purge", time.Since(start))
	if err != nil {
		return 0, fmt.Errorf("cache purge: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cache purge: %w", err)
	}
	metrics.RecordCachePurged(BackendPostgres, n)
	return n, nil
}

// Ping checks the database through the breaker.
func (c *Postgres) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
