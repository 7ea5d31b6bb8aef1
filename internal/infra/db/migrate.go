package db

import (
	"context"
	"database/sql"
)

// MigrateUp creates the summary cache schema. Every statement is idempotent.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS summary_cache (
    cache_key   CHAR(64) PRIMARY KEY,
    length      VARCHAR(10) NOT NULL,
    payload     JSONB NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    expires_at  TIMESTAMPTZ NOT NULL
)`); err != nil {
		return err
	}

	indexes := []string{
		// purge and lookups both filter on expiry
		`CREATE INDEX IF NOT EXISTS idx_summary_cache_expires_at ON summary_cache(expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_summary_cache_length ON summary_cache(length)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
