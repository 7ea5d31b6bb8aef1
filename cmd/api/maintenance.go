package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"blog-summarizer/internal/config"
	"blog-summarizer/internal/handler/http/respond"
	"blog-summarizer/internal/infra/db"
	"blog-summarizer/internal/observability/metrics"
)

const purgeTimeout = 30 * time.Second

// startMaintenance schedules the cache purge and the rate limiter cleanup.
func startMaintenance(ctx context.Context, cfg *config.Config, logger *slog.Logger, app *application) (*cron.Cron, error) {
	c := cron.New()

	if _, err := c.AddFunc(cfg.Cache.PurgeSchedule, func() {
		runMaintenance(ctx, logger, app)
	}); err != nil {
		return nil, err
	}
	c.Start()

	logger.Info("maintenance scheduled", slog.String("schedule", cfg.Cache.PurgeSchedule))
	return c, nil
}

// runMaintenance executes one purge and cleanup pass.
func runMaintenance(ctx context.Context, logger *slog.Logger, app *application) {
	start := time.Now()

	if app.rateLimiter != nil {
		removed := app.rateLimiter.CleanupExpired()
		active := app.rateLimiter.ActiveClients()
		metrics.UpdateRateLimitClients(active)
		logger.Debug("rate limiter cleanup completed",
			slog.Int("removed", removed),
			slog.Int("active", active))
	}

	if app.database != nil {
		db.RecordPoolStats(app.database)
	}

	purgeCtx, cancel := context.WithTimeout(ctx, purgeTimeout)
	defer cancel()

	n, err := app.cache.Purge(purgeCtx)
	if err != nil {
		logger.Error("cache purge failed", slog.String("error", respond.SanitizeError(err)))
		return
	}
	logger.Info("cache purge completed",
		slog.Int64("removed", n),
		slog.Duration("duration", time.Since(start)))
}
