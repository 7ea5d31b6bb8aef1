package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog-summarizer/internal/config"
	"blog-summarizer/internal/handler/http/middleware"
	"blog-summarizer/internal/infra/cache"
	"blog-summarizer/internal/infra/db"
	"blog-summarizer/internal/infra/extractor"
	"blog-summarizer/internal/infra/llm"
	"blog-summarizer/internal/observability/logging"
	"blog-summarizer/internal/observability/tracing"
	"blog-summarizer/internal/prompt"
	"blog-summarizer/internal/usecase/summarize"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	shutdownTracing := tracing.Init("blog-summarizer-api", cfg.TraceSampleRatio)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", slog.Any("error", err))
		os.Exit(1)
	}
	defer app.close()

	if err := run(ctx, cfg, logger, app); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		logger.Error("tracer shutdown failed", slog.Any("error", err))
	}
}

// application is everything main keeps alive for the lifetime of the server.
type application struct {
	handler     http.Handler
	client      llm.Client
	cache       purgeableCache
	database    *sql.DB
	rateLimiter *middleware.RateLimiter
}

// purgeableCache is a summarize.Cache whose expired entries can be dropped.
type purgeableCache interface {
	summarize.Cache
	Purge(ctx context.Context) (int64, error)
}

func (a *application) close() {
	if a.database == nil {
		return
	}
	if err := a.database.Close(); err != nil {
		slog.Error("failed to close database", slog.Any("error", err))
	}
}

// build wires the pipeline and the HTTP surface from cfg.
func build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	client, err := llm.New(cfg.LLMClientConfig(), llm.NewPrometheusMetrics())
	if err != nil {
		return nil, err
	}
	logger.Info("completion provider configured",
		slog.String("provider", client.Provider()),
		slog.String("model", client.Model()))

	app := &application{client: client}

	switch cfg.Cache.Backend {
	case config.CacheNone:
		app.cache = cache.Noop{}
	case config.CacheMemory:
		app.cache = cache.NewMemory(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	case config.CachePostgres:
		database, err := db.Open(ctx, cfg.Cache.DatabaseURL, cfg.DBConnectionConfig())
		if err != nil {
			return nil, err
		}
		if err := db.MigrateUp(ctx, database); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		app.database = database
		app.cache = cache.NewPostgres(database, cfg.Cache.TTL)
	}
	logger.Info("summary cache configured",
		slog.String("backend", cfg.Cache.Backend),
		slog.Duration("ttl", cfg.Cache.TTL))

	svc := summarize.NewService(client, prompt.NewBuilder(cfg.Pipeline.Profiles), summarize.Config{
		MinLength:        cfg.Pipeline.TextMinLength,
		MaxLength:        cfg.Pipeline.TextMaxLength,
		ChunkSize:        cfg.Pipeline.ChunkSize,
		Parallelism:      cfg.Pipeline.ChunkParallelism,
		FinalPassRetries: cfg.Pipeline.FinalPassRetries,
		Model:            cfg.LLM.Model,
	}, summarize.WithExtractor(extractor.New(0)), summarize.WithCache(app.cache))

	proxies, err := middleware.ParseTrustedProxies(cfg.HTTP.TrustProxy, cfg.HTTP.TrustedProxies)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}
	if proxies.Enabled {
		logger.Info("rate limiting: trusted proxy mode enabled",
			slog.Int("trusted_proxies_count", len(proxies.AllowedCIDRs)))
	}
	app.rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitMax, cfg.HTTP.RateLimitWindow, middleware.NewIPExtractor(proxies))

	app.handler = newHandler(cfg, logger, svc, app)
	return app, nil
}

// run serves until ctx is cancelled and then drains in-flight requests.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, app *application) error {
	scheduler, err := startMaintenance(ctx, cfg, logger, app)
	if err != nil {
		return err
	}
	defer func() { <-scheduler.Stop().Done() }()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.Addr()),
			slog.String("version", cfg.Version),
			slog.String("environment", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
