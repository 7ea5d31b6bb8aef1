package main

import (
	"log/slog"
	"net/http"
	"time"

	"blog-summarizer/internal/config"
	hhttp "blog-summarizer/internal/handler/http"
	"blog-summarizer/internal/handler/http/auth"
	"blog-summarizer/internal/handler/http/middleware"
	"blog-summarizer/internal/handler/http/requestid"
	hsummarize "blog-summarizer/internal/handler/http/summarize"
	"blog-summarizer/internal/observability/tracing"
)

// newHandler registers every route and wraps the mux in the middleware chain.
func newHandler(cfg *config.Config, logger *slog.Logger, svc hsummarize.Summarizer, app *application) http.Handler {
	mux := http.NewServeMux()

	info := &hhttp.InfoHandler{
		Version:         cfg.Version,
		MinTextLength:   cfg.Pipeline.TextMinLength,
		MaxTextLength:   cfg.Pipeline.TextMaxLength,
		RateLimitWindow: cfg.HTTP.RateLimitWindow,
		RateLimitMax:    cfg.HTTP.RateLimitMax,
	}
	mux.HandleFunc("/", info.Root)
	mux.HandleFunc("GET /api", info.API)

	hsummarize.Register(mux, hsummarize.Handler{
		Svc:       svc,
		MinLength: cfg.Pipeline.TextMinLength,
		MaxLength: cfg.Pipeline.TextMaxLength,
		Model:     cfg.LLM.Model,
	},
		auth.Middleware([]byte(cfg.HTTP.JWTSecret)),
		hhttp.Timeout(cfg.Pipeline.Timeout),
	)

	health := &hhttp.HealthHandler{
		LLM:          app.client,
		CacheBackend: cfg.Cache.Backend,
		Version:      cfg.Version,
		Environment:  cfg.AppEnv,
		Started:      time.Now(),
		Profiles:     cfg.Pipeline.Profiles,
	}
	if pinger, ok := app.cache.(hhttp.Pinger); ok {
		health.Cache = pinger
	}
	mux.Handle("GET /health", health)
	mux.Handle("GET /health/detailed", health.Detailed())
	mux.Handle("GET /health/live", &hhttp.LiveHandler{})
	mux.Handle("GET /health/ready", &hhttp.ReadyHandler{LLM: app.client})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	// Applied innermost first; CORS ends up outermost.
	var h http.Handler = mux
	h = hhttp.MetricsMiddleware(h)
	h = hhttp.LimitRequestBody(cfg.HTTP.MaxBodyBytes)(h)
	h = hhttp.Logging(logger)(h)
	h = hhttp.Recover(logger)(h)
	h = app.rateLimiter.Middleware(h)
	h = tracing.Middleware(h)
	h = requestid.Middleware(h)
	h = middleware.CORS(middleware.DefaultCORSConfig(cfg.HTTP.FrontendOrigin))(h)
	return h
}
