// Package http provides the HTTP surface of the summarizer: health and info
// endpoints, metrics and the shared middleware chain.
package http

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"blog-summarizer/internal/domain/entity"
	"blog-summarizer/internal/handler/http/respond"
	"blog-summarizer/internal/infra/llm"
)

// Check states.
const (
	StatusHealthy       = "healthy"
	StatusUnhealthy     = "unhealthy"
	StatusDegraded      = "degraded"
	StatusNotConfigured = "not_configured"
)

const healthCheckTimeout = 5 * time.Second

// Pinger checks a dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the body of /health and /health/detailed.
type HealthResponse struct {
	Status       string                 `json:"status"`
	Timestamp    string                 `json:"timestamp"`
	Uptime       float64                `json:"uptime"`
	Version      string                 `json:"version"`
	Environment  string                 `json:"environment"`
	Services     map[string]CheckStatus `json:"services"`
	Warnings     []string               `json:"warnings,omitempty"`
	ResponseTime string                 `json:"responseTime"`

	GoVersion      string                `json:"goVersion,omitempty"`
	Memory         *MemoryStats          `json:"memory,omitempty"`
	LengthProfiles entity.LengthProfiles `json:"lengthProfiles,omitempty"`
}

// CheckStatus is the state of one dependency.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// MemoryStats reports heap usage in MiB.
type MemoryStats struct {
	HeapAllocMB uint64 `json:"used"`
	HeapSysMB   uint64 `json:"total"`
	SysMB       uint64 `json:"system"`
	Goroutines  int    `json:"goroutines"`
}

// HealthHandler probes the completion provider and, when one is configured,
// the cache database. Any failing probe makes the service degraded (503).
type HealthHandler struct {
	LLM          llm.Client
	Cache        Pinger
	CacheBackend string
	Version      string
	Environment  string
	Started      time.Time
	Profiles     entity.LengthProfiles

	detailed bool
}

// Detailed returns a handler that adds runtime and profile information.
func (h *HealthHandler) Detailed() http.Handler {
	d := *h
	d.detailed = true
	return &d
}

// ServeHTTP runs the checks and writes the report.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:      StatusHealthy,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Uptime:      time.Since(h.Started).Seconds(),
		Version:     h.Version,
		Environment: h.Environment,
		Services: map[string]CheckStatus{
			"llm":   h.checkLLM(ctx),
			"cache": h.checkCache(ctx),
		},
	}

	for name, check := range resp.Services {
		if check.Status == StatusUnhealthy {
			resp.Status = StatusDegraded
			resp.Warnings = append(resp.Warnings, name+" connectivity issue")
		}
	}

	if h.detailed {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		resp.GoVersion = runtime.Version()
		resp.Memory = &MemoryStats{
			HeapAllocMB: m.HeapAlloc / 1024 / 1024,
			HeapSysMB:   m.HeapSys / 1024 / 1024,
			SysMB:       m.Sys / 1024 / 1024,
			Goroutines:  runtime.NumGoroutine(),
		}
		resp.LengthProfiles = h.Profiles
	}

	resp.ResponseTime = formatMillis(time.Since(start))

	code := http.StatusOK
	if resp.Status != StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, resp)
}

func (h *HealthHandler) checkLLM(ctx context.Context) CheckStatus {
	if h.LLM == nil {
		return CheckStatus{Status: StatusUnhealthy, Message: "not configured"}
	}

	details := map[string]any{
		"provider":     h.LLM.Provider(),
		"model":        h.LLM.Model(),
		"circuit_open": h.LLM.CircuitOpen(),
	}
	if err := llm.Ping(ctx, h.LLM); err != nil {
		return CheckStatus{
			Status:  StatusUnhealthy,
			Message: respond.SanitizeError(err),
			Details: details,
		}
	}
	return CheckStatus{Status: StatusHealthy, Details: details}
}

func (h *HealthHandler) checkCache(ctx context.Context) CheckStatus {
	details := map[string]any{"backend": h.CacheBackend}
	if h.Cache == nil {
		return CheckStatus{Status: StatusNotConfigured, Details: details}
	}
	if err := h.Cache.Ping(ctx); err != nil {
		return CheckStatus{
			Status:  StatusUnhealthy,
			Message: respond.SanitizeError(err),
			Details: details,
		}
	}
	return CheckStatus{Status: StatusHealthy, Details: details}
}

// ReadyHandler is the readiness probe. It fails while the provider circuit is open.
type ReadyHandler struct {
	LLM llm.Client
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if h.LLM == nil || h.LLM.CircuitOpen() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// LiveHandler is the liveness probe and always answers 200.
type LiveHandler struct{}

func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}

func formatMillis(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}
