package http

import (
	"log/slog"
	"net/http"
	"time"

	"blog-summarizer/internal/handler/http/respond"
	"blog-summarizer/internal/observability/logging"
)

// ServiceName is reported by the info endpoints.
const ServiceName = "Blog Summarizer API"

// InfoHandler serves GET / and GET /api.
type InfoHandler struct {
	Version         string
	MinTextLength   int
	MaxTextLength   int
	RateLimitWindow time.Duration
	RateLimitMax    int
}

type endpointInfo struct {
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Description string            `json:"description"`
	Body        map[string]string `json:"body,omitempty"`
}

type apiInfo struct {
	Name        string                  `json:"name"`
	Version     string                  `json:"version"`
	Description string                  `json:"description"`
	Endpoints   map[string]endpointInfo `json:"endpoints"`
	Limits      apiLimits               `json:"limits"`
}

type apiLimits struct {
	TextLength struct {
		Min int `json:"min"`
		Max int `json:"max"`
	} `json:"textLength"`
	RateLimit struct {
		WindowMs    int64 `json:"windowMs"`
		MaxRequests int   `json:"maxRequests"`
	} `json:"rateLimit"`
}

// Root answers GET /.
func (h *InfoHandler) Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFound(w, r)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": ServiceName,
		"version": h.Version,
		"endpoints": map[string]string{
			"health":    "/health",
			"summarize": "POST /api/summarize",
			"metrics":   "/metrics",
		},
	})
}

// API answers GET /api with the endpoint catalogue and active limits.
func (h *InfoHandler) API(w http.ResponseWriter, r *http.Request) {
	info := apiInfo{
		Name:        ServiceName,
		Version:     h.Version,
		Description: "AI-powered blog summarization service",
		Endpoints: map[string]endpointInfo{
			"health": {
				Method:      http.MethodGet,
				Path:        "/health",
				Description: "Health check and service status",
			},
			"summarize": {
				Method:      http.MethodPost,
				Path:        "/api/summarize",
				Description: "Summarize text content",
				Body: map[string]string{
					"text":   "string (50-15000 characters)",
					"length": "string (short|medium|long)",
					"format": "string (text|html)",
				},
			},
		},
	}
	info.Limits.TextLength.Min = h.MinTextLength
	info.Limits.TextLength.Max = h.MaxTextLength
	info.Limits.RateLimit.WindowMs = h.RateLimitWindow.Milliseconds()
	info.Limits.RateLimit.MaxRequests = h.RateLimitMax

	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "api": info})
}

// NotFound writes the 404 envelope for unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	logging.FromContext(r.Context()).WarnContext(r.Context(), "route not found",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("remote_addr", r.RemoteAddr))

	respond.Write(w, r, respond.ErrorBody{
		Status:  http.StatusNotFound,
		Message: "Route not found",
		Path:    r.URL.Path,
	})
}
