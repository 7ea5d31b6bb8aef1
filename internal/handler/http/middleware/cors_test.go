package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corsHandler(t *testing.T, called *bool) http.Handler {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
	return CORS(DefaultCORSConfig("http://localhost:3000"))(next)
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig(" https://a.example/ , https://b.example ,")

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, []string{"GET", "POST", "OPTIONS"}, cfg.AllowedMethods)
	assert.Equal(t, []string{"Content-Type", "Authorization", "X-Request-ID"}, cfg.AllowedHeaders)
	assert.Equal(t, 86400, cfg.MaxAge)
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		origin      string
		wantStatus  int
		wantOrigin  string
		wantNext    bool
		wantMethods string
	}{
		{
			name:        "preflight from allowed origin",
			method:      http.MethodOptions,
			origin:      "http://localhost:3000",
			wantStatus:  http.StatusNoContent,
			wantOrigin:  "http://localhost:3000",
			wantMethods: "GET, POST, OPTIONS",
		},
		{
			name:       "actual request from allowed origin",
			method:     http.MethodPost,
			origin:     "http://localhost:3000",
			wantStatus: http.StatusOK,
			wantOrigin: "http://localhost:3000",
			wantNext:   true,
		},
		{
			name:       "disallowed origin passes through without headers",
			method:     http.MethodPost,
			origin:     "https://evil.example",
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
		{
			name:       "preflight from disallowed origin reaches next",
			method:     http.MethodOptions,
			origin:     "https://evil.example",
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
		{
			name:       "same origin request",
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			h := corsHandler(t, &called)

			req := httptest.NewRequest(tt.method, "/api/summarize", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantNext, called)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantMethods, rec.Header().Get("Access-Control-Allow-Methods"))
			if tt.wantOrigin != "" {
				assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
				assert.Equal(t, "Origin", rec.Header().Get("Vary"))
			} else {
				assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}

func TestCORS_PreflightHeaders(t *testing.T) {
	var called bool
	h := corsHandler(t, &called)

	req := httptest.NewRequest(http.MethodOptions, "/api/summarize", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "Content-Type, Authorization, X-Request-ID", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, rec.Body.String())
}
