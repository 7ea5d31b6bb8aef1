// Package requestid assigns every HTTP request an identifier that is echoed
// in the response, stored in the request context and attached to logs and
// error envelopes.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const (
	// RequestIDKey is the context key for storing request IDs.
	RequestIDKey contextKey = "request_id"
	// RequestIDHeader is the header the ID is read from and written to.
	RequestIDHeader = "X-Request-ID"
	// CorrelationIDHeader is accepted as an alternative inbound header.
	CorrelationIDHeader = "X-Correlation-ID"

	maxInboundLength = 128
)

// FromContext retrieves the request ID from the context.
// Returns an empty string if no request ID is found.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// Middleware reuses an inbound X-Request-ID or X-Correlation-ID when it is
// well formed and otherwise generates a UUID v4.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := inbound(r)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), requestID)))
	})
}

func inbound(r *http.Request) string {
	for _, h := range []string{RequestIDHeader, CorrelationIDHeader} {
		if id := r.Header.Get(h); valid(id) {
			return id
		}
	}
	return ""
}

// valid accepts printable ASCII without spaces, so client IDs cannot
// inject content into headers or log lines.
func valid(id string) bool {
	if id == "" || len(id) > maxInboundLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}
