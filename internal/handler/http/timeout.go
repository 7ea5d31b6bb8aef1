package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"blog-summarizer/internal/handler/http/respond"
)

// Timeout bounds the handler with a deadline. When it expires first, the
// client gets a 408 envelope and later writes from the handler are dropped.
// The handler sees the canceled context and is expected to stop.
func Timeout(duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), duration)
			defer cancel()
			r = r.WithContext(ctx)

			done := make(chan struct{})
			panicked := make(chan any, 1)
			tw := &timeoutResponseWriter{w: w, h: make(http.Header)}

			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
					}
				}()
				next.ServeHTTP(tw, r)
				close(done)
			}()

			select {
			case <-done:
			case p := <-panicked:
				// re-raise on the serving goroutine so Recover sees it
				panic(p)
			case <-ctx.Done():
				tw.mu.Lock()
				tw.timedOut = true
				written := tw.wroteHeader
				tw.mu.Unlock()
				if !written {
					respond.Failure(w, r, http.StatusRequestTimeout, "Request timeout", nil)
					return
				}
				// the handler already owns the response; let it finish
				select {
				case <-done:
				case p := <-panicked:
					panic(p)
				}
			}
		})
	}
}

// timeoutResponseWriter gives the handler a private header map. Headers reach
// the real writer only when the handler commits a status before the deadline,
// so the handler goroutine never touches w.Header() after a timeout.
type timeoutResponseWriter struct {
	w           http.ResponseWriter
	h           http.Header
	mu          sync.Mutex
	timedOut    bool
	wroteHeader bool
}

func (tw *timeoutResponseWriter) Header() http.Header { return tw.h }

func (tw *timeoutResponseWriter) WriteHeader(statusCode int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.commitLocked(statusCode)
}

func (tw *timeoutResponseWriter) Write(data []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	tw.commitLocked(http.StatusOK)
	return tw.w.Write(data)
}

func (tw *timeoutResponseWriter) commitLocked(statusCode int) {
	if tw.timedOut || tw.wroteHeader {
		return
	}
	tw.wroteHeader = true
	dst := tw.w.Header()
	for k, vv := range tw.h {
		dst[k] = vv
	}
	tw.w.WriteHeader(statusCode)
}
