package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-summarizer/internal/observability/metrics"
)

type mockIPExtractor struct {
	ip  string
	err error
}

func (m *mockIPExtractor) ExtractIP(r *http.Request) (string, error) {
	return m.ip, m.err
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(max int, window time.Duration, ex IPExtractor) (*RateLimiter, *testClock) {
	clock := &testClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(max, window, ex)
	rl.now = clock.now
	return rl, clock
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serve(h http.Handler) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/summarize", nil))
	return rec
}

/* ───────── Limits ───────── */

func TestRateLimiter_AllowsUpToMaxThenBlocks(t *testing.T) {
	rl, _ := newTestLimiter(3, time.Minute, &mockIPExtractor{ip: "192.168.1.1"})
	handler := rl.Middleware(okHandler())

	for i := 0; i < 3; i++ {
		rec := serve(handler)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
		assert.Equal(t, "3", rec.Header().Get("RateLimit-Limit"))
		assert.Equal(t, fmt.Sprint(2-i), rec.Header().Get("RateLimit-Remaining"))
	}

	before := testutil.ToFloat64(metrics.RateLimitRejectionsTotal)
	rec := serve(handler)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RateLimitRejectionsTotal))

	var env struct {
		Success bool `json:"success"`
		Error   struct {
			Message    string `json:"message"`
			Status     int    `json:"status"`
			RetryAfter int    `json:"retryAfter"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, RateLimitMessage, env.Error.Message)
	assert.Equal(t, http.StatusTooManyRequests, env.Error.Status)
	assert.Equal(t, 60, env.Error.RetryAfter)
}

func TestRateLimiter_RetryAfterRoundsUp(t *testing.T) {
	rl, _ := newTestLimiter(1, 1500*time.Millisecond, &mockIPExtractor{ip: "1.1.1.1"})
	handler := rl.Middleware(okHandler())

	serve(handler)
	rec := serve(handler)

	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
}

func TestRateLimiter_RefillsOverWindow(t *testing.T) {
	rl, clock := newTestLimiter(2, time.Minute, &mockIPExtractor{ip: "192.168.1.1"})
	handler := rl.Middleware(okHandler())

	assert.Equal(t, http.StatusOK, serve(handler).Code)
	assert.Equal(t, http.StatusOK, serve(handler).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(handler).Code)

	// one token every 30s
	clock.advance(30 * time.Second)
	assert.Equal(t, http.StatusOK, serve(handler).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(handler).Code)

	clock.advance(time.Minute)
	assert.Equal(t, http.StatusOK, serve(handler).Code)
	assert.Equal(t, http.StatusOK, serve(handler).Code)
}

func TestRateLimiter_DifferentIPsIndependent(t *testing.T) {
	extractor := &RemoteAddrExtractor{}
	rl, _ := newTestLimiter(1, time.Minute, extractor)
	handler := rl.Middleware(okHandler())

	for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1", "10.0.0.3:1"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, addr)
	}
	assert.Equal(t, 3, rl.ActiveClients())
}

func TestRateLimiter_IPExtractorErrorUsesRemoteAddr(t *testing.T) {
	rl, _ := newTestLimiter(1, time.Minute, &mockIPExtractor{err: errors.New("boom")})
	handler := rl.Middleware(okHandler())

	assert.Equal(t, http.StatusOK, serve(handler).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(handler).Code)
}

/* ───────── Cleanup ───────── */

func TestRateLimiter_CleanupExpired(t *testing.T) {
	extractor := &mockIPExtractor{ip: "10.0.0.1"}
	rl, clock := newTestLimiter(5, time.Minute, extractor)
	handler := rl.Middleware(okHandler())

	serve(handler)
	clock.advance(45 * time.Second)
	extractor.ip = "10.0.0.2"
	serve(handler)
	clock.advance(30 * time.Second)

	assert.Equal(t, 1, rl.CleanupExpired())
	assert.Equal(t, 1, rl.ActiveClients())
}

/* ───────── Concurrency ───────── */

func TestRateLimiter_ConcurrentRequests(t *testing.T) {
	rl := NewRateLimiter(50, time.Hour, &mockIPExtractor{ip: "10.0.0.1"})
	handler := rl.Middleware(okHandler())

	var ok, limited atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if serve(handler).Code == http.StatusOK {
				ok.Add(1)
			} else {
				limited.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(50), ok.Load())
	assert.Equal(t, int32(50), limited.Load())
}
