package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"blog-summarizer/internal/handler/http/respond"
	"blog-summarizer/internal/observability/metrics"
)

// RateLimitMessage is returned with every 429.
const RateLimitMessage = "Too many requests from this IP, please try again later"

// RateLimiter gives every client IP a token bucket holding max requests that
// refills over window.
type RateLimiter struct {
	max         int
	window      time.Duration
	ipExtractor IPExtractor
	now         func() time.Time

	mu      sync.Mutex
	clients map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows max requests per window for each client IP.
func NewRateLimiter(max int, window time.Duration, ipExtractor IPExtractor) *RateLimiter {
	return &RateLimiter{
		max:         max,
		window:      window,
		ipExtractor: ipExtractor,
		now:         time.Now,
		clients:     make(map[string]*clientLimiter),
	}
}

// Middleware rejects requests over the limit with a 429 envelope carrying
// retryAfter in seconds.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, err := rl.ipExtractor.ExtractIP(r)
		if err != nil {
			slog.Warn("rate limiter: IP extraction failed, using raw RemoteAddr",
				slog.String("error", err.Error()),
				slog.String("remote_addr", r.RemoteAddr),
			)
			ip = r.RemoteAddr
		}

		allowed, remaining := rl.allow(ip)
		w.Header().Set("RateLimit-Limit", strconv.Itoa(rl.max))
		w.Header().Set("RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			retryAfter := rl.retryAfterSeconds()
			metrics.RecordRateLimitRejection()
			slog.Warn("rate limit exceeded",
				slog.String("ip", ip),
				slog.String("path", r.URL.Path),
				slog.String("user_agent", r.Header.Get("User-Agent")),
			)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			respond.Write(w, r, respond.ErrorBody{
				Status:     http.StatusTooManyRequests,
				Message:    RateLimitMessage,
				RetryAfter: retryAfter,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allow takes one token from ip's bucket and reports the whole tokens left.
func (rl *RateLimiter) allow(ip string) (bool, int) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.refillRate(), rl.max)}
		rl.clients[ip] = c
	}
	c.lastSeen = now

	allowed := c.limiter.AllowN(now, 1)
	remaining := int(math.Max(0, math.Floor(c.limiter.TokensAt(now))))
	return allowed, remaining
}

func (rl *RateLimiter) refillRate() rate.Limit {
	if rl.window <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(rl.max) / rl.window.Seconds())
}

func (rl *RateLimiter) retryAfterSeconds() int {
	return int(math.Ceil(rl.window.Seconds()))
}

// CleanupExpired drops clients idle for longer than a window. Their buckets
// would be full again, so forgetting them changes nothing.
func (rl *RateLimiter) CleanupExpired() int {
	cutoff := rl.now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for ip, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
			removed++
		}
	}

	slog.Debug("rate limiter: cleanup completed",
		slog.Int("removed", removed),
		slog.Int("active_ips", len(rl.clients)),
	)
	return removed
}

// ActiveClients is the number of tracked client IPs.
func (rl *RateLimiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}
