// Package circuitbreaker stops calling a completion provider or the cache
// database once it keeps failing, and lets a few probes through after a
// cooldown. It is built on github.com/sony/gobreaker.
package circuitbreaker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"blog-summarizer/internal/observability/metrics"
)

// ErrOpen is returned by Do when the breaker refuses a call. The underlying
// gobreaker error stays in the chain.
var ErrOpen = errors.New("circuit breaker open")

// Config decides when a breaker opens and how it recovers.
type Config struct {
	// Name labels logs and the circuit_breaker_state gauge.
	Name string

	// TripRatio opens the breaker once this share of the calls counted in
	// Window failed. MinCalls is the sample size it needs first.
	TripRatio float64
	MinCalls  uint32

	// Window resets the closed-state counts.
	Window time.Duration

	// Cooldown is how long the breaker stays open before half-opening.
	Cooldown time.Duration

	// Probes is how many calls a half-open breaker lets through.
	Probes uint32

	// Healthy reports errors that say nothing about the dependency, such as a
	// rejected prompt or a cache miss. Nil counts every error.
	Healthy func(err error) bool
}

// CompletionConfig opens a provider's breaker when 60% of at least five
// calls in 30s failed, and probes again after a minute.
func CompletionConfig(provider string) Config {
	return Config{
		Name:      provider + "-completion",
		TripRatio: 0.6,
		MinCalls:  5,
		Window:    30 * time.Second,
		Cooldown:  time.Minute,
		Probes:    3,
	}
}

// CircuitBreaker guards a single dependency.
type CircuitBreaker struct {
	gb   *gobreaker.CircuitBreaker
	name string
}

// New builds a closed breaker from cfg.
func New(cfg Config) *CircuitBreaker {
	metrics.UpdateCircuitState(cfg.Name, int(gobreaker.StateClosed))

	return &CircuitBreaker{
		name: cfg.Name,
		gb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:         cfg.Name,
			MaxRequests:  cfg.Probes,
			Interval:     cfg.Window,
			Timeout:      cfg.Cooldown,
			IsSuccessful: cfg.Healthy,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.Requests >= cfg.MinCalls &&
					float64(c.TotalFailures) >= cfg.TripRatio*float64(c.Requests)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				metrics.UpdateCircuitState(name, int(to))
				slog.Warn("circuit breaker state changed",
					slog.String("circuit", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
			},
		}),
	}
}

// Do runs fn through cb. A refused call returns an error wrapping ErrOpen
// without running fn.
func Do[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.gb.Execute(func() (any, error) {
		v, err := fn()
		return v, err
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%s: %w: %w", cb.name, ErrOpen, err)
		}
		return zero, err
	}
	v, _ := res.(T)
	return v, nil
}

// State is the breaker's current state.
func (cb *CircuitBreaker) State() gobreaker.State { return cb.gb.State() }

// Name is the label given in Config.
func (cb *CircuitBreaker) Name() string { return cb.name }

// IsOpen reports whether calls are currently refused outright.
func (cb *CircuitBreaker) IsOpen() bool { return cb.gb.State() == gobreaker.StateOpen }
