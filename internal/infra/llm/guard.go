package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"blog-summarizer/internal/domain/entity"
	"blog-summarizer/internal/observability/tracing"
	"blog-summarizer/internal/resilience/circuitbreaker"
	"blog-summarizer/internal/resilience/retry"
)

// guard runs provider calls with a per-attempt timeout inside a circuit
// breaker, retrying transient failures when more than one attempt is allowed.
type guard struct {
	provider string
	model    string
	timeout  time.Duration
	breaker  *circuitbreaker.CircuitBreaker
	retry    retry.Config
	metrics  MetricsRecorder
}

func newGuard(cfg Config, metrics MetricsRecorder) *guard {
	cbCfg := circuitbreaker.CompletionConfig(cfg.Provider)
	// Rejected prompts and caller cancellations say nothing about provider health.
	cbCfg.Healthy = func(err error) bool {
		return err == nil || errors.Is(err, entity.ErrBadRequest) || errors.Is(err, context.Canceled)
	}

	return &guard{
		provider: cfg.Provider,
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		breaker:  circuitbreaker.New(cbCfg),
		retry:    retry.CompletionConfig(cfg.MaxAttempts),
		metrics:  metrics,
	}
}

func (g *guard) do(ctx context.Context, call func(ctx context.Context) (*entity.Completion, error)) (*entity.Completion, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "llm.complete",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("llm.provider", g.provider),
			attribute.String("llm.model", g.model),
		))
	defer span.End()

	var out *entity.Completion
	err := retry.WithBackoff(ctx, g.retry, func() error {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		start := time.Now()
		res, err := circuitbreaker.Do(g.breaker, func() (*entity.Completion, error) {
			return call(callCtx)
		})
		if errors.Is(err, circuitbreaker.ErrOpen) {
			slog.WarnContext(ctx, "completion circuit breaker open, request rejected",
				slog.String("provider", g.provider),
				slog.String("state", g.breaker.State().String()))
			err = fmt.Errorf("%s: %w: circuit breaker open", g.provider, entity.ErrServiceUnavailable)
		}

		duration := time.Since(start)
		g.metrics.RecordRequest(g.provider, Outcome(err), duration)
		if err != nil {
			slog.ErrorContext(ctx, "completion failed",
				slog.String("provider", g.provider),
				slog.Duration("duration", duration),
				slog.String("error", err.Error()))
			return err
		}

		out = res
		g.metrics.RecordTokens(g.provider, out.UsageTokens)
		slog.InfoContext(ctx, "completion finished",
			slog.String("provider", g.provider),
			slog.String("model", out.Model),
			slog.Int("tokens", out.UsageTokens),
			slog.Duration("duration", duration))
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, Outcome(err))
		return nil, err
	}

	span.SetAttributes(attribute.Int("llm.tokens", out.UsageTokens))
	return out, nil
}

func (g *guard) circuitOpen() bool {
	return g.breaker.IsOpen()
}
