// Package summarize runs the summarization pipeline: clean, validate, chunk,
// summarize each chunk and reduce the chunk summaries into one result.
package summarize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"blog-summarizer/internal/domain/entity"
	"blog-summarizer/internal/observability/metrics"
	"blog-summarizer/internal/observability/tracing"
	"blog-summarizer/internal/prompt"
	"blog-summarizer/internal/utils/text"
)

// CompletionClient sends one prompt to a language model.
type CompletionClient interface {
	Complete(ctx context.Context, prompt entity.Prompt) (*entity.Completion, error)
}

// Extractor pulls the readable article text out of an HTML document.
type Extractor interface {
	Extract(ctx context.Context, html string) (string, error)
}

// Cache stores finished results keyed by CacheKey.
type Cache interface {
	Get(ctx context.Context, key string) (*entity.AggregateResult, bool, error)
	Set(ctx context.Context, key string, result *entity.AggregateResult) error
}

// Config holds the pipeline limits.
type Config struct {
	MinLength        int
	MaxLength        int
	ChunkSize        int
	Parallelism      int
	FinalPassRetries int
	// Model is reported when the provider does not name one and for fallback results.
	Model string
}

// Service runs the pipeline. It holds no per-request state and is safe for
// concurrent use.
type Service struct {
	client    CompletionClient
	builder   *prompt.Builder
	cfg       Config
	cache     Cache
	extractor Extractor
}

// Option configures optional collaborators.
type Option func(*Service)

// WithCache enables result caching.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithExtractor enables HTML input.
func WithExtractor(e Extractor) Option {
	return func(s *Service) { s.extractor = e }
}

// NewService creates a Service.
//
// Parameters:
//   - client: completion provider used for every chunk and the final pass
//   - builder: prompt builder over the startup profile table
//   - cfg: text limits, chunk size, parallelism and final-pass retries
//   - opts: optional cache and HTML extractor
func NewService(client CompletionClient, builder *prompt.Builder, cfg Config, opts ...Option) *Service {
	if cfg.Parallelism < 1 {
		cfg.Parallelism = 1
	}
	s := &Service{client: client, builder: builder, cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process cleans and validates in, then summarizes it. A parse failure on
// the final pass yields the fallback summary with Fallback set instead of an
// error. Validation failures are returned as *entity.ValidationError.
func (s *Service) Process(ctx context.Context, in entity.RawInput) (*entity.AggregateResult, error) {
	start := time.Now()
	pref := in.Length
	if pref == "" {
		pref = entity.DefaultLength
	}

	ctx, span := tracing.GetTracer().Start(ctx, "summarize.process",
		trace.WithAttributes(
			attribute.String("summarize.length", string(pref)),
			attribute.Bool("summarize.html", in.HTML),
		))
	defer span.End()

	result, err := s.process(ctx, in, pref, start)

	outcome := outcomeOf(result, err)
	metrics.RecordSummarization(outcome, string(pref), time.Since(start))
	span.SetAttributes(attribute.String("summarize.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		slog.ErrorContext(ctx, "summarization failed",
			slog.String("length", string(pref)),
			slog.String("outcome", outcome),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err))
		return nil, err
	}

	slog.InfoContext(ctx, "summarization completed",
		slog.String("length", string(pref)),
		slog.String("outcome", outcome),
		slog.Int("chunks", result.ChunksProcessed),
		slog.Int("bullets", len(result.Bullets)),
		slog.Int("tokens", result.TokensUsed),
		slog.Duration("duration", result.ProcessingTime))
	return result, nil
}

func (s *Service) process(ctx context.Context, in entity.RawInput, pref entity.LengthPreference, start time.Time) (*entity.AggregateResult, error) {
	raw := in.Text
	if in.HTML {
		if s.extractor == nil {
			return nil, fmt.Errorf("%w: html input is not supported", entity.ErrInvalidInput)
		}
		extracted, err := s.extractor.Extract(ctx, raw)
		if err != nil {
			return nil, err
		}
		raw = extracted
	}

	cleaned, err := text.Normalize(raw)
	if err != nil {
		return nil, err
	}
	cleaned = text.Deduplicate(cleaned)

	if v := text.Validate(cleaned, s.cfg.MinLength, s.cfg.MaxLength); !v.IsValid {
		return nil, &entity.ValidationError{Errors: v.Errors}
	}

	originalLength := text.CountRunes(in.Text)
	cleanedLength := text.CountRunes(cleaned)
	metrics.RecordTextLengths(originalLength, cleanedLength)

	key := CacheKey(pref, cleaned)
	if cached := s.lookup(ctx, key); cached != nil {
		cached.Length = pref
		cached.OriginalLength = originalLength
		cached.CleanedLength = cleanedLength
		cached.ProcessingTime = time.Since(start)
		cached.Cached = true
		return cached, nil
	}

	result, err := s.Summarize(ctx, cleaned, pref)
	switch {
	case err == nil:
		s.store(ctx, key, result)
	case entity.IsParseError(err) && !isChunkError(err):
		slog.WarnContext(ctx, "final pass response unusable, returning fallback summary",
			slog.String("length", string(pref)),
			slog.Any("error", err))
		metrics.RecordFallback()
		result = &entity.AggregateResult{
			SummaryResult: entity.SummaryResult{
				Summary: FallbackSummary(cleaned, pref),
				Model:   s.cfg.Model,
			},
			ChunksProcessed: len(text.SplitChunks(cleaned, s.cfg.ChunkSize)),
			Fallback:        true,
		}
	default:
		return nil, err
	}

	result.Length = pref
	result.OriginalLength = originalLength
	result.CleanedLength = cleanedLength
	result.ProcessingTime = time.Since(start)
	return result, nil
}

func (s *Service) lookup(ctx context.Context, key string) *entity.AggregateResult {
	if s.cache == nil {
		return nil
	}
	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "summary cache lookup failed", slog.Any("error", err))
		return nil
	}
	if !ok {
		return nil
	}
	return cached
}

func (s *Service) store(ctx context.Context, key string, result *entity.AggregateResult) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, result); err != nil {
		slog.WarnContext(ctx, "summary cache store failed", slog.Any("error", err))
	}
}

// CacheKey identifies a result by length preference and cleaned text.
func CacheKey(pref entity.LengthPreference, cleaned string) string {
	h := sha256.New()
	h.Write([]byte(pref))
	h.Write([]byte{0})
	h.Write([]byte(cleaned))
	return hex.EncodeToString(h.Sum(nil))
}

func isChunkError(err error) bool {
	var ce *entity.ChunkError
	return errors.As(err, &ce)
}

// outcomeOf is the metrics label for one Process call.
func outcomeOf(result *entity.AggregateResult, err error) string {
	var ve *entity.ValidationError
	switch {
	case err == nil && result.Cached:
		return "cached"
	case err == nil && result.Fallback:
		return "fallback"
	case err == nil:
		return "success"
	case errors.As(err, &ve), errors.Is(err, entity.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, entity.ErrTimeout):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case entity.IsParseError(err):
		return "parse_error"
	case entity.IsUpstreamError(err):
		return "upstream_error"
	default:
		return "error"
	}
}
