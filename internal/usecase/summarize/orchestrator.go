package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"blog-summarizer/internal/domain/entity"
	"blog-summarizer/internal/observability/metrics"
	"blog-summarizer/internal/observability/tracing"
	"blog-summarizer/internal/prompt"
	"blog-summarizer/internal/resilience/retry"
	"blog-summarizer/internal/utils/text"
)

// chunkLength bounds the cost of the map phase regardless of the requested length.
const chunkLength = entity.LengthShort

// Summarize summarizes cleaned text that already passed validation.
//
// Text that fits in one chunk is summarized with a single call. Longer text
// is split into chunks that are summarized with the short profile, in order
// or with bounded parallelism; their TL;DRs are joined as "Chunk i: ..." and
// summarized once more with pref. Chunk failures are returned as
// *entity.ChunkError and abort the whole run.
func (s *Service) Summarize(ctx context.Context, cleaned string, pref entity.LengthPreference) (*entity.AggregateResult, error) {
	chunks := entity.NewChunks(text.SplitChunks(cleaned, s.cfg.ChunkSize))
	metrics.RecordChunks(len(chunks))

	input := cleaned
	if len(chunks) > 1 {
		slog.InfoContext(ctx, "processing multiple chunks",
			slog.Int("chunk_count", len(chunks)),
			slog.Int("parallelism", s.cfg.Parallelism))

		tldrs, err := s.summarizeChunks(ctx, chunks)
		if err != nil {
			return nil, err
		}
		input = combine(tldrs)
	}

	final, err := s.finalPass(ctx, input, pref)
	if err != nil {
		return nil, err
	}

	return &entity.AggregateResult{
		SummaryResult:   *final,
		ChunksProcessed: len(chunks),
	}, nil
}

// combine labels each chunk TL;DR with its 1-based position.
func combine(tldrs []string) string {
	parts := make([]string, len(tldrs))
	for i, tldr := range tldrs {
		parts[i] = fmt.Sprintf("Chunk %d: %s", i+1, tldr)
	}
	return strings.Join(parts, "\n\n")
}

func (s *Service) summarizeChunks(ctx context.Context, chunks []entity.Chunk) ([]string, error) {
	tldrs := make([]string, len(chunks))

	if s.cfg.Parallelism <= 1 {
		for _, chunk := range chunks {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("summarization stopped before chunk %d: %w", chunk.Index+1, err)
			}
			res, err := s.summarizeChunk(ctx, chunk)
			if err != nil {
				return nil, err
			}
			tldrs[chunk.Index] = res.TLDR
		}
		return tldrs, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Parallelism)
	for _, chunk := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("summarization stopped before chunk %d: %w", chunk.Index+1, err)
			}
			res, err := s.summarizeChunk(gctx, chunk)
			if err != nil {
				return err
			}
			tldrs[chunk.Index] = res.TLDR
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tldrs, nil
}

func (s *Service) summarizeChunk(ctx context.Context, chunk entity.Chunk) (*entity.SummaryResult, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "summarize.chunk",
		trace.WithAttributes(
			attribute.Int("chunk.index", chunk.Index),
			attribute.Int("chunk.length", text.CountRunes(chunk.Content)),
		))
	defer span.End()

	res, err := s.summarizeOnce(ctx, chunk.Content, chunkLength)
	if err != nil {
		span.RecordError(err)
		return nil, &entity.ChunkError{Index: chunk.Index, Err: err}
	}

	slog.DebugContext(ctx, "chunk summarized",
		slog.Int("chunk", chunk.Index+1),
		slog.Int("tokens", res.TokensUsed))
	return res, nil
}

// finalPass produces the externally visible result. Responses the parser
// rejects are requested again up to FinalPassRetries times.
func (s *Service) finalPass(ctx context.Context, input string, pref entity.LengthPreference) (*entity.SummaryResult, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "summarize.final",
		trace.WithAttributes(attribute.String("summarize.length", string(pref))))
	defer span.End()

	var out *entity.SummaryResult
	err := retry.WithBackoff(ctx, retry.FinalPassConfig(s.cfg.FinalPassRetries), func() error {
		res, err := s.summarizeOnce(ctx, input, pref)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return out, nil
}

// summarizeOnce builds the prompt, calls the model and parses the answer.
func (s *Service) summarizeOnce(ctx context.Context, input string, pref entity.LengthPreference) (*entity.SummaryResult, error) {
	p, err := s.builder.Build(input, pref)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	completion, err := s.client.Complete(ctx, p)
	if err != nil {
		return nil, err
	}

	summary, err := prompt.Parse(completion.Content)
	if err != nil {
		slog.WarnContext(ctx, "model response could not be parsed",
			slog.String("length", string(pref)),
			slog.Int("response_length", text.CountRunes(completion.Content)),
			slog.Any("error", err))
		return nil, err
	}

	model := completion.Model
	if model == "" {
		model = s.cfg.Model
	}

	slog.DebugContext(ctx, "completion parsed",
		slog.String("length", string(pref)),
		slog.Int("bullets", len(summary.Bullets)),
		slog.Duration("duration", time.Since(start)))

	return &entity.SummaryResult{
		Summary:    summary,
		TokensUsed: completion.UsageTokens,
		Model:      model,
	}, nil
}
