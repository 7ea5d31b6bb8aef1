// Package cache stores finished summaries keyed by length preference and
// cleaned text, so that repeated requests skip the model entirely.
package cache

import (
	"context"

	"blog-summarizer/internal/domain/entity"
)

// Backend names used as metric labels.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// record is the stored form of a summary. Request-specific fields such as
// timings and lengths are recomputed on every hit.
type record struct {
	Bullets         []string `json:"bullets"`
	TLDR            string   `json:"tldr"`
	TokensUsed      int      `json:"tokensUsed"`
	Model           string   `json:"model"`
	Length          string   `json:"length"`
	ChunksProcessed int      `json:"chunksProcessed"`
}

func toRecord(res *entity.AggregateResult) record {
	return record{
		Bullets:         append([]string(nil), res.Bullets...),
		TLDR:            res.TLDR,
		TokensUsed:      res.TokensUsed,
		Model:           res.Model,
		Length:          string(res.Length),
		ChunksProcessed: res.ChunksProcessed,
	}
}

func (r record) result() *entity.AggregateResult {
	return &entity.AggregateResult{
		SummaryResult: entity.SummaryResult{
			Summary: entity.Summary{
				Bullets: append([]string(nil), r.Bullets...),
				TLDR:    r.TLDR,
			},
			TokensUsed: r.TokensUsed,
			Model:      r.Model,
		},
		Length:          entity.LengthPreference(r.Length),
		ChunksProcessed: r.ChunksProcessed,
	}
}

// Noop never stores anything. It backs CACHE_BACKEND=none.
type Noop struct{}

// Get always misses.
func (Noop) Get(context.Context, string) (*entity.AggregateResult, bool, error) {
	return nil, false, nil
}

// Set discards res.
func (Noop) Set(context.Context, string, *entity.AggregateResult) error {
	return nil
}

// Purge has nothing to remove.
func (Noop) Purge(context.Context) (int64, error) {
	return 0, nil
}
