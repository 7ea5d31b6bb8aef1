// Package summarize serves POST /api/summarize.
package summarize

import (
	"encoding/json"
	"strconv"
	"time"

	"blog-summarizer/internal/domain/entity"
)

// Accepted values of the format field.
const (
	FormatText = "text"
	FormatHTML = "html"
)

// request is the raw body. Fields stay undecoded so that a type error on one
// field is reported next to the others.
type request struct {
	Text   json.RawMessage `json:"text"`
	Length json.RawMessage `json:"length"`
	Format json.RawMessage `json:"format"`
}

// Input is a validated request.
type Input struct {
	Text   string
	Length entity.LengthPreference
	Format string
}

// DTO is the data member of a successful response.
type DTO struct {
	Bullets []string `json:"bullets"`
	TLDR    string   `json:"tldr"`
	Meta    MetaDTO  `json:"meta"`
}

// MetaDTO describes how a summary was produced. TokensUsed is an integer, or
// "unknown" when the provider reported no usage.
type MetaDTO struct {
	TokensUsed      any    `json:"tokensUsed"`
	Model           string `json:"model"`
	Length          string `json:"length"`
	ProcessingTime  string `json:"processingTime"`
	OriginalLength  int    `json:"originalLength"`
	CleanedLength   int    `json:"cleanedLength"`
	ChunksProcessed int    `json:"chunksProcessed"`
	Fallback        bool   `json:"fallback,omitempty"`
	Cached          bool   `json:"cached,omitempty"`
}

func toDTO(r *entity.AggregateResult, defaultModel string) DTO {
	var tokens any = entity.UnknownTokensUsed
	if r.TokensUsed > 0 {
		tokens = r.TokensUsed
	}
	model := r.Model
	if model == "" {
		model = defaultModel
	}
	bullets := r.Bullets
	if bullets == nil {
		bullets = []string{}
	}
	return DTO{
		Bullets: bullets,
		TLDR:    r.TLDR,
		Meta: MetaDTO{
			TokensUsed:      tokens,
			Model:           model,
			Length:          string(r.Length),
			ProcessingTime:  millis(r.ProcessingTime),
			OriginalLength:  r.OriginalLength,
			CleanedLength:   r.CleanedLength,
			ChunksProcessed: r.ChunksProcessed,
			Fallback:        r.Fallback,
			Cached:          r.Cached,
		},
	}
}

// millis renders d the way processingTime does.
func millis(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
}
