// Package entity defines the data model of the summarization pipeline and its error taxonomy.
package entity

import "time"

// Output bounds shared by the parser and the fallback summary.
const (
	MinBullets        = 3
	MaxBullets        = 7
	MaxTLDRWords      = 60
	NoSummaryTLDR     = "Summary not available"
	NoSummaryBullet   = "Content summary not available"
	UnknownTokensUsed = "unknown"
)

// RawInput is the untrusted text submitted for summarization.
type RawInput struct {
	Text   string
	Length LengthPreference
	// HTML marks Text as an HTML document that needs extraction first.
	HTML bool
}

// Chunk is a sentence-aligned slice of normalized text.
type Chunk struct {
	Index   int
	Content string
}

// NewChunks numbers contents in order.
func NewChunks(contents []string) []Chunk {
	chunks := make([]Chunk, len(contents))
	for i, c := range contents {
		chunks[i] = Chunk{Index: i, Content: c}
	}
	return chunks
}

// Prompt is a fully built completion request.
type Prompt struct {
	SystemMessage    string
	UserMessage      string
	Temperature      float32
	TopP             float32
	MaxTokens        int
	FrequencyPenalty float32
	PresencePenalty  float32
}

// Completion is what a CompletionClient returns for one prompt.
type Completion struct {
	Content     string
	UsageTokens int
	Model       string
}

// Summary is the parsed form of a model response.
type Summary struct {
	Bullets []string
	TLDR    string
}

// SummaryResult is a parsed summary plus the usage of the call that produced it.
// TokensUsed is zero when the provider did not report usage.
type SummaryResult struct {
	Summary
	TokensUsed int
	Model      string
}

// AggregateResult is the final outcome of one summarization request.
type AggregateResult struct {
	SummaryResult
	Length          LengthPreference
	ProcessingTime  time.Duration
	OriginalLength  int
	CleanedLength   int
	ChunksProcessed int
	Fallback        bool
	Cached          bool
}
