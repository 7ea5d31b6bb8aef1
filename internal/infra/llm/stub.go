package llm

import (
	"context"
	"fmt"
	"strings"

	"blog-summarizer/internal/domain/entity"
	"blog-summarizer/internal/utils/text"
)

const (
	stubTextMarker  = "Text to summarize:\n"
	stubBulletLimit = 190
)

// Stub answers every prompt locally with a well-formed BULLETS/TL;DR
// response built from the sentences of the prompt's text. It lets the
// service run without credentials.
type Stub struct {
	model string
}

// NewStub returns a Stub reporting model as its model identifier.
func NewStub(model string) *Stub {
	if model == "" {
		model = ProviderStub
	}
	return &Stub{model: model}
}

// Complete never fails unless ctx is already done.
func (s *Stub) Complete(ctx context.Context, prompt entity.Prompt) (*entity.Completion, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify(ProviderStub, 0, err)
	}

	source := prompt.UserMessage
	if i := strings.LastIndex(source, stubTextMarker); i >= 0 {
		source = source[i+len(stubTextMarker):]
	}

	var points []string
	for _, s := range text.SplitSentences(source) {
		if text.CountRunes(s) <= 10 {
			continue
		}
		if r := []rune(s); len(r) > stubBulletLimit {
			s = string(r[:stubBulletLimit])
		}
		points = append(points, s)
		if len(points) == entity.MaxBullets {
			break
		}
	}
	for i := len(points); i < entity.MinBullets; i++ {
		points = append(points, fmt.Sprintf("Key point %d of the submitted text", i+1))
	}

	var sb strings.Builder
	sb.WriteString("BULLETS:\n")
	for _, p := range points {
		sb.WriteString("• " + p + "\n")
	}
	sb.WriteString("\nTL;DR: " + points[0] + ". " + points[1] + ".")

	content := sb.String()
	return &entity.Completion{
		Content:     content,
		UsageTokens: len(strings.Fields(prompt.SystemMessage)) + len(strings.Fields(prompt.UserMessage)) + len(strings.Fields(content)),
		Model:       s.model,
	}, nil
}

// Provider returns "stub".
func (s *Stub) Provider() string { return ProviderStub }

// Model returns the configured model identifier.
func (s *Stub) Model() string { return s.model }

// CircuitOpen is always false.
func (s *Stub) CircuitOpen() bool { return false }
