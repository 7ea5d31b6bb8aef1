package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"blog-summarizer/internal/domain/entity"
)

// Claude implements Client with the Anthropic Messages API.
type Claude struct {
	client anthropic.Client
	model  string
	guard  *guard
}

// NewClaude creates a client for cfg. The SDK's own retries are disabled so
// that attempts are governed by cfg.MaxAttempts alone.
func NewClaude(cfg Config, metrics MetricsRecorder) *Claude {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Claude{
		client: anthropic.NewClient(opts...),
		model:  cfg.Model,
		guard:  newGuard(cfg, metrics),
	}
}

// Complete sends prompt through the Messages API. Only temperature is set:
// current models reject requests that carry both temperature and top_p.
func (c *Claude) Complete(ctx context.Context, prompt entity.Prompt) (*entity.Completion, error) {
	return c.guard.do(ctx, func(ctx context.Context) (*entity.Completion, error) {
		return c.doComplete(ctx, prompt)
	})
}

func (c *Claude) doComplete(ctx context.Context, prompt entity.Prompt) (*entity.Completion, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(prompt.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.UserMessage)),
		},
		Temperature: anthropic.Float(float64(prompt.Temperature)),
	}
	if prompt.SystemMessage != "" {
		params.System = []anthropic.TextBlockParam{{Text: prompt.SystemMessage}}
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, classify(c.guard.provider, anthropicStatus(err), err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, fmt.Errorf("%s: %w: no text content returned", c.guard.provider, entity.ErrInvalidResponseFormat)
	}

	model := string(message.Model)
	if model == "" {
		model = c.model
	}
	return &entity.Completion{
		Content:     sb.String(),
		UsageTokens: int(message.Usage.InputTokens + message.Usage.OutputTokens),
		Model:       model,
	}, nil
}

func anthropicStatus(err error) int {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Provider returns the configured provider name.
func (c *Claude) Provider() string { return c.guard.provider }

// Model returns the configured model identifier.
func (c *Claude) Model() string { return c.model }

// CircuitOpen reports whether the circuit breaker is rejecting calls.
func (c *Claude) CircuitOpen() bool { return c.guard.circuitOpen() }
