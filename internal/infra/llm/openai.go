package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"blog-summarizer/internal/domain/entity"
)

// OpenAI talks to any OpenAI-compatible chat completion endpoint. With the
// Cerebras base URL it serves the cerebras provider.
type OpenAI struct {
	client *openai.Client
	model  string
	guard  *guard
}

// NewOpenAI creates a client for cfg. An empty BaseURL uses the OpenAI default.
func NewOpenAI(cfg Config, metrics MetricsRecorder) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		guard:  newGuard(cfg, metrics),
	}
}

// Complete sends prompt as a system and user message pair.
func (o *OpenAI) Complete(ctx context.Context, prompt entity.Prompt) (*entity.Completion, error) {
	return o.guard.do(ctx, func(ctx context.Context) (*entity.Completion, error) {
		return o.doComplete(ctx, prompt)
	})
}

func (o *OpenAI) doComplete(ctx context.Context, prompt entity.Prompt) (*entity.Completion, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if prompt.SystemMessage != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: prompt.SystemMessage,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt.UserMessage,
	})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:            o.model,
		Messages:         messages,
		MaxTokens:        prompt.MaxTokens,
		Temperature:      prompt.Temperature,
		TopP:             prompt.TopP,
		FrequencyPenalty: prompt.FrequencyPenalty,
		PresencePenalty:  prompt.PresencePenalty,
	})
	if err != nil {
		return nil, classify(o.guard.provider, openAIStatus(err), err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s: %w: no choices returned", o.guard.provider, entity.ErrInvalidResponseFormat)
	}

	model := resp.Model
	if model == "" {
		model = o.model
	}
	return &entity.Completion{
		Content:     resp.Choices[0].Message.Content,
		UsageTokens: resp.Usage.TotalTokens,
		Model:       model,
	}, nil
}

func openAIStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// Provider returns the configured provider name.
func (o *OpenAI) Provider() string { return o.guard.provider }

// Model returns the configured model identifier.
func (o *OpenAI) Model() string { return o.model }

// CircuitOpen reports whether the circuit breaker is rejecting calls.
func (o *OpenAI) CircuitOpen() bool { return o.guard.circuitOpen() }
