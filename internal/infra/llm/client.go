// Package llm provides CompletionClient implementations: an OpenAI-compatible
// client used for Cerebras and OpenAI, an Anthropic client, and a
// deterministic offline stub. Network clients share the same timeout,
// circuit breaker, retry and metrics handling.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blog-summarizer/internal/domain/entity"
)

// Supported providers.
const (
	ProviderCerebras = "cerebras"
	ProviderOpenAI   = "openai"
	ProviderClaude   = "claude"
	ProviderStub     = "stub"
)

// DefaultCerebrasBaseURL is the OpenAI-compatible Cerebras endpoint.
const DefaultCerebrasBaseURL = "https://api.cerebras.ai/v1"

const pingTimeout = 5 * time.Second

// Client is a completion provider.
type Client interface {
	Complete(ctx context.Context, prompt entity.Prompt) (*entity.Completion, error)
	Provider() string
	Model() string
	// CircuitOpen reports whether calls are currently rejected without reaching the provider.
	CircuitOpen() bool
}

// Config selects and configures a provider.
type Config struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxAttempts int
}

// Validate checks the configuration for the selected provider.
func (c Config) Validate() error {
	var errs []error

	switch c.Provider {
	case ProviderCerebras, ProviderOpenAI, ProviderClaude:
		if c.APIKey == "" {
			errs = append(errs, fmt.Errorf("api key is required for provider %q", c.Provider))
		}
	case ProviderStub:
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q", c.Provider))
	}

	if c.Model == "" {
		errs = append(errs, errors.New("model cannot be empty"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %v", c.Timeout))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts))
	}

	return errors.Join(errs...)
}

// New builds the client for cfg.Provider. A nil recorder disables metrics.
func New(cfg Config, metrics MetricsRecorder) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid llm configuration: %w", err)
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}

	switch cfg.Provider {
	case ProviderCerebras:
		if cfg.BaseURL == "" {
			cfg.BaseURL = DefaultCerebrasBaseURL
		}
		return NewOpenAI(cfg, metrics), nil
	case ProviderOpenAI:
		return NewOpenAI(cfg, metrics), nil
	case ProviderClaude:
		return NewClaude(cfg, metrics), nil
	default:
		return NewStub(cfg.Model), nil
	}
}

// Ping sends a minimal prompt to check that the provider answers.
func Ping(ctx context.Context, c Client) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	_, err := c.Complete(ctx, entity.Prompt{UserMessage: "Hello", MaxTokens: 10})
	return err
}
