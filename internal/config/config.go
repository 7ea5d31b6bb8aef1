// Package config loads the service configuration from the environment once
// at startup. Components receive the values they need by injection.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"blog-summarizer/internal/domain/entity"
	"blog-summarizer/internal/infra/db"
	"blog-summarizer/internal/infra/llm"
)

// Cache backends.
const (
	CacheMemory   = "memory"
	CachePostgres = "postgres"
	CacheNone     = "none"
)

const maxFinalPassRetries = 5

// Config is the complete runtime configuration.
type Config struct {
	Port             int           `env:"PORT"               envDefault:"3001"`
	AppEnv           string        `env:"APP_ENV"            envDefault:"development"`
	Version          string        `env:"VERSION"            envDefault:"dev"`
	LogLevel         string        `env:"LOG_LEVEL"          envDefault:"info"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT"   envDefault:"10s"`
	TraceSampleRatio float64       `env:"TRACE_SAMPLE_RATIO" envDefault:"1"`

	LLM      LLMConfig
	Pipeline PipelineConfig
	HTTP     HTTPConfig
	Cache    CacheConfig
}

// LLMConfig selects the completion provider.
type LLMConfig struct {
	Provider       string        `env:"LLM_PROVIDER"     envDefault:"cerebras"`
	APIKey         string        `env:"LLM_API_KEY"`
	CerebrasAPIKey string        `env:"CEREBRAS_API_KEY"`
	BaseURL        string        `env:"LLM_BASE_URL"`
	Model          string        `env:"MODEL_NAME"       envDefault:"llama-3.3-70b"`
	Timeout        time.Duration `env:"LLM_TIMEOUT"      envDefault:"30s"`
	MaxAttempts    int           `env:"LLM_MAX_ATTEMPTS" envDefault:"1"`
}

// PipelineConfig holds text limits and orchestration settings.
type PipelineConfig struct {
	TextMinLength      int           `env:"TEXT_MIN_LENGTH"      envDefault:"50"`
	TextMaxLength      int           `env:"TEXT_MAX_LENGTH"      envDefault:"15000"`
	ChunkSize          int           `env:"CHUNK_SIZE"           envDefault:"2000"`
	ChunkParallelism   int           `env:"CHUNK_PARALLELISM"    envDefault:"1"`
	FinalPassRetries   int           `env:"FINAL_PASS_RETRIES"   envDefault:"0"`
	Timeout            time.Duration `env:"PIPELINE_TIMEOUT"     envDefault:"120s"`
	LengthProfilesFile string        `env:"LENGTH_PROFILES_FILE"`

	// Profiles is the built-in table with any file overrides applied.
	Profiles entity.LengthProfiles
}

// HTTPConfig holds the HTTP surface and its protections.
type HTTPConfig struct {
	FrontendOrigin  string        `env:"FRONTEND_ORIGIN"   envDefault:"http://localhost:3000"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX"    envDefault:"100"`
	TrustProxy      bool          `env:"TRUST_PROXY"       envDefault:"false"`
	TrustedProxies  []string      `env:"TRUSTED_PROXIES"   envSeparator:","`
	JWTSecret       string        `env:"JWT_SECRET"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES"    envDefault:"1048576"`
}

// CacheConfig selects the summary cache backend.
type CacheConfig struct {
	Backend       string        `env:"CACHE_BACKEND"        envDefault:"memory"`
	TTL           time.Duration `env:"CACHE_TTL"            envDefault:"1h"`
	MaxEntries    int           `env:"CACHE_MAX_ENTRIES"    envDefault:"500"`
	DatabaseURL   string        `env:"DATABASE_URL"`
	PurgeSchedule string        `env:"CACHE_PURGE_SCHEDULE" envDefault:"@every 10m"`

	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS"     envDefault:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS"     envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME"  envDefault:"1h"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"30m"`
}

// Load reads the process environment.
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFromEnvironment reads environ instead of the process environment.
func LoadFromEnvironment(environ map[string]string) (*Config, error) {
	return load(env.Options{Environment: environ})
}

func load(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	cfg.Cache.Backend = strings.ToLower(strings.TrimSpace(cfg.Cache.Backend))
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = cfg.LLM.CerebrasAPIKey
	}

	profiles, err := LoadLengthProfiles(cfg.Pipeline.LengthProfilesFile)
	if err != nil {
		return nil, err
	}
	cfg.Pipeline.Profiles = profiles

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	if c.TraceSampleRatio < 0 || c.TraceSampleRatio > 1 {
		errs = append(errs, errors.New("TRACE_SAMPLE_RATIO must be between 0 and 1"))
	}

	if err := c.LLMClientConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("LLM: %w", err))
	}
	if c.IsProduction() && c.LLM.Provider == llm.ProviderStub {
		errs = append(errs, errors.New("LLM_PROVIDER=stub is not allowed in production"))
	}

	p := c.Pipeline
	if p.TextMinLength < 1 {
		errs = append(errs, errors.New("TEXT_MIN_LENGTH must be positive"))
	}
	if p.TextMaxLength <= p.TextMinLength {
		errs = append(errs, errors.New("TEXT_MAX_LENGTH must be greater than TEXT_MIN_LENGTH"))
	}
	if p.ChunkSize < 1 {
		errs = append(errs, errors.New("CHUNK_SIZE must be positive"))
	}
	if p.ChunkParallelism < 1 {
		errs = append(errs, errors.New("CHUNK_PARALLELISM must be at least 1"))
	}
	if p.FinalPassRetries < 0 || p.FinalPassRetries > maxFinalPassRetries {
		errs = append(errs, fmt.Errorf("FINAL_PASS_RETRIES must be between 0 and %d", maxFinalPassRetries))
	}
	if p.Timeout <= 0 {
		errs = append(errs, errors.New("PIPELINE_TIMEOUT must be positive"))
	}

	if c.HTTP.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}
	if c.HTTP.RateLimitMax < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX must be at least 1"))
	}
	if c.HTTP.MaxBodyBytes < 1 {
		errs = append(errs, errors.New("MAX_BODY_BYTES must be positive"))
	}

	switch c.Cache.Backend {
	case CacheMemory:
		if c.Cache.MaxEntries < 1 {
			errs = append(errs, errors.New("CACHE_MAX_ENTRIES must be positive"))
		}
	case CachePostgres:
		if c.Cache.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when CACHE_BACKEND=postgres"))
		}
	case CacheNone:
	default:
		errs = append(errs, fmt.Errorf("CACHE_BACKEND must be memory, postgres or none, got %q", c.Cache.Backend))
	}
	if c.Cache.Backend != CacheNone && c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL must be positive"))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// LLMClientConfig returns the settings for llm.New.
func (c *Config) LLMClientConfig() llm.Config {
	return llm.Config{
		Provider:    c.LLM.Provider,
		APIKey:      c.LLM.APIKey,
		BaseURL:     c.LLM.BaseURL,
		Model:       c.LLM.Model,
		Timeout:     c.LLM.Timeout,
		MaxAttempts: c.LLM.MaxAttempts,
	}
}

// DBConnectionConfig returns the pool settings for the postgres cache backend.
func (c *Config) DBConnectionConfig() db.ConnectionConfig {
	return db.ConnectionConfig{
		MaxOpenConns:    c.Cache.MaxOpenConns,
		MaxIdleConns:    c.Cache.MaxIdleConns,
		ConnMaxLifetime: c.Cache.ConnMaxLifetime,
		ConnMaxIdleTime: c.Cache.ConnMaxIdleTime,
	}
}

// AuthEnabled reports whether bearer tokens are required on the summarize route.
func (c *Config) AuthEnabled() bool {
	return c.HTTP.JWTSecret != ""
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
