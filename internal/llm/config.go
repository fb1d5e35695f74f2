package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "openai", "anthropic", "gemini", "openrouter", "mock"
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single LLM request including any retries.
	// Zero disables the bound.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for OpenRouter or compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "openai/gpt-4o-mini"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
// MaxAttempts of 1 means a single attempt with no retry.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "openai/gpt-4o-mini",
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv builds a Config from ENGREADER_* variables. Unset or
// unparseable values keep their defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	vars := []struct {
		env string
		dst *string
	}{
		{"ENGREADER_LLM_PROVIDER", &cfg.Provider},
		{"ENGREADER_OPENAI_API_KEY", &cfg.OpenAI.APIKey},
		{"ENGREADER_OPENAI_MODEL", &cfg.OpenAI.Model},
		{"ENGREADER_OPENAI_BASE_URL", &cfg.OpenAI.BaseURL},
		{"ENGREADER_ANTHROPIC_API_KEY", &cfg.Anthropic.APIKey},
		{"ENGREADER_ANTHROPIC_MODEL", &cfg.Anthropic.Model},
		{"ENGREADER_GEMINI_API_KEY", &cfg.Gemini.APIKey},
		{"ENGREADER_GEMINI_MODEL", &cfg.Gemini.Model},
		{"ENGREADER_OPENROUTER_API_KEY", &cfg.OpenRouter.APIKey},
		{"ENGREADER_OPENROUTER_MODEL", &cfg.OpenRouter.Model},
		{"ENGREADER_OPENROUTER_BASE_URL", &cfg.OpenRouter.BaseURL},
	}
	for _, v := range vars {
		if val := os.Getenv(v.env); val != "" {
			*v.dst = val
		}
	}

	if d, err := time.ParseDuration(os.Getenv("ENGREADER_LLM_TIMEOUT")); err == nil && d >= 0 {
		cfg.Timeout = d
	}
	if n, err := strconv.Atoi(os.Getenv("ENGREADER_LLM_MAX_ATTEMPTS")); err == nil && n > 0 {
		cfg.Retry.MaxAttempts = n
	}
	return cfg
}

// DiscoverConfig probes standard API key env vars in priority order
// (OpenAI → Anthropic → Gemini → OpenRouter) and returns a Config for the
// first provider whose key is found. Returns (Config{}, false) if none found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("ENGREADER_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("ENGREADER_OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("ENGREADER_GEMINI_API_KEY is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("ENGREADER_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}
