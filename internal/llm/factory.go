package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/engreader/internal/logger"
)

// NewProvider creates a Provider from configuration, wrapped with the
// timeout, retry, and logging decorators. rec may be nil.
func NewProvider(ctx context.Context, cfg Config, rec RequestRecorder, log *logger.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return Wrap(base, cfg, rec, log), nil
}

// Wrap applies the standard middleware stack:
// caller → timeout → retry → logging → base.
func Wrap(base Provider, cfg Config, rec RequestRecorder, log *logger.Logger) Provider {
	p := WithLogging(base, cfg.Provider, rec, log)
	if cfg.Retry.MaxAttempts > 1 {
		p = WithRetry(p, cfg.Retry)
	}
	return WithTimeout(p, cfg.Timeout)
}
