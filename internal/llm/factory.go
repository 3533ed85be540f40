package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mlcompare/mlcompare/internal/store"
)

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with retry and logging middleware.
// eventRepo may be nil when no database is attached.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Provider, error) {
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
		m := NewMockProvider()
		m.Responder = emptyAnswer
		base = m
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// Wrap with middleware: caller → retry → logging → base
	logged := WithLogging(base, cfg.Provider, eventRepo)
	retried := WithRetry(logged, cfg.Retry)

	return retried, nil
}

// emptyAnswer makes the configured mock a dry run: every request succeeds
// and selects nothing.
func emptyAnswer(req Request) MockResponse {
	if req.Schema != nil {
		return MockResponse{Content: json.RawMessage(`{"labels":[]}`)}
	}
	return MockResponse{Content: json.RawMessage("[]")}
}

// ResolveConfig applies MLCOMPARE_* overrides to cfg. When the selected
// provider still has no API key, the standard OPENAI_API_KEY style
// variables are checked and the first provider found is selected, keeping
// the configured models.
func ResolveConfig(cfg Config) (Config, error) {
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if !cfg.HasAPIKey() {
		if found, ok := DiscoverConfig(); ok {
			cfg.Provider = found.Provider
			cfg.OpenAI.APIKey = found.OpenAI.APIKey
			cfg.Gemini.APIKey = found.Gemini.APIKey
			cfg.Anthropic.APIKey = found.Anthropic.APIKey
			cfg.OpenRouter.APIKey = found.OpenRouter.APIKey
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
