package llm

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix starts the name of every environment variable read by ApplyEnv.
const EnvPrefix = "MLCOMPARE"

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string `yaml:"provider" envconfig:"MLCOMPARE_LLM_PROVIDER"`

	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Retry      RetryConfig      `yaml:"retry"`

	// Timeout is the maximum duration for a single LLM request
	// (including retries). Default: 60s.
	Timeout time.Duration `yaml:"timeout" envconfig:"MLCOMPARE_LLM_TIMEOUT"`
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key" envconfig:"MLCOMPARE_ANTHROPIC_API_KEY"`
	Model  string `yaml:"model" envconfig:"MLCOMPARE_ANTHROPIC_MODEL"` // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key" envconfig:"MLCOMPARE_OPENAI_API_KEY"`
	Model   string `yaml:"model" envconfig:"MLCOMPARE_OPENAI_MODEL"`       // Default: "chatgpt-4o-latest"
	BaseURL string `yaml:"base_url" envconfig:"MLCOMPARE_OPENAI_BASE_URL"` // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string `yaml:"api_key" envconfig:"MLCOMPARE_GEMINI_API_KEY"`
	Model  string `yaml:"model" envconfig:"MLCOMPARE_GEMINI_MODEL"` // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key" envconfig:"MLCOMPARE_OPENROUTER_API_KEY"`
	Model   string `yaml:"model" envconfig:"MLCOMPARE_OPENROUTER_MODEL"`       // Default: "openai/gpt-4o"
	BaseURL string `yaml:"base_url" envconfig:"MLCOMPARE_OPENROUTER_BASE_URL"` // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" envconfig:"MLCOMPARE_LLM_RETRY_MAX_ATTEMPTS"`
	InitialWait time.Duration `yaml:"initial_wait" envconfig:"MLCOMPARE_LLM_RETRY_INITIAL_WAIT"`
	MaxWait     time.Duration `yaml:"max_wait" envconfig:"MLCOMPARE_LLM_RETRY_MAX_WAIT"`
	Multiplier  float64       `yaml:"multiplier" envconfig:"MLCOMPARE_LLM_RETRY_MULTIPLIER"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "chatgpt-4o-latest",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "openai/gpt-4o",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// ApplyEnv overrides fields of cfg with any MLCOMPARE_* variables that are
// set, e.g. MLCOMPARE_LLM_PROVIDER or MLCOMPARE_OPENAI_API_KEY.
func ApplyEnv(cfg *Config) error {
	if err := envconfig.Process("", cfg); err != nil {
		return fmt.Errorf("llm config from env: %w", err)
	}
	return nil
}

// DiscoverConfig checks standard API key env vars in priority order
// (OpenAI → Gemini → Anthropic → OpenRouter) and returns a Config for the
// first provider whose key is found. Returns (Config{}, false) if none found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// HasAPIKey reports whether the selected provider has a key configured.
// The mock provider always does.
func (c Config) HasAPIKey() bool {
	switch c.Provider {
	case "anthropic":
		return c.Anthropic.APIKey != ""
	case "openai":
		return c.OpenAI.APIKey != ""
	case "gemini":
		return c.Gemini.APIKey != ""
	case "openrouter":
		return c.OpenRouter.APIKey != ""
	case "mock":
		return true
	}
	return false
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic", "openai", "gemini", "openrouter":
		if !c.HasAPIKey() {
			return fmt.Errorf("%s_%s_API_KEY is required for the %s provider",
				EnvPrefix, strings.ToUpper(c.Provider), c.Provider)
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("LLM timeout must be positive, got %s", c.Timeout)
	}
	return nil
}
