package llm

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Config selects and tunes the backend. It is embedded in the
// application config under the "llm" key.
type Config struct {
	// Provider is "gemini", "openai", "anthropic", "openrouter" or "mock".
	// Empty picks the first backend that has an API key.
	Provider string `yaml:"provider"`

	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`

	Retry RetryConfig `yaml:"retry"`
	// Timeout bounds one Generate call including its retries.
	Timeout time.Duration `yaml:"timeout"`
}

type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

func DefaultConfig() Config {
	return Config{
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.5-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 30 * time.Second,
	}
}

// keys lists each backend's API key field with its environment
// variables, in the order an empty Provider tries them.
func (c *Config) keys() []struct {
	provider string
	field    *string
	env      []string
} {
	return []struct {
		provider string
		field    *string
		env      []string
	}{
		{"gemini", &c.Gemini.APIKey, []string{"AGENTFIN_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"}},
		{"openai", &c.OpenAI.APIKey, []string{"AGENTFIN_OPENAI_API_KEY", "OPENAI_API_KEY"}},
		{"anthropic", &c.Anthropic.APIKey, []string{"AGENTFIN_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"}},
		{"openrouter", &c.OpenRouter.APIKey, []string{"AGENTFIN_OPENROUTER_API_KEY", "OPENROUTER_API_KEY"}},
	}
}

// ApplyEnv fills c from the environment. AGENTFIN_* variables override
// the file; the vendors' own key variables only fill keys left empty.
func (c *Config) ApplyEnv() {
	for _, k := range c.keys() {
		if v := os.Getenv(k.env[0]); v != "" {
			*k.field = v
			continue
		}
		if *k.field != "" {
			continue
		}
		for _, name := range k.env[1:] {
			if v := os.Getenv(name); v != "" {
				*k.field = v
				break
			}
		}
	}

	for env, field := range map[string]*string{
		"AGENTFIN_LLM_PROVIDER":     &c.Provider,
		"AGENTFIN_GEMINI_MODEL":     &c.Gemini.Model,
		"AGENTFIN_OPENAI_MODEL":     &c.OpenAI.Model,
		"AGENTFIN_OPENAI_BASE_URL":  &c.OpenAI.BaseURL,
		"AGENTFIN_ANTHROPIC_MODEL":  &c.Anthropic.Model,
		"AGENTFIN_OPENROUTER_MODEL": &c.OpenRouter.Model,
	} {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}
	if d, err := time.ParseDuration(os.Getenv("AGENTFIN_LLM_TIMEOUT")); err == nil && d > 0 {
		c.Timeout = d
	}

	if c.Provider == "" {
		for _, k := range c.keys() {
			if *k.field != "" {
				c.Provider = k.provider
				break
			}
		}
	}
}

// ErrNotConfigured is returned by Validate when no backend was chosen and
// no API key was found.
var ErrNotConfigured = errors.New("no LLM provider configured")

// Validate checks that the chosen backend has its API key.
func (c Config) Validate() error {
	if c.Provider == "" {
		return ErrNotConfigured
	}
	if c.Provider == "mock" {
		return nil
	}
	for _, k := range c.keys() {
		if k.provider != c.Provider {
			continue
		}
		if *k.field == "" {
			return fmt.Errorf("%s provider needs an API key (set %s)", c.Provider, k.env[0])
		}
		return nil
	}
	return fmt.Errorf("unknown LLM provider %q", c.Provider)
}
