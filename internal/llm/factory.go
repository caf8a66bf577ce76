package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/malu-oliver/agent-financeiro/internal/store"
)

// Deps are the collaborators NewProvider wires into the middleware. All
// are optional.
type Deps struct {
	Events   store.EventRepo
	Observer Observer
	Logger   *slog.Logger
}

// NewProvider builds the backend cfg.Provider names and wraps it as
// caller → timeout → retry → logging → backend, so every attempt is
// logged and the timeout spans all of them.
func NewProvider(ctx context.Context, cfg Config, deps Deps) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", cfg.Provider, err)
	}

	return Chain(base,
		WithTimeout(cfg.Timeout),
		WithRetry(cfg.Retry),
		WithLogging(cfg.Provider, deps.Events, deps.Observer, deps.Logger),
	), nil
}
