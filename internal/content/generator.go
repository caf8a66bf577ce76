// Package content writes personalized financial-education text with a
// language model, falling back to fixed templates when the model is
// unavailable, and tracks how each user engages with it.
package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/malu-oliver/agent-financeiro/internal/llm"
	"github.com/malu-oliver/agent-financeiro/internal/profiling"
)

// Generator produces content and keeps a per-user interaction context.
// A nil provider always uses the templates.
type Generator struct {
	provider llm.Provider
	cfg      Config
	logger   *slog.Logger

	mu       sync.Mutex
	contexts map[string]*Interaction
}

func NewGenerator(provider llm.Provider, cfg Config, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	d := DefaultConfig()
	if cfg.AdvancedAfter <= 0 {
		cfg.AdvancedAfter = d.AdvancedAfter
	}
	if cfg.ProfileMemory <= 0 {
		cfg.ProfileMemory = d.ProfileMemory
	}
	if cfg.ContentTypeMemory <= 0 {
		cfg.ContentTypeMemory = d.ContentTypeMemory
	}
	if cfg.EngagementChars <= 0 {
		cfg.EngagementChars = d.EngagementChars
	}
	return &Generator{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
		contexts: make(map[string]*Interaction),
	}
}

type contentOutput struct {
	Paragraphs []string `json:"paragraphs"`
}

// Generate returns content for req. Model failures fall back to the
// templates; only a cancelled ctx is reported as an error.
func (g *Generator) Generate(ctx context.Context, req Request) (*Content, error) {
	strategy := g.strategy(req)

	c, err := g.fromModel(ctx, req, strategy)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		g.logger.Warn("content generation fell back to template",
			"profile", req.Profile, "strategy", strategy.Type, "error", err)
		paras := fallbackParagraphs(req)
		c = &Content{Paragraphs: paras, Text: joinParagraphs(paras), Source: SourceFallback}
	}
	c.Strategy = strategy

	g.learn(req, strategy, c)
	return c, nil
}

func (g *Generator) fromModel(ctx context.Context, req Request, s Strategy) (*Content, error) {
	if g.provider == nil {
		return nil, fmt.Errorf("no LLM provider configured")
	}
	ctx = llm.WithPurpose(ctx, "content")

	resp, err := g.provider.Generate(ctx, llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(req, s, g.cfg.ConversationItems)},
		},
		Schema:      ContentSchema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("content generation: %w", err)
	}

	var out contentOutput
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("content generation: %w", err)
	}
	paras := FormatParagraphs(strings.Join(out.Paragraphs, "\n\n"))
	text := joinParagraphs(paras)
	if text == "" {
		return nil, fmt.Errorf("content generation: empty response")
	}
	return &Content{Paragraphs: paras, Text: text, Source: SourceLLM}, nil
}

var focusByProfile = map[profiling.Profile]string{
	profiling.Conservative: "preservação de capital e segurança",
	profiling.Moderate:     "equilíbrio entre risco e retorno",
	profiling.Aggressive:   "crescimento acelerado e oportunidades",
}

// strategy picks the content type from what is known about the user.
func (g *Generator) strategy(req Request) Strategy {
	if req.UserID == "" {
		return Strategy{
			Type:       StrategyEducational,
			Focus:      "fundamentos do perfil " + string(req.Profile),
			Complexity: ProgressIntermediate,
		}
	}

	g.mu.Lock()
	ic := g.contexts[req.UserID]
	var last profiling.Profile
	var count int
	progress := ProgressBeginner
	if ic != nil {
		if n := len(ic.PreviousProfiles); n > 0 {
			last = ic.PreviousProfiles[n-1]
		}
		count = ic.Count
		progress = ic.Progress
	}
	g.mu.Unlock()

	switch {
	case last != "" && last != req.Profile:
		return Strategy{
			Type:       StrategyTransitional,
			Focus:      fmt.Sprintf("transição do perfil %s para %s", last, req.Profile),
			Complexity: ProgressAdvanced,
		}
	case count >= g.cfg.AdvancedAfter:
		return Strategy{
			Type:       StrategyAdvanced,
			Focus:      "estratégias específicas e otimização de carteira",
			Complexity: "detalhado",
		}
	case progress == ProgressAdvanced:
		return Strategy{
			Type:       StrategySpecialized,
			Focus:      "técnicas avançadas e cenários complexos",
			Complexity: "especialista",
		}
	}

	focus, ok := focusByProfile[req.Profile]
	if !ok {
		focus = "fundamentos financeiros"
	}
	return Strategy{Type: StrategyEducational, Focus: focus, Complexity: ProgressIntermediate}
}

// learn updates the user's interaction context. Engagement only moves on
// model output, since template length says nothing about the user.
func (g *Generator) learn(req Request, s Strategy, c *Content) {
	if req.UserID == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	ic := g.contexts[req.UserID]
	if ic == nil {
		ic = &Interaction{Progress: ProgressBeginner}
		g.contexts[req.UserID] = ic
	}

	recent := ic.PreviousProfiles[max(0, len(ic.PreviousProfiles)-g.cfg.ProfileMemory):]
	if !containsProfile(recent, req.Profile) {
		ic.PreviousProfiles = append(ic.PreviousProfiles, req.Profile)
		if n := len(ic.PreviousProfiles); n > g.cfg.ProfileMemory {
			ic.PreviousProfiles = ic.PreviousProfiles[n-g.cfg.ProfileMemory:]
		}
	}

	ic.ContentTypes = append(ic.ContentTypes, s.Type)
	if n := len(ic.ContentTypes); n > g.cfg.ContentTypeMemory {
		ic.ContentTypes = ic.ContentTypes[n-g.cfg.ContentTypeMemory:]
	}

	if c.Source == SourceLLM {
		score := min(float64(len(c.Text))/g.cfg.EngagementChars, 1)
		ic.Engagement = (ic.Engagement + score) / 2
		switch {
		case ic.Engagement > 0.7:
			ic.Progress = ProgressAdvanced
		case ic.Engagement > 0.4:
			ic.Progress = ProgressIntermediate
		}
	}
	ic.Count++
}

func containsProfile(ps []profiling.Profile, p profiling.Profile) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}

// Config returns the generator configuration with defaults applied.
func (g *Generator) Config() Config {
	return g.cfg
}

// Interaction returns a copy of the user's interaction context.
func (g *Generator) Interaction(userID string) (Interaction, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ic, ok := g.contexts[userID]
	if !ok {
		return Interaction{Progress: ProgressBeginner}, false
	}
	out := *ic
	out.PreviousProfiles = append([]profiling.Profile(nil), ic.PreviousProfiles...)
	out.ContentTypes = append([]string(nil), ic.ContentTypes...)
	return out, true
}

// Forget drops the user's interaction context.
func (g *Generator) Forget(userID string) {
	g.mu.Lock()
	delete(g.contexts, userID)
	g.mu.Unlock()
}

// Suggestions proposes next topics. Later rules override the action of
// earlier ones.
func (g *Generator) Suggestions(userID string) Suggestions {
	out := Suggestions{Suggestions: []string{}, Action: "none", Progress: ProgressBeginner}
	if userID == "" {
		return out
	}
	ic, _ := g.Interaction(userID)
	out.Progress = ic.Progress
	out.InteractionCount = ic.Count

	if ic.Count >= g.cfg.AdvancedAfter {
		out.Suggestions = append(out.Suggestions,
			"Análise de diversificação da carteira",
			"Revisão de metas de curto e longo prazo",
			"Otimização de alocação de ativos")
		out.Action = "suggest_advanced_topics"
	}
	if len(ic.PreviousProfiles) > 1 {
		out.Suggestions = append(out.Suggestions, "Avaliação de adequação do novo perfil de risco")
		out.Action = "profile_evolution_detected"
	}
	switch {
	case ic.Engagement > 0.7:
		out.Suggestions = append(out.Suggestions, "Exploração de estratégias avançadas e alternativas")
		out.Action = "high_engagement_detected"
	case ic.Engagement < 0.3:
		out.Suggestions = append(out.Suggestions, "Reforço dos conceitos fundamentais de investimento")
		out.Action = "low_engagement_detected"
	}
	return out
}

// Export copies every interaction context, keyed by user.
func (g *Generator) Export() map[string]Interaction {
	g.mu.Lock()
	ids := make([]string, 0, len(g.contexts))
	for id := range g.contexts {
		ids = append(ids, id)
	}
	g.mu.Unlock()

	out := make(map[string]Interaction, len(ids))
	for _, id := range ids {
		if ic, ok := g.Interaction(id); ok {
			out[id] = ic
		}
	}
	return out
}

// Restore replaces all interaction contexts.
func (g *Generator) Restore(state map[string]Interaction) {
	contexts := make(map[string]*Interaction, len(state))
	for id, ic := range state {
		if ic.Progress == "" {
			ic.Progress = ProgressBeginner
		}
		contexts[id] = &ic
	}
	g.mu.Lock()
	g.contexts = contexts
	g.mu.Unlock()
}
