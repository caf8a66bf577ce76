package advisor

import (
	"context"
	"errors"
	"fmt"

	"github.com/malu-oliver/agent-financeiro/internal/analytics"
	"github.com/malu-oliver/agent-financeiro/internal/content"
	"github.com/malu-oliver/agent-financeiro/internal/profiling"
	"github.com/malu-oliver/agent-financeiro/internal/store"
)

// UserHistory returns the classification history of the user with hash.
func (s *Service) UserHistory(ctx context.Context, hash string) (*UserHistory, error) {
	u, err := s.Users.FindByHash(ctx, hash)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("user %q: %w", hash, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	events, err := s.Events.Classifications(ctx, u.ID, store.QueryOpts{})
	if err != nil {
		return nil, fmt.Errorf("load classifications: %w", err)
	}
	sims, err := s.Events.Simulations(ctx, u.ID, store.QueryOpts{})
	if err != nil {
		return nil, fmt.Errorf("load simulations: %w", err)
	}

	h := &UserHistory{
		Name:              u.Name,
		Email:             u.Email,
		CreatedAt:         u.CreatedAt,
		Evolution:         s.Engine.Analyze(engineID(u.ID)),
		Interactions:      make([]Interaction, 0, len(events)),
		TotalInteractions: len(events),
		TotalSimulations:  len(sims),
	}
	for _, e := range events {
		h.Interactions = append(h.Interactions, Interaction{
			At:         e.Timestamp,
			Goal:       e.Goal,
			Profile:    profiling.Profile(e.Dominant),
			Confidence: e.Confidence,
		})
	}
	return h, nil
}

// Evolution analyzes the classification history of a user.
func (s *Service) Evolution(ctx context.Context, userID int) (profiling.EvolutionSummary, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return profiling.EvolutionSummary{}, err
	}
	return s.Engine.Analyze(engineID(userID)), nil
}

// Suggestions proposes next topics for a user.
func (s *Service) Suggestions(ctx context.Context, userID int) (content.Suggestions, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return content.Suggestions{}, err
	}
	return s.Generator.Suggestions(engineID(userID)), nil
}

// Feedback records a free-form payload for a user.
func (s *Service) Feedback(ctx context.Context, userID int, payload map[string]any) error {
	u, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	if len(payload) == 0 {
		return invalid("feedback", "must not be empty")
	}
	if err := s.Events.AppendFeedback(ctx, store.FeedbackEventData{UserHash: u.Hash, Payload: payload}); err != nil {
		return fmt.Errorf("record feedback: %w", err)
	}
	s.Logger.Info("feedback recorded", "user_id", userID, "keys", len(payload))
	return nil
}

// Stats reports the learning state of the classifier.
func (s *Service) Stats() profiling.Stats {
	return s.Engine.Stats()
}

// Status describes the agent and what it has learned so far.
func (s *Service) Status() Status {
	st := s.Engine.Stats()
	return Status{
		Active: true,
		Capabilities: map[string]bool{
			"profile_classification": true,
			"evolution_tracking":     true,
			"adaptive_content":       true,
			"investment_simulation":  s.Calculator != nil,
			"peer_analysis":          s.Analyzer != nil,
			"llm_content":            s.Model != "",
		},
		TrackedUsers:      st.TotalUsers,
		TotalInteractions: st.TotalClassifications,
		AvgInteractions:   st.AvgClassificationsPerUser,
		PatternsLearned:   st.PatternsLearned,
		Triggers: map[string]int{
			"profile_change_threshold": 2,
			"advanced_content_after":   s.Generator.Config().AdvancedAfter,
			"history_limit":            s.Engine.Config().HistoryLimit,
			"trend_window":             s.Engine.Config().TrendWindow,
		},
		LLMModel:  s.Model,
		Version:   Version,
		Timestamp: s.now().UTC(),
	}
}

// Benchmark aggregates statistics across every user.
func (s *Service) Benchmark(ctx context.Context) (*analytics.Benchmark, error) {
	return s.Analyzer.Benchmark(ctx)
}
