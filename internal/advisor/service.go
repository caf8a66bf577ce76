// Package advisor orchestrates classification, content generation,
// simulation and analytics for one request.
package advisor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/malu-oliver/agent-financeiro/internal/analytics"
	"github.com/malu-oliver/agent-financeiro/internal/content"
	"github.com/malu-oliver/agent-financeiro/internal/invest"
	"github.com/malu-oliver/agent-financeiro/internal/metrics"
	"github.com/malu-oliver/agent-financeiro/internal/profiling"
	"github.com/malu-oliver/agent-financeiro/internal/store"
)

// Version is reported by Status. Overridden at build time.
var Version = "dev"

const (
	// Share of the monthly income assumed as the recurring deposit.
	depositShare = 0.2
	// Recent content texts passed to the generator.
	conversationItems = 3
	nextActionLimit   = 3
)

// Deps wires a Service. Metrics and Logger may be nil.
type Deps struct {
	Engine     *profiling.Engine
	Generator  *content.Generator
	Calculator *invest.Calculator
	Analyzer   *analytics.Analyzer
	Users      store.UserRepo
	Events     store.EventRepo
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	// Model names the LLM in Status. Empty when running on templates.
	Model string
}

// Service is the application layer shared by the HTTP API and the CLI.
type Service struct {
	Deps
	now func() time.Time
}

func New(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Service{Deps: d, now: time.Now}
}

// UserHash identifies a user by email and name. Without an email the hash
// is salted with the current time so anonymous requests never collide.
func UserHash(email, name string, now time.Time) string {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.ToLower(strings.TrimSpace(name))
	if email == "" {
		return fmt.Sprintf("anonymous_%s_%d", name, now.UnixNano())
	}
	sum := sha256.Sum256([]byte(email + "_" + name))
	return hex.EncodeToString(sum[:])
}

func engineID(id int) string {
	return strconv.Itoa(id)
}

// GenerateContent classifies the request, generates content for the
// dominant profile and records both.
func (s *Service) GenerateContent(ctx context.Context, req UserRequest) (*ContentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.upsert(ctx, req)
	if err != nil {
		return nil, err
	}
	uid := engineID(u.ID)

	self := req.SelfAssessment
	if strings.EqualFold(strings.TrimSpace(self), Undefined) {
		self = ""
	}
	res := s.Engine.Classify(profiling.Input{
		Goal:           req.Goal,
		SelfAssessment: self,
		Reference:      req.Reference,
		UserID:         uid,
	})
	evo := s.Engine.Analyze(uid)
	s.Metrics.ObserveClassification(string(res.Dominant), res.Fallback)

	resp := &ContentResponse{
		Profile:      res.Dominant,
		Distribution: res.Distribution,
		Confidence:   res.Confidence,
		Fallback:     res.Fallback,
	}

	if req.Amount > 0 && req.Years > 0 {
		sc := s.Calculator.Scenarios(ctx, req.Amount, req.Income*depositShare, req.Years, res.Dominant)
		resp.Scenarios = &sc
	}

	if s.Analyzer != nil {
		peers, err := s.Analyzer.ComparePeers(ctx, *u)
		if err != nil {
			s.Logger.Warn("peer comparison failed", "user_id", u.ID, "error", err)
		} else {
			resp.Peers = peers
		}
	}

	conv, err := s.conversation(ctx, u.ID)
	if err != nil {
		s.Logger.Warn("loading conversation failed", "user_id", u.ID, "error", err)
	}

	c, err := s.Generator.Generate(ctx, content.Request{
		Profile:      res.Dominant,
		User:         content.UserData{Name: u.Name, Age: u.Age, Income: u.Income, Amount: req.Amount},
		Goal:         req.Goal,
		UserID:       uid,
		Conversation: conv,
	})
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	s.Metrics.ObserveContent(c.Source)
	sugg := s.Generator.Suggestions(uid)

	u.Profile = string(res.Dominant)
	u.Goal = req.Goal
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user profile: %w", err)
	}
	if err := s.Events.AppendClassification(ctx, store.ClassificationEventData{
		UserID:         u.ID,
		Goal:           req.Goal,
		SelfAssessment: req.SelfAssessment,
		Dominant:       string(res.Dominant),
		Conservative:   res.Distribution.Get(profiling.Conservative),
		Moderate:       res.Distribution.Get(profiling.Moderate),
		Aggressive:     res.Distribution.Get(profiling.Aggressive),
		Confidence:     res.Confidence,
		MatchCount:     res.MatchCount,
		Fallback:       res.Fallback,
	}); err != nil {
		return nil, fmt.Errorf("record classification: %w", err)
	}
	if err := s.Events.AppendContent(ctx, store.ContentEventData{
		UserID:   u.ID,
		Profile:  string(res.Dominant),
		Strategy: c.Strategy.Type,
		Source:   c.Source,
		Content:  c.Text,
	}); err != nil {
		return nil, fmt.Errorf("record content: %w", err)
	}

	resp.Content = c.Text
	resp.Paragraphs = c.Paragraphs
	resp.Source = c.Source
	resp.Strategy = c.Strategy
	resp.Agent = AgentInfo{
		Action:      sugg.Action,
		Suggestions: sugg.Suggestions,
		Progress:    sugg.Progress,
		Evolution:   evo,
		NextActions: sugg.Suggestions[:min(len(sugg.Suggestions), nextActionLimit)],
	}
	resp.Metadata = Metadata{
		UserID:               u.ID,
		UserHash:             u.Hash,
		PreviousInteractions: max(evo.HistoryLength-1, 0),
		Consistency:          evo.Consistency,
		Trend:                evo.Trend,
	}

	s.refreshGauges()
	s.Logger.Info("content generated",
		"user_id", u.ID, "profile", res.Dominant, "confidence", res.Confidence,
		"source", c.Source, "strategy", c.Strategy.Type)
	return resp, nil
}

// upsert finds the user by hash and refreshes its attributes, or creates it.
func (s *Service) upsert(ctx context.Context, req UserRequest) (*store.User, error) {
	hash := UserHash(req.Email, req.Name, s.now())
	u, err := s.Users.FindByHash(ctx, hash)
	switch {
	case errors.Is(err, store.ErrNotFound):
		u = &store.User{
			Hash:   hash,
			Name:   strings.TrimSpace(req.Name),
			Email:  strings.TrimSpace(req.Email),
			Age:    req.Age,
			Income: req.Income,
			Goal:   req.Goal,
		}
		if err := s.Users.Create(ctx, u); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		s.Logger.Debug("user created", "user_id", u.ID)
		return u, nil
	case err != nil:
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.Age = req.Age
	u.Income = req.Income
	return u, nil
}

func (s *Service) conversation(ctx context.Context, userID int) ([]string, error) {
	events, err := s.Events.ContentHistory(ctx, userID, store.QueryOpts{Limit: conversationItems})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Content)
	}
	return out, nil
}

func (s *Service) refreshGauges() {
	if s.Metrics == nil {
		return
	}
	st := s.Engine.Stats()
	s.Metrics.SetLearningState(st.TotalUsers, st.AvgPatternEffectiveness)
}

// Simulate runs an investment simulation and records it. userID may be 0.
func (s *Service) Simulate(ctx context.Context, userID int, req invest.SimulationRequest) (*invest.Simulation, error) {
	if userID != 0 {
		u, err := s.user(ctx, userID)
		if err != nil {
			return nil, err
		}
		if req.Profile == "" && u.Profile != "" {
			req.Profile = profiling.Profile(u.Profile)
		}
	}
	if req.Profile == "" {
		req.Profile = profiling.Moderate
	}
	sim, err := s.Calculator.Simulate(ctx, req)
	if err != nil {
		return nil, &ValidationError{Field: "simulation", Message: err.Error()}
	}
	s.Metrics.ObserveSimulation()
	if err := s.Events.AppendSimulation(ctx, store.SimulationEventData{
		UserID:         userID,
		Profile:        string(sim.Request.Profile),
		InitialAmount:  sim.Request.InitialAmount,
		MonthlyDeposit: sim.Request.MonthlyDeposit,
		Years:          sim.Request.Years,
		AnnualRate:     sim.AnnualRate,
		FinalValue:     sim.FinalValue,
		TotalInvested:  sim.TotalInvested,
	}); err != nil {
		return nil, fmt.Errorf("record simulation: %w", err)
	}
	return sim, nil
}

func (s *Service) user(ctx context.Context, id int) (*store.User, error) {
	u, err := s.Users.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}
