package home

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/malu-oliver/agent-financeiro/internal/advisor"
	"github.com/malu-oliver/agent-financeiro/internal/invest"
	"github.com/malu-oliver/agent-financeiro/internal/profiling"
	"github.com/malu-oliver/agent-financeiro/internal/router"
	"github.com/malu-oliver/agent-financeiro/internal/store"
)

type stubAgent struct {
	status advisor.Status
}

func (s *stubAgent) GenerateContent(context.Context, advisor.UserRequest) (*advisor.ContentResponse, error) {
	return nil, nil
}

func (s *stubAgent) Simulate(context.Context, int, invest.SimulationRequest) (*invest.Simulation, error) {
	return nil, nil
}

func (s *stubAgent) Status() advisor.Status { return s.status }

func (s *stubAgent) ListUsers(context.Context, int, int) ([]store.User, error) {
	return nil, nil
}

func (s *stubAgent) Evolution(context.Context, int) (profiling.EvolutionSummary, error) {
	return profiling.EvolutionSummary{}, nil
}

func TestHomeShowsStats(t *testing.T) {
	h := New(&stubAgent{status: advisor.Status{TrackedUsers: 3, TotalInteractions: 7, PatternsLearned: 12}})
	view := h.View(100, 30)
	if !strings.Contains(view, "3 investidores acompanhados") {
		t.Errorf("stats missing:\n%s", view)
	}
}

func TestHomeMenuPushesScreens(t *testing.T) {
	h := New(&stubAgent{})

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("got %T, want PushScreenMsg", cmd())
	}
	if push.Screen.Title() != "Análise de perfil" {
		t.Errorf("first item opened %q", push.Screen.Title())
	}

	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd = h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	push = cmd().(router.PushScreenMsg)
	if push.Screen.Title() != "Simulação" {
		t.Errorf("second item opened %q", push.Screen.Title())
	}

	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd = h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	push = cmd().(router.PushScreenMsg)
	if push.Screen.Title() != "Histórico" {
		t.Errorf("third item opened %q", push.Screen.Title())
	}
}

func TestHomeRefreshesStatusOnKey(t *testing.T) {
	agent := &stubAgent{}
	h := New(agent)
	agent.status.TrackedUsers = 5
	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if !strings.Contains(h.View(100, 30), "5 investidores") {
		t.Error("status not refreshed")
	}
}
