package app

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/malu-oliver/agent-financeiro/internal/advisor"
	"github.com/malu-oliver/agent-financeiro/internal/invest"
	"github.com/malu-oliver/agent-financeiro/internal/profiling"
	"github.com/malu-oliver/agent-financeiro/internal/store"
)

type stubAgent struct{}

func (stubAgent) GenerateContent(context.Context, advisor.UserRequest) (*advisor.ContentResponse, error) {
	return nil, nil
}

func (stubAgent) Simulate(context.Context, int, invest.SimulationRequest) (*invest.Simulation, error) {
	return nil, nil
}

func (stubAgent) Status() advisor.Status { return advisor.Status{} }

func (stubAgent) ListUsers(context.Context, int, int) ([]store.User, error) {
	return nil, nil
}

func (stubAgent) Evolution(context.Context, int) (profiling.EvolutionSummary, error) {
	return profiling.EvolutionSummary{}, nil
}

type fixedRate float64

func (f fixedRate) Current(context.Context) float64 { return float64(f) }

func TestHeaderShowsSelic(t *testing.T) {
	m := newAppModel(Options{Agent: stubAgent{}, Selic: fixedRate(14.9)})
	if m.status != "Selic 14,90%" {
		t.Errorf("got status %q", m.status)
	}
}

func TestEscPopsToHome(t *testing.T) {
	var model tea.Model = newAppModel(Options{Agent: stubAgent{}})
	model, _ = model.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	// Open the first menu item.
	model, cmd := model.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	model, _ = model.Update(cmd())
	if d := model.(AppModel).router.Depth(); d != 2 {
		t.Fatalf("got depth %d after opening, want 2", d)
	}

	model, cmd = model.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	model, _ = model.Update(cmd())
	if d := model.(AppModel).router.Depth(); d != 1 {
		t.Errorf("got depth %d after esc, want 1", d)
	}
}

func TestRunRequiresAgent(t *testing.T) {
	if err := Run(Options{}); err == nil {
		t.Error("expected an error without an agent")
	}
}

func TestStartAsk(t *testing.T) {
	m := newAppModel(Options{Agent: stubAgent{}, StartAsk: true})
	if d := m.router.Depth(); d != 2 {
		t.Fatalf("got depth %d, want 2", d)
	}
	if got := m.router.Active().Title(); got != "Análise de perfil" {
		t.Errorf("got active screen %q", got)
	}
}
