package router_test

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/malu-oliver/agent-financeiro/internal/advisor"
	"github.com/malu-oliver/agent-financeiro/internal/invest"
	"github.com/malu-oliver/agent-financeiro/internal/profiling"
	"github.com/malu-oliver/agent-financeiro/internal/router"
	"github.com/malu-oliver/agent-financeiro/internal/screen"
	"github.com/malu-oliver/agent-financeiro/internal/screens/ask"
	"github.com/malu-oliver/agent-financeiro/internal/screens/simulate"
)

type fakeAgent struct{}

func (fakeAgent) GenerateContent(context.Context, advisor.UserRequest) (*advisor.ContentResponse, error) {
	return nil, nil
}

func (fakeAgent) Simulate(context.Context, int, invest.SimulationRequest) (*invest.Simulation, error) {
	return nil, nil
}

// menu stands in for the home screen and records what reaches it.
type menu struct {
	got []tea.Msg
}

func (m *menu) Init() tea.Cmd { return nil }
func (m *menu) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	m.got = append(m.got, msg)
	return m, nil
}
func (m *menu) View(int, int) string { return "menu" }
func (m *menu) Title() string        { return "Início" }

// initCounter wraps a screen and counts Init calls.
type initCounter struct {
	screen.Screen
	inits int
}

func (c *initCounter) Init() tea.Cmd {
	c.inits++
	return c.Screen.Init()
}

func result() *ask.ResultScreen {
	return ask.NewResult(&advisor.ContentResponse{
		Profile:      profiling.Moderate,
		Distribution: profiling.Distribution{20, 60, 20},
	})
}

func TestPushQuestionnaire(t *testing.T) {
	r := router.New(&menu{})
	form := &initCounter{Screen: ask.New(fakeAgent{})}
	r.Push(form)

	if r.Depth() != 2 {
		t.Errorf("got depth %d, want 2", r.Depth())
	}
	if got := r.Active().Title(); got != "Análise de perfil" {
		t.Errorf("got active %q, want the questionnaire", got)
	}
	if form.inits != 1 {
		t.Errorf("got %d Init calls, want 1", form.inits)
	}
}

func TestPopBackToMenu(t *testing.T) {
	r := router.New(&menu{})
	r.Push(simulate.New(fakeAgent{}))
	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("got depth %d, want 1", r.Depth())
	}
	if got := r.Active().Title(); got != "Início" {
		t.Errorf("got active %q, want the menu", got)
	}

	r.Pop()
	if r.Depth() != 1 {
		t.Errorf("got depth %d after popping the last screen, want 1", r.Depth())
	}
}

// The result replaces the questionnaire, so Esc from the result returns to
// the menu instead of the filled form.
func TestQuestionnaireReplacedByResult(t *testing.T) {
	r := router.New(&menu{})
	r.Push(ask.New(fakeAgent{}))

	res := &initCounter{Screen: result()}
	r.Update(router.ReplaceScreenMsg{Screen: res})

	if r.Depth() != 2 {
		t.Errorf("got depth %d, want 2", r.Depth())
	}
	if got := r.Active().Title(); got != "Seu perfil" {
		t.Errorf("got active %q, want the result", got)
	}
	if res.inits != 1 {
		t.Errorf("got %d Init calls, want 1", res.inits)
	}

	r.Update(router.PopScreenMsg{})
	if got := r.Active().Title(); got != "Início" {
		t.Errorf("got active %q after Esc, want the menu", got)
	}
}

func TestReplaceOnlyScreen(t *testing.T) {
	r := router.New(&menu{})
	r.Replace(simulate.New(fakeAgent{}))

	if r.Depth() != 1 {
		t.Errorf("got depth %d, want 1", r.Depth())
	}
	if got := r.Active().Title(); got != "Simulação" {
		t.Errorf("got active %q, want Simulação", got)
	}
}

func TestUpdateReachesActiveScreen(t *testing.T) {
	m := &menu{}
	r := router.New(m)
	r.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	if len(m.got) != 1 {
		t.Fatalf("menu got %d messages, want 1", len(m.got))
	}
	if r.View(80, 24) != "menu" {
		t.Errorf("got view %q", r.View(80, 24))
	}
}

func TestCommandHelpers(t *testing.T) {
	res := result()
	if msg, ok := router.Push(res)().(router.PushScreenMsg); !ok || msg.Screen != res {
		t.Errorf("Push: got %#v", msg)
	}
	if msg, ok := router.Replace(res)().(router.ReplaceScreenMsg); !ok || msg.Screen != res {
		t.Errorf("Replace: got %#v", msg)
	}
	if _, ok := router.Pop().(router.PopScreenMsg); !ok {
		t.Error("Pop: wrong message type")
	}
}
