package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/malu-oliver/agent-financeiro/internal/profiling"
	"github.com/malu-oliver/agent-financeiro/internal/store"
)

type stubSource struct {
	users []store.User
	err   error
	calls int
}

func (s *stubSource) ListUsers(context.Context, int, int) ([]store.User, error) {
	return s.users, s.err
}

func (s *stubSource) Evolution(_ context.Context, id int) (profiling.EvolutionSummary, error) {
	s.calls++
	return profiling.EvolutionSummary{
		Dominant:      profiling.Conservative,
		Consistency:   0.8,
		Trend:         profiling.TrendStable,
		HistoryLength: 5,
		AvgConfidence: 0.6,
	}, nil
}

func loaded(t *testing.T, src *stubSource) *HistoryScreen {
	t.Helper()
	s := New(src)
	s.Update(s.Init()())
	return s
}

func TestHistoryListsUsers(t *testing.T) {
	src := &stubSource{users: []store.User{
		{ID: 1, Name: "Ana Souza", Age: 34, Income: 5000, Profile: "conservador", UpdatedAt: time.Now()},
		{ID: 2, Name: "Bruno Lima", Age: 41, Income: 12000, UpdatedAt: time.Now()},
	}}
	view := loaded(t, src).View(120, 30)

	for _, want := range []string{"Ana Souza", "R$ 5.000,00", "conservador", "Bruno Lima", "sem perfil"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestHistoryEmpty(t *testing.T) {
	view := loaded(t, &stubSource{}).View(120, 30)
	if !strings.Contains(view, "Nenhum investidor") {
		t.Errorf("got view:\n%s", view)
	}
}

func TestHistoryLoadError(t *testing.T) {
	view := loaded(t, &stubSource{err: errors.New("db closed")}).View(120, 30)
	if !strings.Contains(view, "db closed") {
		t.Errorf("got view:\n%s", view)
	}
}

func TestHistoryExpandLoadsEvolutionOnce(t *testing.T) {
	src := &stubSource{users: []store.User{{ID: 7, Name: "Ana Souza", Age: 34, Income: 5000}}}
	s := loaded(t, src)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command loading the evolution")
	}
	s.Update(cmd())
	if view := s.View(120, 30); !strings.Contains(view, "5 análises") || !strings.Contains(view, "estável") {
		t.Errorf("evolution missing:\n%s", view)
	}

	// Collapse and expand again: the summary is cached.
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if _, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("evolution reloaded")
	}
	if src.calls != 1 {
		t.Errorf("got %d evolution calls, want 1", src.calls)
	}
}

func TestHistoryNavigationClamps(t *testing.T) {
	src := &stubSource{users: []store.User{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}}
	s := loaded(t, src)

	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if s.selected != 0 {
		t.Errorf("got selected %d, want 0", s.selected)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.selected != 1 {
		t.Errorf("got selected %d, want 1", s.selected)
	}
}
