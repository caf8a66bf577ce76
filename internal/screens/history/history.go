// Package history lists stored investors and how their profile evolved.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/malu-oliver/agent-financeiro/internal/content"
	"github.com/malu-oliver/agent-financeiro/internal/profiling"
	"github.com/malu-oliver/agent-financeiro/internal/screen"
	"github.com/malu-oliver/agent-financeiro/internal/store"
	"github.com/malu-oliver/agent-financeiro/internal/ui/layout"
	"github.com/malu-oliver/agent-financeiro/internal/ui/theme"
)

// pageSize is how many investors are loaded.
const pageSize = 50

// Source provides the investors and their evolution.
type Source interface {
	ListUsers(ctx context.Context, limit, offset int) ([]store.User, error)
	Evolution(ctx context.Context, userID int) (profiling.EvolutionSummary, error)
}

type usersLoadedMsg struct {
	Users []store.User
	Err   error
}

type evolutionLoadedMsg struct {
	UserID  int
	Summary profiling.EvolutionSummary
	Err     error
}

// HistoryScreen lists investors; Enter expands one to show its evolution.
type HistoryScreen struct {
	src       Source
	users     []store.User
	evolution map[int]profiling.EvolutionSummary
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

func New(src Source) *HistoryScreen {
	return &HistoryScreen{
		src:       src,
		evolution: make(map[int]profiling.EvolutionSummary),
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		users, err := s.src.ListUsers(context.Background(), pageSize, 0)
		return usersLoadedMsg{Users: users, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "Histórico"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Evolução"},
		{Key: "↑↓", Description: "Navegar"},
		{Key: "Esc", Description: "Voltar"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case usersLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.users = msg.Users
		}
		s.loaded = true
		return s, nil

	case evolutionLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.evolution[msg.UserID] = msg.Summary
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.users)-1 {
				s.selected++
			}
		case "enter":
			if len(s.users) == 0 {
				return s, nil
			}
			s.expanded[s.selected] = !s.expanded[s.selected]
			id := s.users[s.selected].ID
			if _, ok := s.evolution[id]; s.expanded[s.selected] && !ok {
				return s, s.loadEvolution(id)
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) loadEvolution(id int) tea.Cmd {
	return func() tea.Msg {
		ev, err := s.src.Evolution(context.Background(), id)
		return evolutionLoadedMsg{UserID: id, Summary: ev, Err: err}
	}
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nErro: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Carregando investidores...")
	}
	if len(s.users) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Nenhum investidor ainda. Descubra seu perfil primeiro!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, u := range s.users {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		profile := u.Profile
		if profile == "" {
			profile = "sem perfil"
		}
		line := fmt.Sprintf("%s%-24s  %3d anos  %14s  %-11s  %s",
			prefix, truncate(u.Name, 24), u.Age, content.FormatBRL(u.Income),
			profile, u.UpdatedAt.Local().Format("02/01/2006"))

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.detail(u)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (s *HistoryScreen) detail(u store.User) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true)
	ev, ok := s.evolution[u.ID]
	switch {
	case !ok:
		return dim.Render("    carregando...")
	case ev.HistoryLength == 0:
		return dim.Render("    nenhuma análise registrada")
	}
	line := fmt.Sprintf("    %d análises · consistência %.0f%% · tendência %s · confiança média %.0f%%",
		ev.HistoryLength, ev.Consistency*100, trendLabel(ev.Trend), ev.AvgConfidence*100)
	return lipgloss.NewStyle().Foreground(theme.ProfileColor(string(ev.Dominant))).Render(line)
}

func trendLabel(t profiling.Trend) string {
	switch t {
	case profiling.TrendStable:
		return "estável"
	case profiling.TrendEvolving:
		return "em evolução"
	case profiling.TrendExploring:
		return "explorando"
	default:
		return "poucos dados"
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
