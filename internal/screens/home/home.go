// Package home is the landing menu of the terminal UI.
package home

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/malu-oliver/agent-financeiro/internal/advisor"
	"github.com/malu-oliver/agent-financeiro/internal/router"
	"github.com/malu-oliver/agent-financeiro/internal/screen"
	"github.com/malu-oliver/agent-financeiro/internal/screens/ask"
	"github.com/malu-oliver/agent-financeiro/internal/screens/history"
	"github.com/malu-oliver/agent-financeiro/internal/screens/simulate"
	"github.com/malu-oliver/agent-financeiro/internal/ui/components"
	"github.com/malu-oliver/agent-financeiro/internal/ui/layout"
	"github.com/malu-oliver/agent-financeiro/internal/ui/theme"
)

// Agent is what the home screen and the screens it opens need.
type Agent interface {
	ask.Advisor
	simulate.Simulator
	history.Source
	Status() advisor.Status
}

// HomeScreen shows the agent's learning state and the main menu.
type HomeScreen struct {
	agent advisor.Status
	svc   Agent
	menu  components.Menu
}

var _ screen.Screen = (*HomeScreen)(nil)

func New(svc Agent) *HomeScreen {
	h := &HomeScreen{svc: svc, agent: svc.Status()}
	h.menu = components.NewMenu([]components.MenuItem{
		{Label: "Descobrir meu perfil", Description: "questionário e conteúdo personalizado",
			Action: func() tea.Cmd { return router.Push(ask.New(svc)) }},
		{Label: "Simular investimento", Description: "juros compostos com aportes mensais",
			Action: func() tea.Cmd { return router.Push(simulate.New(svc)) }},
		{Label: "Histórico de investidores", Description: "perfis salvos e sua evolução",
			Action: func() tea.Cmd { return router.Push(history.New(svc)) }},
		{Label: "Sair", Action: func() tea.Cmd { return tea.Quit }},
	})
	return h
}

func (h *HomeScreen) Init() tea.Cmd { return nil }

func (h *HomeScreen) Title() string { return "Início" }

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	// Returning from a sub-screen: the agent may have learned something.
	if _, ok := msg.(tea.KeyPressMsg); ok {
		h.agent = h.svc.Status()
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// statsLine summarizes what the agent has learned.
func statsLine(st advisor.Status) string {
	return fmt.Sprintf("%d investidores acompanhados · %d análises · %d padrões aprendidos",
		st.TrackedUsers, st.TotalInteractions, st.PatternsLearned)
}

func (h *HomeScreen) View(width, height int) string {
	cw := min(layout.ContentWidth(width), 72)
	var sections []string

	sections = append(sections,
		theme.Title.Render("Agente financeiro")+"\n"+
			theme.Subtitle.Render("Descubra seu perfil de investidor e aprenda no seu ritmo."))
	sections = append(sections, theme.Card.Width(cw).Render(theme.Body.Render(statsLine(h.agent))))
	sections = append(sections, h.menu.View())

	content := strings.Join(sections, "\n\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
