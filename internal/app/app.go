// Package app runs the terminal UI.
package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/malu-oliver/agent-financeiro/internal/content"
	"github.com/malu-oliver/agent-financeiro/internal/router"
	"github.com/malu-oliver/agent-financeiro/internal/screen"
	"github.com/malu-oliver/agent-financeiro/internal/screens/ask"
	"github.com/malu-oliver/agent-financeiro/internal/screens/home"
	"github.com/malu-oliver/agent-financeiro/internal/ui/layout"
)

// RateSource reports the current Selic rate for the header.
type RateSource interface {
	Current(ctx context.Context) float64
}

// Options wires the UI.
type Options struct {
	Agent home.Agent
	Selic RateSource // optional
	// StartAsk opens the questionnaire on top of the home screen.
	StartAsk bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	status string
	width  int
	height int
}

func newAppModel(opts Options) AppModel {
	m := AppModel{router: router.New(home.New(opts.Agent))}
	if opts.StartAsk {
		m.router.Push(ask.New(opts.Agent))
	}
	if opts.Selic != nil {
		m.status = "Selic " + content.FormatPercent(opts.Selic.Current(context.Background()))
	}
	return m
}

func (m AppModel) Init() tea.Cmd {
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if c, ok := m.router.Active().(screen.Capturer); ok && c.Capturing() {
				return m, nil
			}
			if m.router.Depth() > 1 {
				return m, router.Pop
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) footerHints() []layout.KeyHint {
	if p, ok := m.router.Active().(screen.KeyHintProvider); ok {
		return append(p.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Sair"})
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navegar"},
		{Key: "Enter", Description: "Selecionar"},
		{Key: "Ctrl+C", Description: "Sair"},
	}
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	title := ""
	if active := m.router.Active(); active != nil {
		title = active.Title()
	}
	header := layout.RenderHeader(title, m.status, m.width)
	footer := layout.RenderFooter(m.footerHints(), m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := m.router.View(m.width, contentHeight)
	v.SetContent(layout.RenderFrame(header, body, footer, m.width, m.height))
	return v
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	if opts.Agent == nil {
		return fmt.Errorf("app: no agent configured")
	}
	p := tea.NewProgram(newAppModel(opts))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running terminal UI: %w", err)
	}
	return nil
}
