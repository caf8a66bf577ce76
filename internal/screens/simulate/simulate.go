// Package simulate is the investment simulation screen.
package simulate

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/malu-oliver/agent-financeiro/internal/advisor"
	"github.com/malu-oliver/agent-financeiro/internal/content"
	"github.com/malu-oliver/agent-financeiro/internal/invest"
	"github.com/malu-oliver/agent-financeiro/internal/profiling"
	"github.com/malu-oliver/agent-financeiro/internal/screen"
	"github.com/malu-oliver/agent-financeiro/internal/ui/components"
	"github.com/malu-oliver/agent-financeiro/internal/ui/layout"
	"github.com/malu-oliver/agent-financeiro/internal/ui/theme"
)

// Simulator is the part of advisor.Service the screen needs.
type Simulator interface {
	Simulate(ctx context.Context, userID int, req invest.SimulationRequest) (*invest.Simulation, error)
}

const (
	fieldInitial = iota
	fieldMonthly
	fieldYears
	fieldRate
	fieldProfile
)

type simulatedMsg struct {
	sim *invest.Simulation
	err error
}

// SimulateScreen asks for the simulation inputs and shows the projection.
type SimulateScreen struct {
	svc     Simulator
	inputs  []components.TextInput
	profile components.Choice
	focus   int
	loading bool
	sim     *invest.Simulation
	err     string
}

var _ screen.Screen = (*SimulateScreen)(nil)

func New(svc Simulator) *SimulateScreen {
	opts := make([]string, len(profiling.Profiles))
	for i, p := range profiling.Profiles {
		opts[i] = string(p)
	}
	profile := components.NewChoice("Perfil", opts)
	profile.Selected = 1
	return &SimulateScreen{
		svc: svc,
		inputs: []components.TextInput{
			fieldInitial: components.NewTextInput("Valor inicial (R$)", "10000", components.KindDecimal, 12),
			fieldMonthly: components.NewTextInput("Aporte mensal (R$)", "500", components.KindDecimal, 12),
			fieldYears:   components.NewTextInput("Prazo em anos", "10", components.KindInteger, 2),
			fieldRate:    components.NewTextInput("Taxa anual % (vazio usa a Selic)", "", components.KindDecimal, 6),
		},
		profile: profile,
	}
}

func (s *SimulateScreen) Init() tea.Cmd {
	return s.inputs[fieldInitial].Focus()
}

func (s *SimulateScreen) Title() string { return "Simulação" }

func (s *SimulateScreen) Capturing() bool { return s.loading }

func (s *SimulateScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Próximo"},
		{Key: "Enter", Description: "Simular"},
		{Key: "Esc", Description: "Voltar"},
	}
}

func (s *SimulateScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case simulatedMsg:
		s.loading = false
		s.sim = msg.sim
		s.err = ""
		if msg.err != nil {
			s.err = msg.err.Error()
		}
		return s, nil

	case tea.KeyPressMsg:
		if s.loading {
			return s, nil
		}
		switch msg.String() {
		case "tab":
			return s, s.setFocus(s.focus + 1)
		case "shift+tab":
			return s, s.setFocus(s.focus - 1)
		case "enter":
			if s.focus < fieldProfile {
				return s, s.setFocus(s.focus + 1)
			}
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	if s.focus == fieldProfile {
		s.profile, cmd = s.profile.Update(msg)
	} else {
		s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	}
	return s, cmd
}

func (s *SimulateScreen) setFocus(i int) tea.Cmd {
	i = min(max(i, 0), fieldProfile)
	if s.focus == fieldProfile {
		s.profile.Blur()
	} else {
		s.inputs[s.focus].Blur()
	}
	s.focus = i
	if i == fieldProfile {
		s.profile.Focus()
		return nil
	}
	return s.inputs[i].Focus()
}

// Request builds the simulation request. Empty numeric fields are zero.
func (s *SimulateScreen) Request() (invest.SimulationRequest, error) {
	req := invest.SimulationRequest{Profile: profiling.Profile(s.profile.Value())}
	for _, f := range []struct {
		i   int
		dst *float64
	}{
		{fieldInitial, &req.InitialAmount},
		{fieldMonthly, &req.MonthlyDeposit},
		{fieldRate, &req.AnnualRate},
	} {
		if s.inputs[f.i].Value() == "" {
			continue
		}
		v, err := s.inputs[f.i].FloatValue()
		if err != nil {
			return req, &advisor.ValidationError{Field: s.inputs[f.i].Label, Message: "must be a number"}
		}
		*f.dst = v
	}
	if v := s.inputs[fieldYears].Value(); v != "" {
		n, err := s.inputs[fieldYears].IntValue()
		if err != nil {
			return req, &advisor.ValidationError{Field: "years", Message: "must be a whole number"}
		}
		req.Years = n
	}
	return req, nil
}

func (s *SimulateScreen) submit() tea.Cmd {
	req, err := s.Request()
	if err != nil {
		s.err = err.Error()
		return nil
	}
	s.loading = true
	svc := s.svc
	return func() tea.Msg {
		sim, err := svc.Simulate(context.Background(), 0, req)
		return simulatedMsg{sim: sim, err: err}
	}
}

// Summary renders the outcome of a simulation.
func Summary(sim *invest.Simulation) string {
	var b strings.Builder
	rate := content.FormatPercent(sim.AnnualRate) + " ao ano"
	if sim.RateFromSelic {
		rate += " (derivada da Selic)"
	}
	fmt.Fprintf(&b, "%s  %s\n", theme.Label.Render("Taxa"), rate)
	fmt.Fprintf(&b, "%s  %s\n", theme.Label.Render("Valor final"), content.FormatBRL(sim.FinalValue))
	fmt.Fprintf(&b, "%s  %s\n", theme.Label.Render("Total investido"), content.FormatBRL(sim.TotalInvested))
	fmt.Fprintf(&b, "%s  %s (%s)\n\n", theme.Label.Render("Rendimento"),
		content.FormatBRL(sim.Interest), content.FormatPercent(sim.PercentReturn))

	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("  %-4s  %18s  %18s", "Ano", "Acumulado", "Investido")) + "\n")
	for _, p := range sim.Projection {
		fmt.Fprintf(&b, "  %-4d  %18s  %18s\n", p.Year, content.FormatBRL(p.Accumulated), content.FormatBRL(p.Invested))
	}
	return b.String()
}

func (s *SimulateScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Simule seu investimento") + "\n\n")
	for _, in := range s.inputs {
		b.WriteString(in.View() + "\n")
	}
	b.WriteString("\n" + s.profile.View() + "\n")

	switch {
	case s.loading:
		b.WriteString(theme.Hint.Render("Calculando..."))
	case s.err != "":
		b.WriteString(theme.ErrorText.Render(s.err))
	case s.sim != nil:
		b.WriteString(Summary(s.sim))
	}
	return lipgloss.NewStyle().
		Width(layout.ContentWidth(width)).
		Padding(1, 2).
		Render(b.String())
}
