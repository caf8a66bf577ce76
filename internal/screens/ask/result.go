package ask

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/malu-oliver/agent-financeiro/internal/advisor"
	"github.com/malu-oliver/agent-financeiro/internal/content"
	"github.com/malu-oliver/agent-financeiro/internal/profiling"
	"github.com/malu-oliver/agent-financeiro/internal/router"
	"github.com/malu-oliver/agent-financeiro/internal/screen"
	"github.com/malu-oliver/agent-financeiro/internal/ui/components"
	"github.com/malu-oliver/agent-financeiro/internal/ui/layout"
	"github.com/malu-oliver/agent-financeiro/internal/ui/theme"
)

// ResultScreen shows a classification and the content generated for it.
type ResultScreen struct {
	resp   *advisor.ContentResponse
	offset int // first line shown, for scrolling
}

var _ screen.Screen = (*ResultScreen)(nil)

func NewResult(resp *advisor.ContentResponse) *ResultScreen {
	return &ResultScreen{resp: resp}
}

func (r *ResultScreen) Init() tea.Cmd { return nil }

func (r *ResultScreen) Title() string { return "Seu perfil" }

func (r *ResultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Rolar"},
		{Key: "Enter/Esc", Description: "Voltar"},
	}
}

func (r *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return r, nil
	}
	switch kmsg.String() {
	case "up", "k":
		r.offset = max(r.offset-1, 0)
	case "down", "j":
		r.offset++
	case "enter":
		return r, router.Pop
	}
	return r, nil
}

// Bars renders one bar per profile, in risk order.
func Bars(d profiling.Distribution, width int) string {
	var b strings.Builder
	for _, p := range profiling.Profiles {
		bar := components.NewProgressBar(string(p), d.Get(p)/100, true, width)
		bar.LabelWidth = len("conservador")
		bar.Color = theme.ProfileColor(string(p))
		b.WriteString(bar.View() + "\n")
	}
	return b.String()
}

func (r *ResultScreen) View(width, height int) string {
	w := layout.ContentWidth(width)
	resp := r.resp

	var b strings.Builder
	profile := lipgloss.NewStyle().Foreground(theme.ProfileColor(string(resp.Profile))).Bold(true)
	b.WriteString(theme.Title.Render("Perfil ") + profile.Render(string(resp.Profile)) + "\n")
	conf := fmt.Sprintf("Confiança %.0f%%", resp.Confidence*100)
	if resp.Fallback {
		conf += " (estimativa sem palavras-chave reconhecidas)"
	}
	b.WriteString(theme.Subtitle.Render(conf) + "\n\n")
	b.WriteString(Bars(resp.Distribution, min(w, 72)) + "\n")

	evo := resp.Agent.Evolution
	b.WriteString(theme.Label.Render("Evolução") + "  ")
	b.WriteString(theme.Body.Render(fmt.Sprintf("%s, consistência %.0f%%, %d análise(s)",
		evo.Trend, evo.Consistency*100, evo.HistoryLength)) + "\n\n")

	text := lipgloss.NewStyle().Width(w).Foreground(theme.Text)
	for _, p := range resp.Paragraphs {
		b.WriteString(text.Render(p) + "\n\n")
	}
	if resp.Source == content.SourceFallback {
		b.WriteString(theme.Hint.Render("Conteúdo gerado a partir de modelos locais.") + "\n\n")
	}

	if sc := resp.Scenarios; sc != nil {
		b.WriteString(theme.Label.Render(fmt.Sprintf("Projeção em %d meses", sc.Profile.Months)) + "\n")
		for _, row := range []struct {
			name string
			val  float64
		}{
			{"Perfil", sc.Profile.FinalValue},
			{"Otimista", sc.Optimistic.FinalValue},
			{"Pessimista", sc.Pessimistic.FinalValue},
			{"Selic " + content.FormatPercent(sc.CurrentSelic), sc.Selic.FinalValue},
		} {
			b.WriteString(fmt.Sprintf("  %-16s %s\n", row.name, content.FormatBRL(row.val)))
		}
		b.WriteString("\n")
	}

	if len(resp.Agent.NextActions) > 0 {
		b.WriteString(theme.Label.Render("Próximos passos") + "\n")
		for _, a := range resp.Agent.NextActions {
			b.WriteString(theme.Body.Render("  • "+a) + "\n")
		}
	}

	lines := strings.Split(b.String(), "\n")
	if height > 0 {
		r.offset = min(r.offset, max(len(lines)-height, 0))
		lines = lines[r.offset:]
		lines = lines[:min(len(lines), height)]
	}
	return lipgloss.NewStyle().Padding(0, 2).Render(strings.Join(lines, "\n"))
}
