package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/malu-oliver/agent-financeiro/internal/ui/theme"
)

// ProgressBar displays a horizontal bar for a share between 0 and 1.
type ProgressBar struct {
	Label       string
	LabelWidth  int // pads the label so stacked bars line up
	Percent     float64
	ShowPercent bool
	Width       int
	Color       color.Color // defaults to theme.Secondary
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// Filled returns how many cells of a bar of barWidth cells are filled.
func Filled(percent float64, barWidth int) int {
	return min(max(int(float64(barWidth)*percent+0.5), 0), barWidth)
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var b strings.Builder

	if p.Label != "" {
		label := p.Label
		if pad := p.LabelWidth - lipgloss.Width(label); pad > 0 {
			label += strings.Repeat(" ", pad)
		}
		b.WriteString(theme.Body.Render(label) + "  ")
	}

	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 8 // "  100.0%"
	}
	barWidth := max(p.Width-lipgloss.Width(b.String())-percentWidth, 4)

	fill := p.Color
	if fill == nil {
		fill = theme.Secondary
	}
	filled := Filled(p.Percent, barWidth)
	b.WriteString(lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled)))
	b.WriteString(theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled)))

	if p.ShowPercent {
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("  %5.1f%%", p.Percent*100)))
	}
	return b.String()
}
