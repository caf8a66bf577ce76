// Package layout draws the frame shared by every screen: a header with
// the app name, screen title and Selic status, the screen body, and a
// footer of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/malu-oliver/agent-financeiro/internal/ui/theme"
)

const (
	MinWidth  = 72
	MinHeight = 20

	// Below this width screens drop side margins.
	CompactWidthThreshold = 100
)

type KeyHint struct {
	Key         string
	Description string
}

var (
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(theme.Border)
	brandStyle  = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	titleStyle  = lipgloss.NewStyle().Foreground(theme.Text)
	statusStyle = lipgloss.NewStyle().Foreground(theme.Accent)
	keyStyle    = lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	descStyle   = lipgloss.NewStyle().Foreground(theme.TextDim)
)

func IsCompactWidth(width int) bool { return width < CompactWidthThreshold }

func IsTooSmall(width, height int) bool { return width < MinWidth || height < MinHeight }

// ContentWidth is the width screens should wrap their text to.
func ContentWidth(width int) int {
	if IsCompactWidth(width) {
		return max(width-4, 20)
	}
	return min(width-8, 96)
}

func RenderMinSizeMessage(width, height int) string {
	return titleStyle.
		Align(lipgloss.Center).
		Width(width).
		Height(height).
		Render(fmt.Sprintf("Terminal pequeno demais.\n\nAumente para pelo menos\n%d x %d\n\nAtual: %d x %d",
			MinWidth, MinHeight, width, height))
}

// RenderHeader centers title between the brand and status, which is
// usually the current Selic rate.
func RenderHeader(title, status string, width int) string {
	brand := brandStyle.Render("  agentfin")
	mid := titleStyle.Render(title)
	right := statusStyle.Render(status)

	inner := max(width-4, 0)
	lead := max((inner-lipgloss.Width(mid))/2-lipgloss.Width(brand), 1)
	trail := max(inner-lipgloss.Width(brand)-lead-lipgloss.Width(mid)-lipgloss.Width(right), 1)

	line := brand + strings.Repeat(" ", lead) + mid + strings.Repeat(" ", trail) + right
	return boxStyle.Width(width).Render(line)
}

func RenderFooter(hints []KeyHint, width int) string {
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = keyStyle.Render(h.Key) + " " + descStyle.Render(h.Description)
	}
	return boxStyle.Width(width).Render("  " + strings.Join(parts, "   "))
}

// RenderFrame stacks header, body and footer, giving the body whatever
// height is left.
func RenderFrame(header, body, footer string, width, height int) string {
	bodyHeight := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body = lipgloss.NewStyle().Width(width).Height(bodyHeight).Render(body)
	return strings.Join([]string{header, body, footer}, "\n")
}
