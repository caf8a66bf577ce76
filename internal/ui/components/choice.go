package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/malu-oliver/agent-financeiro/internal/ui/theme"
)

// Choice picks one option from a short vertical list.
type Choice struct {
	Label    string
	Options  []string
	Selected int
	focused  bool
}

func NewChoice(label string, options []string) Choice {
	return Choice{Label: label, Options: options}
}

func (c *Choice) Focus() { c.focused = true }
func (c *Choice) Blur()  { c.focused = false }

// Update moves the selection while focused. Enter is left to the parent.
func (c Choice) Update(msg tea.Msg) (Choice, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok || !c.focused {
		return c, nil
	}
	switch kmsg.String() {
	case "up", "k", "left":
		if c.Selected > 0 {
			c.Selected--
		}
	case "down", "j", "right":
		if c.Selected < len(c.Options)-1 {
			c.Selected++
		}
	}
	return c, nil
}

// Value returns the selected option.
func (c Choice) Value() string {
	if c.Selected < 0 || c.Selected >= len(c.Options) {
		return ""
	}
	return c.Options[c.Selected]
}

func (c Choice) View() string {
	var b strings.Builder
	if c.Label != "" {
		style := theme.Unselected
		if c.focused {
			style = theme.Selected
		}
		b.WriteString(style.Render(c.Label) + "\n")
	}
	for i, opt := range c.Options {
		switch {
		case i == c.Selected && c.focused:
			b.WriteString(theme.Selected.Render("  ▸ "+opt) + "\n")
		case i == c.Selected:
			b.WriteString(theme.Body.Render("  • "+opt) + "\n")
		default:
			b.WriteString(theme.Subtitle.Render("    "+opt) + "\n")
		}
	}
	return b.String()
}
