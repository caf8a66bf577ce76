// Package screen defines what the router stacks.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/malu-oliver/agent-financeiro/internal/ui/layout"
)

// Screen is one page of the terminal UI.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	// View renders the content area, excluding header and footer.
	View(width, height int) string
	// Title is shown in the header.
	Title() string
}

// KeyHintProvider is implemented by screens that replace the default
// footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Capturer is implemented by screens that are editing text and need Esc
// and letter keys for themselves.
type Capturer interface {
	Capturing() bool
}
