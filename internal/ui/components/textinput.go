package components

import (
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/malu-oliver/agent-financeiro/internal/ui/theme"
)

// InputKind restricts what a TextInput accepts.
type InputKind int

const (
	KindText InputKind = iota
	KindInteger
	// KindDecimal accepts digits and one decimal separator, comma or dot.
	KindDecimal
)

// TextInput wraps bubbles/textinput with a label and validation mark.
type TextInput struct {
	Model     textinput.Model
	Label     string
	Kind      InputKind
	submitted bool
	valid     bool
}

// NewTextInput creates a new styled, unfocused text input.
func NewTextInput(label, placeholder string, kind InputKind, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	return TextInput{Model: ti, Label: label, Kind: kind}
}

// Focus gives the input the cursor.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes the cursor.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Update handles messages, dropping keys the kind does not accept.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok && t.Kind != KindText {
		if r := []rune(kmsg.Text); len(r) == 1 && !t.accepts(r[0]) {
			return t, nil
		}
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func (t TextInput) accepts(r rune) bool {
	if r >= '0' && r <= '9' {
		return true
	}
	if t.Kind == KindDecimal && (r == ',' || r == '.') {
		return !strings.ContainsAny(t.Model.Value(), ",.")
	}
	return false
}

// View renders the label, the input and the validation mark.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.Label != "" {
		style := theme.Unselected
		if t.Model.Focused() {
			style = theme.Selected
		}
		view = style.Render(t.Label) + "\n" + view
	}
	if t.submitted {
		if t.valid {
			view += " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		} else {
			view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}
	}
	return view
}

// Value returns the trimmed input value.
func (t TextInput) Value() string {
	return strings.TrimSpace(t.Model.Value())
}

// SetValue replaces the input value.
func (t *TextInput) SetValue(s string) {
	t.Model.SetValue(s)
}

// IntValue parses the value as an integer.
func (t TextInput) IntValue() (int, error) {
	return strconv.Atoi(t.Value())
}

// FloatValue parses the value, accepting a decimal comma.
func (t TextInput) FloatValue() (float64, error) {
	return strconv.ParseFloat(strings.Replace(t.Value(), ",", ".", 1), 64)
}

// Submit marks the input as submitted with a validation result.
func (t *TextInput) Submit(valid bool) {
	t.submitted = true
	t.valid = valid
}
