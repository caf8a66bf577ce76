package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestFilled(t *testing.T) {
	tests := []struct {
		percent float64
		width   int
		want    int
	}{
		{0, 10, 0},
		{0.5, 10, 5},
		{0.26, 10, 3},
		{1, 10, 10},
		{1.5, 10, 10},
		{-0.2, 10, 0},
	}
	for _, tt := range tests {
		if got := Filled(tt.percent, tt.width); got != tt.want {
			t.Errorf("Filled(%v, %d): got %d, want %d", tt.percent, tt.width, got, tt.want)
		}
	}
}

func TestProgressBarView(t *testing.T) {
	bar := NewProgressBar("moderado", 0.5, true, 40)
	bar.LabelWidth = 12
	view := bar.View()
	if !strings.Contains(view, "moderado") {
		t.Errorf("label missing from %q", view)
	}
	if !strings.Contains(view, "50.0%") {
		t.Errorf("percent missing from %q", view)
	}
}

func TestMenuWrapsAndSkipsDisabled(t *testing.T) {
	var picked string
	m := NewMenu([]MenuItem{
		{Label: "a", Disabled: true},
		{Label: "b", Action: func() tea.Cmd { picked = "b"; return nil }},
		{Label: "c", Action: func() tea.Cmd { picked = "c"; return nil }},
	})
	if m.Selected != 1 {
		t.Fatalf("got selected %d, want 1", m.Selected)
	}
	m, _ = m.Update(key(tea.KeyUp))
	if m.Selected != 2 {
		t.Errorf("up from first enabled: got %d, want 2", m.Selected)
	}
	m, _ = m.Update(key(tea.KeyDown))
	if m.Selected != 1 {
		t.Errorf("down from last: got %d, want 1", m.Selected)
	}
	m.Update(key(tea.KeyEnter))
	if picked != "b" {
		t.Errorf("got picked %q, want b", picked)
	}
}

func TestChoiceIgnoresKeysWhenBlurred(t *testing.T) {
	c := NewChoice("perfil", []string{"x", "y", "z"})
	c, _ = c.Update(key(tea.KeyDown))
	if c.Value() != "x" {
		t.Errorf("blurred choice moved to %q", c.Value())
	}
	c.Focus()
	c, _ = c.Update(key(tea.KeyDown))
	c, _ = c.Update(key(tea.KeyDown))
	c, _ = c.Update(key(tea.KeyDown))
	if c.Value() != "z" {
		t.Errorf("got %q, want z", c.Value())
	}
}

func TestTextInputDecimalFilter(t *testing.T) {
	in := NewTextInput("renda", "", KindDecimal, 12)
	in.Focus()
	for _, r := range "1a2,5,0" {
		in, _ = in.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	if got := in.Value(); got != "12,50" {
		t.Fatalf("got %q, want 12,50", got)
	}
	v, err := in.FloatValue()
	if err != nil || v != 12.5 {
		t.Errorf("FloatValue: got %v, %v", v, err)
	}
}

func TestTextInputInteger(t *testing.T) {
	in := NewTextInput("idade", "", KindInteger, 3)
	in.SetValue("34")
	n, err := in.IntValue()
	if err != nil || n != 34 {
		t.Errorf("IntValue: got %d, %v", n, err)
	}
}
