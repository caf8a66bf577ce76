// Package ask is the questionnaire screen: it collects the investor's
// data, classifies it and shows the adaptive content.
package ask

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/malu-oliver/agent-financeiro/internal/advisor"
	"github.com/malu-oliver/agent-financeiro/internal/router"
	"github.com/malu-oliver/agent-financeiro/internal/screen"
	"github.com/malu-oliver/agent-financeiro/internal/ui/components"
	"github.com/malu-oliver/agent-financeiro/internal/ui/layout"
	"github.com/malu-oliver/agent-financeiro/internal/ui/theme"
)

// Advisor is the part of advisor.Service the screen needs.
type Advisor interface {
	GenerateContent(ctx context.Context, req advisor.UserRequest) (*advisor.ContentResponse, error)
}

// SelfAssessments are offered in the self-assessment choice.
var SelfAssessments = []string{advisor.Undefined, "conservador", "moderado", "agressivo"}

const (
	fieldName = iota
	fieldEmail
	fieldAge
	fieldIncome
	fieldGoal
	fieldAmount
	fieldYears
	fieldSelf // the choice, after the text inputs
)

// resultMsg carries the outcome of GenerateContent.
type resultMsg struct {
	resp *advisor.ContentResponse
	err  error
}

// AskScreen is the questionnaire form.
type AskScreen struct {
	svc     Advisor
	inputs  []components.TextInput
	self    components.Choice
	focus   int
	loading bool
	err     string
}

var _ screen.Screen = (*AskScreen)(nil)

func New(svc Advisor) *AskScreen {
	s := &AskScreen{
		svc: svc,
		inputs: []components.TextInput{
			fieldName:   components.NewTextInput("Nome", "Ana Souza", components.KindText, 50),
			fieldEmail:  components.NewTextInput("E-mail (opcional)", "ana@exemplo.com", components.KindText, 120),
			fieldAge:    components.NewTextInput("Idade", "34", components.KindInteger, 3),
			fieldIncome: components.NewTextInput("Renda mensal (R$)", "5000", components.KindDecimal, 12),
			fieldGoal:   components.NewTextInput("Objetivo", "Quero segurança para minha aposentadoria", components.KindText, 1500),
			fieldAmount: components.NewTextInput("Valor para investir (opcional)", "10000", components.KindDecimal, 12),
			fieldYears:  components.NewTextInput("Prazo em anos (opcional)", "10", components.KindInteger, 2),
		},
		self: components.NewChoice("Como você se avalia?", SelfAssessments),
	}
	return s
}

func (s *AskScreen) Init() tea.Cmd {
	return s.inputs[fieldName].Focus()
}

func (s *AskScreen) Title() string { return "Análise de perfil" }

// Capturing holds Esc while a request is in flight.
func (s *AskScreen) Capturing() bool { return s.loading }

func (s *AskScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab/↓", Description: "Próximo"},
		{Key: "Shift+Tab/↑", Description: "Anterior"},
		{Key: "Enter", Description: "Enviar"},
		{Key: "Esc", Description: "Voltar"},
	}
}

func (s *AskScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		s.loading = false
		if msg.err != nil {
			s.err = msg.err.Error()
			return s, nil
		}
		return s, router.Replace(NewResult(msg.resp))

	case tea.KeyPressMsg:
		if s.loading {
			return s, nil
		}
		onChoice := s.focus == fieldSelf
		switch msg.String() {
		case "tab":
			return s, s.setFocus(s.focus + 1)
		case "shift+tab":
			return s, s.setFocus(s.focus - 1)
		case "down":
			if !onChoice {
				return s, s.setFocus(s.focus + 1)
			}
		case "up":
			if !onChoice || s.self.Selected == 0 {
				return s, s.setFocus(s.focus - 1)
			}
		case "enter":
			if !onChoice {
				return s, s.setFocus(s.focus + 1)
			}
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	if s.focus == fieldSelf {
		s.self, cmd = s.self.Update(msg)
	} else {
		s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	}
	return s, cmd
}

// setFocus moves the cursor to field i, clamped to the form.
func (s *AskScreen) setFocus(i int) tea.Cmd {
	i = min(max(i, 0), fieldSelf)
	if s.focus == fieldSelf {
		s.self.Blur()
	} else {
		s.inputs[s.focus].Blur()
	}
	s.focus = i
	if i == fieldSelf {
		s.self.Focus()
		return nil
	}
	return s.inputs[i].Focus()
}

// Request builds the request from the form. Empty optional fields stay zero.
func (s *AskScreen) Request() (advisor.UserRequest, error) {
	req := advisor.UserRequest{
		Name:           s.inputs[fieldName].Value(),
		Email:          s.inputs[fieldEmail].Value(),
		Goal:           s.inputs[fieldGoal].Value(),
		SelfAssessment: s.self.Value(),
	}
	var err error
	if req.Age, err = s.intField(fieldAge, "age"); err != nil {
		return req, err
	}
	if req.Income, err = s.floatField(fieldIncome, "income"); err != nil {
		return req, err
	}
	if req.Amount, err = s.floatField(fieldAmount, "amount"); err != nil {
		return req, err
	}
	if req.Years, err = s.intField(fieldYears, "years"); err != nil {
		return req, err
	}
	return req, req.Validate()
}

func (s *AskScreen) intField(i int, name string) (int, error) {
	if s.inputs[i].Value() == "" {
		return 0, nil
	}
	n, err := s.inputs[i].IntValue()
	if err != nil {
		return 0, &advisor.ValidationError{Field: name, Message: "must be a whole number"}
	}
	return n, nil
}

func (s *AskScreen) floatField(i int, name string) (float64, error) {
	if s.inputs[i].Value() == "" {
		return 0, nil
	}
	v, err := s.inputs[i].FloatValue()
	if err != nil {
		return 0, &advisor.ValidationError{Field: name, Message: "must be a number"}
	}
	return v, nil
}

func (s *AskScreen) submit() tea.Cmd {
	req, err := s.Request()
	if err != nil {
		s.err = err.Error()
		return nil
	}
	s.err = ""
	s.loading = true
	svc := s.svc
	return func() tea.Msg {
		resp, err := svc.GenerateContent(context.Background(), req)
		return resultMsg{resp: resp, err: err}
	}
}

func (s *AskScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Conte um pouco sobre você") + "\n")
	b.WriteString(theme.Subtitle.Render("As respostas definem seu perfil de investidor.") + "\n\n")

	for _, in := range s.inputs {
		b.WriteString(in.View() + "\n")
	}
	b.WriteString("\n" + s.self.View())

	switch {
	case s.loading:
		b.WriteString("\n" + theme.Hint.Render("Analisando seu perfil..."))
	case s.err != "":
		b.WriteString("\n" + theme.ErrorText.Render(s.err))
	}

	return lipgloss.NewStyle().
		Width(layout.ContentWidth(width)).
		Padding(1, 2).
		Render(b.String())
}
