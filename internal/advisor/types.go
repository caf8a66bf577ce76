package advisor

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/malu-oliver/agent-financeiro/internal/analytics"
	"github.com/malu-oliver/agent-financeiro/internal/content"
	"github.com/malu-oliver/agent-financeiro/internal/invest"
	"github.com/malu-oliver/agent-financeiro/internal/profiling"
)

// ErrNotFound is returned when a user does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports a request field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// UserRequest is the input of GenerateContent and of user create/update.
type UserRequest struct {
	Name           string  `json:"name"`
	Email          string  `json:"email,omitempty"`
	Age            int     `json:"age"`
	Income         float64 `json:"income"`
	Goal           string  `json:"goal"`
	SelfAssessment string  `json:"self_assessment,omitempty"`
	Reference      string  `json:"reference,omitempty"`
	Amount         float64 `json:"amount,omitempty"`
	Years          int     `json:"years,omitempty"`
}

// Validate checks field bounds. Optional numeric fields are absent when
// zero.
func (r UserRequest) Validate() error {
	name := strings.TrimSpace(r.Name)
	if n := utf8.RuneCountInString(name); n < 2 || n > 50 {
		return invalid("name", "must have between 2 and 50 characters")
	}
	if r.Email != "" {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			return invalid("email", "invalid address")
		}
	}
	if r.Age < 1 || r.Age > 119 {
		return invalid("age", "must be between 1 and 119, got %d", r.Age)
	}
	if r.Income <= 0 {
		return invalid("income", "must be positive")
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(r.Goal)); n < 10 || n > 1500 {
		return invalid("goal", "must have between 10 and 1500 characters")
	}
	if utf8.RuneCountInString(r.Reference) > 2000 {
		return invalid("reference", "must have at most 2000 characters")
	}
	if r.Amount < 0 {
		return invalid("amount", "must be positive when present")
	}
	if r.Years != 0 && (r.Years < 1 || r.Years > 50) {
		return invalid("years", "must be between 1 and 50, got %d", r.Years)
	}
	if s := strings.TrimSpace(r.SelfAssessment); s != "" && !strings.EqualFold(s, Undefined) {
		if _, ok := profiling.ParseProfile(s); !ok {
			return invalid("self_assessment", "must be conservador, moderado, agressivo or indefinido")
		}
	}
	return nil
}

// Undefined is the self-assessment of a user who does not know their profile.
const Undefined = "indefinido"

// AgentInfo is the adaptive part of a content response.
type AgentInfo struct {
	Action      string                     `json:"autonomous_action"`
	Suggestions []string                   `json:"suggestions"`
	Progress    string                     `json:"learning_progress"`
	Evolution   profiling.EvolutionSummary `json:"evolution"`
	NextActions []string                   `json:"next_actions"`
}

// Metadata identifies the user behind a content response.
type Metadata struct {
	UserID               int             `json:"user_id"`
	UserHash             string          `json:"user_hash"`
	PreviousInteractions int             `json:"previous_interactions"`
	Consistency          float64         `json:"profile_consistency"`
	Trend                profiling.Trend `json:"trend"`
}

// ContentResponse is the outcome of GenerateContent.
type ContentResponse struct {
	Profile        profiling.Profile         `json:"profile"`
	Distribution   profiling.Distribution    `json:"distribution"`
	Confidence     float64                   `json:"confidence"`
	Fallback       bool                      `json:"fallback_classification"`
	Content        string                    `json:"content"`
	Paragraphs     []string                  `json:"paragraphs"`
	Source         string                    `json:"content_source"`
	Strategy       content.Strategy          `json:"strategy"`
	Agent          AgentInfo                 `json:"agent"`
	Scenarios      *invest.Scenarios         `json:"scenarios,omitempty"`
	Peers          *analytics.PeerComparison `json:"peers,omitempty"`
	Metadata       Metadata                  `json:"metadata"`
}

// Interaction is one entry of a user's history.
type Interaction struct {
	At         time.Time         `json:"at"`
	Goal       string            `json:"goal"`
	Profile    profiling.Profile `json:"profile"`
	Confidence float64           `json:"confidence"`
}

// UserHistory is everything recorded about one user.
type UserHistory struct {
	Name              string                     `json:"name"`
	Email             string                     `json:"email,omitempty"`
	CreatedAt         time.Time                  `json:"created_at"`
	Evolution         profiling.EvolutionSummary `json:"evolution"`
	Interactions      []Interaction              `json:"interactions"`
	TotalInteractions int                        `json:"total_interactions"`
	TotalSimulations  int                        `json:"total_simulations"`
}

// Status describes the running agent.
type Status struct {
	Active            bool            `json:"active"`
	Capabilities      map[string]bool `json:"capabilities"`
	TrackedUsers      int             `json:"tracked_users"`
	TotalInteractions int             `json:"total_interactions"`
	AvgInteractions   float64         `json:"avg_interactions_per_user"`
	PatternsLearned   int             `json:"patterns_learned"`
	Triggers          map[string]int  `json:"triggers"`
	LLMModel          string          `json:"llm_model,omitempty"`
	Version           string          `json:"version"`
	Timestamp         time.Time       `json:"timestamp"`
}
