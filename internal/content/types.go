package content

import "github.com/malu-oliver/agent-financeiro/internal/profiling"

// Strategy types, in the order the generator escalates through them.
const (
	StrategyEducational  = "educativo"
	StrategyTransitional = "transicional"
	StrategyAdvanced     = "avancado"
	StrategySpecialized  = "especializado"
)

// Learning progress levels.
const (
	ProgressBeginner     = "iniciante"
	ProgressIntermediate = "intermediario"
	ProgressAdvanced     = "avancado"
)

// Where a piece of content came from.
const (
	SourceLLM      = "llm"
	SourceFallback = "fallback"
)

// Strategy steers the tone and depth of the generated text.
type Strategy struct {
	Type       string `json:"type"`
	Focus      string `json:"focus"`
	Complexity string `json:"complexity"`
}

// UserData are the attributes quoted in the prompt and the templates.
type UserData struct {
	Name   string  `json:"name"`
	Age    int     `json:"age"`
	Income float64 `json:"income"`
	Amount float64 `json:"amount,omitempty"`
}

// Request asks for one piece of content.
type Request struct {
	Profile profiling.Profile
	User    UserData
	Goal    string
	// UserID keys the interaction context. Empty means anonymous.
	UserID string
	// Conversation holds recent texts shown to the user, newest first.
	Conversation []string
}

// Content is a generated three-paragraph text.
type Content struct {
	Text       string   `json:"text"`
	Paragraphs []string `json:"paragraphs"`
	Strategy   Strategy `json:"strategy"`
	Source     string   `json:"source"`
}

// Interaction is what the generator has learned about one user.
type Interaction struct {
	PreviousProfiles []profiling.Profile `json:"previous_profiles"`
	ContentTypes     []string            `json:"content_types"`
	Engagement       float64             `json:"engagement"`
	Progress         string              `json:"progress"`
	Count            int                 `json:"count"`
}

// Suggestions are next steps derived from a user's interaction context.
type Suggestions struct {
	Suggestions      []string `json:"suggestions"`
	Action           string   `json:"autonomous_action"`
	Progress         string   `json:"learning_progress"`
	InteractionCount int      `json:"interaction_count"`
}
