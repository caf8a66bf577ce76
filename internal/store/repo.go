package store

import (
	"context"
	"encoding/json"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// User is a registered investor.
type User struct {
	ID        int       `json:"id"`
	Hash      string    `json:"hash"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Age       int       `json:"age"`
	Income    float64   `json:"income"`
	Goal      string    `json:"goal,omitempty"`
	Profile   string    `json:"profile,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserRepo manages users.
type UserRepo interface {
	// Create inserts u and fills in its ID and timestamps.
	Create(ctx context.Context, u *User) error
	// Get returns the user with id, or ErrNotFound.
	Get(ctx context.Context, id int) (*User, error)
	// FindByHash returns the user with hash, or ErrNotFound.
	FindByHash(ctx context.Context, hash string) (*User, error)
	// Update overwrites the mutable fields of u.
	Update(ctx context.Context, u *User) error
	// Delete removes the user and its events, or returns ErrNotFound.
	Delete(ctx context.Context, id int) error
	// List pages through users ordered by ID.
	List(ctx context.Context, limit, offset int) ([]User, error)
	// All returns every user.
	All(ctx context.Context) ([]User, error)
}

// ClassificationEventData captures one classification.
type ClassificationEventData struct {
	UserID         int     `json:"user_id"`
	Goal           string  `json:"goal"`
	SelfAssessment string  `json:"self_assessment,omitempty"`
	Dominant       string  `json:"dominant"`
	Conservative   float64 `json:"conservador"`
	Moderate       float64 `json:"moderado"`
	Aggressive     float64 `json:"agressivo"`
	Confidence     float64 `json:"confidence"`
	MatchCount     int     `json:"match_count"`
	Fallback       bool    `json:"fallback"`
}

// ClassificationEvent is a stored classification.
type ClassificationEvent struct {
	ID        int       `json:"id"`
	Sequence  int64     `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	ClassificationEventData
}

// ContentEventData captures one generated piece of content.
type ContentEventData struct {
	UserID   int    `json:"user_id"`
	Profile  string `json:"profile"`
	Strategy string `json:"strategy"`
	Source   string `json:"source"`
	Content  string `json:"content"`
}

// ContentEvent is a stored content generation.
type ContentEvent struct {
	ID        int       `json:"id"`
	Sequence  int64     `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	ContentEventData
}

// SimulationEventData captures one investment simulation. UserID is 0 for
// anonymous simulations.
type SimulationEventData struct {
	UserID         int     `json:"user_id,omitempty"`
	Profile        string  `json:"profile,omitempty"`
	InitialAmount  float64 `json:"initial_amount"`
	MonthlyDeposit float64 `json:"monthly_deposit"`
	Years          int     `json:"years"`
	AnnualRate     float64 `json:"annual_rate"`
	FinalValue     float64 `json:"final_value"`
	TotalInvested  float64 `json:"total_invested"`
}

// SimulationEvent is a stored simulation.
type SimulationEvent struct {
	ID        int       `json:"id"`
	Sequence  int64     `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	SimulationEventData
}

// FeedbackEventData captures free-form feedback from a user.
type FeedbackEventData struct {
	UserHash string
	Payload  map[string]any
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM requests by purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	AppendClassification(ctx context.Context, data ClassificationEventData) error
	AppendContent(ctx context.Context, data ContentEventData) error
	AppendSimulation(ctx context.Context, data SimulationEventData) error
	AppendFeedback(ctx context.Context, data FeedbackEventData) error
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// Classifications returns a user's classifications, newest first.
	Classifications(ctx context.Context, userID int, opts QueryOpts) ([]ClassificationEvent, error)
	// ContentHistory returns a user's generated content, newest first.
	ContentHistory(ctx context.Context, userID int, opts QueryOpts) ([]ContentEvent, error)
	// Simulations returns a user's simulations, newest first.
	Simulations(ctx context.Context, userID int, opts QueryOpts) ([]SimulationEvent, error)
	// ProfileDistribution counts users by their current profile.
	ProfileDistribution(ctx context.Context) (map[string]int, error)

	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)
	// GetLLMEvent returns the event with id, or nil when absent.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)

	// LastSequence returns the newest sequence number handed out.
	LastSequence(ctx context.Context) (int64, error)
}

// SnapshotData captures the learning state at a point in time.
type SnapshotData struct {
	Version       int                        `json:"version"`
	Effectiveness map[string]float64         `json:"effectiveness,omitempty"`
	Histories     map[string]json.RawMessage `json:"histories,omitempty"`
	// Interactions holds the content generator state, keyed by user.
	Interactions map[string]json.RawMessage `json:"interactions,omitempty"`
}

// Snapshot represents a point-in-time capture of learning state.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages learning state snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot, or nil if none exist.
	Latest(ctx context.Context) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error
}
