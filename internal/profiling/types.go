package profiling

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Profile is an investor risk category.
type Profile string

const (
	Conservative Profile = "conservador"
	Moderate     Profile = "moderado"
	Aggressive   Profile = "agressivo"
)

// Profiles lists every profile in tie-break priority order. Whenever an
// argmax or mode is ambiguous, the profile that appears first here wins.
var Profiles = [3]Profile{Conservative, Moderate, Aggressive}

// profileAliases maps accepted spellings of a self-assessment onto a profile.
var profileAliases = map[string]Profile{
	"conservador":  Conservative,
	"conservadora": Conservative,
	"conservative": Conservative,
	"moderado":     Moderate,
	"moderada":     Moderate,
	"moderate":     Moderate,
	"agressivo":    Aggressive,
	"agressiva":    Aggressive,
	"aggressive":   Aggressive,
}

// ParseProfile resolves a user-supplied label. Unknown labels, including
// "indefinido", return false.
func ParseProfile(s string) (Profile, bool) {
	p, ok := profileAliases[strings.ToLower(strings.TrimSpace(s))]
	return p, ok
}

// Index returns the position of p in Profiles. It panics on labels that did
// not come from ParseProfile or the constants above.
func (p Profile) Index() int {
	switch p {
	case Conservative:
		return 0
	case Moderate:
		return 1
	case Aggressive:
		return 2
	}
	panic(fmt.Sprintf("profiling: unknown profile %q", string(p)))
}

// Ordinal maps a profile onto the 1..3 risk scale used for trend scores.
func (p Profile) Ordinal() int {
	return p.Index() + 1
}

// Distribution holds one score per profile, indexed by Profile.Index.
// After normalization the scores are percentages summing to 100.
type Distribution [3]float64

// flatDistribution is returned when there is no evidence at all.
var flatDistribution = Distribution{33.3, 33.3, 33.4}

// Get returns the score for p.
func (d Distribution) Get(p Profile) float64 {
	return d[p.Index()]
}

// Sum returns the total score.
func (d Distribution) Sum() float64 {
	return d[0] + d[1] + d[2]
}

// Normalized scales the scores to percentages. An all-zero distribution
// becomes the flat 33.3/33.3/33.4 split.
func (d Distribution) Normalized() Distribution {
	total := d.Sum()
	if total <= 0 {
		return flatDistribution
	}
	var out Distribution
	for i, v := range d {
		out[i] = v / total * 100
	}
	return out
}

// Dominant returns the highest scoring profile, ties going to the earlier
// profile in Profiles.
func (d Distribution) Dominant() Profile {
	best := 0
	for i := 1; i < len(d); i++ {
		if d[i] > d[best] {
			best = i
		}
	}
	return Profiles[best]
}

// Map returns the distribution keyed by profile label.
func (d Distribution) Map() map[Profile]float64 {
	return map[Profile]float64{
		Conservative: d[0],
		Moderate:     d[1],
		Aggressive:   d[2],
	}
}

func (d Distribution) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Map())
}

func (d *Distribution) UnmarshalJSON(b []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*d = Distribution{}
	for k, v := range m {
		p, ok := ParseProfile(k)
		if !ok {
			return fmt.Errorf("unknown profile %q in distribution", k)
		}
		d[p.Index()] = v
	}
	return nil
}

// Input is a single classification request.
type Input struct {
	Goal           string
	SelfAssessment string // optional; ignored unless ParseProfile accepts it
	Reference      string // optional supporting text
	UserID         string // optional; enables history bias and learning
}

// Result is the outcome of a classification.
type Result struct {
	Distribution Distribution `json:"distribution"`
	Dominant     Profile      `json:"dominant"`
	Confidence   float64      `json:"confidence"`
	MatchCount   int          `json:"match_count"`
	Matched      []string     `json:"matched_signatures,omitempty"`
	Fallback     bool         `json:"fallback"`
	Text         string       `json:"-"`
}

// Record is one entry of a user's classification history. Sequence is the
// history length at the time of the append, so once the window is full
// every new record carries the same value. Order records by At.
type Record struct {
	Profile    Profile   `json:"profile"`
	Confidence float64   `json:"confidence"`
	Sequence   int       `json:"sequence"`
	At         time.Time `json:"at"`
}

// Trend labels reported by Analyze.
type Trend string

const (
	TrendStable           Trend = "stable"
	TrendEvolving         Trend = "evolving"
	TrendExploring        Trend = "exploring"
	TrendInsufficientData Trend = "insufficient_data"
	TrendNoData           Trend = "no_data"
)

// Confidence trend labels.
const (
	ConfidenceImproving = "improving"
	ConfidenceStable    = "stable"
)

// EvolutionSummary describes how a user's classifications moved over time.
// It is derived from the history on every call and never stored.
type EvolutionSummary struct {
	Dominant          Profile `json:"dominant_profile,omitempty"`
	Consistency       float64 `json:"consistency"`
	Trend             Trend   `json:"trend"`
	TrendScore        float64 `json:"trend_score"`
	HistoryLength     int     `json:"history_length"`
	RecentChangeCount int     `json:"recent_change_count"`
	AvgConfidence     float64 `json:"avg_confidence"`
	DataQuality       float64 `json:"data_quality"`
	ConfidenceTrend   string  `json:"confidence_trend"`
}

// Characteristics is the cosmetic status block of Stats.
type Characteristics struct {
	Autonomy   string `json:"autonomy"`
	Learning   string `json:"learning"`
	Perception string `json:"perception"`
	Adaptation string `json:"adaptation"`
}

// Stats rolls up the global learning state.
type Stats struct {
	TotalUsers                int             `json:"total_users"`
	TotalClassifications      int             `json:"total_classifications"`
	AvgClassificationsPerUser float64         `json:"avg_classifications_per_user"`
	PatternsLearned           int             `json:"patterns_learned"`
	AvgPatternEffectiveness   float64         `json:"avg_pattern_effectiveness"`
	AvgConfidence             float64         `json:"avg_confidence"`
	HighConfidencePercentage  float64         `json:"high_confidence_percentage"`
	Characteristics           Characteristics `json:"agent_characteristics"`
}
