package profiling

// Config holds the tunables of the classifier and its learning loop.
// The defaults are empirically chosen and carry no deeper derivation.
type Config struct {
	// MatchWeight is the raw score one signature match contributes before
	// the effectiveness multiplier is applied.
	MatchWeight float64 `yaml:"match_weight"`
	// SelfAssessmentBonus is added to the profile the user picked.
	SelfAssessmentBonus float64 `yaml:"self_assessment_bonus"`
	// HistoryBonus is added to the mode of the user's recent records.
	HistoryBonus      float64 `yaml:"history_bonus"`
	HistoryBiasWindow int     `yaml:"history_bias_window"`

	// ConfidenceSaturation is the match count at which confidence reaches 1.
	ConfidenceSaturation float64 `yaml:"confidence_saturation"`
	FallbackConfidence   float64 `yaml:"fallback_confidence"`
	HighConfidence       float64 `yaml:"high_confidence"`

	// Fallback heuristic thresholds, in cleaned tokens.
	LongGoalTokens  int `yaml:"long_goal_tokens"`
	ShortGoalTokens int `yaml:"short_goal_tokens"`

	// Feedback loop deltas, applied to the dominant profile's signatures.
	RewardDelta  float64 `yaml:"reward_delta"`
	PenaltyDelta float64 `yaml:"penalty_delta"`

	// Match-agreement deltas, applied on every classification with matches.
	AgreementReward   float64 `yaml:"agreement_reward"`
	AgreementPenalty  float64 `yaml:"agreement_penalty"`
	DisagreementFloor float64 `yaml:"disagreement_floor"`

	MinEffectiveness float64 `yaml:"min_effectiveness"`
	MaxEffectiveness float64 `yaml:"max_effectiveness"`

	HistoryLimit int `yaml:"history_limit"`
	TrendWindow  int `yaml:"trend_window"`

	// ExtraSignatures are appended to the built-in pattern bank.
	ExtraSignatures map[Profile][]string `yaml:"extra_signatures"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		MatchWeight:          2.0,
		SelfAssessmentBonus:  3.0,
		HistoryBonus:         0.5,
		HistoryBiasWindow:    3,
		ConfidenceSaturation: 3.0,
		FallbackConfidence:   0.3,
		HighConfidence:       0.7,
		LongGoalTokens:       20,
		ShortGoalTokens:      8,
		RewardDelta:          0.05,
		PenaltyDelta:         -0.10,
		AgreementReward:      0.05,
		AgreementPenalty:     -0.02,
		DisagreementFloor:    0.7,
		MinEffectiveness:     0.0,
		MaxEffectiveness:     2.0,
		HistoryLimit:         15,
		TrendWindow:          5,
	}
}

// withDefaults fills zero-valued windows and bounds so a partially
// specified Config cannot disable the invariants.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = d.HistoryLimit
	}
	if c.HistoryBiasWindow <= 0 {
		c.HistoryBiasWindow = d.HistoryBiasWindow
	}
	if c.TrendWindow <= 0 {
		c.TrendWindow = d.TrendWindow
	}
	if c.ConfidenceSaturation <= 0 {
		c.ConfidenceSaturation = d.ConfidenceSaturation
	}
	if c.MaxEffectiveness <= c.MinEffectiveness {
		c.MinEffectiveness = d.MinEffectiveness
		c.MaxEffectiveness = d.MaxEffectiveness
	}
	return c
}
