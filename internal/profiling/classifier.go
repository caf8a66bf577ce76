package profiling

import (
	"strings"

	"github.com/malu-oliver/agent-financeiro/internal/textnorm"
)

var (
	riskIndicators   = []string{"rapido", "urgente", "muito", "maximo", "alto"}
	safetyIndicators = []string{"seguro", "tranquilo", "estavel", "sem", "proteger"}
)

// Classify scores in against the pattern bank and returns the profile
// distribution. With a user id it also applies the history bias and feeds
// the result back into the learning loop. It never fails.
func (e *Engine) Classify(in Input) Result {
	text := textnorm.Clean(in.Goal)
	if ref := textnorm.Clean(in.Reference); ref != "" {
		text = strings.TrimSpace(text + " " + ref)
	}

	if in.UserID != "" {
		unlock := e.locks.Lock(in.UserID)
		defer unlock()
	}

	var raw Distribution
	var counts [3]int
	var matched []*Signature
	for _, p := range Profiles {
		for _, sig := range e.bank.Signatures(p) {
			n := sig.Count(text)
			if n == 0 {
				continue
			}
			raw[p.Index()] += float64(n) * e.weights.Get(sig.Source) * e.cfg.MatchWeight
			counts[p.Index()] += n
			matched = append(matched, sig)
		}
	}
	matches := counts[0] + counts[1] + counts[2]

	if p, ok := ParseProfile(in.SelfAssessment); ok {
		raw[p.Index()] += e.cfg.SelfAssessmentBonus
	}
	if in.UserID != "" {
		if h, ok := e.history.Get(in.UserID); ok {
			if p, ok := modeOf(h, e.cfg.HistoryBiasWindow); ok {
				raw[p.Index()] += e.cfg.HistoryBonus
			}
		}
	}

	res := Result{MatchCount: matches, Text: text}
	for _, sig := range matched {
		res.Matched = append(res.Matched, sig.Source)
	}
	if raw.Sum() <= 0 {
		res.Distribution = e.fallback(text)
		res.Confidence = e.cfg.FallbackConfidence
		res.Fallback = true
		e.logger.Debug("classification fell back to heuristics", "tokens", len(textnorm.Tokens(text)))
	} else {
		res.Distribution = raw.Normalized()
		if matches > 0 {
			res.Confidence = min(float64(matches)/e.cfg.ConfidenceSaturation, 1)
		}
	}
	res.Dominant = res.Distribution.Dominant()

	e.reinforceAgreement(counts, matched)
	e.learn(in.UserID, res.Distribution, text, res.Confidence)
	return res
}

// fallback guesses a distribution from the shape of text when no signature
// and no bonus fired.
func (e *Engine) fallback(text string) Distribution {
	tokens := textnorm.Tokens(text)
	switch {
	case len(tokens) == 0:
		return flatDistribution
	case len(tokens) > e.cfg.LongGoalTokens:
		return Distribution{25, 55, 20}
	case len(tokens) < e.cfg.ShortGoalTokens:
		return Distribution{20, 30, 50}
	}

	var risk, safety int
	for _, w := range riskIndicators {
		if strings.Contains(text, w) {
			risk++
		}
	}
	for _, w := range safetyIndicators {
		if strings.Contains(text, w) {
			safety++
		}
	}
	switch {
	case safety > risk:
		return Distribution{60, 30, 10}
	case risk > safety:
		return Distribution{15, 35, 50}
	}
	return flatDistribution
}

// modeOf returns the most frequent profile among the last window records,
// ties going to the earlier profile in Profiles.
func modeOf(h []Record, window int) (Profile, bool) {
	if len(h) == 0 {
		return "", false
	}
	if window > 0 && len(h) > window {
		h = h[len(h)-window:]
	}
	var counts [3]int
	for _, r := range h {
		counts[r.Profile.Index()]++
	}
	best := 0
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return Profiles[best], true
}
