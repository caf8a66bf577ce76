package profiling

// reinforceAgreement rewards matched signatures that agree with the profile
// holding the most raw matches and nudges the rest down toward the floor.
func (e *Engine) reinforceAgreement(counts [3]int, matched []*Signature) {
	if len(matched) == 0 {
		return
	}
	best := 0
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}
	lead := Profiles[best]
	for _, sig := range matched {
		if sig.Profile == lead {
			e.weights.Adjust(sig.Source, e.cfg.AgreementReward, e.cfg.MinEffectiveness, e.cfg.MaxEffectiveness)
			continue
		}
		e.weights.Penalize(sig.Source, e.cfg.AgreementPenalty, e.cfg.DisagreementFloor, e.cfg.MinEffectiveness, e.cfg.MaxEffectiveness)
	}
}

// RecordAndLearn feeds an externally produced classification into the
// learning loop. It is a no-op without a user id.
func (e *Engine) RecordAndLearn(userID string, dist Distribution, text string, confidence float64) {
	if userID == "" {
		return
	}
	unlock := e.locks.Lock(userID)
	defer unlock()
	e.learn(userID, dist, text, confidence)
}

// learn adjusts the dominant profile's signatures that match text, the
// cleaned string the classifier scored, and appends a record. The caller
// holds the user's lock.
func (e *Engine) learn(userID string, dist Distribution, text string, confidence float64) {
	if userID == "" {
		return
	}
	dominant := dist.Dominant()
	history, _ := e.history.Get(userID)

	delta := e.cfg.RewardDelta
	if n := len(history); n > 0 && history[n-1].Profile != dominant {
		delta = e.cfg.PenaltyDelta
	}
	for _, sig := range e.bank.Signatures(dominant) {
		if sig.Matches(text) {
			e.weights.Adjust(sig.Source, delta, e.cfg.MinEffectiveness, e.cfg.MaxEffectiveness)
		}
	}

	history = append(history, Record{
		Profile:    dominant,
		Confidence: clamp(confidence, 0, 1),
		Sequence:   len(history),
		At:         e.now(),
	})
	if n := len(history); n > e.cfg.HistoryLimit {
		history = history[n-e.cfg.HistoryLimit:]
	}
	e.history.Put(userID, history)
}
