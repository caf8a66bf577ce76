package profiling

// Analyze summarizes how the user's profile moved across their history.
func (e *Engine) Analyze(userID string) EvolutionSummary {
	h, _ := e.history.Get(userID)
	return summarize(h, e.cfg.TrendWindow, e.cfg.HighConfidence)
}

func summarize(h []Record, window int, high float64) EvolutionSummary {
	if len(h) == 0 {
		return EvolutionSummary{Trend: TrendNoData, ConfidenceTrend: ConfidenceStable}
	}

	dominant, _ := modeOf(h, 0)
	var same int
	var confSum float64
	var highCount int
	for _, r := range h {
		if r.Profile == dominant {
			same++
		}
		confSum += r.Confidence
		if r.Confidence >= high {
			highCount++
		}
	}
	n := float64(len(h))

	s := EvolutionSummary{
		Dominant:        dominant,
		Consistency:     float64(same) / n,
		HistoryLength:   len(h),
		AvgConfidence:   confSum / n,
		DataQuality:     float64(highCount) / n,
		Trend:           TrendInsufficientData,
		ConfidenceTrend: ConfidenceStable,
	}
	if len(h) < 2 {
		return s
	}

	recent := h
	if len(recent) > window {
		recent = recent[len(recent)-window:]
	}
	distinct := make(map[Profile]bool)
	for _, r := range recent {
		distinct[r.Profile] = true
	}
	switch {
	case len(distinct) == 1:
		s.Trend = TrendStable
	case len(distinct) >= 3:
		s.Trend = TrendExploring
	case recent[0].Profile != recent[len(recent)-1].Profile:
		s.Trend = TrendEvolving
	default:
		s.Trend = TrendStable
	}
	if len(recent) > 1 {
		s.RecentChangeCount = len(distinct)
	}

	half := len(h) / 2
	s.TrendScore = meanOrdinal(h[half:]) - meanOrdinal(h[:half])

	if h[len(h)-1].Confidence > h[0].Confidence {
		s.ConfidenceTrend = ConfidenceImproving
	}
	return s
}

func meanOrdinal(h []Record) float64 {
	if len(h) == 0 {
		return 0
	}
	var sum int
	for _, r := range h {
		sum += r.Profile.Ordinal()
	}
	return float64(sum) / float64(len(h))
}
