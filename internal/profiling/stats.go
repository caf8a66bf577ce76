package profiling

const (
	statusActive   = "active"
	statusInactive = "inactive"
)

func status(on bool) string {
	if on {
		return statusActive
	}
	return statusInactive
}

// Stats aggregates the learning state across every user.
func (e *Engine) Stats() Stats {
	var (
		users, total, highCount int
		confSum                 float64
		adapted                 bool
	)
	e.history.Range(func(_ string, h []Record) bool {
		users++
		total += len(h)
		if len(h) > 3 {
			adapted = true
		}
		for _, r := range h {
			confSum += r.Confidence
			if r.Confidence >= e.cfg.HighConfidence {
				highCount++
			}
		}
		return true
	})
	learned, avgWeight := e.weights.Summary()

	s := Stats{
		TotalUsers:              users,
		TotalClassifications:    total,
		PatternsLearned:         learned,
		AvgPatternEffectiveness: avgWeight,
		Characteristics: Characteristics{
			Autonomy:   status(total > 0),
			Learning:   status(learned > 0),
			Perception: status(users > 0),
			Adaptation: status(adapted),
		},
	}
	if users > 0 {
		s.AvgClassificationsPerUser = float64(total) / float64(users)
	}
	if total > 0 {
		s.AvgConfidence = confSum / float64(total)
		s.HighConfidencePercentage = float64(highCount) / float64(total) * 100
	}
	return s
}
