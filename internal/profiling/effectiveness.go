package profiling

import "sync"

// effectivenessTable maps a signature source to its learned multiplier.
// Entries are created at 1.0 on first adjustment and never removed.
type effectivenessTable struct {
	mu      sync.Mutex
	weights map[string]float64
}

func newEffectivenessTable() *effectivenessTable {
	return &effectivenessTable{weights: make(map[string]float64)}
}

// Get returns the multiplier for key without creating an entry.
func (t *effectivenessTable) Get(key string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if w, ok := t.weights[key]; ok {
		return w
	}
	return 1.0
}

// Adjust adds delta to the multiplier for key and clamps the result to
// [lo, hi]. The read-modify-write happens under a single lock.
func (t *effectivenessTable) Adjust(key string, delta, lo, hi float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	w, ok := t.weights[key]
	if !ok {
		w = 1.0
	}
	w = clamp(w+delta, lo, hi)
	t.weights[key] = w
	return w
}

// Penalize lowers the multiplier for key by delta without taking it below
// floor. A multiplier already at or under floor is left untouched.
func (t *effectivenessTable) Penalize(key string, delta, floor, lo, hi float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	w, ok := t.weights[key]
	if !ok {
		w = 1.0
	}
	if w > floor {
		w = clamp(max(w+delta, floor), lo, hi)
	}
	t.weights[key] = w
	return w
}

// Snapshot returns a copy of every learned multiplier.
func (t *effectivenessTable) Snapshot() map[string]float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]float64, len(t.weights))
	for k, v := range t.weights {
		out[k] = v
	}
	return out
}

// Replace swaps the whole table, clamping each restored value.
func (t *effectivenessTable) Replace(weights map[string]float64, lo, hi float64) {
	next := make(map[string]float64, len(weights))
	for k, v := range weights {
		next[k] = clamp(v, lo, hi)
	}
	t.mu.Lock()
	t.weights = next
	t.mu.Unlock()
}

// Summary returns the entry count and the mean multiplier, 1.0 when empty.
func (t *effectivenessTable) Summary() (int, float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.weights) == 0 {
		return 0, 1.0
	}
	var sum float64
	for _, v := range t.weights {
		sum += v
	}
	return len(t.weights), sum / float64(len(t.weights))
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
