// Package profiling classifies investor risk profiles from free text and
// adapts its signature weights from each user's classification history.
package profiling

import (
	"log/slog"
	"time"
)

// Engine owns the pattern bank, the learned effectiveness table and the
// user histories. The zero value is not usable; call New.
type Engine struct {
	cfg     Config
	bank    *PatternBank
	weights *effectivenessTable
	history HistoryStore
	locks   userLocks
	logger  *slog.Logger
	now     func() time.Time
}

// New builds an engine. A nil history defaults to MemoryHistory and a nil
// logger to slog.Default().
func New(cfg Config, history HistoryStore, logger *slog.Logger) *Engine {
	if history == nil {
		history = NewMemoryHistory()
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	return &Engine{
		cfg:     cfg,
		bank:    NewPatternBank(cfg.ExtraSignatures, logger),
		weights: newEffectivenessTable(),
		history: history,
		logger:  logger,
		now:     time.Now,
	}
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Bank returns the compiled pattern bank.
func (e *Engine) Bank() *PatternBank {
	return e.bank
}

// Effectiveness returns the learned multiplier for a signature source.
func (e *Engine) Effectiveness(source string) float64 {
	return e.weights.Get(source)
}

// Weights returns a copy of every learned multiplier.
func (e *Engine) Weights() map[string]float64 {
	return e.weights.Snapshot()
}

// History returns a copy of the user's records, oldest first.
func (e *Engine) History(userID string) []Record {
	h, _ := e.history.Get(userID)
	return h
}

// ForgetUser drops the user's history. Learned weights are global and stay.
func (e *Engine) ForgetUser(userID string) {
	unlock := e.locks.Lock(userID)
	defer unlock()
	e.history.Delete(userID)
}

// State is the serializable learning state of an engine.
type State struct {
	Effectiveness map[string]float64  `json:"effectiveness"`
	Histories     map[string][]Record `json:"histories"`
}

// Export captures the current learning state.
func (e *Engine) Export() State {
	st := State{
		Effectiveness: e.weights.Snapshot(),
		Histories:     make(map[string][]Record),
	}
	e.history.Range(func(id string, h []Record) bool {
		st.Histories[id] = append([]Record(nil), h...)
		return true
	})
	return st
}

// Restore replaces the learning state with st. Histories longer than the
// configured limit keep their most recent records.
func (e *Engine) Restore(st State) {
	e.Reset()
	e.weights.Replace(st.Effectiveness, e.cfg.MinEffectiveness, e.cfg.MaxEffectiveness)
	for id, h := range st.Histories {
		if n := len(h); n > e.cfg.HistoryLimit {
			h = h[n-e.cfg.HistoryLimit:]
		}
		e.history.Put(id, h)
	}
}

// Reset clears every learned weight and history.
func (e *Engine) Reset() {
	var ids []string
	e.history.Range(func(id string, _ []Record) bool {
		ids = append(ids, id)
		return true
	})
	for _, id := range ids {
		e.history.Delete(id)
	}
	e.weights.Replace(nil, e.cfg.MinEffectiveness, e.cfg.MaxEffectiveness)
}
