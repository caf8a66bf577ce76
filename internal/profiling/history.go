package profiling

import "sync"

// HistoryStore persists per-user classification histories. Implementations
// must be safe for concurrent use; the engine serializes writes per user.
type HistoryStore interface {
	// Get returns a copy of the user's history.
	Get(userID string) ([]Record, bool)
	// Put replaces the user's history.
	Put(userID string, history []Record)
	// Delete drops the user's history.
	Delete(userID string)
	// Range calls fn for every user until fn returns false. fn must not
	// call back into the store.
	Range(fn func(userID string, history []Record) bool)
}

// MemoryHistory is the default in-process HistoryStore.
type MemoryHistory struct {
	mu    sync.RWMutex
	users map[string][]Record
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{users: make(map[string][]Record)}
}

func (m *MemoryHistory) Get(userID string) ([]Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.users[userID]
	if !ok {
		return nil, false
	}
	return append([]Record(nil), h...), true
}

func (m *MemoryHistory) Put(userID string, history []Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID] = append([]Record(nil), history...)
}

func (m *MemoryHistory) Delete(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, userID)
}

func (m *MemoryHistory) Range(fn func(userID string, history []Record) bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for id, h := range m.users {
		if !fn(id, h) {
			return
		}
	}
}

// userLocks hands out one mutex per user id.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Lock acquires the mutex for id and returns its release function.
func (l *userLocks) Lock(id string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}
