package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one scripted reply. Err takes precedence over Content.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider replays scripted responses in order and records every
// request it receives. With an empty script it answers every request
// with Fallback, or fails as unavailable when Fallback is nil.
type MockProvider struct {
	Fallback json.RawMessage

	mu     sync.Mutex
	script []MockResponse
	calls  []Request
}

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) ModelID() string { return "mock" }

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)

	var next MockResponse
	switch {
	case len(m.script) > 0:
		next, m.script = m.script[0], m.script[1:]
	case m.Fallback != nil:
		next = MockResponse{Content: m.Fallback}
	default:
		return nil, &Error{Kind: KindUnavailable}
	}
	if next.Err != nil {
		return nil, next.Err
	}
	return complete(req, next.Content, "mock", StopEnd, next.Usage)
}

// Check always succeeds.
func (m *MockProvider) Check(context.Context) error { return nil }

func (m *MockProvider) AddResponse(r MockResponse) {
	m.mu.Lock()
	m.script = append(m.script, r)
	m.mu.Unlock()
}

// Calls returns a copy of the requests seen so far.
func (m *MockProvider) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.calls...)
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
