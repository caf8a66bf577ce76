package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malu-oliver/agent-financeiro/internal/store"
)

var okJSON = json.RawMessage(`{"ok":true}`)

// noSleep records backoff waits instead of sleeping.
type noSleep struct {
	waits []time.Duration
}

func (n *noSleep) sleep(ctx context.Context, d time.Duration) error {
	n.waits = append(n.waits, d)
	return ctx.Err()
}

func retrying(p Provider, attempts int) (*retryProvider, *noSleep) {
	ns := &noSleep{}
	r := WithRetry(RetryConfig{
		MaxAttempts: attempts,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     time.Second,
		Multiplier:  2,
	})(p).(*retryProvider)
	r.sleep = ns.sleep
	return r, ns
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &Error{Kind: KindUnavailable}},
		MockResponse{Err: errors.New("connection reset")},
		MockResponse{Content: okJSON},
	)
	r, ns := retrying(mock, 3)

	resp, err := r.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Content))
	assert.Equal(t, 3, mock.CallCount())
	require.Len(t, ns.waits, 2)
	assert.InDelta(t, 100*time.Millisecond, ns.waits[0], float64(20*time.Millisecond))
	assert.InDelta(t, 200*time.Millisecond, ns.waits[1], float64(40*time.Millisecond))
}

func TestRetry_GivesUp(t *testing.T) {
	mock := NewMockProvider()
	r, ns := retrying(mock, 3)

	_, err := r.Generate(context.Background(), Request{})
	kind, _ := KindOf(err)
	assert.Equal(t, KindUnavailable, kind)
	assert.Equal(t, 3, mock.CallCount())
	assert.Len(t, ns.waits, 2)
}

func TestRetry_NotRetried(t *testing.T) {
	for name, err := range map[string]error{
		"truncated": &Error{Kind: KindTruncated},
		"rejected":  &Error{Kind: KindRejected},
		"canceled":  context.Canceled,
		"deadline":  context.DeadlineExceeded,
	} {
		mock := NewMockProvider(MockResponse{Err: err}, MockResponse{Content: okJSON})
		r, _ := retrying(mock, 3)
		_, got := r.Generate(context.Background(), Request{})
		assert.ErrorIs(t, got, err, name)
		assert.Equal(t, 1, mock.CallCount(), name)
	}
}

func TestRetry_InvalidOutputRetriedOnce(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: invalid(nil, errors.New("bad"))},
		MockResponse{Err: invalid(nil, errors.New("bad again"))},
		MockResponse{Content: okJSON},
	)
	r, _ := retrying(mock, 5)

	_, err := r.Generate(context.Background(), Request{})
	kind, _ := KindOf(err)
	assert.Equal(t, KindInvalidResponse, kind)
	assert.Equal(t, 2, mock.CallCount())
}

func TestRetry_HonorsRetryAfter(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &Error{Kind: KindRateLimited, RetryAfter: 4 * time.Second}},
		MockResponse{Content: okJSON},
	)
	r, ns := retrying(mock, 2)

	_, err := r.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{4 * time.Second}, ns.waits)
}

func TestRetry_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mock := NewMockProvider(MockResponse{Err: &Error{Kind: KindUnavailable}}, MockResponse{Content: okJSON})
	r, _ := retrying(mock, 3)

	_, err := r.Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.CallCount())
}

// slowProvider blocks until its context ends.
type slowProvider struct{}

func (slowProvider) ModelID() string { return "slow" }

func (slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestTimeout(t *testing.T) {
	p := WithTimeout(10 * time.Millisecond)(slowProvider{})
	_, err := p.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Equal(t, Provider(slowProvider{}), WithTimeout(0)(slowProvider{}))
}

type recordingRepo struct {
	store.EventRepo
	mu     sync.Mutex
	events []store.LLMRequestEventData
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return nil
}

type recordingObserver struct {
	purposes []string
	errs     []error
}

func (o *recordingObserver) ObserveLLM(purpose string, err error, _ time.Duration) {
	o.purposes = append(o.purposes, purpose)
	o.errs = append(o.errs, err)
}

func TestLogging(t *testing.T) {
	repo := &recordingRepo{}
	obs := &recordingObserver{}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	mock := NewMockProvider(
		MockResponse{Content: okJSON, Usage: Usage{InputTokens: 10, OutputTokens: 5}},
		MockResponse{Err: &Error{Kind: KindInvalidResponse, Content: json.RawMessage(`{"x":1}`)}},
	)
	p := WithLogging("mock", repo, obs, logger)(mock)
	ctx := WithPurpose(context.Background(), "content")

	_, err := p.Generate(ctx, Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "olá"}}})
	require.NoError(t, err)
	_, err = p.Generate(ctx, Request{})
	require.Error(t, err)

	require.Len(t, repo.events, 2)
	ok, failed := repo.events[0], repo.events[1]
	assert.True(t, ok.Success)
	assert.Equal(t, "content", ok.Purpose)
	assert.Equal(t, "mock", ok.Provider)
	assert.Equal(t, 10, ok.InputTokens)
	assert.Contains(t, ok.RequestBody, "[system]\nsys")
	assert.Contains(t, ok.RequestBody, "[user]\nolá")
	assert.JSONEq(t, `{"ok":true}`, ok.ResponseBody)

	assert.False(t, failed.Success)
	assert.Contains(t, failed.ErrorMessage, "invalid_response")
	assert.JSONEq(t, `{"x":1}`, failed.ResponseBody)

	assert.Equal(t, []string{"content", "content"}, obs.purposes)
	assert.NoError(t, obs.errs[0])
	assert.Error(t, obs.errs[1])
	assert.Contains(t, logs.String(), "llm request failed")
}

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(p Provider) Provider {
			return providerFunc(func(ctx context.Context, req Request) (*Response, error) {
				order = append(order, name)
				return p.Generate(ctx, req)
			})
		}
	}
	p := Chain(NewMockProvider(MockResponse{Content: okJSON}), tag("outer"), tag("inner"))
	_, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

type providerFunc func(context.Context, Request) (*Response, error)

func (f providerFunc) Generate(ctx context.Context, req Request) (*Response, error) { return f(ctx, req) }
func (f providerFunc) ModelID() string                                             { return "func" }
