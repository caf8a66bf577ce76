package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/malu-oliver/agent-financeiro/internal/store"
)

// Middleware wraps a Provider.
type Middleware func(Provider) Provider

// Chain applies mws so that the first one is outermost.
func Chain(p Provider, mws ...Middleware) Provider {
	for i := len(mws) - 1; i >= 0; i-- {
		p = mws[i](p)
	}
	return p
}

// wrapped forwards ModelID and Check to the inner provider.
type wrapped struct {
	inner Provider
}

func (w wrapped) ModelID() string { return w.inner.ModelID() }

func (w wrapped) Check(ctx context.Context) error {
	if c, ok := w.inner.(Checker); ok {
		return c.Check(ctx)
	}
	return nil
}

type timeoutProvider struct {
	wrapped
	d time.Duration
}

// WithTimeout bounds every Generate call, retries included when it wraps
// the retry middleware. A zero duration disables it.
func WithTimeout(d time.Duration) Middleware {
	return func(p Provider) Provider {
		if d <= 0 {
			return p
		}
		return &timeoutProvider{wrapped: wrapped{p}, d: d}
	}
}

func (t *timeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.inner.Generate(ctx, req)
}

type retryProvider struct {
	wrapped
	cfg   RetryConfig
	sleep func(context.Context, time.Duration) error
}

// WithRetry retries transient failures with capped exponential backoff.
// Rate limits honor the backend's Retry-After. Invalid output is retried
// once; truncated output and rejected requests are not retried.
func WithRetry(cfg RetryConfig) Middleware {
	return func(p Provider) Provider {
		return &retryProvider{wrapped: wrapped{p}, cfg: cfg, sleep: sleepCtx}
	}
}

func (r *retryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.cfg.MaxAttempts, 1)
	invalidSeen := false

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		var resp *Response
		resp, err = r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !retryable(err, &invalidSeen) || attempt == attempts-1 {
			return nil, err
		}
		if serr := r.sleep(ctx, r.wait(attempt, err)); serr != nil {
			return nil, serr
		}
	}
	return nil, err
}

func retryable(err error, invalidSeen *bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	kind, ok := KindOf(err)
	if !ok {
		return true
	}
	switch kind {
	case KindTruncated, KindRejected:
		return false
	case KindInvalidResponse:
		if *invalidSeen {
			return false
		}
		*invalidSeen = true
	}
	return true
}

func (r *retryProvider) wait(attempt int, err error) time.Duration {
	var e *Error
	if errors.As(err, &e) && e.RetryAfter > 0 {
		return e.RetryAfter
	}
	mult := r.cfg.Multiplier
	if mult < 1 {
		mult = 1
	}
	w := float64(r.cfg.InitialWait) * math.Pow(mult, float64(attempt))
	if r.cfg.MaxWait > 0 {
		w = math.Min(w, float64(r.cfg.MaxWait))
	}
	// ±20% jitter
	w *= 0.8 + 0.4*rand.Float64()
	return time.Duration(w)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Observer receives one call per backend request.
type Observer interface {
	ObserveLLM(purpose string, err error, elapsed time.Duration)
}

type loggingProvider struct {
	wrapped
	name   string
	events store.EventRepo
	obs    Observer
	logger *slog.Logger
}

// WithLogging records each request in the event log, reports it to obs
// and writes a debug line. Any of events, obs and logger may be nil.
func WithLogging(name string, events store.EventRepo, obs Observer, logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(p Provider) Provider {
		return &loggingProvider{wrapped: wrapped{p}, name: name, events: events, obs: obs, logger: logger}
	}
}

func (l *loggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	purpose := PurposeFrom(ctx)
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	elapsed := time.Since(start)

	if l.obs != nil {
		l.obs.ObserveLLM(purpose, err, elapsed)
	}

	ev := store.LLMRequestEventData{
		Provider:    l.name,
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   elapsed.Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
		var e *Error
		if errors.As(err, &e) && len(e.Content) > 0 {
			ev.ResponseBody = string(e.Content)
		}
		l.logger.Warn("llm request failed", "provider", l.name, "purpose", purpose, "elapsed", elapsed, "error", err)
	} else {
		l.logger.Debug("llm request", "provider", l.name, "model", ev.Model, "purpose", purpose,
			"elapsed", elapsed, "input_tokens", ev.InputTokens, "output_tokens", ev.OutputTokens)
	}

	if l.events != nil {
		// Record the event even if the caller has gone away.
		if lerr := l.events.AppendLLMRequest(context.WithoutCancel(ctx), ev); lerr != nil {
			l.logger.Warn("record llm request", "error", lerr)
		}
	}
	return resp, err
}

// transcript renders req as the plain text stored with each event.
func transcript(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
