package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStatus(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "12")

	cases := []struct {
		status int
		header http.Header
		kind   Kind
		after  time.Duration
	}{
		{429, h, KindRateLimited, 12 * time.Second},
		{429, nil, KindRateLimited, 0},
		{400, nil, KindRejected, 0},
		{404, nil, KindRejected, 0},
		{500, nil, KindUnavailable, 0},
		{0, nil, KindUnavailable, 0},
	}
	for _, c := range cases {
		e := fromStatus(c.status, c.header, errors.New("x"))
		if e.Kind != c.kind || e.RetryAfter != c.after {
			t.Errorf("%d: got %v/%v, want %v/%v", c.status, e.Kind, e.RetryAfter, c.kind, c.after)
		}
	}
}

func TestErrorMessageAndUnwrap(t *testing.T) {
	base := errors.New("quota exceeded")
	err := fmt.Errorf("content: %w", &Error{Kind: KindRateLimited, RetryAfter: 3 * time.Second, Err: base})

	assert.ErrorIs(t, err, base)
	assert.Equal(t, "content: llm rate_limited (retry after 3s): quota exceeded", err.Error())

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindRateLimited, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestSchemaValidate(t *testing.T) {
	require.NoError(t, paragraphSchema.validate(json.RawMessage(paragraphsOut)))

	for _, raw := range []string{
		`not json`,
		`{}`,
		`{"paragraphs":"one"}`,
	} {
		err := paragraphSchema.validate(json.RawMessage(raw))
		var e *Error
		if assert.ErrorAs(t, err, &e, raw) {
			assert.Equal(t, KindInvalidResponse, e.Kind)
			assert.Equal(t, raw, string(e.Content))
		}
	}

	var none *Schema
	assert.NoError(t, none.validate(json.RawMessage(`anything`)))
}

func TestSchemaCompileError(t *testing.T) {
	bad := &Schema{Name: "bad-type", Definition: map[string]any{"type": 42}}
	err := bad.validate(json.RawMessage(`{}`))
	kind, _ := KindOf(err)
	assert.Equal(t, KindInvalidResponse, kind)
}

func TestResponseDecode(t *testing.T) {
	r := &Response{Content: json.RawMessage(paragraphsOut)}
	var out struct{ Paragraphs []string }
	require.NoError(t, r.Decode(&out))
	assert.Len(t, out.Paragraphs, 3)

	r.Content = json.RawMessage(`[`)
	kind, _ := KindOf(r.Decode(&out))
	assert.Equal(t, KindInvalidResponse, kind)
}

func TestPurpose(t *testing.T) {
	assert.Equal(t, "unknown", PurposeFrom(context.Background()))
	assert.Equal(t, "content", PurposeFrom(WithPurpose(context.Background(), "content")))
}

func TestMockProvider(t *testing.T) {
	m := NewMockProvider(MockResponse{Content: okJSON, Usage: Usage{InputTokens: 3, OutputTokens: 4}})
	resp, err := m.Generate(context.Background(), Request{System: "a"})
	require.NoError(t, err)
	assert.Equal(t, 7, resp.Usage.TotalTokens)

	_, err = m.Generate(context.Background(), Request{System: "b"})
	kind, _ := KindOf(err)
	assert.Equal(t, KindUnavailable, kind)

	m.Fallback = json.RawMessage(paragraphsOut)
	_, err = m.Generate(context.Background(), Request{Schema: paragraphSchema})
	assert.NoError(t, err)

	m.AddResponse(MockResponse{Content: okJSON})
	_, err = m.Generate(context.Background(), Request{Schema: paragraphSchema})
	kind, _ = KindOf(err)
	assert.Equal(t, KindInvalidResponse, kind, "scripted output is validated too")

	calls := m.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, "b", calls[1].System)
}

func TestPriceOf(t *testing.T) {
	cases := map[string]float64{
		"gpt-4o-mini":                      0.15,
		"claude-haiku-4-5-20251001":        1,
		"anthropic/claude-sonnet-4-5":      3,
		"google/gemini-2.5-flash":          0.3,
		"openai/gpt-4o-mini-2024-07-18":    0.15,
		"meta-llama/llama-3.3-70b:free":    -1,
		"gemini-2.5-flash-preview-05-20":   -1,
		"google/gemini-2.0-flash-exp:free": 0,
	}
	for model, want := range cases {
		p, ok := PriceOf(model)
		if want < 0 {
			assert.False(t, ok, model)
			continue
		}
		if assert.True(t, ok, model) {
			assert.Equal(t, want, p.Input, model)
		}
	}

	assert.InDelta(t, 0.00045, Price{Input: 1, Output: 5}.Cost(200, 50), 1e-12)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("AGENTFIN_LLM_PROVIDER", "")
	t.Setenv("AGENTFIN_GEMINI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "vendor-gemini")
	t.Setenv("OPENAI_API_KEY", "vendor-openai")
	t.Setenv("AGENTFIN_OPENAI_API_KEY", "ours")
	t.Setenv("AGENTFIN_OPENAI_MODEL", "gpt-4.1-mini")
	t.Setenv("AGENTFIN_LLM_TIMEOUT", "45s")

	cfg := DefaultConfig()
	cfg.Anthropic.APIKey = "from-file"
	t.Setenv("ANTHROPIC_API_KEY", "vendor-anthropic")
	cfg.ApplyEnv()

	assert.Equal(t, "gemini", cfg.Provider, "first backend with a key")
	assert.Equal(t, "vendor-gemini", cfg.Gemini.APIKey)
	assert.Equal(t, "ours", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4.1-mini", cfg.OpenAI.Model)
	assert.Equal(t, "from-file", cfg.Anthropic.APIKey, "vendor variables do not override the file")
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv_ExplicitProvider(t *testing.T) {
	for _, k := range []string{"AGENTFIN_ANTHROPIC_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	t.Setenv("AGENTFIN_LLM_PROVIDER", "anthropic")

	cfg := DefaultConfig()
	cfg.ApplyEnv()
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.ErrorContains(t, cfg.Validate(), "AGENTFIN_ANTHROPIC_API_KEY")
}
