// Package llm talks to the hosted language models that write the
// educational content. Every backend satisfies Provider; middleware adds
// timeouts, retries, event logging and metrics around it.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// Provider generates one completion.
type Provider interface {
	// Generate sends req and returns the model output. When req.Schema is
	// set the output is JSON that satisfies it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the model requests are sent to.
	ModelID() string
}

// Checker is implemented by providers that can verify their credentials
// and model without generating anything.
type Checker interface {
	Check(ctx context.Context) error
}

type Request struct {
	System   string
	Messages []Message
	// Schema asks for structured output. Nil means plain text.
	Schema      *Schema
	MaxTokens   int
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a JSON Schema for structured output. Name is used as the
// schema or tool name by the backends and as the validation cache key.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Stop reasons reported in Response.StopReason.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

type Response struct {
	// Content is validated JSON for schema requests and raw text otherwise.
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string
}

// Decode unmarshals Content into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Content, v); err != nil {
		return invalid(r.Content, fmt.Errorf("decode: %w", err))
	}
	return nil
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// complete validates content against req.Schema and builds the response
// every backend returns. Output cut off by the token limit that fails
// validation is reported as KindTruncated.
func complete(req Request, content json.RawMessage, model, stop string, usage Usage) (*Response, error) {
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	if err := req.Schema.validate(content); err != nil {
		if stop == StopMaxTokens {
			return nil, &Error{Kind: KindTruncated, Content: content, Err: err}
		}
		return nil, err
	}
	return &Response{Content: content, Usage: usage, Model: model, StopReason: stop}, nil
}

type purposeKey struct{}

// WithPurpose labels requests made with ctx, e.g. "content", for the
// event log and metrics.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
