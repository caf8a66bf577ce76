package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Kind classifies provider failures for the retry policy.
type Kind int

const (
	// KindUnavailable covers network failures and 5xx responses.
	KindUnavailable Kind = iota
	// KindRateLimited is a 429; RetryAfter is set when the backend said so.
	KindRateLimited
	// KindInvalidResponse means the output broke the requested schema.
	KindInvalidResponse
	// KindTruncated means the output hit MaxTokens before it was complete.
	KindTruncated
	// KindRejected is a 4xx other than 429: bad key, unknown model and so on.
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindRateLimited:
		return "rate_limited"
	case KindInvalidResponse:
		return "invalid_response"
	case KindTruncated:
		return "truncated"
	case KindRejected:
		return "rejected"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Error is returned by every backend.
type Error struct {
	Kind       Kind
	RetryAfter time.Duration
	// Content is the offending output for KindInvalidResponse and
	// KindTruncated.
	Content json.RawMessage
	Err     error
}

func (e *Error) Error() string {
	msg := "llm " + e.Kind.String()
	if e.Kind == KindRateLimited && e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func invalid(content json.RawMessage, err error) *Error {
	return &Error{Kind: KindInvalidResponse, Content: content, Err: err}
}

// fromStatus maps an HTTP status from a backend SDK error to an *Error.
func fromStatus(status int, header http.Header, err error) *Error {
	switch {
	case status == http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, RetryAfter: retryAfter(header), Err: err}
	case status >= 400 && status < 500:
		return &Error{Kind: KindRejected, Err: err}
	default:
		return &Error{Kind: KindUnavailable, Err: err}
	}
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
