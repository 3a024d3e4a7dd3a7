// Package llm talks to an OpenAI-compatible chat completions endpoint.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidResponse marks a 2xx response that cannot be used: a body that
// does not decode, or one carrying an error object. Retrying will not fix it.
var ErrInvalidResponse = errors.New("llm: invalid response")

// Request is a single-message completion request.
type Request struct {
	Model       string
	Temperature float64
	Prompt      string
}

// Completer returns the generated text for a request. An empty string with a
// nil error means the model produced no text; callers decide whether that is
// usable.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Func adapts a function to Completer.
type Func func(ctx context.Context, req Request) (string, error)

// Complete implements Completer.
func (f Func) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("llm: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("llm: HTTP %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether the request may succeed if retried.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
