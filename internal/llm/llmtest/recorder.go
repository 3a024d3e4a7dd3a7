// Package llmtest provides an in-memory Completer for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/phobologic/llmexplain/internal/llm"
)

// Recorder records every request and answers with Respond.
type Recorder struct {
	// Respond produces the answer for a request. A nil Respond answers with
	// an empty string.
	Respond func(req llm.Request) (string, error)

	mu       sync.Mutex
	requests []llm.Request
}

// Complete implements llm.Completer.
func (r *Recorder) Complete(ctx context.Context, req llm.Request) (string, error) {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.Respond == nil {
		return "", nil
	}
	return r.Respond(req)
}

// Requests returns a copy of the recorded requests in arrival order.
func (r *Recorder) Requests() []llm.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]llm.Request, len(r.requests))
	copy(out, r.requests)
	return out
}

// ForModel returns the recorded requests sent to model.
func (r *Recorder) ForModel(model string) []llm.Request {
	var out []llm.Request
	for _, req := range r.Requests() {
		if req.Model == model {
			out = append(out, req)
		}
	}
	return out
}
