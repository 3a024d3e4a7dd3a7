// Package memsource is an in-memory source.Provider.
package memsource

import (
	"context"
	"fmt"
	"sync"

	"github.com/phobologic/llmexplain/internal/model"
	"github.com/phobologic/llmexplain/internal/source"
)

// Source holds functions and their references keyed by function name.
// It is safe for concurrent use.
type Source struct {
	mu        sync.RWMutex
	functions map[string]string
	refs      map[string][]model.RawReference
}

// New returns an empty Source.
func New() *Source {
	return &Source{
		functions: make(map[string]string),
		refs:      make(map[string][]model.RawReference),
	}
}

// AddFunction registers the source text of a function.
func (s *Source) AddFunction(name, text string) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.functions[name] = text
	return s
}

// AddReference appends a call-site reference to function name.
func (s *Source) AddReference(name, identifier, text string) *Source {
	return s.AddRawReference(name, model.RawReference{
		Identifier: identifier,
		Source:     func() string { return text },
	})
}

// AddRawReference appends ref to function name as is.
func (s *Source) AddRawReference(name string, ref model.RawReference) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs[name] = append(s.refs[name], ref)
	return s
}

// Function implements source.FunctionSource.
func (s *Source) Function(ctx context.Context, name string) (model.TargetFunction, error) {
	if err := ctx.Err(); err != nil {
		return model.TargetFunction{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.functions[name]
	if !ok {
		return model.TargetFunction{}, fmt.Errorf("%s: %w", name, source.ErrFunctionNotFound)
	}
	return model.TargetFunction{Name: name, Source: text}, nil
}

// References implements source.ReferenceSource.
func (s *Source) References(ctx context.Context, name string) ([]model.RawReference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.functions[name]; !ok {
		return nil, fmt.Errorf("%s: %w", name, source.ErrFunctionNotFound)
	}
	out := make([]model.RawReference, len(s.refs[name]))
	copy(out, s.refs[name])
	return out, nil
}

var _ source.Provider = (*Source)(nil)
