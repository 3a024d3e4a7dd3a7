// Package source defines how the explanation pipeline obtains the target
// function and its call-site references from a host.
package source

import (
	"context"
	"errors"

	"github.com/phobologic/llmexplain/internal/model"
)

var (
	// ErrFunctionNotFound is returned when no definition matches a name.
	ErrFunctionNotFound = errors.New("function not found")
	// ErrAmbiguousFunction is returned when several definitions match a name.
	ErrAmbiguousFunction = errors.New("ambiguous function name")
)

// FunctionSource locates the function to explain.
type FunctionSource interface {
	Function(ctx context.Context, name string) (model.TargetFunction, error)
}

// ReferenceSource resolves the call sites inside a function to the
// definitions they refer to, one RawReference per call site.
type ReferenceSource interface {
	References(ctx context.Context, name string) ([]model.RawReference, error)
}

// Provider is a host that can supply both.
type Provider interface {
	FunctionSource
	ReferenceSource
}
