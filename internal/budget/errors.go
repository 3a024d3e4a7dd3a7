package budget

import (
	"errors"
	"fmt"
)

// ErrUpstream matches every UpstreamFailure with errors.Is.
var ErrUpstream = errors.New("upstream completion failed")

// Stage identifies which completion call failed.
type Stage string

const (
	StageSummarize Stage = "reference summarization"
	StageExplain   Stage = "final explanation"
)

// UpstreamFailure reports a completion call that returned no usable text or
// failed outright. It is fatal to the request.
type UpstreamFailure struct {
	Stage      Stage
	Identifier string // set for StageSummarize
	Err        error  // nil when the model returned empty text
}

func (e *UpstreamFailure) Error() string {
	what := string(e.Stage)
	if e.Identifier != "" {
		what += " of " + e.Identifier
	}
	if e.Err == nil {
		return fmt.Sprintf("%s failed: model returned no text", what)
	}
	return fmt.Sprintf("%s failed: %v", what, e.Err)
}

func (e *UpstreamFailure) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrUpstream) true for every UpstreamFailure.
func (e *UpstreamFailure) Is(target error) bool { return target == ErrUpstream }
