// Package progress carries coarse-grained status updates from a running
// explain request to whoever displays them.
package progress

import (
	"fmt"
	"io"
	"sync"
)

// Stage names a step of an explain request.
type Stage string

const (
	Collecting  Stage = "collecting"
	Estimating  Stage = "estimating"
	Summarizing Stage = "summarizing"
	Explaining  Stage = "explaining"
	Done        Stage = "done"
)

// Event is one status update. Done and Total are set while summarizing.
type Event struct {
	Stage   Stage
	Message string
	Done    int
	Total   int
}

func (e Event) String() string {
	if e.Total > 0 {
		return fmt.Sprintf("%s (%d/%d)", e.Message, e.Done, e.Total)
	}
	return e.Message
}

// Sink receives events. Implementations must be safe for concurrent use and
// must not block for long; reporting is best-effort.
type Sink interface {
	Report(Event)
}

// Func adapts a function to Sink.
type Func func(Event)

// Report implements Sink.
func (f Func) Report(e Event) { f(e) }

// Nop discards every event.
var Nop Sink = Func(func(Event) {})

// Writer prints one line per event.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a Sink that prints events to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Report implements Sink.
func (s *Writer) Report(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.w, "%s...\n", e)
}
