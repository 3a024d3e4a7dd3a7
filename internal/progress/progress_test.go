package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Report(Event{Stage: Collecting, Message: "Collecting references"})
	w.Report(Event{Stage: Summarizing, Message: "Summarizing references", Done: 1, Total: 3})

	assert.Equal(t, "Collecting references...\nSummarizing references (1/3)...\n", buf.String())
}

func TestFuncAndNop(t *testing.T) {
	t.Parallel()

	var got []Event
	Func(func(e Event) { got = append(got, e) }).Report(Event{Stage: Done})
	Nop.Report(Event{Stage: Done})
	assert.Len(t, got, 1)
}
