package toon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phobologic/llmexplain/internal/budget"
	"github.com/phobologic/llmexplain/internal/model"
)

func TestEncodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", `""`},
		{"simple", "hello", "hello"},
		{"leading space", " hello", `" hello"`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"true keyword", "True", `"True"`},
		{"null keyword", "null", `"null"`},
		{"integer", "42", "42"},
		{"negative integer", "-1", "-1"},
		{"identifier", "util.py:g", `"util.py:g"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"dash prefix", "-foo", `"-foo"`},
		{"dotted name", "Server.Handle", "Server.Handle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, encodeValue(tt.in))
		})
	}
}

func TestEncodePlan(t *testing.T) {
	t.Parallel()

	got := EncodePlan(&budget.Plan{
		Function:  "Server.Handle",
		Tokens:    120,
		MaxTokens: 100,
		Mode:      model.Summary,
		References: []budget.PlannedReference{
			{Identifier: "server.go:Server.render", Tokens: 30, Lines: 3},
			{Identifier: "util.go:helper", Tokens: 12, Lines: 1},
		},
	})

	assert.Equal(t, strings.Join([]string{
		"function: Server.Handle",
		"tokens: 120",
		"budget: 100",
		"mode: summary",
		"references[2]{identifier,tokens,lines}:",
		`  "server.go:Server.render",30,3`,
		`  "util.go:helper",12,1`,
	}, "\n"), got)
}

func TestEncodePlanEmpty(t *testing.T) {
	t.Parallel()

	got := EncodePlan(&budget.Plan{Function: "f", Mode: model.Raw})
	assert.Contains(t, got, "mode: raw")
	assert.True(t, strings.HasSuffix(got, "references[0]{identifier,tokens,lines}:"))
}
