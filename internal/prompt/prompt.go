// Package prompt renders the summarization and explanation prompts and
// post-processes model output.
package prompt

import (
	"fmt"
	"strings"

	"github.com/phobologic/llmexplain/internal/model"
)

// SummaryLabel prefixes every summarized reference in the explanation prompt.
const SummaryLabel = "Summary of method"

// Summary returns the prompt asking the fast tier for a short summary of ref.
func Summary(ref model.Reference) string {
	var b strings.Builder
	b.WriteString("You are a senior software engineer who writes precise, factual summaries of source code.\n")
	b.WriteString("Your summary will be given to another engineer as context while they read code that calls this method.\n\n")
	fmt.Fprintf(&b, "Method: %s\n\n", ref.Identifier)
	writeFenced(&b, ref.Source)
	b.WriteString("\nDescribe what this method does, its inputs and its result.\n")
	b.WriteString("Output only the summary, in 1 to 3 lines. Do not repeat the code and do not use markdown.\n")
	return b.String()
}

// Explanation assembles the final prompt for method. materials must be in
// the same order as method.References.
func Explanation(method *model.PreparedMethod, materials []model.ReferenceMaterial) string {
	var b strings.Builder

	b.WriteString("You are a senior software engineer explaining code to another professional developer.\n")
	b.WriteString("Explain ONLY the code in the \"Code to explain\" section at the end of this message. ")
	b.WriteString("The referenced methods are there for context; do not explain them on their own.\n")
	b.WriteString("If you are not sure what some part of the code does, say so plainly instead of guessing.\n")
	b.WriteString("Be concise: your reader is experienced and does not need basic language features explained.\n")
	b.WriteString("Scale the depth of the explanation to the length of the code and the space you have to answer.\n\n")

	b.WriteString("## Metadata\n")
	fmt.Fprintf(&b, "Method: %s\n", method.Name)
	fmt.Fprintf(&b, "Referenced methods: %d\n", len(materials))

	if len(materials) > 0 {
		b.WriteString("\n## Referenced methods\n")
		for _, m := range materials {
			b.WriteString("\n")
			writeMaterial(&b, m)
		}
	}

	b.WriteString("\n## Code to explain\n")
	fmt.Fprintf(&b, "Method %s:\n", method.Name)
	writeFenced(&b, method.Body)

	b.WriteString("\nExplain only the code in the \"Code to explain\" section above.\n")
	return b.String()
}

func writeMaterial(b *strings.Builder, m model.ReferenceMaterial) {
	switch m.Kind {
	case model.Summary:
		fmt.Fprintf(b, "%s %s: %s\n", SummaryLabel, m.Identifier, oneLine(m.Content))
	default:
		fmt.Fprintf(b, "Referenced method %s:\n", m.Identifier)
		writeFenced(b, m.Content)
	}
}

// writeFenced writes code inside a backtick fence long enough that no run
// of backticks in code can close it.
func writeFenced(b *strings.Builder, code string) {
	fence := strings.Repeat("`", max(3, longestBacktickRun(code)+1))
	b.WriteString(fence)
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(code, "\n"))
	b.WriteString("\n")
	b.WriteString(fence)
	b.WriteString("\n")
}

func longestBacktickRun(s string) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return longest
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
