package prompt

import (
	"regexp"
	"strings"
)

var fenced = regexp.MustCompile("(?s)\\A```.*```\\z")

// StripFence removes a triple-backtick fence that wraps the whole of text.
// Exactly three characters are dropped from each end of the trimmed text, so
// a language tag after the opening fence is kept. Text that is not wholly
// fenced is returned unchanged. Only one layer of a nested fence is removed.
func StripFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !fenced.MatchString(trimmed) {
		return text
	}
	return trimmed[3 : len(trimmed)-3]
}
