// Package tokenizer counts tokens the way the completion model family does.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter returns the number of tokens in text.
type Counter interface {
	CountTokens(text string) int
}

// CounterFunc adapts a function to Counter.
type CounterFunc func(text string) int

// CountTokens implements Counter.
func (f CounterFunc) CountTokens(text string) int { return f(text) }

// DefaultEncoding is used when neither an encoding nor a known model is given.
const DefaultEncoding = "o200k_base"

// modelPrefixes maps model name prefixes to their tiktoken encoding. Longer
// prefixes are listed first so "gpt-4o" wins over "gpt-4".
var modelPrefixes = []struct {
	prefix   string
	encoding string
}{
	{"gpt-4o", "o200k_base"},
	{"gpt-4.1", "o200k_base"},
	{"o1", "o200k_base"},
	{"o3", "o200k_base"},
	{"o4", "o200k_base"},
	{"gpt-4", "cl100k_base"},
	{"gpt-3.5", "cl100k_base"},
	{"text-embedding-3", "cl100k_base"},
}

// EncodingForModel returns the tiktoken encoding for a model name, falling
// back to DefaultEncoding.
func EncodingForModel(model string) string {
	for _, m := range modelPrefixes {
		if strings.HasPrefix(model, m.prefix) {
			return m.encoding
		}
	}
	return DefaultEncoding
}

// Tiktoken counts tokens with a fixed tiktoken encoding.
type Tiktoken struct {
	encoding string
	enc      *tiktoken.Tiktoken
}

// New loads the named encoding. Loading may fetch the BPE ranks on first use.
func New(encoding string) (*Tiktoken, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: get encoding %s: %w", encoding, err)
	}
	return &Tiktoken{encoding: encoding, enc: enc}, nil
}

// ForModel loads the encoding used by model.
func ForModel(model string) (*Tiktoken, error) {
	return New(EncodingForModel(model))
}

// CountTokens implements Counter.
func (t *Tiktoken) CountTokens(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// Encoding returns the encoding name.
func (t *Tiktoken) Encoding() string {
	return t.encoding
}
