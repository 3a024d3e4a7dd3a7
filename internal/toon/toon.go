// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/llmexplain/internal/budget"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// EncodePlan converts a budget plan into TOON format.
func EncodePlan(p *budget.Plan) string {
	parts := []string{
		formatScalar("function", p.Function),
		formatScalar("tokens", strconv.Itoa(p.Tokens)),
		formatScalar("budget", strconv.Itoa(p.MaxTokens)),
		formatScalar("mode", string(p.Mode)),
	}

	rows := make([][]string, 0, len(p.References))
	for _, r := range p.References {
		rows = append(rows, []string{r.Identifier, strconv.Itoa(r.Tokens), strconv.Itoa(r.Lines)})
	}
	parts = append(parts, formatTabular("references", []string{"identifier", "tokens", "lines"}, rows))

	return strings.Join(parts, "\n")
}

func formatScalar(key, value string) string {
	return key + ": " + encodeValue(value)
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

// encodeValue quotes value only when an unquoted form would be misread as a
// number, keyword, delimiter or list marker.
func encodeValue(value string) string {
	switch {
	case value == "":
		return `""`
	case value != strings.TrimSpace(value), strings.ContainsAny(value, "\n\r\t"):
		return quote(value)
	case looksNumeric.MatchString(value):
		return value
	}
	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}
	if needsQuoting.MatchString(value) || strings.HasPrefix(value, "-") {
		return quote(value)
	}
	return value
}

var quoter = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func quote(value string) string {
	return `"` + quoter.Replace(value) + `"`
}
