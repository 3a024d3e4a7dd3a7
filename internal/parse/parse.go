// Package parse extracts tags from source files using tree-sitter.
package parse

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/llmexplain/internal/lang"
	"github.com/phobologic/llmexplain/internal/model"
)

var captureMap = map[string]struct {
	Kind       model.TagKind
	SymbolKind model.SymbolKind
}{
	"definition.class":    {model.TagDefinition, model.Class},
	"definition.function": {model.TagDefinition, model.Function},
	"definition.method":   {model.TagDefinition, model.Method},
	"reference.call":      {model.TagReference, model.Function},
}

// ExtractTags parses a source file and returns definition and call-reference tags.
// The parser must be created for l.
// filePath is used only for Tag.File and should be the repo-relative path.
func ExtractTags(ctx context.Context, l *lang.Language, parser *sitter.Parser, query *sitter.Query, source []byte, filePath string) []model.Tag {
	if len(source) == 0 {
		return nil
	}

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil
	}
	defer tree.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, tree.RootNode())

	var tags []model.Tag

	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		match = qc.FilterPredicates(match, source)

		// Find the @name capture and the pattern capture
		var nameNode *sitter.Node
		var captureName string
		var defNode *sitter.Node

		for _, c := range match.Captures {
			cname := query.CaptureNameForId(c.Index)
			if cname == "name" {
				nameNode = c.Node
			} else if _, ok := captureMap[cname]; ok {
				captureName = cname
				defNode = c.Node
			}
		}

		if nameNode == nil || captureName == "" || defNode == nil {
			continue
		}

		cm := captureMap[captureName]
		symbolKind := cm.SymbolKind
		name := lang.NodeText(nameNode, source)

		if cm.Kind == model.TagDefinition && symbolKind != model.Class && l.FindOwner != nil {
			if owner := l.FindOwner(defNode, source); owner != "" {
				symbolKind = model.Method
				name = owner + "." + name
			}
		}

		tags = append(tags, model.Tag{
			Name:       name,
			Kind:       cm.Kind,
			SymbolKind: symbolKind,
			Line:       int(nameNode.StartPoint().Row) + 1,
			File:       filePath,
			StartByte:  defNode.StartByte(),
			EndByte:    defNode.EndByte(),
		})
	}

	return tags
}

// Definitions returns the definition tags of tags, in order.
func Definitions(tags []model.Tag) []model.Tag {
	return filterKind(tags, model.TagDefinition)
}

// Calls returns the call-reference tags of tags that lie inside [start, end).
func Calls(tags []model.Tag, start, end uint32) []model.Tag {
	var calls []model.Tag
	for _, t := range filterKind(tags, model.TagReference) {
		if t.StartByte >= start && t.EndByte <= end {
			calls = append(calls, t)
		}
	}
	return calls
}

func filterKind(tags []model.Tag, kind model.TagKind) []model.Tag {
	var out []model.Tag
	for _, t := range tags {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}
