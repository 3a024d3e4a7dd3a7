// Package graph indexes definitions across parsed files and resolves call
// sites to them.
package graph

import (
	"sort"
	"strings"

	"github.com/phobologic/llmexplain/internal/model"
	"github.com/phobologic/llmexplain/internal/parse"
)

// Definition is a function or method definition located in a file.
type Definition struct {
	model.Tag
	file *model.FileInfo
}

// Source returns the text of the definition node.
func (d Definition) Source() string {
	src := d.file.Source
	if int(d.EndByte) > len(src) || d.StartByte > d.EndByte {
		return ""
	}
	return string(src[d.StartByte:d.EndByte])
}

// Bare returns the definition name without its owner prefix.
func (d Definition) Bare() string {
	return bareName(d.Name)
}

func (d Definition) same(o Definition) bool {
	return d.File == o.File && d.StartByte == o.StartByte && d.EndByte == o.EndByte
}

// CallEdge is one call site inside a caller resolved to a callee definition.
type CallEdge struct {
	Callee Definition
	Line   int
}

// Index maps symbol names to their definitions. Classes are not indexed.
type Index struct {
	byName map[string][]Definition // qualified name: "f", "Server.Handle"
	byBare map[string][]Definition // last segment: "f", "Handle"
	files  map[string]*model.FileInfo
}

// BuildIndex indexes every function and method definition in fileInfos.
// fileInfos must not be modified while the index is in use.
func BuildIndex(fileInfos []model.FileInfo) *Index {
	ix := &Index{
		byName: make(map[string][]Definition),
		byBare: make(map[string][]Definition),
		files:  make(map[string]*model.FileInfo, len(fileInfos)),
	}
	for i := range fileInfos {
		fi := &fileInfos[i]
		ix.files[fi.Path] = fi
		for _, tag := range parse.Definitions(fi.Tags) {
			if tag.SymbolKind == model.Class {
				continue
			}
			if tag.File == "" {
				tag.File = fi.Path
			}
			def := Definition{Tag: tag, file: fi}
			ix.byName[tag.Name] = append(ix.byName[tag.Name], def)
			bare := bareName(tag.Name)
			ix.byBare[bare] = append(ix.byBare[bare], def)
		}
	}
	for _, m := range []map[string][]Definition{ix.byName, ix.byBare} {
		for _, defs := range m {
			sortDefinitions(defs)
		}
	}
	return ix
}

// Lookup returns the definitions matching name. A qualified name
// ("Type.method") matches exactly; a bare name matches a free function of
// that name, or failing that every method with that name.
func (ix *Index) Lookup(name string) []Definition {
	if defs := ix.byName[name]; len(defs) > 0 {
		return clone(defs)
	}
	if strings.Contains(name, ".") {
		return nil
	}
	return clone(ix.byBare[name])
}

// Resolve returns the definitions a call tag found in file may refer to.
// Definitions in the calling file shadow the rest of the repository.
func (ix *Index) Resolve(file string, call model.Tag) []Definition {
	candidates := ix.byBare[bareName(call.Name)]
	if len(candidates) == 0 {
		return nil
	}
	var local []Definition
	for _, d := range candidates {
		if d.File == file {
			local = append(local, d)
		}
	}
	if len(local) > 0 {
		return local
	}
	return clone(candidates)
}

// Callees returns the resolved call sites inside def, in source order.
// Calls that resolve to def itself and calls with no known definition
// are dropped. The same callee appears once per call site.
func (ix *Index) Callees(def Definition) []CallEdge {
	fi := ix.files[def.File]
	if fi == nil {
		fi = def.file
	}
	var edges []CallEdge
	for _, call := range parse.Calls(fi.Tags, def.StartByte, def.EndByte) {
		for _, callee := range ix.Resolve(fi.Path, call) {
			if callee.same(def) {
				continue // no self-edges
			}
			edges = append(edges, CallEdge{Callee: callee, Line: call.Line})
		}
	}
	return edges
}

func bareName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

func sortDefinitions(defs []Definition) {
	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].File != defs[j].File {
			return defs[i].File < defs[j].File
		}
		return defs[i].StartByte < defs[j].StartByte
	})
}

func clone(defs []Definition) []Definition {
	if len(defs) == 0 {
		return nil
	}
	out := make([]Definition, len(defs))
	copy(out, defs)
	return out
}
