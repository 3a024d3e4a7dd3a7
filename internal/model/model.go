// Package model defines core data structures for llmexplain.
package model

// TargetFunction is the function selected for explanation.
type TargetFunction struct {
	Name   string
	Source string
}

// RawReference is one call-site reference as resolved by a source adapter.
// Source is only invoked for references that survive deduplication.
type RawReference struct {
	Identifier string
	Source     func() string
}

// Reference is a distinct call-site target with its source text.
type Reference struct {
	Identifier string
	Source     string
}

// MaterialKind selects how a reference is rendered into the final prompt.
type MaterialKind string

const (
	Raw     MaterialKind = "raw"
	Summary MaterialKind = "summary"
)

// ReferenceMaterial is a Reference rebound to the representation chosen by
// the budget decision.
type ReferenceMaterial struct {
	Kind       MaterialKind
	Identifier string
	Content    string
}

// PreparedMethod is the collected target plus its deduplicated references,
// kept in first-seen order.
type PreparedMethod struct {
	Name       string
	Body       string
	References []Reference

	index map[string]int
}

// NewPreparedMethod returns an empty PreparedMethod for target.
func NewPreparedMethod(target TargetFunction) *PreparedMethod {
	return &PreparedMethod{
		Name:  target.Name,
		Body:  target.Source,
		index: make(map[string]int),
	}
}

// Add inserts a reference unless its identifier is already present.
// It reports whether the reference was inserted.
func (m *PreparedMethod) Add(ref Reference) bool {
	if m.index == nil {
		m.index = make(map[string]int, len(m.References))
		for i := range m.References {
			m.index[m.References[i].Identifier] = i
		}
	}
	if _, ok := m.index[ref.Identifier]; ok {
		return false
	}
	m.index[ref.Identifier] = len(m.References)
	m.References = append(m.References, ref)
	return true
}

// Has reports whether identifier has already been collected.
func (m *PreparedMethod) Has(identifier string) bool {
	_, ok := m.Lookup(identifier)
	return ok
}

// Lookup returns the source text collected for identifier.
func (m *PreparedMethod) Lookup(identifier string) (string, bool) {
	if m.index == nil {
		for i := range m.References {
			if m.References[i].Identifier == identifier {
				return m.References[i].Source, true
			}
		}
		return "", false
	}
	i, ok := m.index[identifier]
	if !ok {
		return "", false
	}
	return m.References[i].Source, true
}

// ExplanationResult is the final explanation text handed to the caller.
type ExplanationResult struct {
	Text string
}

// TagKind indicates whether a tag is a definition or a reference.
type TagKind string

const (
	TagDefinition TagKind = "def"
	TagReference  TagKind = "ref"
)

// SymbolKind indicates the syntactic kind of a symbol.
type SymbolKind string

const (
	Class    SymbolKind = "class"
	Function SymbolKind = "function"
	Method   SymbolKind = "method"
)

// Tag represents a single symbol occurrence extracted from source code.
// StartByte and EndByte span the whole definition node for definitions and
// the call expression for references.
type Tag struct {
	Name       string
	Kind       TagKind
	SymbolKind SymbolKind
	Line       int
	File       string
	StartByte  uint32
	EndByte    uint32
}

// FileInfo holds the extracted tags and source of a single file.
type FileInfo struct {
	Path     string
	Language string
	Source   []byte
	Tags     []Tag
}
