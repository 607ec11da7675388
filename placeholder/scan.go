package placeholder

import (
	"sort"

	"github.com/tsawler/docfill/docx"
)

// Set is a deduplicated collection of tag names.
type Set map[string]struct{}

// NewSet returns a set holding the given names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, name := range names {
		s.Add(name)
	}
	return s
}

// Add inserts a name.
func (s Set) Add(name string) {
	s[Normalize(name)] = struct{}{}
}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[Normalize(name)]
	return ok
}

// Len returns the number of distinct names.
func (s Set) Len() int {
	return len(s)
}

// Slice returns the names in byte-wise order. Use Order for presentation.
func (s Set) Slice() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Occurrence locates one placeholder in a document.
type Occurrence struct {
	Tag
	Part      string // package part name, e.g. word/document.xml
	Paragraph int    // paragraph index within the part
	Cell      *docx.CellLocation
}

// Scan returns the distinct tag names of every paragraph of the document,
// including table cells at any depth, headers, footers and notes. Tags are
// matched against each paragraph's full text so tags split across runs are
// found.
func Scan(doc *docx.Document) Set {
	set := make(Set)
	for _, p := range doc.Paragraphs() {
		for _, tag := range Find(p.Text()) {
			set[tag.Name] = struct{}{}
		}
	}
	return set
}

// ScanOccurrences returns every placeholder occurrence in document order.
func ScanOccurrences(doc *docx.Document) []Occurrence {
	var out []Occurrence
	for _, p := range doc.Paragraphs() {
		for _, tag := range Find(p.Text()) {
			out = append(out, Occurrence{
				Tag:       tag,
				Part:      p.Part.Name,
				Paragraph: p.Index,
				Cell:      p.Cell,
			})
		}
	}
	return out
}

// Names returns the names in presentation order.
func (s Set) Names() []string {
	return Order(s)
}

// ScanText returns the distinct tag names found in text.
func ScanText(text string) Set {
	set := make(Set)
	for _, tag := range Find(text) {
		set[tag.Name] = struct{}{}
	}
	return set
}
