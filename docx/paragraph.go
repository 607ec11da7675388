package docx

import (
	"strings"

	"github.com/beevik/etree"
)

// runContainers are inline wrappers whose <w:r> children still belong to the
// enclosing paragraph's visible text.
var runContainers = map[string]bool{
	"hyperlink":  true,
	"smartTag":   true,
	"ins":        true,
	"moveTo":     true,
	"sdt":        true,
	"sdtContent": true,
	"fldSimple":  true,
	"customXml":  true,
	"dir":        true,
	"bdo":        true,
}

// Paragraph is a <w:p> element with its runs in document order.
type Paragraph struct {
	Part  *Part
	Index int           // position among the part's paragraphs
	Cell  *CellLocation // nil outside tables
	Runs  []*Run

	el *etree.Element
}

// CellLocation places a paragraph inside a table cell. Indexes are zero
// based; Table counts the part's tables in document order, nested tables
// included, and Depth is 0 for top-level tables.
type CellLocation struct {
	Table int
	Row   int
	Cell  int
	Depth int
}

// Run is a <w:r> element.
type Run struct {
	el *etree.Element
}

// Segment is a piece of paragraph text backed by one run child. Start and
// End are byte offsets into Paragraph.Text(). Only <w:t> segments are
// editable; tabs and breaks contribute text but cannot be rewritten.
type Segment struct {
	Run      *Run
	Start    int
	End      int
	Text     string
	Editable bool

	el *etree.Element
}

// isW reports whether el is the WordprocessingML element with the given
// local name.
func isW(el *etree.Element, local string) bool {
	if el.Tag != local {
		return false
	}
	if el.Space == "w" {
		return true
	}
	return el.NamespaceURI() == nsW
}

// isWAny reports whether el is a WordprocessingML element.
func isWAny(el *etree.Element) bool {
	return el.Space == "w" || el.NamespaceURI() == nsW
}

// Paragraphs returns every paragraph in the part: body paragraphs, paragraphs
// inside table cells at any nesting depth, content controls and text boxes.
func (p *Part) Paragraphs() []*Paragraph {
	w := &walker{part: p}
	w.walk(p.Tree.Root())
	return w.out
}

// tableFrame tracks the position inside one open table.
type tableFrame struct {
	table int
	row   int
	cell  int
}

// walker collects paragraphs depth-first in document order.
type walker struct {
	part   *Part
	out    []*Paragraph
	tables int
	frames []*tableFrame
	cell   *CellLocation
}

func (w *walker) walk(el *etree.Element) {
	for _, child := range el.ChildElements() {
		switch {
		case isW(child, "p"):
			para := &Paragraph{Part: w.part, Index: len(w.out), Cell: w.cell, el: child}
			collectRuns(child, &para.Runs)
			w.out = append(w.out, para)
			// Text boxes nested inside runs hold paragraphs of their own.
			w.walk(child)

		case isW(child, "tbl"):
			w.frames = append(w.frames, &tableFrame{table: w.tables, row: -1, cell: -1})
			w.tables++
			w.walk(child)
			w.frames = w.frames[:len(w.frames)-1]

		case isW(child, "tr") && len(w.frames) > 0:
			frame := w.frames[len(w.frames)-1]
			frame.row++
			frame.cell = -1
			w.walk(child)

		case isW(child, "tc") && len(w.frames) > 0:
			frame := w.frames[len(w.frames)-1]
			frame.cell++
			outer := w.cell
			w.cell = &CellLocation{
				Table: frame.table,
				Row:   frame.row,
				Cell:  frame.cell,
				Depth: len(w.frames) - 1,
			}
			w.walk(child)
			w.cell = outer

		default:
			w.walk(child)
		}
	}
}

// collectRuns gathers the runs of a paragraph, descending through inline
// wrappers but never into another paragraph.
func collectRuns(el *etree.Element, out *[]*Run) {
	for _, child := range el.ChildElements() {
		if !isWAny(child) {
			continue
		}
		switch {
		case child.Tag == "r":
			*out = append(*out, &Run{el: child})
		case runContainers[child.Tag]:
			collectRuns(child, out)
		}
	}
}

// Paragraphs returns the paragraphs of every text-bearing part, main
// document first.
func (d *Document) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, part := range d.parts {
		out = append(out, part.Paragraphs()...)
	}
	return out
}

// Element returns the underlying <w:p> element.
func (p *Paragraph) Element() *etree.Element {
	return p.el
}

// Segments returns the text segments of the paragraph in order.
func (p *Paragraph) Segments() []Segment {
	var segs []Segment
	offset := 0
	for _, run := range p.Runs {
		for _, child := range run.el.ChildElements() {
			if !isWAny(child) {
				continue
			}
			seg := Segment{Run: run, el: child}
			switch child.Tag {
			case "t":
				seg.Text = child.Text()
				seg.Editable = true
			case "tab":
				seg.Text = "\t"
			case "br", "cr":
				seg.Text = "\n"
			default:
				continue
			}
			seg.Start = offset
			seg.End = offset + len(seg.Text)
			offset = seg.End
			segs = append(segs, seg)
		}
	}
	return segs
}

// Text returns the visible text of the paragraph: the concatenation of its
// runs' text.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, seg := range p.Segments() {
		sb.WriteString(seg.Text)
	}
	return sb.String()
}

// Element returns the underlying <w:r> element.
func (r *Run) Element() *etree.Element {
	return r.el
}

// Text returns the visible text of the run.
func (r *Run) Text() string {
	var sb strings.Builder
	for _, child := range r.el.ChildElements() {
		if !isWAny(child) {
			continue
		}
		switch child.Tag {
		case "t":
			sb.WriteString(child.Text())
		case "tab":
			sb.WriteString("\t")
		case "br", "cr":
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
