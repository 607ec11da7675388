// Package fill replaces {$name} placeholders in a DOCX document with values.
//
// Matching happens on the visible text of each paragraph, so a placeholder
// that Word split over several runs is still found. The matched span is
// mapped back onto the <w:t> nodes holding it: the value goes into the node
// where the placeholder starts and the rest of the placeholder text is
// removed from the following nodes. Runs that hold no placeholder text are
// left exactly as they were.
package fill

import (
	"context"
	"sort"
	"strings"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/tsawler/docfill/docx"
	"github.com/tsawler/docfill/placeholder"
)

// DefaultFont is the family applied to rewritten runs.
const DefaultFont = "Times New Roman"

// FontMode selects which runs get their font family forced.
type FontMode string

const (
	// FontTouched normalizes runs whose text was rewritten.
	FontTouched FontMode = "touched"
	// FontAll normalizes every run of every paragraph.
	FontAll FontMode = "all"
	// FontNone leaves fonts alone.
	FontNone FontMode = "none"
)

// ParseFontMode validates a mode name. The empty string selects
// FontTouched.
func ParseFontMode(s string) (FontMode, error) {
	switch FontMode(s) {
	case "":
		return FontTouched, nil
	case FontTouched, FontAll, FontNone:
		return FontMode(s), nil
	}
	return "", errors.Errorf("unknown font mode %q", s)
}

// Engine fills documents. It holds no per-document state and is safe for
// concurrent use.
type Engine struct {
	font string
	mode FontMode
}

// Option configures an Engine.
type Option func(*Engine)

// WithFont sets the font family used for normalization.
func WithFont(family string) Option {
	return func(e *Engine) {
		if family != "" {
			e.font = family
		}
	}
}

// WithFontMode sets which runs are normalized.
func WithFontMode(mode FontMode) Option {
	return func(e *Engine) {
		if mode != "" {
			e.mode = mode
		}
	}
}

// New returns an Engine with the given options applied.
func New(opts ...Option) *Engine {
	e := &Engine{font: DefaultFont, mode: FontTouched}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result summarizes a fill.
type Result struct {
	// Replacements counts replaced occurrences per tag name.
	Replacements map[string]int
	// Unresolved lists tags that had no value and were replaced with "".
	Unresolved []string
	// TouchedRuns is the number of runs whose text changed.
	TouchedRuns int
}

// Fill returns a filled copy of src. The source document is not modified.
// Tags without a value are replaced with the empty string and reported in
// Result.Unresolved.
func (e *Engine) Fill(ctx context.Context, src *docx.Document, values map[string]string) (*docx.Document, Result, error) {
	logger := zerolog.Ctx(ctx)

	normalized := make(map[string]string, len(values))
	for name, value := range values {
		normalized[placeholder.Normalize(name)] = value
	}

	doc := src.Clone()
	state := &fillState{
		values:     normalized,
		counts:     make(map[string]int),
		unresolved: make(map[string]bool),
		touched:    make(map[*etree.Element]bool),
	}

	for _, part := range doc.Parts() {
		if err := ctx.Err(); err != nil {
			return nil, Result{}, errors.WithStack(err)
		}
		for _, p := range part.Paragraphs() {
			touched := state.fillParagraph(p)
			e.normalizeFonts(p, touched)
		}
	}

	res := Result{
		Replacements: state.counts,
		TouchedRuns:  len(state.touched),
	}
	for name := range state.unresolved {
		res.Unresolved = append(res.Unresolved, name)
	}
	sort.Strings(res.Unresolved)

	for _, name := range res.Unresolved {
		logger.Debug().Str("tag", name).Str("document", src.Name()).Msg("no value for tag, using empty string")
	}
	logger.Debug().
		Str("document", src.Name()).
		Int("tags", len(res.Replacements)).
		Int("unresolved", len(res.Unresolved)).
		Int("runs", res.TouchedRuns).
		Msg("filled document")

	return doc, res, nil
}

// normalizeFonts applies the engine's font mode to a paragraph.
func (e *Engine) normalizeFonts(p *docx.Paragraph, touched []*docx.Run) {
	switch e.mode {
	case FontNone:
	case FontAll:
		for _, run := range p.Runs {
			run.SetFont(e.font)
		}
	default:
		for _, run := range touched {
			run.SetFont(e.font)
		}
	}
}

// fillState accumulates the outcome of one Fill call.
type fillState struct {
	values     map[string]string
	counts     map[string]int
	unresolved map[string]bool
	touched    map[*etree.Element]bool
}

// value resolves a tag, recording unresolved names.
func (s *fillState) value(name string) string {
	v, ok := s.values[name]
	if !ok {
		s.unresolved[name] = true
	}
	s.counts[name]++
	return v
}

// fillParagraph replaces every placeholder in p and returns the runs whose
// text changed, in order.
func (s *fillState) fillParagraph(p *docx.Paragraph) []*docx.Run {
	segs := p.Segments()

	var sb strings.Builder
	for _, seg := range segs {
		sb.WriteString(seg.Text)
	}
	text := sb.String()

	tags := placeholder.Find(text)
	if len(tags) == 0 {
		return nil
	}

	replacements := make([]string, len(tags))
	for i, tag := range tags {
		replacements[i] = s.value(tag.Name)
	}

	var touched []*docx.Run
	seen := make(map[*docx.Run]bool)
	for _, seg := range segs {
		if !seg.Editable {
			continue
		}
		newText, changed := rewriteSegment(text, seg, tags, replacements)
		if !changed {
			continue
		}
		seg.SetText(newText)
		if !seen[seg.Run] {
			seen[seg.Run] = true
			touched = append(touched, seg.Run)
			s.touched[seg.Run.Element()] = true
		}
	}
	return touched
}

// rewriteSegment computes the new text of one segment: characters covered
// by a tag are dropped and the tag's replacement is inserted in the segment
// where the tag begins.
func rewriteSegment(text string, seg docx.Segment, tags []placeholder.Tag, replacements []string) (string, bool) {
	var sb strings.Builder
	pos := seg.Start
	changed := false

	for i, tag := range tags {
		if tag.End <= seg.Start || tag.Start >= seg.End {
			continue
		}
		changed = true
		if tag.Start > pos {
			sb.WriteString(text[pos:tag.Start])
		}
		if tag.Start >= seg.Start {
			sb.WriteString(replacements[i])
		}
		pos = min(tag.End, seg.End)
	}

	if !changed {
		return "", false
	}
	if pos < seg.End {
		sb.WriteString(text[pos:seg.End])
	}
	return sb.String(), true
}
