package docx

import (
	"strings"

	"github.com/beevik/etree"
)

// themeFontAttrs override explicit rFonts values when present.
var themeFontAttrs = []string{"asciiTheme", "hAnsiTheme", "eastAsiaTheme", "cstheme"}

// qualify prefixes a local name with the namespace prefix used by el.
func qualify(el *etree.Element, local string) string {
	if el.Space == "" {
		return local
	}
	return el.Space + ":" + local
}

// firstChild returns the first WordprocessingML child with the local name.
func firstChild(el *etree.Element, local string) *etree.Element {
	for _, child := range el.ChildElements() {
		if isW(child, local) {
			return child
		}
	}
	return nil
}

// SetText rewrites the text of an editable segment. Newlines become <w:br/>
// and tabs become <w:tab/> siblings inside the same run. It is a no-op for
// segments that are not backed by <w:t>.
func (s Segment) SetText(text string) {
	if !s.Editable {
		return
	}

	pieces := splitSpecial(text)
	setTextElement(s.el, pieces[0])

	run := s.Run.el
	index := s.el.Index() + 1
	for _, piece := range pieces[1:] {
		var el *etree.Element
		switch piece {
		case "\n":
			el = etree.NewElement(qualify(run, "br"))
		case "\t":
			el = etree.NewElement(qualify(run, "tab"))
		default:
			el = etree.NewElement(qualify(run, "t"))
			setTextElement(el, piece)
		}
		run.InsertChildAt(index, el)
		index++
	}
}

// splitSpecial splits text into plain pieces and single "\n" / "\t" pieces.
// The first element is always the (possibly empty) leading plain text.
func splitSpecial(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	pieces := []string{""}
	var sb strings.Builder
	flush := func() {
		if sb.Len() == 0 {
			return
		}
		if len(pieces) == 1 && pieces[0] == "" {
			pieces[0] = sb.String()
		} else {
			pieces = append(pieces, sb.String())
		}
		sb.Reset()
	}
	for _, r := range text {
		switch r {
		case '\n', '\r', '\t':
			flush()
			if r == '\t' {
				pieces = append(pieces, "\t")
			} else {
				pieces = append(pieces, "\n")
			}
		default:
			sb.WriteRune(r)
		}
	}
	flush()
	return pieces
}

// setTextElement sets the content of a <w:t> element, marking it
// space-preserving when the text would otherwise be trimmed by Word.
func setTextElement(el *etree.Element, text string) {
	el.SetText(text)
	if text != strings.TrimSpace(text) {
		el.CreateAttr("xml:space", "preserve")
	}
}

// SetFont forces the run's font family for every script slot, including the
// East-Asian fallback, and drops theme font references that would win over
// the explicit names.
func (r *Run) SetFont(family string) {
	rPr := firstChild(r.el, "rPr")
	if rPr == nil {
		rPr = etree.NewElement(qualify(r.el, "rPr"))
		r.el.InsertChildAt(0, rPr)
	}

	fonts := firstChild(rPr, "rFonts")
	if fonts == nil {
		fonts = etree.NewElement(qualify(r.el, "rFonts"))
		// rFonts follows rStyle in the run properties sequence.
		index := 0
		if style := firstChild(rPr, "rStyle"); style != nil {
			index = style.Index() + 1
		}
		rPr.InsertChildAt(index, fonts)
	}

	for _, attr := range themeFontAttrs {
		fonts.RemoveAttr(qualify(r.el, attr))
	}
	for _, attr := range []string{"ascii", "hAnsi", "eastAsia", "cs"} {
		fonts.CreateAttr(qualify(r.el, attr), family)
	}
}

// Font returns the explicit ASCII font family of the run, or "".
func (r *Run) Font() string {
	rPr := firstChild(r.el, "rPr")
	if rPr == nil {
		return ""
	}
	fonts := firstChild(rPr, "rFonts")
	if fonts == nil {
		return ""
	}
	return fonts.SelectAttrValue(qualify(r.el, "ascii"), "")
}

// EastAsiaFont returns the explicit East-Asian font family of the run, or "".
func (r *Run) EastAsiaFont() string {
	rPr := firstChild(r.el, "rPr")
	if rPr == nil {
		return ""
	}
	fonts := firstChild(rPr, "rFonts")
	if fonts == nil {
		return ""
	}
	return fonts.SelectAttrValue(qualify(r.el, "eastAsia"), "")
}
