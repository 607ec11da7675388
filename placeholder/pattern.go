package placeholder

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Cyrillic letters may arrive decomposed (И + U+0306), so trailing
// combining marks are matched here. Find drops names in which a mark is
// left over after NFC, since those are not letters of the name alphabet.
var pattern = regexp.MustCompile(`\{\$((?:[A-Za-z0-9_]|\p{Cyrillic}\p{Mn}*)+)(?::([bi]))?\}`)

// Style hints.
const (
	HintNone   = ""
	HintBold   = "b"
	HintItalic = "i"
)

// Tag is a single placeholder occurrence in a string.
type Tag struct {
	Name  string // NFC-normalized tag name
	Hint  string // "", "b" or "i"
	Start int    // byte offset of "{"
	End   int    // byte offset just past "}"
}

// Find returns every placeholder in text in order of appearance.
func Find(text string) []Tag {
	matches := pattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	tags := make([]Tag, 0, len(matches))
	for _, m := range matches {
		name := Normalize(text[m[2]:m[3]])
		if strings.IndexFunc(name, isMark) >= 0 {
			continue
		}
		tag := Tag{
			Name:  name,
			Start: m[0],
			End:   m[1],
		}
		if m[4] >= 0 {
			tag.Hint = text[m[4]:m[5]]
		}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

func isMark(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// Contains reports whether text holds at least one placeholder.
func Contains(text string) bool {
	return len(Find(text)) > 0
}

// Normalize returns the canonical (NFC) form of a tag name so that names
// typed or stored in different Unicode normalization forms compare equal.
func Normalize(name string) string {
	return norm.NFC.String(name)
}
