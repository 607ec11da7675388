// Package form turns an ordered list of placeholder names into an input
// schema and collects submitted values into a Values map for filling.
package form

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/tsawler/docfill/placeholder"
)

// DefaultMaxLength bounds a single value in runes.
const DefaultMaxLength = 4000

// Field describes one single-line text input.
type Field struct {
	Name      string
	Label     string
	Required  bool
	MaxLength int // in runes, 0 means unlimited
}

// Values maps tag names to their replacement text.
type Values map[string]string

// Schema is an ordered list of fields.
type Schema struct {
	Fields []Field

	sanitize func(string) string
}

type settings struct {
	required  bool
	maxLength int
	sanitize  func(string) string
}

// Option configures a Schema.
type Option func(*settings)

// WithRequired makes every field mandatory.
func WithRequired(required bool) Option {
	return func(s *settings) {
		s.required = required
	}
}

// WithMaxLength sets the per-field rune limit. Zero or less disables it.
func WithMaxLength(n int) Option {
	return func(s *settings) {
		if n < 0 {
			n = 0
		}
		s.maxLength = n
	}
}

// WithSanitizer replaces the value sanitizer. A nil function keeps values
// as submitted.
func WithSanitizer(fn func(string) string) Option {
	return func(s *settings) {
		s.sanitize = fn
	}
}

// New builds a schema with one field per name, in the given order. The
// label of each field is its name.
func New(names []string, opts ...Option) *Schema {
	cfg := settings{
		maxLength: DefaultMaxLength,
		sanitize:  StripMarkup,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Schema{
		Fields:   make([]Field, 0, len(names)),
		sanitize: cfg.sanitize,
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = placeholder.Normalize(name)
		if seen[name] {
			continue
		}
		seen[name] = true
		s.Fields = append(s.Fields, Field{
			Name:      name,
			Label:     name,
			Required:  cfg.required,
			MaxLength: cfg.maxLength,
		})
	}
	return s
}

// Names returns the field names in order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Field returns the field with the given name.
func (s *Schema) Field(name string) (Field, bool) {
	name = placeholder.Normalize(name)
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Collect reads one value per field from a form submission (url.Values
// satisfies the parameter type). Absent fields collect as "". Keys that are
// not fields are ignored.
//
// On failure the returned error is a *ValidationError and the partially
// collected values are returned alongside it.
func (s *Schema) Collect(submitted map[string][]string) (Values, error) {
	flat := make(map[string]string, len(submitted))
	for key, vals := range submitted {
		if len(vals) == 0 {
			continue
		}
		flat[placeholder.Normalize(key)] = vals[0]
	}
	return s.collect(flat)
}

// CollectMap is Collect for single-valued input such as a decoded values
// file.
func (s *Schema) CollectMap(submitted map[string]string) (Values, error) {
	flat := make(map[string]string, len(submitted))
	for key, val := range submitted {
		flat[placeholder.Normalize(key)] = val
	}
	return s.collect(flat)
}

func (s *Schema) collect(submitted map[string]string) (Values, error) {
	values := make(Values, len(s.Fields))
	verr := &ValidationError{}

	for _, f := range s.Fields {
		raw := submitted[f.Name]
		if s.sanitize != nil {
			raw = s.sanitize(raw)
		}
		values[f.Name] = raw

		if f.Required && strings.TrimSpace(raw) == "" {
			verr.add(f.Name, "is required")
		}
		if f.MaxLength > 0 && utf8.RuneCountInString(raw) > f.MaxLength {
			verr.add(f.Name, fmt.Sprintf("must be at most %d characters", f.MaxLength))
		}
		if r, ok := invalidRune(raw); ok {
			verr.add(f.Name, fmt.Sprintf("contains an unsupported character %U", r))
		}
	}

	if len(verr.Fields) > 0 {
		verr.Values = values
		return values, verr
	}
	return values, nil
}

// invalidRune returns the first rune that cannot appear in an XML 1.0
// document.
func invalidRune(s string) (rune, bool) {
	for i, r := range s {
		switch {
		case r == utf8.RuneError:
			if _, size := utf8.DecodeRuneInString(s[i:]); size <= 1 {
				return r, true
			}
		case r == '\t' || r == '\n' || r == '\r':
		case r < 0x20, r == 0xFFFE, r == 0xFFFF:
			return r, true
		}
	}
	return 0, false
}

// ValidationError reports per-field problems of a submission.
type ValidationError struct {
	Fields map[string][]string
	Values Values
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Error implements error.
func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+strings.Join(e.Fields[name], ", "))
	}
	return "invalid form values: " + strings.Join(parts, "; ")
}

var (
	markupPolicyOnce sync.Once
	markupPolicy     *bluemonday.Policy
)

// StripMarkup removes HTML tags from a value. Text without tags is returned
// unchanged; entities produced by sanitizing are decoded again since the
// value is written into a document, not a web page.
func StripMarkup(value string) string {
	if !strings.Contains(value, "<") {
		return value
	}
	markupPolicyOnce.Do(func() {
		markupPolicy = bluemonday.StrictPolicy()
	})
	return html.UnescapeString(markupPolicy.Sanitize(value))
}
