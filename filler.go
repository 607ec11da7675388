package docfill

import (
	"context"
	"io"

	"gitlab.com/tozd/go/errors"

	"github.com/tsawler/docfill/docx"
	"github.com/tsawler/docfill/fill"
	"github.com/tsawler/docfill/form"
	"github.com/tsawler/docfill/output"
	"github.com/tsawler/docfill/placeholder"
)

// Filler provides a fluent interface for inspecting and filling a template.
// Each configuration method returns a new Filler, so a configured Filler can
// be shared as a base for further chains. Terminal operations load the
// template on first use; a single Filler must not run terminal operations
// from several goroutines at once.
type Filler struct {
	// Source
	filename string
	doc      *docx.Document

	// Configuration
	options FillOptions
	ctx     context.Context

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Filler with a deep copy of options.
func (f *Filler) clone() *Filler {
	return &Filler{
		filename: f.filename,
		doc:      f.doc,
		options:  f.options.clone(),
		ctx:      f.ctx,
		err:      f.err,
	}
}

// ensureDocument opens the template if not already open.
func (f *Filler) ensureDocument() error {
	if f.err != nil {
		return f.err
	}
	if f.doc != nil {
		return nil
	}
	if f.filename == "" {
		return errors.New("no filename specified")
	}

	doc, err := docx.Open(f.filename)
	if err != nil {
		return errors.Errorf("opening template: %w", err)
	}
	f.doc = doc
	return nil
}

func (f *Filler) runContext() context.Context {
	if f.ctx != nil {
		return f.ctx
	}
	return context.Background()
}

// ============================================================================
// Configuration Methods (return new Filler instance)
// ============================================================================

// Context sets the context used for cancellation and logging (via
// zerolog.Ctx).
func (f *Filler) Context(ctx context.Context) *Filler {
	newF := f.clone()
	newF.ctx = ctx
	return newF
}

// Font sets the family forced onto rewritten runs.
//
// Example:
//
//	doc, _, err := docfill.Open("a.docx").Font("Arial").Fill(values)
func (f *Filler) Font(family string) *Filler {
	newF := f.clone()
	if family == "" {
		newF.err = errors.New("font family must not be empty")
		return newF
	}
	newF.options.font = family
	return newF
}

// FontMode selects which runs get their font normalized.
func (f *Filler) FontMode(mode fill.FontMode) *Filler {
	newF := f.clone()
	parsed, err := fill.ParseFontMode(string(mode))
	if err != nil {
		newF.err = err
		return newF
	}
	newF.options.fontMode = parsed
	return newF
}

// Privileged replaces the name prefixes that lead their group when tags are
// ordered. Calling it without arguments disables the privilege.
func (f *Filler) Privileged(prefixes ...string) *Filler {
	newF := f.clone()
	newF.options.privileged = append([]string(nil), prefixes...)
	return newF
}

// Required makes every form field mandatory.
func (f *Filler) Required() *Filler {
	newF := f.clone()
	newF.options.required = true
	return newF
}

// MaxLength limits each value to n runes.
func (f *Filler) MaxLength(n int) *Filler {
	newF := f.clone()
	newF.options.maxLength = n
	return newF
}

// KeepMarkup disables stripping of HTML markup from values.
func (f *Filler) KeepMarkup() *Filler {
	newF := f.clone()
	newF.options.keepMarkup = true
	return newF
}

// NameByID switches output naming to generated_<id>.docx.
//
// Example:
//
//	a, _, err := docfill.Open("a.docx").NameByID("42").FillTo(dir, values)
func (f *Filler) NameByID(id string) *Filler {
	newF := f.clone()
	newF.options.naming = output.PolicyID
	newF.options.templateID = id
	return newF
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Document returns the opened template.
func (f *Filler) Document() (*docx.Document, error) {
	if err := f.ensureDocument(); err != nil {
		return nil, err
	}
	return f.doc, nil
}

// Tags returns the distinct placeholder names in presentation order.
func (f *Filler) Tags() ([]string, error) {
	if err := f.ensureDocument(); err != nil {
		return nil, err
	}
	return f.orderer().Order(placeholder.Scan(f.doc).Slice()), nil
}

// Occurrences returns every placeholder occurrence in document order.
func (f *Filler) Occurrences() ([]placeholder.Occurrence, error) {
	if err := f.ensureDocument(); err != nil {
		return nil, err
	}
	return placeholder.ScanOccurrences(f.doc), nil
}

// Schema returns the input form for the template.
func (f *Filler) Schema() (*form.Schema, error) {
	tags, err := f.Tags()
	if err != nil {
		return nil, err
	}
	return form.New(tags, f.formOptions()...), nil
}

// Fill substitutes values and returns the filled copy of the template.
func (f *Filler) Fill(values map[string]string) (*docx.Document, fill.Result, error) {
	if err := f.ensureDocument(); err != nil {
		return nil, fill.Result{}, err
	}
	return f.engine().Fill(f.runContext(), f.doc, values)
}

// WriteTo fills the template and writes the resulting package to w.
func (f *Filler) WriteTo(w io.Writer, values map[string]string) (fill.Result, error) {
	doc, res, err := f.Fill(values)
	if err != nil {
		return res, err
	}
	if _, err := doc.WriteTo(w); err != nil {
		return res, errors.Errorf("writing document: %w", err)
	}
	return res, nil
}

// FillTo fills the template and persists the result under dir.
//
// Example:
//
//	a, _, err := docfill.Open("contract.docx").FillTo("./media", values)
//	fmt.Println(a.Path)
func (f *Filler) FillTo(dir string, values map[string]string) (output.Artifact, fill.Result, error) {
	doc, res, err := f.Fill(values)
	if err != nil {
		return output.Artifact{}, res, err
	}

	w := output.NewWriter(dir, f.options.naming)
	a, err := w.Persist(f.runContext(), doc, f.options.templateID)
	if err != nil {
		return output.Artifact{}, res, err
	}
	return a, res, nil
}

func (f *Filler) orderer() placeholder.Orderer {
	return placeholder.Orderer{Privileged: f.options.privileged}
}

func (f *Filler) engine() *fill.Engine {
	return fill.New(fill.WithFont(f.options.font), fill.WithFontMode(f.options.fontMode))
}

func (f *Filler) formOptions() []form.Option {
	opts := []form.Option{form.WithRequired(f.options.required)}
	if f.options.maxLength > 0 {
		opts = append(opts, form.WithMaxLength(f.options.maxLength))
	}
	if f.options.keepMarkup {
		opts = append(opts, form.WithSanitizer(nil))
	}
	return opts
}
