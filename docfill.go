// Package docfill provides a fluent API for filling {$name} placeholders in
// DOCX templates.
//
// Basic usage:
//
//	tags, err := docfill.Open("contract.docx").Tags()
//	if err != nil {
//	    // handle error
//	}
//
//	artifact, result, err := docfill.Open("contract.docx").
//	    FillTo("./media", map[string]string{"Name": "Alice"})
//	if len(result.Unresolved) > 0 {
//	    log.Println("left empty:", result.Unresolved)
//	}
//
// With options:
//
//	doc, _, err := docfill.Open("contract.docx").
//	    Font("Arial").
//	    FontMode(fill.FontAll).
//	    Fill(values)
//
// For finer control the docx, placeholder, form, fill and output packages
// can be used directly.
package docfill

import (
	"github.com/tsawler/docfill/docx"
)

// Open returns a Filler for the template at filename. The file is read
// lazily by the first terminal operation.
//
// Example:
//
//	tags, err := docfill.Open("contract.docx").Tags()
func Open(filename string) *Filler {
	return &Filler{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromDocument returns a Filler for an already opened document. The
// document is never modified.
//
// Example:
//
//	doc, err := docx.OpenBytes("upload.docx", data)
//	if err != nil {
//	    // handle error
//	}
//	schema, err := docfill.FromDocument(doc).Schema()
func FromDocument(doc *docx.Document) *Filler {
	return &Filler{
		doc:     doc,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	tags := docfill.Must(docfill.Open("contract.docx").Tags())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
