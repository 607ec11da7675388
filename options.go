package docfill

import (
	"github.com/tsawler/docfill/fill"
	"github.com/tsawler/docfill/output"
	"github.com/tsawler/docfill/placeholder"
)

// FillOptions holds configuration for a fill.
type FillOptions struct {
	// Fonts
	font     string
	fontMode fill.FontMode

	// Ordering and form
	privileged []string
	required   bool
	maxLength  int
	keepMarkup bool

	// Output
	naming     output.Policy
	templateID string
}

// defaultOptions returns the default fill options.
func defaultOptions() FillOptions {
	return FillOptions{
		font:       fill.DefaultFont,
		fontMode:   fill.FontTouched,
		privileged: []string{placeholder.DefaultPrivilegedPrefix},
		required:   false,
		maxLength:  0, // form default
		keepMarkup: false,
		naming:     output.PolicyDate,
	}
}

// clone creates a deep copy of FillOptions.
func (o FillOptions) clone() FillOptions {
	newOpts := o
	if o.privileged != nil {
		newOpts.privileged = make([]string, len(o.privileged))
		copy(newOpts.privileged, o.privileged)
	}
	return newOpts
}
