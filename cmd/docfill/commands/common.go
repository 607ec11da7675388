// Package commands implements the docfill subcommands.
package commands

import (
	"context"
	"os"
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/docfill/cmd/docfill/opts"
	"github.com/tsawler/docfill/docx"
	"github.com/tsawler/docfill/form"
	"github.com/tsawler/docfill/placeholder"
	"github.com/tsawler/docfill/registry"
)

// template is an opened template and the id used for output naming.
type template struct {
	id  string
	doc *docx.Document
}

// openTemplate resolves arg as a file path, falling back to a registry id.
func openTemplate(ctx context.Context, o *opts.RootOpts, arg string) (template, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		doc, err := docx.Open(arg)
		if err != nil {
			return template{}, err
		}
		return template{id: registry.DeriveID(arg), doc: doc}, nil
	}

	reg, err := registry.Load(ctx, o.Config.Templates.Dir, o.Config.Templates.Pattern)
	if err != nil {
		return template{}, err
	}
	t, err := reg.Get(arg)
	if err != nil {
		return template{}, errors.Errorf("%q is neither a file nor a template id: %w", arg, err)
	}
	doc, err := t.Open()
	if err != nil {
		return template{}, err
	}
	return template{id: t.ID, doc: doc}, nil
}

// schemaFor builds the configured form schema of doc.
func schemaFor(o *opts.RootOpts, doc *docx.Document) *form.Schema {
	names := o.Config.Orderer().Order(placeholder.Scan(doc).Slice())
	return form.New(names, o.Config.FormOptions()...)
}

// readValues reads a YAML or JSON mapping of tag names to values.
func readValues(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading values: %w", err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, errors.Errorf("parsing values %s: %w", path, err)
	}
	return values, nil
}

// readValueSets reads a YAML or JSON list of value mappings.
func readValueSets(path string) ([]map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading values: %w", err)
	}
	var sets []map[string]string
	if err := yaml.Unmarshal(data, &sets); err != nil {
		return nil, errors.Errorf("parsing values %s: %w", path, err)
	}
	return sets, nil
}

// parseSet parses name=value assignments. A later assignment wins.
func parseSet(assignments []string) (map[string]string, error) {
	values := make(map[string]string, len(assignments))
	for _, a := range assignments {
		name, value, ok := strings.Cut(a, "=")
		if !ok || name == "" {
			return nil, errors.Errorf("invalid --set %q, want name=value", a)
		}
		values[name] = value
	}
	return values, nil
}
