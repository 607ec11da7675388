package commands

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/tsawler/docfill/cmd/docfill/opts"
	"github.com/tsawler/docfill/form"
	"github.com/tsawler/docfill/placeholder"
)

// NewFillCmd fills one template.
func NewFillCmd(o *opts.RootOpts) *cobra.Command {
	var (
		valuesFile  string
		assignments []string
		interactive bool
		outDir      string
	)

	cmd := &cobra.Command{
		Use:   "fill <template>",
		Short: "Fill a template and write the result to the output directory",
		Long: `Fill replaces every placeholder of a template (a .docx path or a
registry id) with values from --values (YAML or JSON), --set name=value
flags and, with --interactive, answers to prompts. Placeholders without a
value are left empty.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			t, err := openTemplate(ctx, o, args[0])
			if err != nil {
				return err
			}
			schema := schemaFor(o, t.doc)

			submitted := map[string]string{}
			if valuesFile != "" {
				fromFile, err := readValues(valuesFile)
				if err != nil {
					return err
				}
				merge(submitted, fromFile)
			}
			set, err := parseSet(assignments)
			if err != nil {
				return err
			}
			merge(submitted, set)

			if interactive {
				if err := ask(ctx, schema, submitted); err != nil {
					return err
				}
			}

			values, err := schema.CollectMap(submitted)
			var verr *form.ValidationError
			if errors.As(err, &verr) {
				for _, name := range schema.Names() {
					for _, msg := range verr.Fields[name] {
						o.User.Fail("%s %s", name, msg)
					}
				}
				return errors.New("invalid values")
			} else if err != nil {
				return err
			}

			doc, res, err := o.Config.Engine().Fill(ctx, t.doc, values)
			if err != nil {
				return err
			}

			w := o.Config.Writer()
			if outDir != "" {
				w.Dir = outDir
			}
			artifact, err := w.Persist(ctx, doc, t.id)
			if err != nil {
				return err
			}

			for _, name := range res.Unresolved {
				o.User.Warn("%s has no value, left empty", name)
			}
			o.User.Success("wrote %s", artifact.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&valuesFile, "values", "", "YAML or JSON file mapping tag names to values")
	cmd.Flags().StringArrayVar(&assignments, "set", nil, "set a value, name=value (repeatable)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "prompt for every field")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default from config)")
	return cmd
}

// merge copies src into dst under normalized names.
func merge(dst, src map[string]string) {
	for name, value := range src {
		dst[placeholder.Normalize(name)] = value
	}
}

// ask prompts for every field, offering already known values as defaults.
func ask(ctx context.Context, schema *form.Schema, values map[string]string) error {
	logger := zerolog.Ctx(ctx)
	for _, field := range schema.Fields {
		answer, err := prompter.Input(ctx, field, values[field.Name])
		if err != nil {
			return err
		}
		values[field.Name] = answer
		logger.Debug().Str("tag", field.Name).Msg("answered")
	}
	return nil
}
