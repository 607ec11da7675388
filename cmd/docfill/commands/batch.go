package commands

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/docfill/cmd/docfill/opts"
	"github.com/tsawler/docfill/output"
)

// NewBatchCmd fills one template once per value set.
func NewBatchCmd(o *opts.RootOpts) *cobra.Command {
	var (
		valuesFile string
		jobs       int
		outDir     string
	)

	cmd := &cobra.Command{
		Use:   "batch <template>",
		Short: "Fill a template once for every value set in a file",
		Long: `Batch reads a YAML or JSON list of value mappings and fills the
template once per entry, running up to --jobs fills at the same time.
Each fill works on its own copy of the template; the first failure stops
the remaining ones.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := zerolog.Ctx(ctx)

			t, err := openTemplate(ctx, o, args[0])
			if err != nil {
				return err
			}
			sets, err := readValueSets(valuesFile)
			if err != nil {
				return err
			}
			if len(sets) == 0 {
				o.User.Warn("%s has no value sets", valuesFile)
				return nil
			}

			schema := schemaFor(o, t.doc)
			engine := o.Config.Engine()
			w := o.Config.Writer()
			if outDir != "" {
				w.Dir = outDir
			}

			artifacts := make([]output.Artifact, len(sets))
			unresolved := make([]int, len(sets))

			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(max(jobs, 1))
			for i, set := range sets {
				g.Go(func() error {
					values, err := schema.CollectMap(set)
					if err != nil {
						return errors.Errorf("entry %d: %w", i+1, err)
					}
					doc, res, err := engine.Fill(gctx, t.doc, values)
					if err != nil {
						return errors.Errorf("entry %d: %w", i+1, err)
					}
					a, err := w.Persist(gctx, doc, fmt.Sprintf("%s-%d", t.id, i+1))
					if err != nil {
						return errors.Errorf("entry %d: %w", i+1, err)
					}
					artifacts[i] = a
					unresolved[i] = len(res.Unresolved)
					logger.Debug().Int("entry", i+1).Str("path", a.Path).Msg("filled")
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			rows := make([][]string, len(sets))
			for i, a := range artifacts {
				rows[i] = []string{strconv.Itoa(i + 1), a.Path, strconv.Itoa(unresolved[i])}
			}
			if err := o.User.Table([]string{"#", "File", "Empty tags"}, rows); err != nil {
				return err
			}
			o.User.Success("filled %d documents", len(sets))
			return nil
		},
	}

	cmd.Flags().StringVar(&valuesFile, "values", "", "YAML or JSON list of value mappings")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "number of fills to run at once")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default from config)")
	_ = cmd.MarkFlagRequired("values")
	return cmd
}
