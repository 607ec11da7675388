package commands

import (
	"github.com/spf13/cobra"

	"github.com/tsawler/docfill/cmd/docfill/opts"
	"github.com/tsawler/docfill/registry"
)

// NewTemplatesCmd lists the template registry.
func NewTemplatesCmd(o *opts.RootOpts) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List registered templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = o.Config.Templates.Dir
			}
			reg, err := registry.Load(cmd.Context(), dir, o.Config.Templates.Pattern)
			if err != nil {
				return err
			}

			list := reg.List()
			if len(list) == 0 {
				o.User.Warn("no templates in %s", dir)
				return nil
			}
			rows := make([][]string, len(list))
			for i, t := range list {
				rows[i] = []string{t.ID, t.Name, t.File}
			}
			return o.User.Table([]string{"ID", "Name", "File"}, rows)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "template directory (default from config)")
	return cmd
}
