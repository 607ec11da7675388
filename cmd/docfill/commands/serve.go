package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tsawler/docfill/cmd/docfill/opts"
	"github.com/tsawler/docfill/registry"
	"github.com/tsawler/docfill/server"
)

// NewServeCmd runs the HTTP front end.
func NewServeCmd(o *opts.RootOpts) *cobra.Command {
	var (
		addr  string
		grace time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the template index and fill forms over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr != "" {
				o.Config.Server.Addr = addr
			}

			reg, err := registry.Load(ctx, o.Config.Templates.Dir, o.Config.Templates.Pattern)
			if err != nil {
				return err
			}
			s, err := server.New(reg, o.Config, o.Logger)
			if err != nil {
				return err
			}
			return s.Run(ctx, grace)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().DurationVar(&grace, "grace", 5*time.Second, "shutdown grace period")
	return cmd
}
