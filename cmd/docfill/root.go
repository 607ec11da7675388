package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/tsawler/docfill/cmd/docfill/commands"
	"github.com/tsawler/docfill/cmd/docfill/opts"
	"github.com/tsawler/docfill/config"
	"github.com/tsawler/docfill/internal/logging"
)

// newRootCmd builds the command tree. Config and logger are set up in
// PersistentPreRunE, after flags are parsed.
func newRootCmd(out io.Writer) (*cobra.Command, *opts.RootOpts) {
	rootOpts := &opts.RootOpts{
		Out:  out,
		User: opts.NewUserLogger(out),
	}

	rootCmd := &cobra.Command{
		Use:   "docfill",
		Short: "Fill {$name} placeholders in .docx templates",
		Long: `docfill finds {$name} placeholder tags in Word (.docx) templates,
asks for their values and writes filled copies that keep the original
formatting. It works from the command line or as a small web form.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd, rootOpts)
		},
	}

	addRootFlags(rootCmd, rootOpts)

	rootCmd.AddCommand(
		commands.NewTagsCmd(rootOpts),
		commands.NewFillCmd(rootOpts),
		commands.NewBatchCmd(rootOpts),
		commands.NewTemplatesCmd(rootOpts),
		commands.NewServeCmd(rootOpts),
	)

	return rootCmd, rootOpts
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "c", "", "config file path (.yaml, .json or .hcl)")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
}

// setup loads the config and attaches the logger to the command context.
func setup(cmd *cobra.Command, o *opts.RootOpts) error {
	bootstrap, err := logging.New(os.Stderr, logging.Level(o.Debug, "info"), true)
	if err != nil {
		return err
	}

	cfg, err := config.Load(bootstrap.WithContext(cmd.Context()), o.ConfigFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(os.Stderr, logging.Level(o.Debug, cfg.Log.Level), true)
	if err != nil {
		return err
	}

	o.Config = cfg
	o.Logger = logger
	cmd.SetContext(logger.WithContext(cmd.Context()))
	return nil
}
