// Package cli implements the quill command line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global options shared by all subcommands.
type RootOptions struct {
	Verbose    bool
	Format     string
	ConfigPath string
}

// NewRootCommand creates the root quill command with all subcommands attached.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	rootCmd := &cobra.Command{
		Use:   "quill",
		Short: "Console settings client",
		Long: `quill pulls a site's settings into a local snapshot, tracks
pending edits against that snapshot, and pushes only the sections
that actually changed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Format != "json" && opts.Format != "text" {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q (want json or text)", opts.Format))
			}
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json or text)")
	rootCmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file path (default ~/.config/quill/config.yaml)")

	rootCmd.AddCommand(
		NewPullCommand(opts),
		NewStatusCommand(opts),
		NewPushCommand(opts),
		NewPreviewCommand(opts),
		NewLogCommand(opts),
	)

	return rootCmd
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
