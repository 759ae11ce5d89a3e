package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func NewLogCommand(opts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent save attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)

			environ, err := openEnv(opts, formatter)
			if err != nil {
				return err
			}
			defer environ.Close()

			entries, err := environ.Store.ListLog(cmd.Context(), limit)
			if err != nil {
				formatter.Error(ErrCodeStore, err.Error(), nil)
				return WrapExitError(ExitFailure, "read save log", err)
			}

			var b strings.Builder
			if len(entries) == 0 {
				b.WriteString("No save attempts recorded.\n")
			}
			for _, e := range entries {
				fmt.Fprintf(&b, "%s  %-10s %-5s %s", e.Started.Format("2006-01-02 15:04:05"), e.Domain, e.Status, e.Token)
				if e.Error != "" {
					fmt.Fprintf(&b, "  %s", e.Error)
				}
				b.WriteString("\n")
			}
			return formatter.SuccessText(b.String(), entries)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries to show")
	return cmd
}
