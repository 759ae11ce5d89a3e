package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/quill/internal/api"
	"github.com/roach88/quill/internal/settings"
)

func NewPullCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Fetch current settings into the local snapshot",
		Long: `Pull fetches every settings section from the backend, validates
the payload, and stores it as the local baseline. Pending edits are
evaluated against this baseline by status and push.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)

			environ, err := openEnv(opts, formatter)
			if err != nil {
				return err
			}
			defer environ.Close()

			client := api.NewClient(environ.Config.Endpoint, environ.Config.Token)
			formatter.VerboseLog("fetching settings from %s", environ.Config.Endpoint)

			snap, lookups, err := api.Fetch(cmd.Context(), client)
			if err != nil {
				formatter.Error(ErrCodeAPI, err.Error(), nil)
				return WrapExitError(ExitFailure, "fetch settings", err)
			}

			pulledAt := time.Now()
			if err := environ.Store.SaveBaseline(cmd.Context(), snap, lookups, pulledAt); err != nil {
				formatter.Error(ErrCodeStore, err.Error(), nil)
				return WrapExitError(ExitFailure, "store snapshot", err)
			}

			sections := make([]string, 0, len(settings.SaveOrder))
			for _, d := range settings.SaveOrder {
				sections = append(sections, string(d))
			}

			return formatter.SuccessText(
				fmt.Sprintf("Pulled %d sections: %s\n", len(sections), strings.Join(sections, ", ")),
				map[string]any{
					"sections":  sections,
					"languages": len(lookups.Languages),
					"pulled_at": pulledAt.Format(time.RFC3339),
				},
			)
		},
	}
	return cmd
}
