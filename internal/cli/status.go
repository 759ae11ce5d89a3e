package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/roach88/quill/internal/settings"
	"github.com/roach88/quill/internal/store"
)

func NewStatusCommand(opts *RootOptions) *cobra.Command {
	var editsPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which settings sections have unsaved changes",
		Long: `Status loads the pulled baseline, applies the pending edits from
--edits if given, and reports which sections would be saved by push.
Fields whose controlling toggle is off are ignored, so flipping a
dependent field while its feature is disabled reports no change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)

			environ, err := openEnv(opts, formatter)
			if err != nil {
				return err
			}
			defer environ.Close()

			snap, _, err := environ.Store.LoadBaseline(cmd.Context())
			if err != nil {
				if errors.Is(err, store.ErrNoSnapshot) {
					formatter.Error(ErrCodeStore, "no snapshot; run quill pull first", nil)
					return NewExitError(ExitCommandError, "no snapshot")
				}
				formatter.Error(ErrCodeStore, err.Error(), nil)
				return WrapExitError(ExitFailure, "load snapshot", err)
			}

			state := settings.NewState(snap)
			if editsPath != "" {
				edits, err := loadEdits(editsPath)
				if err != nil {
					return err
				}
				if err := state.ApplyEdits(edits); err != nil {
					formatter.Error(ErrCodeEdits, err.Error(), nil)
					return WrapExitError(ExitCommandError, "apply edits", err)
				}
			}

			var warnings []string
			if site := state.Buffer.Site; site != nil && site.Lang != "" {
				if _, err := language.Parse(site.Lang); err != nil {
					warnings = append(warnings, fmt.Sprintf("site.lang %q is not a recognized language tag", site.Lang))
				}
			}

			dirty := state.DirtyDomains()
			names := make([]string, 0, len(dirty))
			for _, d := range dirty {
				names = append(names, string(d))
			}

			var b strings.Builder
			if len(dirty) == 0 {
				b.WriteString("No unsaved changes.\n")
			} else {
				fmt.Fprintf(&b, "%d unsaved %s:\n", len(dirty), plural(len(dirty), "change", "changes"))
				for _, name := range names {
					fmt.Fprintf(&b, "  %s\n", name)
				}
			}
			for _, w := range warnings {
				fmt.Fprintf(&b, "warning: %s\n", w)
			}

			return formatter.SuccessText(b.String(), map[string]any{
				"dirty":    names,
				"warnings": warnings,
			})
		},
	}

	cmd.Flags().StringVarP(&editsPath, "edits", "e", "", "YAML file of pending edits")
	return cmd
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
