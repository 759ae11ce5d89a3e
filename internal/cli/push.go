package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/quill/internal/api"
	"github.com/roach88/quill/internal/reconcile"
	"github.com/roach88/quill/internal/settings"
	"github.com/roach88/quill/internal/store"
)

func NewPushCommand(opts *RootOptions) *cobra.Command {
	var (
		editsPath string
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Save the sections that changed",
		Long: `Push applies the pending edits from --edits, then saves exactly
the dirty sections in a fixed order. The batch stops at the first
failure; sections saved before the failure stay saved, and the
failing section keeps its edits so a retry picks up where it stopped.`,
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

			client := api.NewClient(environ.Config.Endpoint, environ.Config.Token)
			savers := api.Savers(client, api.SaveOptions{ForceRewrite: force})
			rec := reconcile.New(state, savers, reconcile.WithAuditSink(environ.Store))

			report, saveErr := rec.SaveAll(cmd.Context())

			// Persist refreshed baselines even on a partial batch.
			now := time.Now()
			for _, d := range report.Saved {
				if err := environ.Store.SaveDomain(cmd.Context(), state.Baseline, d, now); err != nil {
					formatter.VerboseLog("failed to persist %s baseline: %v", d, err)
				}
			}

			if saveErr != nil {
				code := ErrCodeSave
				msg := saveErr.Error()
				if api.IsCapabilityRejected(saveErr) {
					code = ErrCodeCapability
					msg += " (re-run with --force to save the permalink settings anyway)"
				}
				formatter.Error(code, msg, report)
				return WrapExitError(ExitFailure, "push", saveErr)
			}

			if len(report.Attempted) == 0 {
				return formatter.SuccessText("Nothing to save.\n", report)
			}

			names := make([]string, 0, len(report.Saved))
			for _, d := range report.Saved {
				names = append(names, string(d))
			}
			return formatter.SuccessWithToken(
				fmt.Sprintf("Saved %d %s: %s\n", len(names), plural(len(names), "section", "sections"), strings.Join(names, ", ")),
				report,
				report.Token,
			)
		},
	}

	cmd.Flags().StringVarP(&editsPath, "edits", "e", "", "YAML file of pending edits")
	cmd.Flags().BoolVar(&force, "force", false, "save permalink settings even if the rewrite capability check fails")
	return cmd
}
