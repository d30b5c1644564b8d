// Package reconcile provides the sync and watch commands.
package reconcile

import (
	"fmt"

	"github.com/spf13/cobra"

	sheetsync "github.com/xbfighting/google-sheet-to-github-issues"
	"github.com/xbfighting/google-sheet-to-github-issues/internal/appcontext"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand(app appcontext.Interface) *cobra.Command {
	var (
		dryRun bool
		strict bool
	)

	cmd := &cobra.Command{
		Use:     "sync",
		GroupID: "core",
		Short:   "Run a single sync from the sheet to GitHub",
		Long: `Sync reads every row of the configured sheet once and creates, updates
or skips the matching GitHub issue.

Rows are linked to issues through the identity store, so running sync again
without changes to the sheet performs no writes. Rows seen for the first time
adopt an existing issue with exactly the same title instead of creating a
duplicate.`,
		Example: `  sheetsync sync                # Run one pass
  sheetsync sync --dry-run      # Show what would change
  sheetsync sync -o json        # Print the result as JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Reconciler(cmd.Context(), sheetsync.WithDryRun(dryRun))
			if err != nil {
				return err
			}

			result, err := client.ReconcileOnce(cmd.Context())
			if result != nil {
				if perr := printResult(cmd, app, result); perr != nil {
					return perr
				}
			}
			if err != nil {
				return err
			}
			if strict && result.HasErrors() {
				return fmt.Errorf("%d row(s) failed", result.Errored)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute changes without writing to GitHub or the identity store")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when any row fails")

	return cmd
}
