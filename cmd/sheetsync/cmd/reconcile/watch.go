package reconcile

import (
	"time"

	"github.com/spf13/cobra"

	sheetsync "github.com/xbfighting/google-sheet-to-github-issues"
	"github.com/xbfighting/google-sheet-to-github-issues/internal/appcontext"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/errors"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand(app appcontext.Interface) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:     "watch",
		GroupID: "core",
		Short:   "Sync continuously on an interval",
		Long: `Watch runs a pass immediately and then every interval until interrupted.

A pass that fails is logged and retried on the next tick. A tick that fires
while the previous pass is still running is skipped.`,
		Example: `  sheetsync watch                 # Use SYNC_INTERVAL_MINUTES
  sheetsync watch --interval 1m   # Sync every minute`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval < 0 {
				return errors.NewValidationError("interval", interval, "interval must be positive")
			}
			if interval == 0 {
				interval = app.SyncInterval()
				if interval <= 0 {
					return errors.NewValidationError("SYNC_INTERVAL_MINUTES", interval, "must be positive, or pass --interval")
				}
			}

			client, err := app.Reconciler(cmd.Context(), sheetsync.WithSyncInterval(interval))
			if err != nil {
				return err
			}
			client.OnRowFailed(func(o sheetsync.RowOutcome) {
				app.Logger().Warn().Str("row_id", o.RowID).Str("operation", o.Operation).Msg("Row will be retried on the next pass")
			})

			cmd.PrintErrf("Syncing every %s. Press Ctrl+C to stop.\n", interval)
			return client.ReconcileContinuously(cmd.Context(), interval)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "time between passes (default from SYNC_INTERVAL_MINUTES)")

	return cmd
}
