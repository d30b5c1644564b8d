package app

import (
	"github.com/spf13/cobra"

	"github.com/xbfighting/google-sheet-to-github-issues/cmd/sheetsync/cmd/check"
	"github.com/xbfighting/google-sheet-to-github-issues/cmd/sheetsync/cmd/mappings"
	"github.com/xbfighting/google-sheet-to-github-issues/cmd/sheetsync/cmd/reconcile"
	"github.com/xbfighting/google-sheet-to-github-issues/cmd/sheetsync/cmd/sheet"
	"github.com/xbfighting/google-sheet-to-github-issues/cmd/sheetsync/cmd/store"
)

func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(reconcile.NewSyncCommand(a))
	rootCmd.AddCommand(reconcile.NewWatchCommand(a))

	// Management commands
	rootCmd.AddCommand(check.NewCommand(a))
	rootCmd.AddCommand(sheet.NewHeadersCommand(a))
	rootCmd.AddCommand(mappings.NewCommand(a))
	rootCmd.AddCommand(store.NewStatusCommand(a))
	rootCmd.AddCommand(store.NewResetCommand(a))

	rootCmd.AddCommand(a.newVersionCommand())
}

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("sheetsync %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
