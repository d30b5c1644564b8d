// Package main provides the entry point for the sheetsync CLI.
package main

import (
	"context"
	"os"
	"time"

	"github.com/xbfighting/google-sheet-to-github-issues/cmd/sheetsync/app"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	application, err := app.New(version, commit, date, builtBy)
	if err != nil {
		app.ExitOnError(err)
	}

	// Cancelled on SIGINT/SIGTERM for graceful shutdown
	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	err = application.Execute(ctx, os.Args[1:])

	// Fresh context: the signal context may already be cancelled
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if shutdownErr := application.Shutdown(shutdownCtx); shutdownErr != nil {
		application.Logger().Error().Err(shutdownErr).Msg("Shutdown error")
	}

	if err != nil {
		cancel()
		app.ExitOnError(err)
	}
}
