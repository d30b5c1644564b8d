package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/xbfighting/google-sheet-to-github-issues/pkg/logging"
)

// Execute runs the CLI with args.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "sheetsync",
		Short:   "Sync Google Sheets rows to GitHub issues",
		Version: a.version,
		Long: `sheetsync keeps a GitHub repository's issues in step with the rows of a
Google Sheet. Each row becomes one issue; repeated runs update the same issue
instead of creating duplicates.

Configuration is read from the environment, .env files and an optional
.sheetsync.yaml file.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "management", Title: "Management Commands:"})

	// Global flags
	rootCmd.PersistentFlags().StringVar(&a.config.ConfigFile, "config", "", "config file (default is $HOME/.sheetsync.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&a.config.NoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVarP(&a.config.Format, "format", "o", "", "output format: table, wide, json, yaml")
	rootCmd.PersistentFlags().StringVar(&a.config.LogLevel, "log-level", a.config.LogLevel, "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("sheetsync {{.Version}}\n")

	a.registerCommands(rootCmd)
	return rootCmd
}

// setupCommand reloads the config file named by --config and rebuilds the
// logger once flags are parsed.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	format := mustGetString(cmd, "format")
	logLevel := mustGetString(cmd, "log-level")

	if cmd.Flags().Changed("config") {
		loaded, err := LoadConfig(mustGetString(cmd, "config"))
		if err != nil {
			return err
		}
		a.config = loaded
	}
	a.config.UpdateFromFlags(verbose, quiet, noColor, format, logLevel)

	logger := NewLogger(a.config)
	a.logger = &logger
	logging.SetDefault(logger)
	return nil
}

// ExitOnError prints err and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
