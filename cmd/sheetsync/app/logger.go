package app

import (
	"fmt"
	"os"
	"slices"

	"github.com/rs/zerolog"

	"github.com/xbfighting/google-sheet-to-github-issues/pkg/logging"
)

var validLevels = []string{"trace", "debug", "info", "warn", "error"}

// NewLogger creates a logger from the configuration. LOG_TIME_FORMAT and
// LOG_CALLER are read from the environment.
// Log level precedence (highest to lowest):
//  1. --log-level flag or LOG_LEVEL
//  2. -v/--verbose (debug)
//  3. -q/--quiet (warn)
//  4. Default (info)
func NewLogger(config *Config) zerolog.Logger {
	level := determineLogLevel(config)

	cfg := logging.ConfigFromEnv()
	cfg.Level = level
	if config.LogFormat != "" {
		cfg.Format = config.LogFormat
	}
	if config.LogOutput != "" {
		cfg.Output = config.LogOutput
	}
	cfg.NoColor = cfg.NoColor || config.NoColor
	cfg.AddCaller = cfg.AddCaller || level == "debug" || level == "trace"

	return logging.NewLoggerFromConfig(cfg)
}

func determineLogLevel(config *Config) string {
	if config.LogLevel != "" {
		if slices.Contains(validLevels, config.LogLevel) {
			return config.LogLevel
		}
		fmt.Fprintf(os.Stderr, "Warning: invalid log level %q, using %q\n", config.LogLevel, "info")
		return "info"
	}

	if config.Verbose && config.Quiet {
		fmt.Fprintf(os.Stderr, "Warning: both --verbose and --quiet specified, using --quiet\n")
		return "warn"
	}
	if config.Verbose {
		return "debug"
	}
	if config.Quiet {
		return "warn"
	}
	return "info"
}
