// Package logging provides structured logging for sheetsync using zerolog.
// Console output is used when stderr is a terminal, JSON otherwise.
//
// Components of the reconciler take a *zerolog.Logger through their options;
// the package-level default exists for the CLI and for code that has no
// logger injected.
//
//	log := logging.Default()
//	log.Info().Str("row_id", "row-2").Int("issue", 41).Msg("Linked row")
//
//	ctx := logging.WithRow(ctx, "row-2")
//	logging.FromContext(ctx).Debug().Msg("Comparing remote issue")
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	defaultLogger zerolog.Logger

	// Nop logger for discarding output.
	Nop = zerolog.Nop()
)

func init() {
	defaultLogger = createDefaultLogger()
}

func createDefaultLogger() zerolog.Logger {
	var writer io.Writer = os.Stderr
	if stderrIsTerminal() && os.Getenv("LOG_FORMAT") != "json" {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}

	level := parseLevel(os.Getenv("LOG_LEVEL"))
	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault sets the default global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// OrDefault returns logger, or the default logger when logger is nil.
func OrDefault(logger *zerolog.Logger) *zerolog.Logger {
	if logger == nil {
		return Default()
	}
	return logger
}

// stderrIsTerminal reports whether stderr is attached to a terminal.
func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
