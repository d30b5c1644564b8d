package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/xbfighting/google-sheet-to-github-issues/pkg/constants"
)

// Config holds logger configuration options
type Config struct {
	// Level is the minimum log level to output
	Level string

	// Format is the output format (json, console, auto)
	Format string

	// Output is where to write logs (stderr, stdout, discard, or file path)
	Output string

	// TimeFormat for timestamps (kitchen, rfc3339, or a Go layout)
	TimeFormat string

	// NoColor disables color output in console mode
	NoColor bool

	// AddCaller includes file:line in log output
	AddCaller bool

	// Fields are default fields to include in all logs
	Fields map[string]any
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "auto",
		Output:     "stderr",
		TimeFormat: "kitchen",
		NoColor:    os.Getenv("NO_COLOR") != "",
		Fields:     make(map[string]any),
	}
}

// ConfigFromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_OUTPUT and LOG_TIME_FORMAT,
// falling back to DefaultConfig values.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	cfg.Level = getEnvOrDefault("LOG_LEVEL", cfg.Level)
	cfg.Format = getEnvOrDefault("LOG_FORMAT", cfg.Format)
	cfg.Output = getEnvOrDefault("LOG_OUTPUT", cfg.Output)
	cfg.TimeFormat = getEnvOrDefault("LOG_TIME_FORMAT", cfg.TimeFormat)
	cfg.AddCaller = os.Getenv("LOG_CALLER") == "true"
	return cfg
}

// NewLoggerFromConfig creates a new logger from configuration
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level := parseLevel(cfg.Level)

	logger := zerolog.New(getWriter(cfg)).
		Level(level).
		With().
		Timestamp().
		Logger()

	if cfg.AddCaller || level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}

	if len(cfg.Fields) > 0 {
		ctx := logger.With()
		for k, v := range cfg.Fields {
			ctx = addField(ctx, k, v)
		}
		logger = ctx.Logger()
	}

	return logger
}

func getWriter(cfg *Config) io.Writer {
	var output io.Writer
	isTTY := false
	switch strings.ToLower(cfg.Output) {
	case "stdout":
		output = os.Stdout
		isTTY = isatty.IsTerminal(os.Stdout.Fd())
	case "", "stderr":
		output = os.Stderr
		isTTY = stderrIsTerminal()
	case "discard", "none":
		output = io.Discard
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
		if err != nil {
			output = os.Stderr
			isTTY = stderrIsTerminal()
		} else {
			output = file
		}
	}

	format := strings.ToLower(cfg.Format)
	if format == "" || format == "auto" {
		format = "json"
		if isTTY {
			format = "console"
		}
	}

	switch format {
	case "console", "pretty":
		return zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: parseTimeFormat(cfg.TimeFormat),
			NoColor:    cfg.NoColor,
		}
	default:
		return output
	}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "":
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	case "none", "off":
		return zerolog.Disabled
	}
	if l, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil {
		return l
	}
	return zerolog.InfoLevel
}

func parseTimeFormat(format string) string {
	switch strings.ToLower(format) {
	case "kitchen", "":
		return time.Kitchen
	case "rfc3339":
		return time.RFC3339
	case "unix", "epoch":
		return ""
	}
	if strings.Contains(format, "2006") || strings.Contains(format, "15:04") {
		return format
	}
	return time.Kitchen
}

func addField(ctx zerolog.Context, key string, value any) zerolog.Context {
	switch v := value.(type) {
	case string:
		return ctx.Str(key, v)
	case int:
		return ctx.Int(key, v)
	case bool:
		return ctx.Bool(key, v)
	case time.Duration:
		return ctx.Dur(key, v)
	case error:
		return ctx.AnErr(key, v)
	default:
		return ctx.Interface(key, v)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
