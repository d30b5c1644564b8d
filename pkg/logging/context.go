package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey int

const loggerKey contextKey = iota

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// FromContextOr returns the context logger, or fallback when the context
// carries none.
func FromContextOr(ctx context.Context, fallback *zerolog.Logger) *zerolog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
			return logger
		}
	}
	return OrDefault(fallback)
}

// WithField adds a single field to the logger in the context.
func WithField(ctx context.Context, key string, value any) context.Context {
	logCtx := addField(FromContext(ctx).With(), key, value)
	newLogger := logCtx.Logger()
	return WithLogger(ctx, &newLogger)
}

// WithRow tags the context logger with a row id.
func WithRow(ctx context.Context, rowID string) context.Context {
	return WithField(ctx, "row_id", rowID)
}

// WithIssue tags the context logger with an issue number.
func WithIssue(ctx context.Context, number int) context.Context {
	return WithField(ctx, "issue", number)
}
