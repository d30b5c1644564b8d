package app

import (
	"context"
	"os/signal"
	"syscall"
)

// ContextWithSignals returns a context cancelled on SIGINT or SIGTERM, so
// watch stops between passes and an in-flight pass stops between rows.
func ContextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
