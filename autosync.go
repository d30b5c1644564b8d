package sheetsync

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/xbfighting/google-sheet-to-github-issues/pkg/errors"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/logging"
)

// AutoSyncer runs reconciliation passes in the background.
type AutoSyncer interface {
	// AutoSyncOn starts a background pass every configured interval.
	AutoSyncOn() error

	// AutoSyncOff stops background passes. A pass already running is
	// cancelled.
	AutoSyncOff() error
}

// ReconcileContinuously implements Reconciler.
func (c *client) ReconcileContinuously(ctx context.Context, interval time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if interval <= 0 {
		interval = c.options.syncInterval
	}

	c.logger.Info().Dur("interval", interval).Msg("Starting continuous reconciliation")

	if _, err := c.ReconcileOnce(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("Continuous reconciliation stopped")
			return nil
		case <-ticker.C:
			c.scheduledPass(ctx)
		}
	}
}

// AutoSyncOn implements AutoSyncer.
func (c *client) AutoSyncOn() error {
	interval := c.options.syncInterval
	if interval <= 0 {
		return errors.NewValidationError("syncInterval", interval, "sync interval must be positive")
	}

	// Stop any existing loop to prevent leaking tickers
	if err := c.AutoSyncOff(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopCh = make(chan struct{})
	c.syncTicker = time.NewTicker(interval)

	ctx, cancel := context.WithCancel(context.Background())
	c.syncCancel = cancel

	go func(ctx context.Context, ticker *time.Ticker, stopCh <-chan struct{}) {
		for {
			select {
			case <-ticker.C:
				c.scheduledPass(ctx)
			case <-ctx.Done():
				return
			case <-stopCh:
				return
			}
		}
	}(ctx, c.syncTicker, c.stopCh)

	c.logger.Info().Dur("interval", interval).Msg("Auto sync enabled")
	return nil
}

// AutoSyncOff implements AutoSyncer.
func (c *client) AutoSyncOff() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.syncTicker != nil {
		c.syncTicker.Stop()
		c.syncTicker = nil
	}
	if c.syncCancel != nil {
		c.syncCancel()
		c.syncCancel = nil
	}
	select {
	case <-c.stopCh:
		// Already closed
	default:
		close(c.stopCh)
	}
	return nil
}

// scheduledPass runs one timed pass and logs its failure. It never returns
// an error so the schedule keeps going.
func (c *client) scheduledPass(parent context.Context) {
	ctx := parent
	if c.options.passTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, c.options.passTimeout)
		defer cancel()
	}

	ctx = logging.WithField(logging.WithLogger(ctx, c.logger), "trigger", "scheduled")
	log := logging.FromContext(ctx)

	_, err := c.ReconcileOnce(ctx)
	switch {
	case err == nil:
	case errors.IsPassInProgress(err):
		log.Warn().Msg("Previous pass still running, skipping this tick")
	case parent.Err() != nil && (stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)):
		// shutting down
	default:
		log.Error().Err(err).Msg("Scheduled reconciliation failed")
	}
}
