// Package sheetsync reconciles the rows of a spreadsheet with issues in an
// issue tracker.
//
// Each row is transformed into a target issue through a list of field
// mappings, matched to an existing issue through a persisted identity store
// (or, for rows seen for the first time, by exact title), and then created,
// updated or skipped. Repeated passes converge: a row that has not changed
// produces no remote writes.
//
// Example usage:
//
//	store, err := identity.Open(".issue-mappings.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rec, err := sheetsync.New(
//	    sheetsync.WithSource(sheetsService),
//	    sheetsync.WithTracker(githubClient),
//	    sheetsync.WithStore(store),
//	    sheetsync.WithSpreadsheet("1xsW...", "Sheet1"),
//	    sheetsync.WithSkipDeleted(true),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rec.OnIssueCreated(func(o sheetsync.RowOutcome) {
//	    log.Printf("created #%d for %s", o.IssueNumber, o.RowID)
//	})
//
//	result, err := rec.ReconcileOnce(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Summary())
package sheetsync

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/xbfighting/google-sheet-to-github-issues/pkg/errors"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/identity"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/issues"
)

// Source supplies the rows of one sheet.
type Source interface {
	FetchRows(ctx context.Context, spreadsheetID, sheetName string) ([]issues.Row, error)
}

// Tracker is the remote issue tracker.
type Tracker interface {
	// CreateIssue opens an issue and returns its number.
	CreateIssue(ctx context.Context, target issues.TargetIssue) (int, error)
	// UpdateIssue overwrites the managed fields of an issue.
	UpdateIssue(ctx context.Context, number int, target issues.TargetIssue) error
	// GetIssue returns (nil, nil) when the issue no longer exists.
	GetIssue(ctx context.Context, number int) (*issues.RemoteIssue, error)
	// FindIssueByTitle looks for an issue whose title matches exactly.
	FindIssueByTitle(ctx context.Context, title string) (int, bool, error)
}

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Client reconciles rows with issues and exposes scheduling and hooks.
type Client interface {
	// Reconciler runs passes
	Reconciler

	// AutoSyncer runs passes in the background
	AutoSyncer

	// Hooks registers per-row callbacks
	Hooks

	// Store returns the identity store backing the client.
	Store() identity.Store
}

// client is the internal implementation of the Client interface.
type client struct {
	options *options
	logger  *zerolog.Logger

	// pass guards against overlapping reconciliation passes
	pass *semaphore.Weighted

	// auto sync state
	mu         sync.Mutex
	syncTicker *time.Ticker
	stopCh     chan struct{}
	syncCancel context.CancelFunc

	hooks *hooks
}

// New creates a Client. A source, a tracker, an identity store and a
// spreadsheet id are required.
func New(opts ...Option) (Client, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	stopCh := make(chan struct{})
	close(stopCh)

	return &client{
		options: o,
		logger:  o.logger,
		pass:    semaphore.NewWeighted(1),
		stopCh:  stopCh,
		hooks:   newHooks(),
	}, nil
}

// Store implements Client.
func (c *client) Store() identity.Store {
	return c.options.store
}

func (o *options) validate() error {
	var missing []string
	if o.source == nil {
		missing = append(missing, "row source is required")
	}
	if o.tracker == nil {
		missing = append(missing, "issue tracker is required")
	}
	if o.store == nil {
		missing = append(missing, "identity store is required")
	}
	if o.spreadsheetID == "" {
		missing = append(missing, "spreadsheet id is required")
	}
	if len(missing) > 0 {
		return &errors.ConfigError{Component: "reconciler", Missing: missing}
	}
	return nil
}
