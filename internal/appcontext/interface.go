// Package appcontext defines what commands need from the application, so
// command packages depend on an interface rather than on cmd/sheetsync/app.
package appcontext

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	sheetsync "github.com/xbfighting/google-sheet-to-github-issues"
	"github.com/xbfighting/google-sheet-to-github-issues/internal/github"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/identity"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/issues"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/mapping"
)

// Interface is implemented by the App in cmd/sheetsync/app and by Mock.
type Interface interface {
	// Reconciler builds a reconciler from the configuration. Extra options
	// are applied after the configured ones.
	Reconciler(ctx context.Context, opts ...sheetsync.Option) (sheetsync.Client, error)

	// Headers reads the header row of the configured sheet.
	Headers(ctx context.Context) ([]string, error)

	// CheckRepository verifies access to the configured repository.
	CheckRepository(ctx context.Context) (*github.Repository, error)

	// Issues lists every issue in the configured repository.
	Issues(ctx context.Context) ([]issues.RemoteIssue, error)

	// Mappings returns the effective field mappings.
	Mappings() ([]mapping.FieldMapping, error)

	// Store opens the identity store.
	Store() (identity.Store, error)

	// SyncInterval is the configured continuous-mode interval.
	SyncInterval() time.Duration

	// Logger returns the configured logger.
	Logger() *zerolog.Logger

	// OutputFormat returns the --format value, possibly empty.
	OutputFormat() string

	Version() string
	Commit() string
	Date() string
	BuiltBy() string
}
