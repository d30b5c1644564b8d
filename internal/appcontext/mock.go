package appcontext

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	sheetsync "github.com/xbfighting/google-sheet-to-github-issues"
	"github.com/xbfighting/google-sheet-to-github-issues/internal/github"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/constants"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/identity"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/issues"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/mapping"
)

// Mock implements Interface for command tests. Nil function fields return
// zero values. A zero Interval means the default sync interval.
type Mock struct {
	ReconcilerFunc      func(ctx context.Context, opts ...sheetsync.Option) (sheetsync.Client, error)
	HeadersFunc         func(ctx context.Context) ([]string, error)
	CheckRepositoryFunc func(ctx context.Context) (*github.Repository, error)
	IssuesFunc          func(ctx context.Context) ([]issues.RemoteIssue, error)
	MappingsFunc        func() ([]mapping.FieldMapping, error)
	StoreFunc           func() (identity.Store, error)
	LoggerFunc          func() *zerolog.Logger
	Format              string
	Interval            time.Duration
}

// Reconciler implements Interface.
func (m *Mock) Reconciler(ctx context.Context, opts ...sheetsync.Option) (sheetsync.Client, error) {
	if m.ReconcilerFunc != nil {
		return m.ReconcilerFunc(ctx, opts...)
	}
	return nil, nil
}

// Headers implements Interface.
func (m *Mock) Headers(ctx context.Context) ([]string, error) {
	if m.HeadersFunc != nil {
		return m.HeadersFunc(ctx)
	}
	return nil, nil
}

// CheckRepository implements Interface.
func (m *Mock) CheckRepository(ctx context.Context) (*github.Repository, error) {
	if m.CheckRepositoryFunc != nil {
		return m.CheckRepositoryFunc(ctx)
	}
	return &github.Repository{}, nil
}

// Issues implements Interface.
func (m *Mock) Issues(ctx context.Context) ([]issues.RemoteIssue, error) {
	if m.IssuesFunc != nil {
		return m.IssuesFunc(ctx)
	}
	return nil, nil
}

// Mappings implements Interface.
func (m *Mock) Mappings() ([]mapping.FieldMapping, error) {
	if m.MappingsFunc != nil {
		return m.MappingsFunc()
	}
	return mapping.Defaults(), nil
}

// Store implements Interface.
func (m *Mock) Store() (identity.Store, error) {
	if m.StoreFunc != nil {
		return m.StoreFunc()
	}
	return nil, nil
}

// SyncInterval implements Interface.
func (m *Mock) SyncInterval() time.Duration {
	if m.Interval != 0 {
		return m.Interval
	}
	return constants.DefaultSyncInterval
}

// Logger implements Interface.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat implements Interface.
func (m *Mock) OutputFormat() string { return m.Format }

// Version implements Interface.
func (m *Mock) Version() string { return "dev" }

// Commit implements Interface.
func (m *Mock) Commit() string { return "unknown" }

// Date implements Interface.
func (m *Mock) Date() string { return "unknown" }

// BuiltBy implements Interface.
func (m *Mock) BuiltBy() string { return "test" }

var _ Interface = (*Mock)(nil)
