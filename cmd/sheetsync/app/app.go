// Package app provides the application context and dependency management
// for the sheetsync CLI: configuration, logging, and lazily built clients
// for Google Sheets, GitHub and the identity store.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	sheetsync "github.com/xbfighting/google-sheet-to-github-issues"
	"github.com/xbfighting/google-sheet-to-github-issues/internal/appcontext"
	"github.com/xbfighting/google-sheet-to-github-issues/internal/github"
	"github.com/xbfighting/google-sheet-to-github-issues/internal/sheets"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/errors"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/identity"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/issues"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/logging"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/mapping"
)

// Ensure App implements appcontext.Interface at compile time.
var _ appcontext.Interface = (*App)(nil)

// App holds the configuration, logger and lazily created clients shared by
// all commands.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	mu      sync.Mutex
	sheets  *sheets.Service
	github  *github.Client
	store   identity.Store
	clients []sheetsync.Client
}

// New creates an App with configuration loaded from the environment.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger
	logging.SetDefault(logger)

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat returns the --format value.
func (a *App) OutputFormat() string { return a.config.Format }

// SyncInterval returns the configured continuous-mode interval.
func (a *App) SyncInterval() time.Duration { return a.config.SyncInterval }

// Mappings returns the field mappings from MAPPINGS_FILE, or the defaults.
func (a *App) Mappings() ([]mapping.FieldMapping, error) {
	if a.config.MappingsFile == "" {
		return mapping.Defaults(), nil
	}
	m, err := mapping.Load(a.config.MappingsFile)
	if err != nil {
		return nil, err
	}
	if err := mapping.Validate(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Store opens the identity store once and reuses it.
func (a *App) Store() (identity.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store != nil {
		return a.store, nil
	}
	store, err := identity.Open(a.config.StorePath, identity.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	a.store = store
	return store, nil
}

// Headers reads the header row of the configured sheet.
func (a *App) Headers(ctx context.Context) ([]string, error) {
	if err := a.config.Validate(RequireSheets); err != nil {
		return nil, err
	}
	svc, err := a.sheetsService(ctx)
	if err != nil {
		return nil, err
	}
	return svc.Headers(ctx, a.config.SpreadsheetID, a.config.SheetName)
}

// CheckRepository verifies the configured repository is reachable and has
// issues enabled.
func (a *App) CheckRepository(ctx context.Context) (*github.Repository, error) {
	if err := a.config.Validate(RequireGitHub); err != nil {
		return nil, err
	}
	gh, err := a.githubClient()
	if err != nil {
		return nil, err
	}
	return gh.CheckAccess(ctx)
}

// Issues lists every issue, open or closed, in the configured repository.
func (a *App) Issues(ctx context.Context) ([]issues.RemoteIssue, error) {
	if err := a.config.Validate(RequireGitHub); err != nil {
		return nil, err
	}
	gh, err := a.githubClient()
	if err != nil {
		return nil, err
	}
	return gh.ListIssues(ctx, "all")
}

// Reconciler builds a reconciler from the configuration. opts are applied
// last, so commands can switch on dry-run or override the interval.
func (a *App) Reconciler(ctx context.Context, opts ...sheetsync.Option) (sheetsync.Client, error) {
	if err := a.config.Validate(RequireAll); err != nil {
		return nil, err
	}

	svc, err := a.sheetsService(ctx)
	if err != nil {
		return nil, err
	}
	gh, err := a.githubClient()
	if err != nil {
		return nil, err
	}
	store, err := a.Store()
	if err != nil {
		return nil, err
	}
	mappings, err := a.Mappings()
	if err != nil {
		return nil, err
	}

	base := []sheetsync.Option{
		sheetsync.WithSource(svc),
		sheetsync.WithTracker(gh),
		sheetsync.WithStore(store),
		sheetsync.WithSpreadsheet(a.config.SpreadsheetID, a.config.SheetName),
		sheetsync.WithFieldMappings(mappings),
		sheetsync.WithIssueNumberColumn(a.config.IssueNumberColumn),
		sheetsync.WithSkipDeleted(a.config.SkipDeleted),
		sheetsync.WithRespectRemoteChanges(a.config.RespectGitHubChanges),
		sheetsync.WithLogger(a.logger),
	}
	if a.config.SyncInterval > 0 {
		base = append(base, sheetsync.WithSyncInterval(a.config.SyncInterval))
	}
	client, err := sheetsync.New(append(base, opts...)...)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.clients = append(a.clients, client)
	a.mu.Unlock()
	return client, nil
}

// Shutdown stops background syncing on every reconciler handed out.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	clients := a.clients
	a.mu.Unlock()

	for _, c := range clients {
		if err := c.AutoSyncOff(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to stop auto sync during shutdown")
		}
	}
	return nil
}

func (a *App) sheetsService(ctx context.Context) (*sheets.Service, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.sheets != nil {
		return a.sheets, nil
	}
	svc, err := sheets.New(ctx, sheets.Config{
		CredentialsPath: a.config.CredentialsPath,
		Logger:          a.logger,
	})
	if err != nil {
		return nil, err
	}
	a.sheets = svc
	return svc, nil
}

func (a *App) githubClient() (*github.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.github != nil {
		return a.github, nil
	}
	gh, err := github.NewClient(github.Config{
		Owner:      a.config.GitHubOwner,
		Repo:       a.config.GitHubRepo,
		Token:      a.config.GitHubToken,
		BaseURL:    a.config.GitHubAPIURL,
		MaxRetries: a.config.GitHubMaxRetries,
		Logger:     a.logger,
	})
	if err != nil {
		return nil, err
	}
	a.github = gh
	return gh, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithStore sets the identity store (useful for testing).
func WithStore(store identity.Store) Option {
	return func(a *App) error {
		a.store = store
		return nil
	}
}
