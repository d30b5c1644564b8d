package sheetsync

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/xbfighting/google-sheet-to-github-issues/pkg/constants"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/errors"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/identity"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/logging"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/mapping"
)

// Option is a function that configures a Client.
type Option func(*options) error

type options struct {
	source  Source
	tracker Tracker
	store   identity.Store

	spreadsheetID string
	sheetName     string
	mappings      []mapping.FieldMapping

	// issueNumberColumn, when set, names a column whose numeric value links
	// an otherwise unmapped row to an existing issue.
	issueNumberColumn string

	skipDeleted          bool
	respectRemoteChanges bool
	dryRun               bool

	syncInterval time.Duration
	passTimeout  time.Duration

	logger *zerolog.Logger
}

func defaultOptions() *options {
	return &options{
		sheetName:    constants.DefaultSheetName,
		mappings:     mapping.Defaults(),
		syncInterval: constants.DefaultSyncInterval,
		passTimeout:  constants.PassTimeout,
		logger:       logging.Default(),
	}
}

func newOptions(opts ...Option) (*options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithSource sets the row source.
func WithSource(src Source) Option {
	return func(o *options) error {
		o.source = src
		return nil
	}
}

// WithTracker sets the issue tracker.
func WithTracker(t Tracker) Option {
	return func(o *options) error {
		o.tracker = t
		return nil
	}
}

// WithStore sets the identity store.
func WithStore(s identity.Store) Option {
	return func(o *options) error {
		o.store = s
		return nil
	}
}

// WithSpreadsheet selects the spreadsheet and sheet (tab) to read.
// An empty sheet name selects Sheet1.
func WithSpreadsheet(spreadsheetID, sheetName string) Option {
	return func(o *options) error {
		o.spreadsheetID = spreadsheetID
		if sheetName != "" {
			o.sheetName = sheetName
		}
		return nil
	}
}

// WithFieldMappings replaces the default field mappings.
func WithFieldMappings(m []mapping.FieldMapping) Option {
	return func(o *options) error {
		if len(m) == 0 {
			return errors.NewValidationError("mappings", nil, "at least one field mapping is required")
		}
		if err := mapping.Validate(m); err != nil {
			return err
		}
		o.mappings = append([]mapping.FieldMapping(nil), m...)
		return nil
	}
}

// WithIssueNumberColumn links unmapped rows through a column holding an
// issue number.
func WithIssueNumberColumn(column string) Option {
	return func(o *options) error {
		o.issueNumberColumn = column
		return nil
	}
}

// WithSkipDeleted leaves rows alone when their issue was deleted upstream
// instead of recreating it.
func WithSkipDeleted(enabled bool) Option {
	return func(o *options) error {
		o.skipDeleted = enabled
		return nil
	}
}

// WithRespectRemoteChanges never overwrites an existing linked issue.
func WithRespectRemoteChanges(enabled bool) Option {
	return func(o *options) error {
		o.respectRemoteChanges = enabled
		return nil
	}
}

// WithDryRun computes every decision without writing to the tracker or
// the identity store.
func WithDryRun(enabled bool) Option {
	return func(o *options) error {
		o.dryRun = enabled
		return nil
	}
}

// WithSyncInterval sets the interval used by continuous mode.
func WithSyncInterval(interval time.Duration) Option {
	return func(o *options) error {
		if interval <= 0 {
			return errors.NewValidationError("syncInterval", interval, "sync interval must be positive")
		}
		o.syncInterval = interval
		return nil
	}
}

// WithPassTimeout bounds each scheduled pass. Zero disables the bound.
func WithPassTimeout(timeout time.Duration) Option {
	return func(o *options) error {
		o.passTimeout = timeout
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger != nil {
			o.logger = logger
		}
		return nil
	}
}
