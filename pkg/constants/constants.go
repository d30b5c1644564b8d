// Package constants provides shared constants used throughout sheetsync.
// This includes timeouts, limits, file permissions, and default settings
// that must agree between the CLI and the library.
package constants

import "time"

// Timeout constants
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to GitHub
	DefaultHTTPTimeout = 30 * time.Second

	// PassTimeout bounds a single scheduled reconciliation pass in continuous mode
	PassTimeout = 15 * time.Minute

	// DefaultSyncInterval is the default interval between passes in continuous mode
	DefaultSyncInterval = 5 * time.Minute

	// RetryBackoff is the initial backoff for rate-limited requests
	RetryBackoff = 1 * time.Second

	// MaxRetryBackoff is the maximum backoff between rate-limited retries
	MaxRetryBackoff = 30 * time.Second
)

// File permission constants
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants
const (
	// DefaultMaxRetries is the default number of retries for rate-limited
	// requests. Zero keeps a failed call a row-level failure.
	DefaultMaxRetries = 0

	// DefaultPageSize is the page size used when listing issues
	DefaultPageSize = 100

	// MaxPages caps pagination when listing issues
	MaxPages = 1000
)

// Default values
const (
	// DefaultSheetName is used when no sheet/tab name is configured
	DefaultSheetName = "Sheet1"

	// DefaultStorePath is the default location of the identity store file
	DefaultStorePath = ".issue-mappings.json"

	// DefaultGitHubAPIURL is the public GitHub REST endpoint
	DefaultGitHubAPIURL = "https://api.github.com"

	// GitHubAPIVersion is sent as X-GitHub-Api-Version
	GitHubAPIVersion = "2022-11-28"

	// UntitledIssue is the sentinel title for rows without a usable title.
	// Issues carrying it are never submitted.
	UntitledIssue = "Untitled Issue"

	// SyncModeOneWay is the only supported sync mode
	SyncModeOneWay = "one-way"

	// SyncDirectionSheetToGitHub is the only supported sync direction
	SyncDirectionSheetToGitHub = "sheet-to-github"
)

// Format constants
const (
	// TimeFormatHuman is a human-readable time format
	TimeFormatHuman = "Jan 2, 2006 at 3:04pm MST"
)
