package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/xbfighting/google-sheet-to-github-issues/pkg/constants"
	"github.com/xbfighting/google-sheet-to-github-issues/pkg/errors"
)

// Config holds the application configuration loaded from flags, the
// environment, .env files and an optional config file.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Google Sheets
	SpreadsheetID   string
	SheetName       string
	CredentialsPath string

	// GitHub
	GitHubOwner      string
	GitHubRepo       string
	GitHubToken      string
	GitHubAPIURL     string
	GitHubMaxRetries int

	// Reconciliation
	SyncInterval         time.Duration
	SkipDeleted          bool
	RespectGitHubChanges bool
	SyncMode             string
	SyncDirection        string
	MappingsFile         string
	StorePath            string
	IssueNumberColumn    string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// Requirement selects which parts of the configuration a command needs.
type Requirement int

// Requirements.
const (
	RequireSheets Requirement = 1 << iota
	RequireGitHub

	RequireAll = RequireSheets | RequireGitHub
)

// LoadConfig loads configuration in order of precedence:
// 1. Command-line flags (applied later by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (configFile, or .sheetsync.yaml in $HOME or the working directory)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapParse("yaml", configFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".sheetsync")
		// Missing config file is fine
		_ = v.ReadInConfig()
	}

	config := &Config{
		ConfigFile: v.ConfigFileUsed(),

		SpreadsheetID:   v.GetString("spreadsheet_id"),
		SheetName:       v.GetString("sheet_name"),
		CredentialsPath: v.GetString("google_credentials_path"),

		GitHubOwner:      v.GetString("github_owner"),
		GitHubRepo:       v.GetString("github_repo"),
		GitHubToken:      v.GetString("github_token"),
		GitHubAPIURL:     v.GetString("github_api_url"),
		GitHubMaxRetries: v.GetInt("github_max_retries"),

		SyncInterval:         time.Duration(v.GetInt("sync_interval_minutes")) * time.Minute,
		SkipDeleted:          v.GetBool("skip_deleted"),
		RespectGitHubChanges: v.GetBool("respect_github_changes"),
		SyncMode:             v.GetString("sync_mode"),
		SyncDirection:        v.GetString("sync_direction"),
		MappingsFile:         v.GetString("mappings_file"),
		StorePath:            v.GetString("store_path"),
		IssueNumberColumn:    v.GetString("issue_number_column"),

		// Logging configuration
		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sheet_name", constants.DefaultSheetName)
	v.SetDefault("google_credentials_path", "credentials.json")
	v.SetDefault("github_api_url", constants.DefaultGitHubAPIURL)
	v.SetDefault("github_max_retries", constants.DefaultMaxRetries)
	v.SetDefault("sync_interval_minutes", int(constants.DefaultSyncInterval/time.Minute))
	v.SetDefault("sync_mode", constants.SyncModeOneWay)
	v.SetDefault("sync_direction", constants.SyncDirectionSheetToGitHub)
	v.SetDefault("store_path", constants.DefaultStorePath)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// UpdateFromFlags applies parsed global flags so they take precedence over
// the environment and config file.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// Validate reports every missing or invalid setting needed by req.
func (c *Config) Validate(req Requirement) error {
	var problems []string

	if req&RequireSheets != 0 {
		if c.SpreadsheetID == "" {
			problems = append(problems, "SPREADSHEET_ID is required")
		}
		if c.CredentialsPath == "" {
			problems = append(problems, "GOOGLE_CREDENTIALS_PATH is required")
		} else if _, err := os.Stat(c.CredentialsPath); err != nil {
			problems = append(problems, fmt.Sprintf("GOOGLE_CREDENTIALS_PATH %q is not readable", c.CredentialsPath))
		}
	}

	if req&RequireGitHub != 0 {
		if c.GitHubToken == "" {
			problems = append(problems, "GITHUB_TOKEN is required")
		}
		if c.GitHubOwner == "" {
			problems = append(problems, "GITHUB_OWNER is required")
		}
		if c.GitHubRepo == "" {
			problems = append(problems, "GITHUB_REPO is required")
		}
		if c.GitHubMaxRetries < 0 {
			problems = append(problems, "GITHUB_MAX_RETRIES must not be negative")
		}
	}

	// SYNC_INTERVAL_MINUTES only matters to watch, which checks it unless
	// --interval overrides it.
	if req == RequireAll {
		if c.SyncMode != constants.SyncModeOneWay {
			problems = append(problems, fmt.Sprintf("SYNC_MODE %q is not supported (only %q)", c.SyncMode, constants.SyncModeOneWay))
		}
		if c.SyncDirection != constants.SyncDirectionSheetToGitHub {
			problems = append(problems, fmt.Sprintf("SYNC_DIRECTION %q is not supported (only %q)", c.SyncDirection, constants.SyncDirectionSheetToGitHub))
		}
	}

	if len(problems) > 0 {
		return &errors.ConfigError{Component: "config", Message: "invalid configuration", Missing: problems}
	}
	return nil
}

// loadEnvFiles loads environment variables from .env files. Variables
// already set win.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}
