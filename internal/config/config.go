package config

import (
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/nao1215/recordcheck/internal/check"
)

// Default configuration values.
const (
	// DefaultOutputDir is where cleaned datasets and reports are written.
	// It is relative to the working directory so that a run next to the
	// input files keeps its artifacts together.
	DefaultOutputDir = "Output"

	// DefaultBatchSize is the number of files validated concurrently.
	// Each run holds its whole dataset in memory, so this also bounds
	// memory use when many large files are passed at once.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "recordcheck"

	// LogFormatText selects the human-readable slog handler.
	LogFormatText = "text"

	// LogFormatJSON selects the JSON slog handler.
	LogFormatJSON = "json"
)

// Config holds all configuration options for recordcheck.
// This struct is populated from defaults, the environment and CLI flags and
// passed through the application rather than kept in global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. Check thresholds live in RulesFile because they come from
// a separate file with its own lifecycle.
type Config struct {
	// Inputs are the tabular files to validate.
	Inputs []string

	// OutputDir is the directory for cleaned datasets, JSON reports and CSV
	// summaries. It is created if it does not exist.
	OutputDir string

	// BatchSize is the number of files validated concurrently.
	BatchSize int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// LogFormat is LogFormatText or LogFormatJSON.
	LogFormat string

	// ConfigFilePath is the path to the rules file.
	// If empty, the tool searches for .recordcheck in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// RulesFile holds the check thresholds loaded from the rules file.
	// Nil means the built-in catalog is used unchanged.
	RulesFile *RulesFile

	// JSONReport prints the console report as JSON.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport prints the console report as GitHub Flavored Markdown.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the console report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// WriteCleaned controls whether the cleaned dataset is written.
	WriteCleaned bool

	// DBDir is the directory path for the SQLite history database.
	// Defaults to the XDG data directory (~/.local/share/recordcheck on Linux).
	DBDir string

	// SaveToDB indicates whether runs are recorded in the history database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because several defaults are non-zero (batch size, output
// directory, cleaned output and history enabled).
func NewConfig() *Config {
	return &Config{
		OutputDir:    DefaultOutputDir,
		BatchSize:    DefaultBatchSize,
		LogFormat:    LogFormatText,
		WriteCleaned: true,
		DBDir:        XDGDataDir(),
		SaveToDB:     true,
	}
}

// XDGDataDir returns the XDG data directory for recordcheck.
// On Linux: ~/.local/share/recordcheck
// On macOS: ~/Library/Application Support/recordcheck
// On Windows: %LOCALAPPDATA%\recordcheck
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for recordcheck.
// On Linux: ~/.config/recordcheck
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after flag parsing, before any file is loaded.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return ErrNoInput
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.OutputDir == "" {
		return ErrEmptyOutputDir
	}

	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		return ErrInvalidLogFormat
	}

	if c.RulesFile != nil {
		if _, err := c.RulesFile.Rules(); err != nil {
			return err
		}
	}

	return nil
}

// Rules returns the check catalog parameters: the built-in defaults merged
// with the rules file, if one was loaded.
func (c *Config) Rules() (check.Rules, error) {
	if c.RulesFile == nil {
		return check.DefaultRules(), nil
	}
	return c.RulesFile.Rules()
}
