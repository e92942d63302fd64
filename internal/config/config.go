package config

import (
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "phyloreport"

	// DefaultBatchSize of 4 concurrent renders keeps memory bounded while
	// still overlapping file I/O. Every render holds one full analysis.
	DefaultBatchSize = 4

	// DefaultOutputDir is where batch reports are written when --dir is not given.
	DefaultOutputDir = "."

	// DefaultSummaryFormat is the digest printed after a single render.
	DefaultSummaryFormat = SummaryText

	// ReportExtension is appended to the snapshot base name to form a report path.
	ReportExtension = ".html"
)

// Summary formats accepted by --summary.
const (
	SummaryText     = "text"
	SummaryMarkdown = "markdown"
	SummaryJSON     = "json"
	SummaryNone     = "none"
)

// Config holds all configuration options for phyloreport.
// This struct is populated from CLI flags and the optional settings file and
// passed through the application rather than kept in global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. Presentation and inference defaults from the settings file
// live in File, because they are shared by every render of a batch.
type Config struct {
	// Snapshots are the analysis snapshot files to render.
	Snapshots []string

	// ReportFile is the output path of a single render.
	// When empty, the report is written next to the working directory,
	// named after the snapshot.
	ReportFile string

	// OutputDir is the directory batch reports are written to.
	OutputDir string

	// BatchSize is the number of reports rendered concurrently.
	BatchSize int

	// SummaryFormat selects the digest printed to stdout after rendering.
	// One of SummaryText, SummaryMarkdown, SummaryJSON or SummaryNone.
	SummaryFormat string

	// ConfigFilePath is the path to the settings file.
	// If empty, the tool searches the locations listed in FindConfigFile.
	ConfigFilePath string

	// File holds the settings file contents. It is never nil after NewConfig.
	File *File

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ShowIdentifiers disables masking of patient identifiers in log output.
	ShowIdentifiers bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because several defaults are non-zero (batch size, summary
// format). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		OutputDir:     DefaultOutputDir,
		BatchSize:     DefaultBatchSize,
		SummaryFormat: DefaultSummaryFormat,
		File:          &File{},
	}
}

// XDGConfigDir returns the XDG config directory for phyloreport.
// On Linux: ~/.config/phyloreport
// On macOS: ~/Library/Application Support/phyloreport
// On Windows: %APPDATA%\phyloreport
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first sentinel error found.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Snapshots) == 0 {
		return ErrNoSnapshot
	}

	// A single output file cannot hold several reports
	if c.ReportFile != "" && len(c.Snapshots) > 1 {
		return ErrReportFileWithBatch
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	switch c.SummaryFormat {
	case SummaryText, SummaryMarkdown, SummaryJSON, SummaryNone:
	default:
		return ErrUnknownSummaryFormat
	}

	if c.File != nil {
		return c.File.Validate()
	}
	return nil
}

// ReportPath returns the output path of the report rendered from snapshot.
// ReportFile wins when set; otherwise the snapshot base name with its
// extension replaced by ReportExtension is placed in OutputDir.
func (c *Config) ReportPath(snapshot string) string {
	if c.ReportFile != "" {
		return c.ReportFile
	}
	base := filepath.Base(snapshot)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	dir := c.OutputDir
	if dir == "" {
		dir = DefaultOutputDir
	}
	return filepath.Join(dir, base+ReportExtension)
}
