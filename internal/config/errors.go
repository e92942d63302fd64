package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and File.Validate().
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoSnapshot is returned when no snapshot file is given.
	ErrNoSnapshot = errors.New("no snapshot specified: provide at least one analysis snapshot file")

	// ErrReportFileWithBatch is returned when --output is combined with
	// several snapshots. Use --dir for batch rendering instead.
	ErrReportFileWithBatch = errors.New("--output cannot be used with several snapshots: use --dir")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrUnknownSummaryFormat is returned for a --summary value other than
	// text, markdown, json or none.
	ErrUnknownSummaryFormat = errors.New("unknown summary format: use text, markdown, json or none")

	// ErrInvalidMaxWidth is returned when the report container width in the
	// settings file is negative. Use 0 for the default width.
	ErrInvalidMaxWidth = errors.New("invalid report max width: must be non-negative")
)
