package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/nao1215/phyloreport/internal/model"
)

// Format identifies a snapshot file format.
type Format string

// Supported snapshot formats.
const (
	FormatDocument Format = "document"
	FormatWorkbook Format = "workbook"
	FormatDatabase Format = "database"
)

var (
	// ErrUnsupportedFormat is returned for a snapshot whose extension
	// matches none of the supported formats.
	ErrUnsupportedFormat = errors.New("unsupported snapshot format")

	// ErrSubjectNotFound is returned when the requested subject is not in the snapshot.
	ErrSubjectNotFound = errors.New("subject not found in snapshot")

	// ErrEmptySnapshot is returned for a snapshot without any analysis.
	ErrEmptySnapshot = errors.New("snapshot holds no analysis")
)

// DetectFormat returns the format of a snapshot path from its extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return FormatDocument, nil
	case ".xlsx":
		return FormatWorkbook, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatDatabase, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Loader reads snapshots.
type Loader struct {
	// subject restricts loading to one subject when non-empty.
	subject string

	logger *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithSubject restricts loading to a single subject.
// Loading fails with ErrSubjectNotFound when the snapshot does not hold it.
func WithSubject(subject string) Option {
	return func(l *Loader) {
		l.subject = subject
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Load reads every analysis of the snapshot at path. Documents and
// workbooks hold one analysis; databases may hold several.
func (l *Loader) Load(ctx context.Context, path string) ([]*model.Analysis, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	var analyses []*model.Analysis
	switch format {
	case FormatDocument:
		analyses, err = single(readDocument(path))
	case FormatWorkbook:
		analyses, err = single(readWorkbook(path))
	case FormatDatabase:
		analyses, err = readDatabase(ctx, path, l.subject)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	analyses, err = l.selectSubject(analyses)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	for _, a := range analyses {
		a.Cohort.DeriveSampleData(a.Calls)
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("invalid snapshot %s: %w", path, err)
		}
		l.logger.Debug("snapshot loaded",
			"path", path,
			"format", format,
			"subject", a.Subject,
			"samples", a.Cohort.Len(),
			"variants", a.Calls.Len(),
		)
	}
	return analyses, nil
}

// LoadOne reads a snapshot that must yield exactly one analysis.
// Use WithSubject to pick one subject out of a database.
func (l *Loader) LoadOne(ctx context.Context, path string) (*model.Analysis, error) {
	analyses, err := l.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(analyses) != 1 {
		return nil, fmt.Errorf("snapshot %s holds %d analyses: select one subject", path, len(analyses))
	}
	return analyses[0], nil
}

// selectSubject applies the subject restriction.
func (l *Loader) selectSubject(analyses []*model.Analysis) ([]*model.Analysis, error) {
	if len(analyses) == 0 {
		return nil, ErrEmptySnapshot
	}
	if l.subject == "" {
		return analyses, nil
	}
	for _, a := range analyses {
		if a.Subject == l.subject {
			return []*model.Analysis{a}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrSubjectNotFound, l.subject)
}

// single wraps a single analysis result.
func single(a *model.Analysis, err error) ([]*model.Analysis, error) {
	if err != nil {
		return nil, err
	}
	return []*model.Analysis{a}, nil
}

// Load reads every analysis of the snapshot at path.
func Load(ctx context.Context, path string, opts ...Option) ([]*model.Analysis, error) {
	return New(opts...).Load(ctx, path)
}

// subjectFromPath returns the snapshot base name without its extension.
// Snapshots that do not name their subject are named after their file.
func subjectFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
