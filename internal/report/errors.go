package report

import (
	"errors"
	"fmt"

	"github.com/nao1215/phyloreport/internal/model"
)

// Lifecycle errors.
// These are programming errors in the caller and are never retried.
var (
	// ErrClosed is returned by every operation after Finalize or Close.
	ErrClosed = errors.New("report is closed")

	// ErrNotStarted is returned when a section is emitted before Start.
	ErrNotStarted = errors.New("report has not been started")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("report has already been started")

	// ErrMissingFigure is returned when a section that consists of an image
	// is emitted without an image path.
	ErrMissingFigure = errors.New("figure path is required")
)

// ShapeError is returned when an input collection does not match the sample
// set. It is detected before any markup of the section is written.
type ShapeError = model.ShapeError

// IOError is returned when the sink cannot be opened, written, flushed,
// synced or closed. Once a report has returned an IOError every later
// operation returns the same error.
type IOError struct {
	// Op is the operation that failed, e.g. "open" or "similarity".
	Op string

	// Path is the output file, empty for caller-supplied writers.
	Path string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("report %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("report %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}
