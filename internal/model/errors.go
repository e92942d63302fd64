package model

import (
	"errors"
	"fmt"
)

// ShapeError is returned when an input collection does not match the
// expected sample or variant count.
//
// Design decision: We use a struct error rather than a sentinel so callers can
// report which collection was malformed. Use errors.As to inspect it.
type ShapeError struct {
	// What names the malformed collection, e.g. "similarity matrix".
	What string

	// Got is the observed size.
	Got int

	// Want is the expected size.
	Want int
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("data shape mismatch: %s has size %d, expected %d", e.What, e.Got, e.Want)
}

// checkLen returns a ShapeError when got differs from want.
func checkLen(what string, got, want int) error {
	if got != want {
		return &ShapeError{What: what, Got: got, Want: want}
	}
	return nil
}

// Reference errors returned while resolving artifacts by variant key and
// sample name. They are wrapped with the offending value.
var (
	// ErrUnknownVariant is returned for a variant key that is not in the call matrix.
	ErrUnknownVariant = errors.New("unknown variant")

	// ErrAmbiguousVariant is returned for a variant key shared by several
	// variants of the call matrix.
	ErrAmbiguousVariant = errors.New("ambiguous variant key")

	// ErrUnknownSample is returned for a sample name that is not in the cohort.
	ErrUnknownSample = errors.New("unknown sample")
)
