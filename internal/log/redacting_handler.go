package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// identifierKeys contains attribute keys whose values identify a patient.
var identifierKeys = map[string]bool{
	"subject":       true,
	"subject_id":    true,
	"patient":       true,
	"patient_id":    true,
	"patientid":     true,
	"mrn":           true,
	"dob":           true,
	"birthdate":     true,
	"date_of_birth": true,
	"full_name":     true,
}

// identifierPatterns contains value patterns that identify a patient
// regardless of the key they are logged under.
var identifierPatterns = []*regexp.Regexp{
	// Medical record numbers such as "MRN 0012345" or "mrn:12345"
	regexp.MustCompile(`(?i)\bmrn[\s:#-]*\d{4,}`),
}

// MaskValue is the string used to replace identifying values.
const MaskValue = "***REDACTED***"

// RedactingHandler wraps an slog.Handler and masks patient identifiers.
// Attribute values logged under an identifying key, or matching an
// identifying pattern, are replaced with MaskValue before they reach the
// underlying handler.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because it works with any underlying handler (text, JSON, etc.) and
// callers keep using the plain slog API.
type RedactingHandler struct {
	// handler is the underlying slog handler that receives redacted records.
	handler slog.Handler
}

// NewRedactingHandler creates a new RedactingHandler wrapping the given handler.
// If handler is nil, the returned RedactingHandler will use slog.Default().Handler().
func NewRedactingHandler(handler slog.Handler) *RedactingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &RedactingHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle redacts the record's attributes and passes it to the underlying handler.
func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	redacted := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		redacted.AddAttrs(redactAttr(a))
		return true
	})
	return h.handler.Handle(ctx, redacted)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are redacted before being added.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = redactAttr(a)
	}
	return &RedactingHandler{handler: h.handler.WithAttrs(redacted)}
}

// WithGroup returns a new handler with the given group name.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{handler: h.handler.WithGroup(name)}
}

// redactAttr redacts a single attribute, recursing into groups.
func redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		redacted := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			redacted[i] = redactAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redacted...)}
	}

	if isIdentifierKey(a.Key) {
		return slog.String(a.Key, MaskValue)
	}
	if a.Value.Kind() == slog.KindString && isIdentifierValue(a.Value.String()) {
		return slog.String(a.Key, MaskValue)
	}
	return a
}

// isIdentifierKey reports whether key names a patient identifier.
// Keys containing "patient" are always treated as identifying.
func isIdentifierKey(key string) bool {
	key = strings.ToLower(key)
	return identifierKeys[key] || strings.Contains(key, "patient")
}

// isIdentifierValue reports whether value matches an identifying pattern.
func isIdentifierValue(value string) bool {
	for _, pattern := range identifierPatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// level maps the verbose flag to a log level.
func level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// NewRedactingLogger creates a new slog.Logger writing text records to w with
// patient identifiers masked.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
func NewRedactingLogger(w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level(verbose)}
	return slog.New(NewRedactingHandler(slog.NewTextHandler(w, opts)))
}

// NewRedactingJSONLogger creates a new slog.Logger writing JSON records to w
// with patient identifiers masked. Useful for structured log aggregation.
func NewRedactingJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level(verbose)}
	return slog.New(NewRedactingHandler(slog.NewJSONHandler(w, opts)))
}

// NewLogger creates a text logger. Identifiers are masked unless
// showIdentifiers is set.
func NewLogger(w io.Writer, verbose, showIdentifiers bool) *slog.Logger {
	if showIdentifiers {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level(verbose)}))
	}
	return NewRedactingLogger(w, verbose)
}
