package summary

import (
	"io"
	"math"
	"strconv"

	"github.com/nao1215/phyloreport/internal/model"
)

// Writer defines the interface for summary output.
// Implementations write the statistics of a rendered analysis in various
// formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. The CLI prints to stdout, tests write to buffers.
type Writer interface {
	// Write outputs the summary to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(s *model.Summary) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write summaries, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the summary to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(s *model.Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(s)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for summary writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// percent formats a fraction with one decimal. NaN stays visible as "NaN"
// so a zero denominator is never mistaken for 0%.
func percent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "NaN"
	}
	return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
}

// decimal formats v with prec decimals, or "NaN".
func decimal(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
