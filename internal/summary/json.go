package summary

import (
	"encoding/json"
	"io"
	"math"

	"github.com/nao1215/phyloreport/internal/model"
)

// JSONWriter outputs summaries in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because it is sufficient for a flat document. encoding/json
// rejects NaN, so undefined fractions are written as null.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in JSON format.
func (w *JSONWriter) Write(s *model.Summary) (int, error) {
	return w.writeJSON(newJSONSummary(s))
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONSummary is the JSON document written by JSONWriter.
// Undefined statistics are nil.
type JSONSummary struct {
	Subject         string         `json:"subject"`
	RetainedSamples int            `json:"retained_samples"`
	TotalSamples    int            `json:"total_samples"`
	MedianCoverage  *float64       `json:"median_coverage"`
	MeanCoverage    *float64       `json:"mean_coverage"`
	PassedVariants  int            `json:"passed_variants"`
	PresentVariants int            `json:"present_variants"`
	Founders        int            `json:"founders"`
	FounderFraction *float64       `json:"founder_fraction"`
	Private         int            `json:"private"`
	PrivateMean     *float64       `json:"private_mean"`
	PrivateFraction *float64       `json:"private_fraction"`
	Phylogeny       *JSONPhylogeny `json:"phylogeny,omitempty"`
}

// JSONPhylogeny holds the tree inference statistics.
type JSONPhylogeny struct {
	Conflicting         int      `json:"conflicting"`
	ConflictingFraction *float64 `json:"conflicting_fraction"`
	Artifacts           int      `json:"artifacts"`
	ArtifactFraction    *float64 `json:"artifact_fraction"`
	Unknowns            int      `json:"unknowns"`
}

// newJSONSummary converts a summary to its JSON form.
func newJSONSummary(s *model.Summary) *JSONSummary {
	js := &JSONSummary{
		Subject:         s.Subject,
		RetainedSamples: s.RetainedSamples,
		TotalSamples:    s.TotalSamples,
		MedianCoverage:  finite(s.MedianCoverage),
		MeanCoverage:    finite(s.MeanCoverage),
		PassedVariants:  s.PassedVariants,
		PresentVariants: s.PresentVariants,
		Founders:        s.Founders,
		FounderFraction: finite(s.FounderFraction),
		Private:         s.Private,
		PrivateMean:     finite(s.PrivateMean),
		PrivateFraction: finite(s.PrivateFraction),
	}
	if s.HasPhylogeny {
		js.Phylogeny = &JSONPhylogeny{
			Conflicting:         s.Conflicting,
			ConflictingFraction: finite(s.ConflictingFraction),
			Artifacts:           s.Artifacts,
			ArtifactFraction:    finite(s.ArtifactFraction),
			Unknowns:            s.Unknowns,
		}
	}
	return js
}

// finite returns a pointer to v, or nil when v is NaN or infinite.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
