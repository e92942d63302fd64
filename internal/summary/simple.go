package summary

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/phyloreport/internal/model"
)

// SimpleWriter outputs human-readable text summaries.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because batch output is usually piped to a log file.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether the phylogeny section is shown when no
	// tree was inferred.
	showEmpty bool

	// reportPath is printed in the footer when set.
	reportPath string
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithReportPath adds the location of the HTML report to the footer.
func WithReportPath(path string) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.reportPath = path
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(s *model.Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, s)
	w.writeSamples(&sb, s)
	w.writeVariants(&sb, s)
	w.writePhylogeny(&sb, s)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the summary header with the subject.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, s *model.Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       PHYLOREPORT SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Patient: %s\n\n", s.Subject))
}

// writeSection writes a section title between rules.
func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeSamples writes the sample filtering and coverage section.
func (w *SimpleWriter) writeSamples(sb *strings.Builder, s *model.Summary) {
	writeSection(sb, "SAMPLES")

	sb.WriteString(fmt.Sprintf("  Passed filtering: %d/%d\n", s.RetainedSamples, s.TotalSamples))
	sb.WriteString(fmt.Sprintf("  Median coverage:  %s (mean: %s)\n",
		decimal(s.MedianCoverage, 1), decimal(s.MeanCoverage, 2)))
	sb.WriteString("\n")
}

// writeVariants writes the variant classification section.
func (w *SimpleWriter) writeVariants(sb *strings.Builder, s *model.Summary) {
	writeSection(sb, "VARIANTS")

	sb.WriteString(fmt.Sprintf("  Passed:   %d\n", s.PassedVariants))
	sb.WriteString(fmt.Sprintf("  Present:  %d\n", s.PresentVariants))
	sb.WriteString(fmt.Sprintf("  Founders: %d (%s)\n", s.Founders, percent(s.FounderFraction)))
	sb.WriteString(fmt.Sprintf("  Private:  %s per sample (%s)\n", decimal(s.PrivateMean, 1), percent(s.PrivateFraction)))
	sb.WriteString("\n")
}

// writePhylogeny writes the conflicts and artifacts section.
func (w *SimpleWriter) writePhylogeny(sb *strings.Builder, s *model.Summary) {
	if !s.HasPhylogeny && !w.showEmpty {
		return
	}

	writeSection(sb, "PHYLOGENY")

	if !s.HasPhylogeny {
		sb.WriteString("  No phylogeny inferred\n\n")
		return
	}
	sb.WriteString(fmt.Sprintf("  Incompatible variants: %d (%s)\n", s.Conflicting, percent(s.ConflictingFraction)))
	sb.WriteString(fmt.Sprintf("  Putative artifacts:    %d (%s)\n", s.Artifacts, percent(s.ArtifactFraction)))
	sb.WriteString(fmt.Sprintf("  Low-coverage unknowns: %d\n", s.Unknowns))
	sb.WriteString("\n")
}

// writeFooter writes the summary footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	if w.reportPath != "" {
		sb.WriteString(fmt.Sprintf("Report written to %s\n", w.reportPath))
		sb.WriteString(strings.Repeat("=", 70))
		sb.WriteString("\n")
	}
}
