package summary

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/phyloreport/internal/model"
)

// MarkdownWriter outputs summaries in Markdown format.
// This format is designed for lab notebooks and merge request comments.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides tables, mermaid charts, and GitHub-flavored
// alerts without hand-written escaping.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(s *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, s)
	w.writeVariants(md, s)
	w.writePhylogeny(md, s)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and the sample table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *model.Summary) {
	md.H1("PhyloReport Summary: " + s.Subject)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Samples passed filtering", strconv.Itoa(s.RetainedSamples) + "/" + strconv.Itoa(s.TotalSamples)},
			{"Median coverage", decimal(s.MedianCoverage, 1)},
			{"Mean coverage", decimal(s.MeanCoverage, 2)},
		},
	})
	md.PlainText("")
}

// writeVariants writes the variant table and the sharing chart.
func (w *MarkdownWriter) writeVariants(md *markdown.Markdown, s *model.Summary) {
	md.H2("Variants")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Statistic", "Value"},
		Rows: [][]string{
			{"Passed variants", strconv.Itoa(s.PassedVariants)},
			{"Present in at least one sample", strconv.Itoa(s.PresentVariants)},
			{"Founders", strconv.Itoa(s.Founders) + " (" + percent(s.FounderFraction) + ")"},
			{"Private per sample", decimal(s.PrivateMean, 1) + " (" + percent(s.PrivateFraction) + ")"},
		},
	})
	md.PlainText("")

	if s.PresentVariants > 0 {
		w.writePieChart(md, s)
	}
}

// writePieChart writes a mermaid pie chart of founder, shared and private
// variants.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s *model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Variant sharing"),
		piechart.WithShowData(true),
	)

	if s.Founders > 0 {
		chart.LabelAndIntValue("Founders", uint64(s.Founders))
	}
	if shared := s.Shared(); shared > 0 {
		chart.LabelAndIntValue("Shared", uint64(shared))
	}
	if s.Private > 0 && s.RetainedSamples > 1 {
		chart.LabelAndIntValue("Private", uint64(s.Private))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writePhylogeny writes the conflict and artifact statistics with an alert
// when the data needs a closer look.
func (w *MarkdownWriter) writePhylogeny(md *markdown.Markdown, s *model.Summary) {
	md.H2("Phylogeny")
	md.PlainText("")

	if !s.HasPhylogeny {
		md.PlainText("No phylogeny inferred.")
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"Statistic", "Value"},
		Rows: [][]string{
			{"Incompatible variants", strconv.Itoa(s.Conflicting) + " (" + percent(s.ConflictingFraction) + ")"},
			{"Putative artifacts", strconv.Itoa(s.Artifacts) + " (" + percent(s.ArtifactFraction) + ")"},
			{"Low-coverage unknowns", strconv.Itoa(s.Unknowns)},
		},
	})
	md.PlainText("")

	switch {
	case s.Conflicting > 0:
		md.Warningf("%d variant(s) could not be placed on the phylogeny.", s.Conflicting)
	case s.Artifacts > 0:
		md.Importantf("%d putative artifact(s) were corrected by the phylogeny.", s.Artifacts)
	default:
		md.Tip("All variants are evolutionarily compatible.")
	}
	md.PlainText("")
}

// writeFooter writes the summary footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Summary generated by PhyloReport*")
}
