package summary

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/phyloreport/internal/model"
)

// createTestSummary creates a summary with sample data for testing.
func createTestSummary() *model.Summary {
	return &model.Summary{
		Subject:             "Pam03",
		RetainedSamples:     3,
		TotalSamples:        4,
		MedianCoverage:      85,
		MeanCoverage:        82.5,
		PassedVariants:      4,
		PresentVariants:     3,
		Founders:            1,
		FounderFraction:     1.0 / 3.0,
		Private:             2,
		PrivateMean:         2.0 / 3.0,
		PrivateFraction:     0.4,
		HasPhylogeny:        true,
		Conflicting:         1,
		ConflictingFraction: 1.0 / 3.0,
		Artifacts:           4,
		ArtifactFraction:    4.0 / 9.0,
		Unknowns:            1,
	}
}

// createEmptySummary creates a summary of one sample without present variants.
func createEmptySummary() *model.Summary {
	return &model.Summary{
		Subject:         "Pam01",
		RetainedSamples: 1,
		TotalSamples:    1,
		MedianCoverage:  math.NaN(),
		MeanCoverage:    math.NaN(),
		FounderFraction: math.NaN(),
		PrivateFraction: math.NaN(),
	}
}

// TestSimpleWriter tests the human-readable summary writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes all sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithReportPath("out/Pam03_report.html"))

		n, err := w.Write(createTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
		}

		output := buf.String()
		for _, want := range []string{
			"PHYLOREPORT SUMMARY",
			"Patient: Pam03",
			"Passed filtering: 3/4",
			"Median coverage:  85.0 (mean: 82.50)",
			"Founders: 1 (33.3%)",
			"Private:  0.7 per sample (40.0%)",
			"Putative artifacts:    4 (44.4%)",
			"Report written to out/Pam03_report.html",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("renders NaN for undefined fractions", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createEmptySummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Founders: 0 (NaN)") {
			t.Error("expected NaN founder fraction")
		}
		if strings.Contains(output, "PHYLOGENY") {
			t.Error("expected phylogeny section to be hidden")
		}
	})

	t.Run("show empty includes phylogeny section", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithShowEmpty(true))

		if _, err := w.Write(createEmptySummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No phylogeny inferred") {
			t.Error("expected empty phylogeny section")
		}
	})
}

// TestMarkdownWriter tests the Markdown summary writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes tables and chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# PhyloReport Summary: Pam03",
			"## Variants",
			"pie",
			"Variant sharing",
			"Putative artifacts",
			"[!WARNING]",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("without phylogeny", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(createEmptySummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No phylogeny inferred.") {
			t.Error("expected no phylogeny text")
		}
		if strings.Contains(output, "mermaid") {
			t.Error("expected no chart without present variants")
		}
	})
}

// TestJSONWriter tests the JSON summary writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		if _, err := w.Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got JSONSummary
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Subject != "Pam03" || got.Phylogeny == nil || got.Phylogeny.Artifacts != 4 {
			t.Errorf("unexpected summary: %+v", got)
		}
		if !strings.Contains(buf.String(), "\n  \"subject\"") {
			t.Error("expected indented output")
		}
	})

	t.Run("writes null for NaN", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(createEmptySummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got map[string]any
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		want := map[string]any{
			"subject":          "Pam01",
			"retained_samples": 1.0,
			"total_samples":    1.0,
			"median_coverage":  nil,
			"mean_coverage":    nil,
			"passed_variants":  0.0,
			"present_variants": 0.0,
			"founders":         0.0,
			"founder_fraction": nil,
			"private":          0.0,
			"private_mean":     0.0,
			"private_fraction": nil,
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("summary mismatch (-want +got):\n%s", diff)
		}
	})
}

// errWriter always fails.
type errWriter struct{}

func (errWriter) Write(*model.Summary) (int, error) {
	return 0, errors.New("write failed")
}

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var text, js bytes.Buffer
		w := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))

		n, err := w.Write(createTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != text.Len()+js.Len() {
			t.Errorf("expected %d bytes, got %d", text.Len()+js.Len(), n)
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var text bytes.Buffer
		w := NewMultiWriter(errWriter{}, NewSimpleWriter(&text))

		if _, err := w.Write(createTestSummary()); err == nil {
			t.Error("expected error")
		}
		if text.Len() != 0 {
			t.Error("expected later writers to be skipped")
		}
	})
}
