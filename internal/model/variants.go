package model

import (
	"math"
)

// PresenceThreshold is the log-probability a variant must strictly exceed to
// be classified as present in a sample: ln(0.5).
var PresenceThreshold = math.Log(0.5)

// LogProb holds the natural-log probabilities that a variant is absent or
// present in one sample.
type LogProb struct {
	Absent  float64 `yaml:"absent" json:"absent"`
	Present float64 `yaml:"present" json:"present"`
}

// IsPresent reports whether the presence probability is above 50%.
// A probability of exactly 50% is classified as absent.
func (p LogProb) IsPresent() bool {
	return p.Present > PresenceThreshold
}

// Known reports whether the pair holds a classification. Loaders mark
// missing cells of a classified variant with NaN.
func (p LogProb) Known() bool {
	return !math.IsNaN(p.Present)
}

// VariantCallMatrix holds the sequencing data and classification of every
// passed variant across the cohort samples.
//
// Rows are indexed by variant and columns by sample. A nil row means the
// variant has no data of that kind; a non-nil row must have one entry per
// sample.
type VariantCallMatrix struct {
	// Keys are the variant identifiers, e.g. "chr17_7577120_C__T".
	Keys []string

	// Genes holds gene names parallel to Keys, or nil when unannotated.
	Genes []string

	// Reads holds the number of variant-supporting reads.
	Reads [][]int

	// Coverage holds the read depth. Negative values mean no recorded coverage.
	Coverage [][]int

	// LogProbs holds the per-sample absent/present log-probabilities.
	LogProbs [][]LogProb
}

// Len returns the number of passed variants.
func (m *VariantCallMatrix) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Keys)
}

// HasGenes reports whether gene names are available.
func (m *VariantCallMatrix) HasGenes() bool {
	return m != nil && m.Genes != nil
}

// Gene returns the gene name of a variant, if annotated.
func (m *VariantCallMatrix) Gene(v int) (string, bool) {
	if !m.HasGenes() || v >= len(m.Genes) || m.Genes[v] == "" {
		return "", false
	}
	return m.Genes[v], true
}

// ReadsAt returns the reads and coverage of a variant in a sample.
// ok is false when either value was never recorded.
func (m *VariantCallMatrix) ReadsAt(v, s int) (reads, coverage int, ok bool) {
	if m == nil || v >= len(m.Reads) || v >= len(m.Coverage) {
		return 0, 0, false
	}
	r, c := m.Reads[v], m.Coverage[v]
	if s >= len(r) || s >= len(c) {
		return 0, 0, false
	}
	return r[s], c[s], true
}

// HasCoverage reports whether a non-negative coverage was recorded.
func (m *VariantCallMatrix) HasCoverage(v, s int) bool {
	_, cov, ok := m.ReadsAt(v, s)
	return ok && cov >= 0
}

// Classified reports whether the variant has classification data.
func (m *VariantCallMatrix) Classified(v int) bool {
	return m != nil && v < len(m.LogProbs) && m.LogProbs[v] != nil
}

// Called reports whether a variant is classified as present in a sample.
func (m *VariantCallMatrix) Called(v, s int) bool {
	if !m.Classified(v) || s >= len(m.LogProbs[v]) {
		return false
	}
	return m.LogProbs[v][s].IsPresent()
}

// CalledSamples returns the samples in which a variant is present.
func (m *VariantCallMatrix) CalledSamples(v int) []int {
	if !m.Classified(v) {
		return nil
	}
	var samples []int
	for s, p := range m.LogProbs[v] {
		if p.IsPresent() {
			samples = append(samples, s)
		}
	}
	return samples
}

// Present returns the variants present in at least one sample.
func (m *VariantCallMatrix) Present() []int {
	return m.filter(func(called, _ int) bool { return called >= 1 })
}

// Founders returns the variants present in all samples.
func (m *VariantCallMatrix) Founders() []int {
	return m.filter(func(called, samples int) bool { return samples > 0 && called == samples })
}

// Private returns the variants present in exactly one sample.
func (m *VariantCallMatrix) Private() []int {
	return m.filter(func(called, _ int) bool { return called == 1 })
}

// filter returns the classified variants whose call count satisfies keep.
func (m *VariantCallMatrix) filter(keep func(called, samples int) bool) []int {
	var variants []int
	for v := 0; v < m.Len(); v++ {
		if !m.Classified(v) {
			continue
		}
		if keep(len(m.CalledSamples(v)), len(m.LogProbs[v])) {
			variants = append(variants, v)
		}
	}
	return variants
}

// SampleCalls returns how many classified variants are present and absent in
// a sample. Cells without a classification are counted as neither.
func (m *VariantCallMatrix) SampleCalls(s int) (present, absent int) {
	for v := 0; v < m.Len(); v++ {
		if !m.Classified(v) || s >= len(m.LogProbs[v]) || !m.LogProbs[v][s].Known() {
			continue
		}
		if m.LogProbs[v][s].IsPresent() {
			present++
		} else {
			absent++
		}
	}
	return present, absent
}

// Validate checks that every non-nil row has one entry per sample.
func (m *VariantCallMatrix) Validate(samples int) error {
	if m == nil {
		return nil
	}
	n := len(m.Keys)
	if m.Genes != nil {
		if err := checkLen("gene names", len(m.Genes), n); err != nil {
			return err
		}
	}
	for _, rows := range []struct {
		what string
		lens []int
		size int
	}{
		{"read counts", rowLens(m.Reads), len(m.Reads)},
		{"coverage", rowLens(m.Coverage), len(m.Coverage)},
		{"log-probabilities", logRowLens(m.LogProbs), len(m.LogProbs)},
	} {
		if rows.size > n {
			return &ShapeError{What: rows.what, Got: rows.size, Want: n}
		}
		for _, l := range rows.lens {
			if l >= 0 {
				if err := checkLen(rows.what+" row", l, samples); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// rowLens returns the length of every row, or -1 for nil rows.
func rowLens(rows [][]int) []int {
	lens := make([]int, len(rows))
	for i, r := range rows {
		if r == nil {
			lens[i] = -1
			continue
		}
		lens[i] = len(r)
	}
	return lens
}

func logRowLens(rows [][]LogProb) []int {
	lens := make([]int, len(rows))
	for i, r := range rows {
		if r == nil {
			lens[i] = -1
			continue
		}
		lens[i] = len(r)
	}
	return lens
}
