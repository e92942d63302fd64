// Package model defines the data consumed by the report builder.
//
// This package contains the following main types:
//   - SampleCohort: the retained samples with their coverage, VAF and purity data
//   - VariantCallMatrix: read counts, coverage and presence log-probabilities per variant and sample
//   - SimilarityMatrices: pairwise similarity coefficients and genetic distances
//   - PhylogenyResult: conflicting variants and putative artifacts found by tree inference
//   - Analysis: everything above bundled with figure paths and inference settings
//   - Summary: the derived statistics shown in reports and terminal digests
//
// Design decision: Every type here is produced upstream and treated as an
// immutable snapshot while a report is rendered. Derived sets (present
// variants, founders, private variants) are computed on demand rather than
// stored so they can never disagree with the underlying log-probabilities.
//
// Samples and variants are addressed by index. Sample index i always refers to
// SampleCohort.Names[i], and every per-sample slice and matrix dimension uses
// the same order.
package model
