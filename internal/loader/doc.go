// Package loader reads analysis snapshots into model.Analysis values.
//
// A snapshot is the output of an upstream phylogeny inference run. Three
// formats are supported, selected by file extension:
//   - .yaml, .yml and .json: one analysis as a single document
//   - .xlsx: one analysis as an Excel workbook with one sheet per table
//   - .db and .sqlite: any number of analyses in a snapshot database
//
// Every loaded analysis is validated, and per-sample coverage and VAF
// sequences are derived from the call matrix when the snapshot does not
// list them. Artifacts referencing unknown variants or samples fail loading
// with model.ErrUnknownVariant or model.ErrUnknownSample.
package loader
