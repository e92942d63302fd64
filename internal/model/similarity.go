package model

import (
	"gonum.org/v1/gonum/mat"
)

// SimilarityMatrices holds the pairwise comparisons between samples.
// Both matrices are indexed in cohort order.
type SimilarityMatrices struct {
	// Similarity holds Jaccard similarity coefficients in [0, 1].
	Similarity *mat.Dense

	// Distance holds non-negative genetic distances.
	Distance *mat.Dense
}

// NewSimilarityMatrices builds the matrices from row slices.
// Ragged or non-square input yields a ShapeError.
func NewSimilarityMatrices(similarity, distance [][]float64) (*SimilarityMatrices, error) {
	sim, err := denseFromRows("similarity matrix", similarity)
	if err != nil {
		return nil, err
	}
	dist, err := denseFromRows("distance matrix", distance)
	if err != nil {
		return nil, err
	}
	return &SimilarityMatrices{Similarity: sim, Distance: dist}, nil
}

// denseFromRows flattens square rows into a Dense matrix.
// Empty input yields nil because gonum does not allow zero-sized matrices.
func denseFromRows(what string, rows [][]float64) (*mat.Dense, error) {
	n := len(rows)
	if n == 0 {
		return nil, nil
	}
	data := make([]float64, 0, n*n)
	for _, row := range rows {
		if err := checkLen(what+" row", len(row), n); err != nil {
			return nil, err
		}
		data = append(data, row...)
	}
	return mat.NewDense(n, n, data), nil
}

// Validate checks that both matrices are samples x samples.
func (m *SimilarityMatrices) Validate(samples int) error {
	if m == nil {
		return checkLen("similarity matrices", 0, samples)
	}
	for _, d := range []struct {
		what string
		m    *mat.Dense
	}{
		{"similarity matrix", m.Similarity},
		{"distance matrix", m.Distance},
	} {
		r, c := dims(d.m)
		if err := checkLen(d.what+" rows", r, samples); err != nil {
			return err
		}
		if err := checkLen(d.what+" columns", c, samples); err != nil {
			return err
		}
	}
	return nil
}

// dims returns the dimensions of a possibly nil matrix.
func dims(m *mat.Dense) (int, int) {
	if m == nil {
		return 0, 0
	}
	return m.Dims()
}

// DenseRows copies a possibly nil matrix into row slices.
func DenseRows(m *mat.Dense) [][]float64 {
	r, c := dims(m)
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = make([]float64, c)
		copy(rows[i], m.RawRowView(i))
	}
	return rows
}
