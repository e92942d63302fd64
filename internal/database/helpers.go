package database

import (
	"math"
	"sort"

	"github.com/nao1215/phyloreport/internal/model"
)

// filledInts returns n copies of value.
func filledInts(n, value int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = value
	}
	return out
}

// filledLogProbs returns n unclassified log-probability pairs. NaN is never
// present, so a sample without a stored classification is not called.
func filledLogProbs(n int) []model.LogProb {
	out := make([]model.LogProb, n)
	for i := range out {
		out[i] = model.LogProb{Absent: math.NaN(), Present: math.NaN()}
	}
	return out
}

// nanGrid returns an n x n grid of NaN.
func nanGrid(n int) [][]float64 {
	grid := make([][]float64, n)
	for i := range grid {
		grid[i] = make([]float64, n)
		for j := range grid[i] {
			grid[i][j] = math.NaN()
		}
	}
	return grid
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys(m map[int][]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
