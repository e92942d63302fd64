package report

import (
	"html"
	"sort"

	"golang.org/x/text/cases"

	"github.com/nao1215/phyloreport/internal/model"
)

// variantSorter orders variants by gene name when genes are annotated and by
// variant key otherwise, both case-insensitively. Ties keep input order.
//
// Design decision: A cases.Caser keeps internal state and is not safe for
// concurrent use, so each sorter owns one. Batch rendering runs reports in
// parallel.
type variantSorter struct {
	calls *model.VariantCallMatrix
	fold  cases.Caser
}

func newVariantSorter(calls *model.VariantCallMatrix) *variantSorter {
	return &variantSorter{calls: calls, fold: cases.Fold()}
}

// key returns the sort key of a variant.
func (s *variantSorter) key(v int) string {
	if gene, ok := s.calls.Gene(v); ok {
		return s.fold.String(gene)
	}
	if v < s.calls.Len() {
		return s.fold.String(s.calls.Keys[v])
	}
	return ""
}

// sort returns the variants in display order, leaving the input untouched.
func (s *variantSorter) sort(variants []int) []int {
	keys := make(map[int]string, len(variants))
	for _, v := range variants {
		keys[v] = s.key(v)
	}
	sorted := make([]int, len(variants))
	copy(sorted, variants)
	sort.SliceStable(sorted, func(i, j int) bool {
		return keys[sorted[i]] < keys[sorted[j]]
	})
	return sorted
}

// sortKeys returns the variants of a variant -> samples map in display order.
// Variants with the same key are ordered by index so the output is stable
// across map iterations.
func (s *variantSorter) sortKeys(m map[int][]int) []int {
	variants := make([]int, 0, len(m))
	for v := range m {
		variants = append(variants, v)
	}
	sort.Ints(variants)
	return s.sort(variants)
}

// variantLabel returns the escaped display label of a variant: the
// emphasized gene name followed by the key in parentheses, or the key alone
// when genes are not annotated.
func variantLabel(calls *model.VariantCallMatrix, v int) string {
	key := notAvailable
	if v < calls.Len() {
		key = html.EscapeString(calls.Keys[v])
	}
	if gene, ok := calls.Gene(v); ok {
		return "<em>" + html.EscapeString(gene) + "</em> (" + key + ")"
	}
	return key
}
