package report

import (
	"gonum.org/v1/gonum/mat"

	"github.com/nao1215/phyloreport/internal/model"
)

// AddSimilarity writes the pairwise Jaccard similarity and genetic distance
// tables, then flushes and syncs the sink so the report so far survives a
// failure in a later section.
func (r *Report) AddSimilarity(cohort *model.SampleCohort, matrices *model.SimilarityMatrices) error {
	if err := r.ready(); err != nil {
		return err
	}
	cohort = orEmpty(cohort)
	if err := matrices.Validate(cohort.Len()); err != nil {
		return err
	}

	var sim, dist *mat.Dense
	if matrices != nil {
		sim, dist = matrices.Similarity, matrices.Distance
	}
	err := r.emit("similarity", func(b block) {
		b.element("h4", "", "Genetic similarity")
		b.pairwiseTable(cohort, "Jaccard similarity coefficient between all pairs of samples.", sim,
			func(v float64) string { return fixed(v, 2) })
		b.blank()
		b.pairwiseTable(cohort, "Genetic distance between all pairs of samples.", dist, number)
		b.sectionEnd()
	})
	if err != nil {
		return err
	}
	return r.checkpoint("similarity")
}

// pairwiseTable writes a samples x samples table of m.
func (b block) pairwiseTable(cohort *model.SampleCohort, caption string, m *mat.Dense, format func(float64) string) {
	b.within("table", tableAttrs, func(b block) {
		b.element("caption", "", caption)

		header := make([]string, 0, cohort.Len()+1)
		header = append(header, "Sample")
		for _, name := range cohort.Names {
			header = append(header, sampleLabel(name))
		}
		b.headerRow(header)

		for i, name := range cohort.Names {
			row := make([]string, 0, cohort.Len()+1)
			row = append(row, sampleLabel(name))
			for j := range cohort.Names {
				row = append(row, format(m.At(i, j)))
			}
			b.dataRow(row)
		}
	})
}
