package report

import (
	"html"

	"github.com/nao1215/phyloreport/internal/model"
)

// AddIncompatiblePatterns writes a table of the reads and coverage of every
// conflicting variant, followed by the sequencing data plot when fig is set.
func (r *Report) AddIncompatiblePatterns(cohort *model.SampleCohort, phylogeny *model.PhylogenyResult,
	calls *model.VariantCallMatrix, fig model.Figure) error {
	if err := r.ready(); err != nil {
		return err
	}
	cohort = orEmpty(cohort)
	if err := validateArtifactInputs(cohort, phylogeny, calls); err != nil {
		return err
	}

	var conflicting []int
	if phylogeny != nil {
		conflicting = newVariantSorter(calls).sort(phylogeny.Conflicting)
	}

	return r.emit("incompatible patterns", func(b block) {
		b.element("h4", "", "Evolutionarily incompatible mutation patterns")
		b.within("table", tableAttrs, func(b block) {
			header := make([]string, 0, cohort.Len()+1)
			header = append(header, "Variant")
			for _, name := range cohort.Names {
				header = append(header, sampleLabel(name))
			}
			b.headerRow(header)

			for _, v := range conflicting {
				row := make([]string, 0, cohort.Len()+1)
				row = append(row, variantLabel(calls, v))
				for s := range cohort.Names {
					row = append(row, readsCell(calls, v, s))
				}
				b.dataRow(row)
			}
		})

		if fig.IsSet() {
			present := len(calls.Present())
			title := "Incompatible mutation patterns in patient " + html.EscapeString(r.subject) + "."
			b.figure(fig, plotWidth, plotWidth, "Sequencing data plot of incompatible mutation patterns", title,
				func(b block) {
					b.linef("%s identified %d incompatible mutation patterns (out of %d investigated variants; %s).",
						html.EscapeString(r.opts.toolName), len(conflicting), present,
						percent(model.Fraction(float64(len(conflicting)), float64(present))))
					b.line("The color of the border of each rectangle representing a variant illustrates the " +
						"original classification, the color of the left bar within each rectangle illustrates " +
						"the VAF, and the color of the right bar illustrates the coverage.")
					b.line(borderLegend)
				})
		}
		b.sectionEnd()
	})
}

// borderLegend explains the border colors of the sequencing data plots.
const borderLegend = "Blue borders correspond to variants classified as present, red absent variants, " +
	"and light red unknown mutation status."

// validateArtifactInputs checks the call matrix and phylogeny against the cohort.
func validateArtifactInputs(cohort *model.SampleCohort, phylogeny *model.PhylogenyResult,
	calls *model.VariantCallMatrix) error {
	if err := calls.Validate(cohort.Len()); err != nil {
		return err
	}
	return phylogeny.Validate(calls.Len(), cohort.Len())
}
