package report

import (
	"html"
	"strings"

	"github.com/nao1215/phyloreport/internal/model"
)

// AddArtifacts writes the putative data artifacts: unclassified conflicting
// variants, false-positives and lost variants, each as a list when non-empty.
// With artifacts and a figure the artifact plot follows; without any artifact
// a short paragraph states so instead.
func (r *Report) AddArtifacts(cohort *model.SampleCohort, phylogeny *model.PhylogenyResult,
	calls *model.VariantCallMatrix, fig model.Figure) error {
	if err := r.ready(); err != nil {
		return err
	}
	cohort = orEmpty(cohort)
	if err := validateArtifactInputs(cohort, phylogeny, calls); err != nil {
		return err
	}
	if phylogeny == nil {
		phylogeny = &model.PhylogenyResult{}
	}

	sorter := newVariantSorter(calls)
	n := cohort.Len()
	present := len(calls.Present())
	artifacts := phylogeny.ArtifactCount()
	investigated := n * present
	fraction := percent(model.Fraction(float64(artifacts), float64(investigated)))
	tool := html.EscapeString(r.opts.toolName)

	return r.emit("artifacts", func(b block) {
		b.element("h4", "", "Data artifacts")

		if len(phylogeny.Conflicting) > 0 {
			all := make([]int, n)
			for s := range all {
				all[s] = s
			}
			b.element("h5", "", "Unclassified artifacts due to limited solution space:")
			b.within("ul", "", func(b block) {
				for _, v := range sorter.sort(phylogeny.Conflicting) {
					b.bullet(cohort, calls, v, all)
				}
			})
			b.line("<br>")
		}

		if len(phylogeny.FalsePositives) > 0 {
			b.element("h5", "", "Putative false-positives:")
			b.within("ul", "", func(b block) {
				for _, v := range sorter.sortKeys(phylogeny.FalsePositives) {
					b.bullet(cohort, calls, v, keep(phylogeny.FalsePositives[v], func(s int) bool {
						return calls.Called(v, s)
					}))
				}
			})
			b.line("<br>")
		}

		if len(phylogeny.FalseNegatives) > 0 {
			b.element("h5", "", "Putative lost variants:")
			b.within("ul", "", func(b block) {
				for _, v := range sorter.sortKeys(phylogeny.FalseNegatives) {
					b.bullet(cohort, calls, v, keep(phylogeny.FalseNegatives[v], func(s int) bool {
						return !calls.Called(v, s) && calls.HasCoverage(v, s)
					}))
				}
			})
		}

		unknowns := "coverage (unknowns; data not shown)."
		switch {
		case !phylogeny.HasArtifacts():
			b.within("p", "", func(b block) {
				b.linef("%s identified no well-powered artifacts (out of %d investigated variants; %s).",
					tool, investigated, fraction)
				b.linef("There were %d putative false-negatives due to insufficient %s",
					phylogeny.UnknownCount(), unknowns)
			})
		case fig.IsSet():
			title := "Mutation patterns of putative artifacts in patient " + html.EscapeString(r.subject) + "."
			b.figure(fig, plotWidth, plotWidth, "Mutation patterns of putative artifacts", title, func(b block) {
				b.linef("%s identified %d putative artifacts (out of %d investigated variants; %s).",
					tool, artifacts, investigated, fraction)
				b.linef("Additionally there were %d putative false-negatives due to insufficient %s",
					phylogeny.UnknownCount(), unknowns)
				b.line("The color of the border of each rectangle representing a variant illustrates the " +
					"original classification, the color of the left bar within each rectangle illustrates " +
					"the VAF, and the color of the right bar illustrates the coverage. If a variant was " +
					"identified as a putative artifact, a smaller rectangle with the changed classification " +
					"color is added on top of the bars.")
				b.line(borderLegend)
			})
		}
		b.sectionEnd()
	})
}

// bullet writes one list item naming a variant and the reads and coverage in
// each listed sample. Samples are ordered by name.
func (b block) bullet(cohort *model.SampleCohort, calls *model.VariantCallMatrix, v int, samples []int) {
	details := make([]string, 0, len(samples))
	for _, s := range cohort.SortByName(samples) {
		details = append(details, sampleLabel(cohort.Names[s])+" (reads: "+readsCell(calls, v, s)+")")
	}
	b.element("li", "", variantLabel(calls, v)+" in samples: "+strings.Join(details, ", "))
}

// keep returns the samples for which ok holds, in input order.
func keep(samples []int, ok func(s int) bool) []int {
	var kept []int
	for _, s := range samples {
		if ok(s) {
			kept = append(kept, s)
		}
	}
	return kept
}
