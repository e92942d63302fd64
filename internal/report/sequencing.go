package report

import (
	"html"
	"strconv"

	"github.com/nao1215/phyloreport/internal/model"
)

// AddSequencingInfo writes the input data section: one row of coverage, VAF,
// purity and call counts per sample, a cohort summary, and the mutation table
// figure when fig is set.
func (r *Report) AddSequencingInfo(cohort *model.SampleCohort, calls *model.VariantCallMatrix, fig model.Figure) error {
	if err := r.ready(); err != nil {
		return err
	}
	cohort = orEmpty(cohort)
	if err := calls.Validate(cohort.Len()); err != nil {
		return err
	}

	return r.emit("sequencing", func(b block) {
		b.element("h4", "", "Input data")
		b.within("table", tableAttrs, func(b block) {
			b.headerRow([]string{"Sample", "Median coverage (mean)", "Median VAF (mean)", "Purity",
				"Variants present", "absent"})
			for s, name := range cohort.Names {
				covMedian, covMean := model.MedianMean(cohort.Coverages[name])
				vafMedian, vafMean := model.MedianMean(cohort.VAFs[name])
				present, absent := calls.SampleCalls(s)
				b.dataRow([]string{
					sampleLabel(name),
					withMean(covMedian, covMean, oneDecimal),
					withMean(vafMedian, vafMean, percent),
					purity(cohort.Purity(name)),
					strconv.Itoa(present),
					strconv.Itoa(absent),
				})
			}
		})

		median, mean := model.MedianMean(model.PooledCoverage(cohort, calls))
		b.within("p", "", func(b block) {
			b.linef("Samples that passed the filtering: %d/%d<br>", cohort.Len(), cohort.Total())
			b.linef("Median coverage in the passed samples: %s (mean: %s)", oneDecimal(median), fixed(mean, 2))
		})

		present := len(calls.Present())
		founders := len(calls.Founders())
		privateMean, privateFraction := model.PrivateRate(cohort, calls)
		b.within("p", "", func(b block) {
			b.linef("Total number of passed somatic variants: %d<br>", calls.Len())
			b.linef("Variants classified as present in at least one of the samples that passed the filtering: %d<br>",
				present)
			b.linef("Founders (variants present in all samples): %d (%s)<br>",
				founders, percent(model.Fraction(float64(founders), float64(present))))
			b.linef("Mean number of unique (private) variants per sample: %s (%s)<br>",
				oneDecimal(privateMean), percent(privateFraction))
		})

		if fig.IsSet() {
			title := "Probabilistic variant classification across " + strconv.Itoa(cohort.Len()) +
				" samples of patient " + html.EscapeString(r.subject) + "."
			b.figure(fig, frameWidth, mutationTableWidth, "Variant classification table", title, func(b block) {
				b.line("Blue rectangles correspond to present variants, red to absent variants, " +
					"and white to unknown mutation status. Brighter colors denote higher probability.")
			})
		}
		b.sectionEnd()
	})
}

func oneDecimal(v float64) string {
	return fixed(v, 1)
}
