package report

import (
	"html"
	"math/big"
	"strconv"

	"github.com/nao1215/phyloreport/internal/model"
)

// PatternCount returns the number of distinct mutation patterns considered
// for n samples: 2^n + 1. The result is exact for any n.
func PatternCount(n int) *big.Int {
	if n < 0 {
		n = 0
	}
	count := new(big.Int).Lsh(big.NewInt(1), uint(n))
	return count.Add(count, big.NewInt(1))
}

// AddConflictGraph writes the evolutionary conflict graph figure. The minimum
// reliability score is only reported when a phylogeny is given.
func (r *Report) AddConflictGraph(cohort *model.SampleCohort, fig model.Figure, phylogeny *model.PhylogenyResult) error {
	if err := r.ready(); err != nil {
		return err
	}
	if !fig.IsSet() {
		return ErrMissingFigure
	}
	cohort = orEmpty(cohort)

	n := cohort.Len()
	title := "Evolutionary conflict graph of " + strconv.Itoa(n) + " samples in patient " +
		html.EscapeString(r.subject) + "."

	return r.emit("conflict graph", func(b block) {
		b.element("h4", "", "Evolutionary conflict graph")
		b.figure(fig, plotWidth, conflictGraphWidth, "Evolutionary conflict graph", title, func(b block) {
			b.linef("%s considered %s distinct mutation patterns (MPs).", html.EscapeString(r.opts.toolName),
				PatternCount(n).String())
			b.linef("Each circular line represents a distinct sample. Inner to outer lines denote: %s. "+
				"Marks on these lines denote present variants.", sampleList(cohort))

			legend := "Labels denote the MP reliability scores. " +
				"Only nodes with the highest reliability score are depicted. " +
				"Blue colored nodes (MPs) are evolutionarily compatible and red colored nodes are " +
				"evolutionarily incompatible indicated by edges among the nodes."
			if phylogeny != nil {
				legend += " Minimum reliability score value to be considered as a potential subclone: " +
					fixed(phylogeny.MinScore, 3) + "."
			}
			b.line(legend)
		})
		b.sectionEnd()
	})
}
