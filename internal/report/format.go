package report

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/nao1215/phyloreport/internal/model"
)

// Placeholders for values that cannot be shown.
const (
	// notANumber is shown for fractions with a zero denominator.
	notANumber = "NaN"

	// notAvailable is shown for reads or coverage that were never recorded.
	notAvailable = "n/a"

	// unknownPurity is shown for samples without a purity estimate.
	unknownPurity = "-"
)

// percent formats a fraction with one decimal, e.g. 0.25 -> "25.0%".
func percent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notANumber
	}
	return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
}

// fixed formats v with prec decimals.
func fixed(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notANumber
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// number formats v with the fewest digits that represent it exactly,
// e.g. 3 -> "3" and 0.005 -> "0.005".
func number(v float64) string {
	if math.IsNaN(v) {
		return notANumber
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// withMean formats "median (mean)".
func withMean(median, mean float64, format func(float64) string) string {
	return format(median) + " (" + format(mean) + ")"
}

// purity formats an optional purity estimate.
func purity(p float64, ok bool) string {
	if !ok {
		return unknownPurity
	}
	return percent(p)
}

// readsCell formats "reads/coverage" of a variant in a sample.
func readsCell(calls *model.VariantCallMatrix, v, s int) string {
	reads, cov, ok := calls.ReadsAt(v, s)
	if !ok {
		return notAvailable
	}
	return fmt.Sprintf("%d/%d", reads, cov)
}

// sampleLabel returns the display name of a sample.
func sampleLabel(name string) string {
	return html.EscapeString(strings.ReplaceAll(name, "_", " "))
}

// sampleList joins the display names of every cohort sample.
func sampleList(cohort *model.SampleCohort) string {
	labels := make([]string, cohort.Len())
	for i, name := range cohort.Names {
		labels[i] = sampleLabel(name)
	}
	return strings.Join(labels, ", ")
}

// attr formats one escaped attribute.
func attr(name, value string) string {
	return name + `="` + html.EscapeString(value) + `"`
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

// orEmpty returns an empty cohort for nil.
func orEmpty(c *model.SampleCohort) *model.SampleCohort {
	if c == nil {
		return &model.SampleCohort{}
	}
	return c
}
