package model

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Summary holds the derived statistics of an analysis.
// Fractions with a zero denominator are NaN.
type Summary struct {
	Subject string

	// RetainedSamples and TotalSamples count samples after and before filtering.
	RetainedSamples int
	TotalSamples    int

	// MedianCoverage and MeanCoverage pool every recorded coverage value of
	// every variant in the retained samples.
	MedianCoverage float64
	MeanCoverage   float64

	// PassedVariants counts all variants; PresentVariants those present in
	// at least one retained sample.
	PassedVariants  int
	PresentVariants int

	// Founders counts variants present in all samples; FounderFraction is
	// relative to PresentVariants.
	Founders        int
	FounderFraction float64

	// Private counts variants present in exactly one sample.
	Private int

	// PrivateMean is the number of private variants per sample and
	// PrivateFraction that number relative to the mean number of variants per
	// sample.
	PrivateMean     float64
	PrivateFraction float64

	// HasPhylogeny is false when the fields below were not computed.
	HasPhylogeny bool

	Conflicting         int
	ConflictingFraction float64

	// Artifacts counts putative false-positives plus false-negatives;
	// ArtifactFraction is relative to samples x present variants.
	Artifacts        int
	ArtifactFraction float64

	// Unknowns counts low-coverage false-negatives.
	Unknowns int
}

// Summarize computes the statistics shown in reports.
func Summarize(a *Analysis) *Summary {
	n := a.Cohort.Len()
	present := len(a.Calls.Present())

	s := &Summary{
		Subject:         a.Subject,
		RetainedSamples: n,
		TotalSamples:    a.Cohort.Total(),
		PassedVariants:  a.Calls.Len(),
		PresentVariants: present,
		Founders:        len(a.Calls.Founders()),
		Private:         len(a.Calls.Private()),
	}
	s.MedianCoverage, s.MeanCoverage = MedianMean(PooledCoverage(a.Cohort, a.Calls))
	s.FounderFraction = Fraction(float64(s.Founders), float64(present))
	s.PrivateMean, s.PrivateFraction = PrivateRate(a.Cohort, a.Calls)

	if a.Phylogeny != nil {
		s.HasPhylogeny = true
		s.Conflicting = len(a.Phylogeny.Conflicting)
		s.ConflictingFraction = Fraction(float64(s.Conflicting), float64(present))
		s.Artifacts = a.Phylogeny.ArtifactCount()
		s.ArtifactFraction = Fraction(float64(s.Artifacts), float64(n*present))
		s.Unknowns = a.Phylogeny.UnknownCount()
	}
	return s
}

// Fraction divides num by den, yielding NaN for a zero denominator.
func Fraction(num, den float64) float64 {
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

// MedianMean returns the median and mean of values, or NaN for both when
// values is empty.
func MedianMean(values []float64) (median, mean float64) {
	median, err := stats.Median(values)
	if err != nil {
		median = math.NaN()
	}
	mean, err = stats.Mean(values)
	if err != nil {
		mean = math.NaN()
	}
	return median, mean
}

// PooledCoverage collects the recorded coverage of every variant in every
// retained sample.
func PooledCoverage(c *SampleCohort, calls *VariantCallMatrix) []float64 {
	var covs []float64
	for v := 0; v < calls.Len(); v++ {
		for s := 0; s < c.Len(); s++ {
			if _, cov, ok := calls.ReadsAt(v, s); ok && cov >= 0 {
				covs = append(covs, float64(cov))
			}
		}
	}
	return covs
}

// Shared returns the present variants that are neither founders nor private.
func (s *Summary) Shared() int {
	shared := s.PresentVariants - s.Founders - s.Private
	if shared < 0 {
		// A single sample makes every present variant both founder and private.
		return 0
	}
	return shared
}

// PrivateRate returns the mean number of private variants per sample and
// that mean divided by the mean number of present variants per sample.
func PrivateRate(c *SampleCohort, calls *VariantCallMatrix) (mean, fraction float64) {
	n := float64(c.Len())
	mean = Fraction(float64(len(calls.Private())), n)

	called := 0
	for s := 0; s < c.Len(); s++ {
		p, _ := calls.SampleCalls(s)
		called += p
	}
	perSample := Fraction(float64(called), n)
	return mean, Fraction(mean, perSample)
}
