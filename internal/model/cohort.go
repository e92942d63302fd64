package model

import (
	"sort"
)

// SampleCohort describes the samples of one subject that passed filtering.
type SampleCohort struct {
	// Names lists the retained sample identifiers in their fixed order.
	Names []string

	// Coverages holds the per-sample coverage values across variants.
	Coverages map[string][]float64

	// VAFs holds the per-sample variant allele fractions across variants.
	VAFs map[string][]float64

	// Purities holds estimated purities. Samples without an estimate are absent.
	Purities map[string]float64

	// Discarded lists samples removed by the sample filters.
	Discarded []string
}

// Len returns the number of retained samples.
func (c *SampleCohort) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Names)
}

// Total returns the number of samples before filtering.
func (c *SampleCohort) Total() int {
	if c == nil {
		return 0
	}
	return len(c.Names) + len(c.Discarded)
}

// Purity returns the estimated purity of a sample, if any.
func (c *SampleCohort) Purity(name string) (float64, bool) {
	if c == nil || c.Purities == nil {
		return 0, false
	}
	p, ok := c.Purities[name]
	return p, ok
}

// Index returns the position of a sample in the cohort order.
func (c *SampleCohort) Index(name string) (int, bool) {
	if c == nil {
		return 0, false
	}
	for i, n := range c.Names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// SortByName sorts sample indices by sample name, leaving the input untouched.
func (c *SampleCohort) SortByName(indices []int) []int {
	sorted := make([]int, len(indices))
	copy(sorted, indices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return c.Names[sorted[i]] < c.Names[sorted[j]]
	})
	return sorted
}

// DeriveSampleData fills Coverages and VAFs from a call matrix for samples
// that have no values yet. Only recorded coverage (>= 0) is used, and the VAF
// is only defined where the coverage is positive.
func (c *SampleCohort) DeriveSampleData(calls *VariantCallMatrix) {
	if c.Coverages == nil {
		c.Coverages = make(map[string][]float64, len(c.Names))
	}
	if c.VAFs == nil {
		c.VAFs = make(map[string][]float64, len(c.Names))
	}

	for s, name := range c.Names {
		_, hasCov := c.Coverages[name]
		_, hasVAF := c.VAFs[name]
		if hasCov && hasVAF {
			continue
		}

		var covs, vafs []float64
		for v := 0; v < calls.Len(); v++ {
			reads, cov, ok := calls.ReadsAt(v, s)
			if !ok || cov < 0 {
				continue
			}
			covs = append(covs, float64(cov))
			if cov > 0 {
				vafs = append(vafs, float64(reads)/float64(cov))
			}
		}
		if !hasCov {
			c.Coverages[name] = covs
		}
		if !hasVAF {
			c.VAFs[name] = vafs
		}
	}
}
