package model

// PhylogenyResult holds the outcome of the upstream tree inference that the
// report describes. Maps are keyed by variant index and hold sample indices.
type PhylogenyResult struct {
	// MinScore is the minimum reliability score for a mutation pattern to be
	// considered a potential subclone.
	MinScore float64

	// Conflicting lists variants that could not be placed on the tree.
	Conflicting []int

	// FalsePositives maps a variant to the samples where its call was judged spurious.
	FalsePositives map[int][]int

	// FalseNegatives maps a variant to the samples where it was judged lost.
	FalseNegatives map[int][]int

	// FalseNegativeUnknowns maps a variant to the samples where it was judged
	// lost but the coverage was too low to be confident.
	FalseNegativeUnknowns map[int][]int
}

// ArtifactCount returns the number of putative false-positives plus
// false-negatives summed over all variants.
func (p *PhylogenyResult) ArtifactCount() int {
	if p == nil {
		return 0
	}
	return countSamples(p.FalsePositives) + countSamples(p.FalseNegatives)
}

// UnknownCount returns the number of low-coverage false-negatives.
func (p *PhylogenyResult) UnknownCount() int {
	if p == nil {
		return 0
	}
	return countSamples(p.FalseNegativeUnknowns)
}

// HasArtifacts reports whether any variant has a putative false-positive or
// false-negative.
func (p *PhylogenyResult) HasArtifacts() bool {
	return p != nil && len(p.FalsePositives)+len(p.FalseNegatives) > 0
}

// Validate checks that every referenced variant and sample index is in range.
func (p *PhylogenyResult) Validate(variants, samples int) error {
	if p == nil {
		return nil
	}
	for _, v := range p.Conflicting {
		if v < 0 || v >= variants {
			return &ShapeError{What: "conflicting variant index", Got: v, Want: variants}
		}
	}
	for _, set := range []struct {
		what string
		m    map[int][]int
	}{
		{"false-positive", p.FalsePositives},
		{"false-negative", p.FalseNegatives},
		{"false-negative unknown", p.FalseNegativeUnknowns},
	} {
		for v, ss := range set.m {
			if v < 0 || v >= variants {
				return &ShapeError{What: set.what + " variant index", Got: v, Want: variants}
			}
			for _, s := range ss {
				if s < 0 || s >= samples {
					return &ShapeError{What: set.what + " sample index", Got: s, Want: samples}
				}
			}
		}
	}
	return nil
}

func countSamples(m map[int][]int) int {
	n := 0
	for _, samples := range m {
		n += len(samples)
	}
	return n
}
