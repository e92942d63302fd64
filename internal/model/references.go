package model

import (
	"fmt"
	"slices"
)

// ArtifactKind names one of the artifact sets of a PhylogenyResult.
type ArtifactKind string

// Artifact kinds as stored in snapshots.
const (
	Conflicting          ArtifactKind = "conflicting"
	FalsePositive        ArtifactKind = "false_positive"
	FalseNegative        ArtifactKind = "false_negative"
	FalseNegativeUnknown ArtifactKind = "false_negative_unknown"
)

// ArtifactKinds lists every kind in report order.
var ArtifactKinds = []ArtifactKind{Conflicting, FalsePositive, FalseNegative, FalseNegativeUnknown}

// Index returns the position of a variant key in the matrix.
func (m *VariantCallMatrix) Index(key string) (int, bool) {
	if m == nil {
		return 0, false
	}
	for i, k := range m.Keys {
		if k == key {
			return i, true
		}
	}
	return 0, false
}

// PhylogenyBuilder assembles a PhylogenyResult from artifacts referenced by
// variant key and sample name, the way snapshots store them.
type PhylogenyBuilder struct {
	cohort *SampleCohort
	keys   map[string]int
	// duplicates holds keys that name more than one variant.
	duplicates map[string]bool
	result     *PhylogenyResult
}

// NewPhylogenyBuilder returns a builder resolving references against cohort and calls.
func NewPhylogenyBuilder(cohort *SampleCohort, calls *VariantCallMatrix, minScore float64) *PhylogenyBuilder {
	keys := make(map[string]int, calls.Len())
	duplicates := make(map[string]bool)
	for i := 0; i < calls.Len(); i++ {
		if _, ok := keys[calls.Keys[i]]; ok {
			duplicates[calls.Keys[i]] = true
			continue
		}
		keys[calls.Keys[i]] = i
	}
	return &PhylogenyBuilder{
		cohort:     cohort,
		keys:       keys,
		duplicates: duplicates,
		result:     &PhylogenyResult{MinScore: minScore},
	}
}

// Add records an artifact of the given kind. Conflicting variants take no
// samples; every other kind appends the samples to the variant's list.
// Repeated references are recorded once. A key shared by several variants
// cannot be resolved and fails with ErrAmbiguousVariant.
func (b *PhylogenyBuilder) Add(kind ArtifactKind, key string, samples ...string) error {
	if b.duplicates[key] {
		return fmt.Errorf("%w: %q", ErrAmbiguousVariant, key)
	}
	v, ok := b.keys[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownVariant, key)
	}

	var target *map[int][]int
	switch kind {
	case Conflicting:
		if !slices.Contains(b.result.Conflicting, v) {
			b.result.Conflicting = append(b.result.Conflicting, v)
		}
		return nil
	case FalsePositive:
		target = &b.result.FalsePositives
	case FalseNegative:
		target = &b.result.FalseNegatives
	case FalseNegativeUnknown:
		target = &b.result.FalseNegativeUnknowns
	default:
		return fmt.Errorf("unknown artifact kind %q", kind)
	}

	if *target == nil {
		*target = make(map[int][]int)
	}
	for _, name := range samples {
		s, ok := b.cohort.Index(name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownSample, name)
		}
		if !slices.Contains((*target)[v], s) {
			(*target)[v] = append((*target)[v], s)
		}
	}
	return nil
}

// Result returns the assembled phylogeny.
func (b *PhylogenyBuilder) Result() *PhylogenyResult {
	return b.result
}
