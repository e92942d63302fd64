package model

// Settings holds the inference and filter parameters reported at the end of
// a report. A value <= 0 (or NaN) means "not set" and is left out of the text.
type Settings struct {
	// ErrorRate is the sequencing error rate e of the Bayesian inference model.
	ErrorRate float64 `yaml:"e,omitempty" json:"e,omitempty"`

	// AbsentPrior is the prior absent probability c0.
	AbsentPrior float64 `yaml:"c0,omitempty" json:"c0,omitempty"`

	// MaxAbsentVAF is the maximal absent VAF before considering estimated purity.
	MaxAbsentVAF float64 `yaml:"max_absent_vaf,omitempty" json:"max_absent_vaf,omitempty"`

	// LOHFrequency is the probability that a variant is lost along a lineage
	// due to loss of heterozygosity.
	LOHFrequency float64 `yaml:"loh_frequency,omitempty" json:"loh_frequency,omitempty"`

	// FalsePositiveRate is the false-positive rate.
	FalsePositiveRate float64 `yaml:"fpr,omitempty" json:"fpr,omitempty"`

	// FalseDiscoveryRate is the false-discovery rate.
	FalseDiscoveryRate float64 `yaml:"fdr,omitempty" json:"fdr,omitempty"`

	// MinAbsentCoverage is the minimum coverage for a variant to be called absent.
	MinAbsentCoverage float64 `yaml:"min_absent_coverage,omitempty" json:"min_absent_coverage,omitempty"`

	// MinMedianCoverage is the minimum median coverage of a sample to pass filtering.
	MinMedianCoverage float64 `yaml:"min_median_coverage,omitempty" json:"min_median_coverage,omitempty"`

	// MinMedianVAF is the minimum median VAF of a sample to pass filtering.
	MinMedianVAF float64 `yaml:"min_median_vaf,omitempty" json:"min_median_vaf,omitempty"`

	// MinVAF is the minimum VAF a variant needs in at least one sample.
	MinVAF float64 `yaml:"min_vaf,omitempty" json:"min_vaf,omitempty"`

	// MinVarReads is the minimum number of variant reads a variant needs in at
	// least one sample.
	MinVarReads float64 `yaml:"min_var_reads,omitempty" json:"min_var_reads,omitempty"`
}

// Merge returns s with every set field of override applied on top.
func (s Settings) Merge(override Settings) Settings {
	result := s
	pick := func(dst *float64, v float64) {
		if IsSet(v) {
			*dst = v
		}
	}
	pick(&result.ErrorRate, override.ErrorRate)
	pick(&result.AbsentPrior, override.AbsentPrior)
	pick(&result.MaxAbsentVAF, override.MaxAbsentVAF)
	pick(&result.LOHFrequency, override.LOHFrequency)
	pick(&result.FalsePositiveRate, override.FalsePositiveRate)
	pick(&result.FalseDiscoveryRate, override.FalseDiscoveryRate)
	pick(&result.MinAbsentCoverage, override.MinAbsentCoverage)
	pick(&result.MinMedianCoverage, override.MinMedianCoverage)
	pick(&result.MinMedianVAF, override.MinMedianVAF)
	pick(&result.MinVAF, override.MinVAF)
	pick(&result.MinVarReads, override.MinVarReads)
	return result
}

// IsSet reports whether a setting value should be shown. NaN compares false.
func IsSet(v float64) bool {
	return v > 0
}
