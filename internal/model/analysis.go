package model

// Figure references a precomputed image. An empty Path means no image.
type Figure struct {
	// Path is the image location written verbatim into the report.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`

	// Width is the display width in pixels. Zero selects the section default.
	Width int `yaml:"width,omitempty" json:"width,omitempty"`
}

// IsSet reports whether an image path was supplied.
func (f Figure) IsSet() bool {
	return f.Path != ""
}

// WidthOr returns the figure width, or def when unset.
func (f Figure) WidthOr(def int) int {
	if f.Width > 0 {
		return f.Width
	}
	return def
}

// Figures groups the optional images embedded in a report.
type Figures struct {
	MutationTable        Figure `yaml:"mutation_table,omitempty" json:"mutation_table,omitempty"`
	ConflictGraph        Figure `yaml:"conflict_graph,omitempty" json:"conflict_graph,omitempty"`
	IncompatiblePatterns Figure `yaml:"incompatible_patterns,omitempty" json:"incompatible_patterns,omitempty"`
	Artifacts            Figure `yaml:"artifacts,omitempty" json:"artifacts,omitempty"`
}

// Analysis bundles everything rendered into one report.
type Analysis struct {
	// Subject identifies the analysed patient.
	Subject string

	Cohort   *SampleCohort
	Calls    *VariantCallMatrix
	Matrices *SimilarityMatrices

	// Phylogeny is nil when no tree was inferred.
	Phylogeny *PhylogenyResult

	Figures  Figures
	Settings Settings
}

// Validate checks that every collection agrees with the cohort size.
func (a *Analysis) Validate() error {
	n := a.Cohort.Len()
	if err := a.Calls.Validate(n); err != nil {
		return err
	}
	if a.Matrices != nil {
		if err := a.Matrices.Validate(n); err != nil {
			return err
		}
	}
	return a.Phylogeny.Validate(a.Calls.Len(), n)
}
