package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/phyloreport/internal/model"
)

// document is the YAML and JSON snapshot layout.
type document struct {
	Subject    string             `yaml:"subject"`
	Samples    []documentSample   `yaml:"samples"`
	Discarded  []string           `yaml:"discarded"`
	Variants   []documentVariant  `yaml:"variants"`
	Similarity [][]float64        `yaml:"similarity"`
	Distance   [][]float64        `yaml:"distance"`
	Phylogeny  *documentPhylogeny `yaml:"phylogeny"`
	Figures    model.Figures      `yaml:"figures"`
	Settings   model.Settings     `yaml:"settings"`
}

type documentSample struct {
	Name   string   `yaml:"name"`
	Purity *float64 `yaml:"purity"`

	// Coverages and VAFs override the values derived from the variants.
	Coverages []float64 `yaml:"coverages"`
	VAFs      []float64 `yaml:"vafs"`
}

type documentVariant struct {
	Key      string `yaml:"key"`
	Gene     string `yaml:"gene"`
	Reads    []int  `yaml:"reads"`
	Coverage []int  `yaml:"coverage"`

	// LogProbs holds one [absent, present] pair per sample.
	LogProbs [][]float64 `yaml:"log_probs"`
}

type documentPhylogeny struct {
	MinScore              float64             `yaml:"min_score"`
	Conflicting           []string            `yaml:"conflicting"`
	FalsePositives        map[string][]string `yaml:"false_positives"`
	FalseNegatives        map[string][]string `yaml:"false_negatives"`
	FalseNegativeUnknowns map[string][]string `yaml:"false_negative_unknowns"`
}

// readDocument reads a YAML or JSON snapshot. JSON is read by the YAML
// decoder, which accepts it as a subset.
func readDocument(path string) (*model.Analysis, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided snapshot path is intentional
	if err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if doc.Subject == "" {
		doc.Subject = subjectFromPath(path)
	}
	return doc.analysis()
}

// analysis converts the document into model types.
func (d *document) analysis() (*model.Analysis, error) {
	cohort := &model.SampleCohort{
		Names:     make([]string, len(d.Samples)),
		Purities:  make(map[string]float64),
		Discarded: d.Discarded,
	}
	for i, s := range d.Samples {
		cohort.Names[i] = s.Name
		if s.Purity != nil {
			cohort.Purities[s.Name] = *s.Purity
		}
		if s.Coverages != nil && s.VAFs != nil {
			if cohort.Coverages == nil {
				cohort.Coverages = make(map[string][]float64)
				cohort.VAFs = make(map[string][]float64)
			}
			cohort.Coverages[s.Name] = s.Coverages
			cohort.VAFs[s.Name] = s.VAFs
		}
	}

	calls, err := d.calls()
	if err != nil {
		return nil, err
	}

	matrices, err := model.NewSimilarityMatrices(d.Similarity, d.Distance)
	if err != nil {
		return nil, err
	}

	a := &model.Analysis{
		Subject:  d.Subject,
		Cohort:   cohort,
		Calls:    calls,
		Matrices: matrices,
		Figures:  d.Figures,
		Settings: d.Settings,
	}
	if d.Phylogeny != nil {
		if a.Phylogeny, err = d.Phylogeny.result(cohort, calls); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// calls builds the variant call matrix. Variants without reads, coverage or
// log-probabilities get a nil row of that kind.
func (d *document) calls() (*model.VariantCallMatrix, error) {
	n := len(d.Variants)
	calls := &model.VariantCallMatrix{
		Keys:     make([]string, n),
		Reads:    make([][]int, n),
		Coverage: make([][]int, n),
		LogProbs: make([][]model.LogProb, n),
	}

	annotated := false
	for i, v := range d.Variants {
		calls.Keys[i] = v.Key
		calls.Reads[i] = v.Reads
		calls.Coverage[i] = v.Coverage
		annotated = annotated || v.Gene != ""

		if v.LogProbs == nil {
			continue
		}
		row := make([]model.LogProb, len(v.LogProbs))
		for s, pair := range v.LogProbs {
			if len(pair) != 2 {
				return nil, &model.ShapeError{What: "log-probability pair of " + v.Key, Got: len(pair), Want: 2}
			}
			row[s] = model.LogProb{Absent: pair[0], Present: pair[1]}
		}
		calls.LogProbs[i] = row
	}

	if annotated {
		calls.Genes = make([]string, n)
		for i, v := range d.Variants {
			calls.Genes[i] = v.Gene
		}
	}
	return calls, nil
}

// result resolves the phylogeny references.
func (p *documentPhylogeny) result(cohort *model.SampleCohort, calls *model.VariantCallMatrix) (*model.PhylogenyResult, error) {
	b := model.NewPhylogenyBuilder(cohort, calls, p.MinScore)
	for _, key := range p.Conflicting {
		if err := b.Add(model.Conflicting, key); err != nil {
			return nil, err
		}
	}
	for _, set := range []struct {
		kind model.ArtifactKind
		m    map[string][]string
	}{
		{model.FalsePositive, p.FalsePositives},
		{model.FalseNegative, p.FalseNegatives},
		{model.FalseNegativeUnknown, p.FalseNegativeUnknowns},
	} {
		for key, samples := range set.m {
			if err := b.Add(set.kind, key, samples...); err != nil {
				return nil, err
			}
		}
	}
	return b.Result(), nil
}
