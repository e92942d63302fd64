package loader

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/phyloreport/internal/model"
)

// Workbook sheet names.
const (
	SheetInfo           = "Info"
	SheetSamples        = "Samples"
	SheetVariants       = "Variants"
	SheetReads          = "Reads"
	SheetCoverage       = "Coverage"
	SheetLogProbAbsent  = "LogProbAbsent"
	SheetLogProbPresent = "LogProbPresent"
	SheetSimilarity     = "Similarity"
	SheetDistance       = "Distance"
	SheetArtifacts      = "Artifacts"
)

// Info sheet fields besides the settings, which use their YAML names.
const (
	fieldSubject  = "subject"
	fieldMinScore = "min_score"
	figurePrefix  = "figure."
	widthSuffix   = ".width"
)

// readWorkbook reads an Excel snapshot.
//
// Every table sheet has a header row. Variant-by-sample sheets are keyed by
// variant key in the first column and by sample name in the header, so rows
// and columns may come in any order; a missing row means no data of that
// kind for the variant. The Artifacts sheet lists Kind, Variant and Sample
// per row, and its presence (or a min_score in Info) marks a phylogeny.
func readWorkbook(path string) (*model.Analysis, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	wb := workbook{f: f}
	info, err := wb.info()
	if err != nil {
		return nil, err
	}

	a := &model.Analysis{Subject: info[fieldSubject]}
	if a.Subject == "" {
		a.Subject = subjectFromPath(path)
	}
	if err := applyInfo(info, &a.Settings, &a.Figures); err != nil {
		return nil, err
	}

	if a.Cohort, err = wb.samples(); err != nil {
		return nil, err
	}
	if a.Calls, err = wb.variants(a.Cohort); err != nil {
		return nil, err
	}
	if a.Matrices, err = wb.matrices(a.Cohort); err != nil {
		return nil, err
	}

	minScore, hasScore := info[fieldMinScore]
	if wb.has(SheetArtifacts) || hasScore {
		var score float64
		if hasScore {
			if score, err = parseFloat(minScore); err != nil {
				return nil, fmt.Errorf("%s %s: %w", SheetInfo, fieldMinScore, err)
			}
		}
		if a.Phylogeny, err = wb.phylogeny(a.Cohort, a.Calls, score); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// workbook wraps an open Excel file.
type workbook struct {
	f *excelize.File
}

// has reports whether the workbook contains a sheet.
func (wb workbook) has(sheet string) bool {
	idx, err := wb.f.GetSheetIndex(sheet)
	return err == nil && idx >= 0
}

// table returns the header and data rows of a sheet. Cells are trimmed.
func (wb workbook) table(sheet string) (header []string, rows [][]string, err error) {
	all, err := wb.f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("sheet %s has no header row", sheet)
	}
	for _, row := range all {
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
	}
	return all[0], all[1:], nil
}

// info reads the optional Field/Value sheet.
func (wb workbook) info() (map[string]string, error) {
	info := make(map[string]string)
	if !wb.has(SheetInfo) {
		return info, nil
	}
	_, rows, err := wb.table(SheetInfo)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if len(row) >= 2 && row[0] != "" {
			info[strings.ToLower(row[0])] = row[1]
		}
	}
	return info, nil
}

// samples reads the Name/Purity/Discarded sheet in cohort order.
func (wb workbook) samples() (*model.SampleCohort, error) {
	_, rows, err := wb.table(SheetSamples)
	if err != nil {
		return nil, err
	}

	cohort := &model.SampleCohort{Purities: make(map[string]float64)}
	for _, row := range rows {
		name := cell(row, 0)
		if name == "" {
			continue
		}
		if discarded, _ := strconv.ParseBool(cell(row, 2)); discarded {
			cohort.Discarded = append(cohort.Discarded, name)
			continue
		}
		cohort.Names = append(cohort.Names, name)
		if purity := cell(row, 1); purity != "" {
			p, err := parseFloat(purity)
			if err != nil {
				return nil, fmt.Errorf("%s purity of %s: %w", SheetSamples, name, err)
			}
			cohort.Purities[name] = p
		}
	}
	return cohort, nil
}

// variants reads the Key/Gene sheet and the per-sample grids.
func (wb workbook) variants(cohort *model.SampleCohort) (*model.VariantCallMatrix, error) {
	_, rows, err := wb.table(SheetVariants)
	if err != nil {
		return nil, err
	}

	calls := &model.VariantCallMatrix{}
	var genes []string
	annotated := false
	for _, row := range rows {
		key := cell(row, 0)
		if key == "" {
			continue
		}
		gene := cell(row, 1)
		calls.Keys = append(calls.Keys, key)
		genes = append(genes, gene)
		annotated = annotated || gene != ""
	}
	if annotated {
		calls.Genes = genes
	}

	variantIndex := keyIndex(calls.Keys, model.ErrUnknownVariant)
	n := cohort.Len()
	if calls.Reads, err = readGrid(wb, SheetReads, variantIndex, cohort, calls.Len(), 0, strconv.Atoi); err != nil {
		return nil, err
	}
	if calls.Coverage, err = readGrid(wb, SheetCoverage, variantIndex, cohort, calls.Len(), -1, strconv.Atoi); err != nil {
		return nil, err
	}
	absent, err := readGrid(wb, SheetLogProbAbsent, variantIndex, cohort, calls.Len(), math.NaN(), parseFloat)
	if err != nil {
		return nil, err
	}
	present, err := readGrid(wb, SheetLogProbPresent, variantIndex, cohort, calls.Len(), math.NaN(), parseFloat)
	if err != nil {
		return nil, err
	}

	calls.LogProbs = make([][]model.LogProb, calls.Len())
	for v := range calls.LogProbs {
		if absent[v] == nil || present[v] == nil {
			continue
		}
		row := make([]model.LogProb, n)
		for s := range row {
			row[s] = model.LogProb{Absent: absent[v][s], Present: present[v][s]}
		}
		calls.LogProbs[v] = row
	}
	return calls, nil
}

// matrices reads the sample-by-sample sheets. A missing row is read as NaN.
func (wb workbook) matrices(cohort *model.SampleCohort) (*model.SimilarityMatrices, error) {
	sampleIndex := keyIndex(cohort.Names, model.ErrUnknownSample)
	n := cohort.Len()

	grids := make([][][]float64, 2)
	for i, sheet := range []string{SheetSimilarity, SheetDistance} {
		grid, err := readGrid(wb, sheet, sampleIndex, cohort, n, math.NaN(), parseFloat)
		if err != nil {
			return nil, err
		}
		if !wb.has(sheet) {
			continue
		}
		for r := range grid {
			if grid[r] == nil {
				grid[r] = filled(n, math.NaN())
			}
		}
		grids[i] = grid
	}
	return model.NewSimilarityMatrices(grids[0], grids[1])
}

// phylogeny reads the Kind/Variant/Sample sheet.
func (wb workbook) phylogeny(cohort *model.SampleCohort, calls *model.VariantCallMatrix, minScore float64) (*model.PhylogenyResult, error) {
	b := model.NewPhylogenyBuilder(cohort, calls, minScore)
	if !wb.has(SheetArtifacts) {
		return b.Result(), nil
	}

	_, rows, err := wb.table(SheetArtifacts)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		kind, key := cell(row, 0), cell(row, 1)
		if kind == "" && key == "" {
			continue
		}
		var samples []string
		if sample := cell(row, 2); sample != "" {
			samples = append(samples, sample)
		}
		if err := b.Add(model.ArtifactKind(strings.ToLower(kind)), key, samples...); err != nil {
			return nil, err
		}
	}
	return b.Result(), nil
}

// readGrid reads a sheet keyed by row label in the first column and by
// sample name in the header. Rows absent from the sheet stay nil, and empty
// cells of present rows hold fill. A missing sheet yields all nil rows.
func readGrid[T any](wb workbook, sheet string, rowIndex func(string) (int, error),
	cohort *model.SampleCohort, rows int, fill T, parse func(string) (T, error)) ([][]T, error) {
	grid := make([][]T, rows)
	if !wb.has(sheet) {
		return grid, nil
	}

	header, data, err := wb.table(sheet)
	if err != nil {
		return nil, err
	}
	columns := make([]int, len(header))
	for c := 1; c < len(header); c++ {
		s, ok := cohort.Index(header[c])
		if !ok {
			return nil, fmt.Errorf("sheet %s: %w: %q", sheet, model.ErrUnknownSample, header[c])
		}
		columns[c] = s
	}

	n := cohort.Len()
	for _, row := range data {
		label := cell(row, 0)
		if label == "" {
			continue
		}
		r, err := rowIndex(label)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", sheet, err)
		}

		values := make([]T, n)
		for s := range values {
			values[s] = fill
		}
		for c := 1; c < len(header) && c < len(row); c++ {
			if row[c] == "" {
				continue
			}
			if values[columns[c]], err = parse(row[c]); err != nil {
				return nil, fmt.Errorf("sheet %s row %s column %s: %w", sheet, label, header[c], err)
			}
		}
		grid[r] = values
	}
	return grid, nil
}

// applyInfo copies settings and figures from the Info sheet.
func applyInfo(info map[string]string, settings *model.Settings, figures *model.Figures) error {
	fields := settingFields(settings)
	figs := map[string]*model.Figure{
		"mutation_table":        &figures.MutationTable,
		"conflict_graph":        &figures.ConflictGraph,
		"incompatible_patterns": &figures.IncompatiblePatterns,
		"artifacts":             &figures.Artifacts,
	}

	for field, value := range info {
		if dst, ok := fields[field]; ok {
			v, err := parseFloat(value)
			if err != nil {
				return fmt.Errorf("%s %s: %w", SheetInfo, field, err)
			}
			*dst = v
			continue
		}

		name, isFigure := strings.CutPrefix(field, figurePrefix)
		if !isFigure {
			continue
		}
		if base, isWidth := strings.CutSuffix(name, widthSuffix); isWidth {
			fig, ok := figs[base]
			if !ok {
				continue
			}
			w, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%s %s: %w", SheetInfo, field, err)
			}
			fig.Width = w
			continue
		}
		if fig, ok := figs[name]; ok {
			fig.Path = value
		}
	}
	return nil
}

// settingFields maps the settings' YAML names to their fields.
func settingFields(s *model.Settings) map[string]*float64 {
	return map[string]*float64{
		"e":                   &s.ErrorRate,
		"c0":                  &s.AbsentPrior,
		"max_absent_vaf":      &s.MaxAbsentVAF,
		"loh_frequency":       &s.LOHFrequency,
		"fpr":                 &s.FalsePositiveRate,
		"fdr":                 &s.FalseDiscoveryRate,
		"min_absent_coverage": &s.MinAbsentCoverage,
		"min_median_coverage": &s.MinMedianCoverage,
		"min_median_vaf":      &s.MinMedianVAF,
		"min_vaf":             &s.MinVAF,
		"min_var_reads":       &s.MinVarReads,
	}
}

// keyIndex returns a lookup of labels to positions failing with notFound.
func keyIndex(labels []string, notFound error) func(string) (int, error) {
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	return func(label string) (int, error) {
		i, ok := index[label]
		if !ok {
			return 0, fmt.Errorf("%w: %q", notFound, label)
		}
		return i, nil
	}
}

// cell returns row[i], or empty string past the end of the row.
func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// filled returns n copies of value.
func filled(n int, value float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

// parseFloat parses a decimal cell value. "NaN" is accepted.
func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
