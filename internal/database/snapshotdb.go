package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/phyloreport/internal/model"
)

// ErrSubjectNotFound is returned when a snapshot database holds no analysis
// for the requested subject.
var ErrSubjectNotFound = errors.New("subject not found in snapshot database")

// Matrix kinds stored in the pairwise table.
const (
	kindSimilarity = "similarity"
	kindDistance   = "distance"
)

// Schema is the layout of an analysis snapshot database. Upstream inference
// pipelines write it; phyloreport reads it. Samples and variants keep their
// cohort order through the position columns, and artifacts reference
// variants by key and samples by name.
const Schema = `
-- One row per analysed subject
CREATE TABLE IF NOT EXISTS analyses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	subject TEXT NOT NULL UNIQUE,
	has_phylogeny INTEGER NOT NULL DEFAULT 0,
	min_score REAL,
	settings_json TEXT,
	figures_json TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Retained samples (discarded = 0) in cohort order, plus discarded samples
CREATE TABLE IF NOT EXISTS samples (
	analysis_id INTEGER NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	purity REAL,
	discarded INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (analysis_id, discarded, position)
);

-- Passed variants in matrix order
CREATE TABLE IF NOT EXISTS variants (
	analysis_id INTEGER NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	key TEXT NOT NULL,
	gene TEXT,
	PRIMARY KEY (analysis_id, position)
);

-- Per variant and sample observations; NULL means no data of that kind
CREATE TABLE IF NOT EXISTS calls (
	analysis_id INTEGER NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
	variant_position INTEGER NOT NULL,
	sample_position INTEGER NOT NULL,
	reads INTEGER,
	coverage INTEGER,
	log_p_absent REAL,
	log_p_present REAL,
	PRIMARY KEY (analysis_id, variant_position, sample_position)
);

-- Pairwise sample comparisons
CREATE TABLE IF NOT EXISTS pairwise (
	analysis_id INTEGER NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
	kind TEXT NOT NULL,
	row_position INTEGER NOT NULL,
	col_position INTEGER NOT NULL,
	value REAL,
	PRIMARY KEY (analysis_id, kind, row_position, col_position)
);

-- Putative artifacts; sample_name is NULL for conflicting variants
CREATE TABLE IF NOT EXISTS artifacts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	analysis_id INTEGER NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
	kind TEXT NOT NULL,
	variant_key TEXT NOT NULL,
	sample_name TEXT
);

CREATE INDEX IF NOT EXISTS idx_artifacts_analysis ON artifacts(analysis_id);
`

// SnapshotDB provides SQLite-based access to analysis snapshots.
//
// Design decision: A snapshot database may hold several subjects so that an
// upstream run over a whole study produces a single file. Reports are still
// rendered one subject at a time.
type SnapshotDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures SnapshotDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file and schema if they don't exist.
	CreateIfNotExists bool

	// ReadOnly opens the database without write access. The schema is not
	// created. Rendering only ever needs read access.
	ReadOnly bool

	// EnableWAL enables Write-Ahead Logging. Ignored for read-only databases.
	// Snapshot files are copied between machines, so the default keeps a
	// rollback journal and the database stays a single file.
	EnableWAL bool
}

// DefaultOptions returns options for creating and writing a database.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
	}
}

// ReadOnlyOptions returns options for reading an existing database.
func ReadOnlyOptions() Options {
	return Options{ReadOnly: true}
}

// Open opens or creates a SnapshotDB at the specified path.
func Open(dbPath string, opts Options) (*SnapshotDB, error) {
	if opts.CreateIfNotExists && !opts.ReadOnly {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	} else {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	}

	// modernc.org/sqlite takes the open mode as a URI parameter:
	// ro for reading, rw to require an existing file, rwc to allow creation.
	mode := "rw"
	switch {
	case opts.ReadOnly:
		mode = "ro"
	case opts.CreateIfNotExists:
		mode = "rwc"
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode="+mode+"&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &SnapshotDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.ReadOnly {
		return sdb, nil
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if _, err := db.ExecContext(context.Background(), Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (sdb *SnapshotDB) Close() error {
	return sdb.db.Close()
}

// Path returns the database file path.
func (sdb *SnapshotDB) Path() string {
	return sdb.dbPath
}

// Subjects returns the subjects stored in the database, in insertion order.
func (sdb *SnapshotDB) Subjects(ctx context.Context) ([]string, error) {
	rows, err := sdb.db.QueryContext(ctx, `SELECT subject FROM analyses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query subjects: %w", err)
	}
	defer rows.Close()

	var subjects []string
	for rows.Next() {
		var subject string
		if err := rows.Scan(&subject); err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		subjects = append(subjects, subject)
	}
	return subjects, rows.Err()
}

// LoadAnalysis reads the analysis of one subject.
// Per-sample coverage and VAF sequences are derived from the calls.
// Artifacts referencing unknown variants or samples fail with
// model.ErrUnknownVariant or model.ErrUnknownSample.
func (sdb *SnapshotDB) LoadAnalysis(ctx context.Context, subject string) (*model.Analysis, error) {
	var (
		id           int64
		hasPhylogeny bool
		minScore     sql.NullFloat64
		settingsJSON sql.NullString
		figuresJSON  sql.NullString
	)
	err := sdb.db.QueryRowContext(ctx, `
	SELECT id, has_phylogeny, min_score, settings_json, figures_json
	FROM analyses
	WHERE subject = ?
	`, subject).Scan(&id, &hasPhylogeny, &minScore, &settingsJSON, &figuresJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrSubjectNotFound, subject)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	a := &model.Analysis{Subject: subject}
	if settingsJSON.Valid && settingsJSON.String != "" {
		if err := json.Unmarshal([]byte(settingsJSON.String), &a.Settings); err != nil {
			return nil, fmt.Errorf("failed to parse settings: %w", err)
		}
	}
	if figuresJSON.Valid && figuresJSON.String != "" {
		if err := json.Unmarshal([]byte(figuresJSON.String), &a.Figures); err != nil {
			return nil, fmt.Errorf("failed to parse figures: %w", err)
		}
	}

	if a.Cohort, err = sdb.loadSamples(ctx, id); err != nil {
		return nil, err
	}
	if a.Calls, err = sdb.loadVariants(ctx, id, a.Cohort.Len()); err != nil {
		return nil, err
	}
	if a.Matrices, err = sdb.loadPairwise(ctx, id, a.Cohort.Len()); err != nil {
		return nil, err
	}
	if hasPhylogeny {
		if a.Phylogeny, err = sdb.loadArtifacts(ctx, id, a.Cohort, a.Calls, minScore.Float64); err != nil {
			return nil, err
		}
	}

	a.Cohort.DeriveSampleData(a.Calls)
	return a, nil
}

// loadSamples reads the retained and discarded samples.
func (sdb *SnapshotDB) loadSamples(ctx context.Context, id int64) (*model.SampleCohort, error) {
	rows, err := sdb.db.QueryContext(ctx, `
	SELECT name, purity, discarded
	FROM samples
	WHERE analysis_id = ?
	ORDER BY discarded, position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	cohort := &model.SampleCohort{Purities: make(map[string]float64)}
	for rows.Next() {
		var (
			name      string
			purity    sql.NullFloat64
			discarded bool
		)
		if err := rows.Scan(&name, &purity, &discarded); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		if discarded {
			cohort.Discarded = append(cohort.Discarded, name)
			continue
		}
		cohort.Names = append(cohort.Names, name)
		if purity.Valid {
			cohort.Purities[name] = purity.Float64
		}
	}
	return cohort, rows.Err()
}

// loadVariants reads the variants and their per-sample calls.
func (sdb *SnapshotDB) loadVariants(ctx context.Context, id int64, samples int) (*model.VariantCallMatrix, error) {
	rows, err := sdb.db.QueryContext(ctx, `
	SELECT key, gene
	FROM variants
	WHERE analysis_id = ?
	ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	calls := &model.VariantCallMatrix{}
	var genes []sql.NullString
	annotated := false
	for rows.Next() {
		var (
			key  string
			gene sql.NullString
		)
		if err := rows.Scan(&key, &gene); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		calls.Keys = append(calls.Keys, key)
		genes = append(genes, gene)
		annotated = annotated || gene.Valid
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if annotated {
		calls.Genes = make([]string, len(genes))
		for i, g := range genes {
			calls.Genes[i] = g.String
		}
	}

	n := len(calls.Keys)
	calls.Reads = make([][]int, n)
	calls.Coverage = make([][]int, n)
	calls.LogProbs = make([][]model.LogProb, n)
	if err := sdb.loadCalls(ctx, id, samples, calls); err != nil {
		return nil, err
	}
	return calls, nil
}

// loadCalls fills the reads, coverage and log-probability rows. A row is
// only allocated when at least one cell of that kind is recorded.
func (sdb *SnapshotDB) loadCalls(ctx context.Context, id int64, samples int, calls *model.VariantCallMatrix) error {
	rows, err := sdb.db.QueryContext(ctx, `
	SELECT variant_position, sample_position, reads, coverage, log_p_absent, log_p_present
	FROM calls
	WHERE analysis_id = ?
	ORDER BY variant_position, sample_position
	`, id)
	if err != nil {
		return fmt.Errorf("failed to query calls: %w", err)
	}
	defer rows.Close()

	n := calls.Len()
	for rows.Next() {
		var (
			v, s            int
			reads, coverage sql.NullInt64
			absent, present sql.NullFloat64
		)
		if err := rows.Scan(&v, &s, &reads, &coverage, &absent, &present); err != nil {
			return fmt.Errorf("failed to scan call: %w", err)
		}
		if v < 0 || v >= n {
			return &model.ShapeError{What: "call variant position", Got: v, Want: n}
		}
		if s < 0 || s >= samples {
			return &model.ShapeError{What: "call sample position", Got: s, Want: samples}
		}

		if reads.Valid {
			if calls.Reads[v] == nil {
				calls.Reads[v] = make([]int, samples)
			}
			calls.Reads[v][s] = int(reads.Int64)
		}
		if coverage.Valid {
			if calls.Coverage[v] == nil {
				calls.Coverage[v] = filledInts(samples, -1)
			}
			calls.Coverage[v][s] = int(coverage.Int64)
		}
		if absent.Valid && present.Valid {
			if calls.LogProbs[v] == nil {
				calls.LogProbs[v] = filledLogProbs(samples)
			}
			calls.LogProbs[v][s] = model.LogProb{Absent: absent.Float64, Present: present.Float64}
		}
	}
	return rows.Err()
}

// loadPairwise reads the similarity and distance matrices. A kind without
// any stored cell yields an empty matrix; missing cells of a stored kind are NaN.
func (sdb *SnapshotDB) loadPairwise(ctx context.Context, id int64, samples int) (*model.SimilarityMatrices, error) {
	rows, err := sdb.db.QueryContext(ctx, `
	SELECT kind, row_position, col_position, value
	FROM pairwise
	WHERE analysis_id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query pairwise values: %w", err)
	}
	defer rows.Close()

	grids := map[string][][]float64{}
	for rows.Next() {
		var (
			kind     string
			row, col int
			value    sql.NullFloat64
		)
		if err := rows.Scan(&kind, &row, &col, &value); err != nil {
			return nil, fmt.Errorf("failed to scan pairwise value: %w", err)
		}
		if kind != kindSimilarity && kind != kindDistance {
			return nil, fmt.Errorf("unknown pairwise kind %q", kind)
		}
		if row < 0 || row >= samples || col < 0 || col >= samples {
			return nil, &model.ShapeError{What: kind + " matrix position", Got: max(row, col), Want: samples}
		}

		grid, ok := grids[kind]
		if !ok {
			grid = nanGrid(samples)
			grids[kind] = grid
		}
		if value.Valid {
			grid[row][col] = value.Float64
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return model.NewSimilarityMatrices(grids[kindSimilarity], grids[kindDistance])
}

// loadArtifacts reads the artifacts of an analysis with a phylogeny.
func (sdb *SnapshotDB) loadArtifacts(ctx context.Context, id int64, cohort *model.SampleCohort,
	calls *model.VariantCallMatrix, minScore float64) (*model.PhylogenyResult, error) {
	rows, err := sdb.db.QueryContext(ctx, `
	SELECT kind, variant_key, sample_name
	FROM artifacts
	WHERE analysis_id = ?
	ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifacts: %w", err)
	}
	defer rows.Close()

	b := model.NewPhylogenyBuilder(cohort, calls, minScore)
	for rows.Next() {
		var (
			kind   string
			key    string
			sample sql.NullString
		)
		if err := rows.Scan(&kind, &key, &sample); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		var samples []string
		if sample.Valid {
			samples = append(samples, sample.String)
		}
		if err := b.Add(model.ArtifactKind(kind), key, samples...); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return b.Result(), nil
}

// SaveAnalysis stores an analysis, replacing any earlier analysis of the same
// subject. Derived per-sample coverage and VAF sequences are not stored.
func (sdb *SnapshotDB) SaveAnalysis(ctx context.Context, a *model.Analysis) (err error) {
	if err := a.Validate(); err != nil {
		return err
	}

	settingsJSON, err := json.Marshal(a.Settings)
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}
	figuresJSON, err := json.Marshal(a.Figures)
	if err != nil {
		return fmt.Errorf("failed to serialize figures: %w", err)
	}

	tx, err := sdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM analyses WHERE subject = ?`, a.Subject); err != nil {
		return fmt.Errorf("failed to replace analysis: %w", err)
	}

	var minScore any
	if a.Phylogeny != nil {
		minScore = a.Phylogeny.MinScore
	}
	result, err := tx.ExecContext(ctx, `
	INSERT INTO analyses (subject, has_phylogeny, min_score, settings_json, figures_json)
	VALUES (?, ?, ?, ?, ?)
	`, a.Subject, a.Phylogeny != nil, minScore, string(settingsJSON), string(figuresJSON))
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	if err = saveSamples(ctx, tx, id, a.Cohort); err != nil {
		return err
	}
	if err = saveVariants(ctx, tx, id, a.Cohort.Len(), a.Calls); err != nil {
		return err
	}
	if err = savePairwise(ctx, tx, id, a.Matrices); err != nil {
		return err
	}
	if err = saveArtifacts(ctx, tx, id, a.Cohort, a.Calls, a.Phylogeny); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit analysis: %w", err)
	}
	return nil
}

func saveSamples(ctx context.Context, tx *sql.Tx, id int64, cohort *model.SampleCohort) error {
	if cohort == nil {
		return nil
	}
	insert := `INSERT INTO samples (analysis_id, position, name, purity, discarded) VALUES (?, ?, ?, ?, ?)`
	for i, name := range cohort.Names {
		var purity any
		if p, ok := cohort.Purity(name); ok {
			purity = p
		}
		if _, err := tx.ExecContext(ctx, insert, id, i, name, purity, false); err != nil {
			return fmt.Errorf("failed to insert sample: %w", err)
		}
	}
	for i, name := range cohort.Discarded {
		if _, err := tx.ExecContext(ctx, insert, id, i, name, nil, true); err != nil {
			return fmt.Errorf("failed to insert discarded sample: %w", err)
		}
	}
	return nil
}

func saveVariants(ctx context.Context, tx *sql.Tx, id int64, samples int, calls *model.VariantCallMatrix) error {
	for v := 0; v < calls.Len(); v++ {
		var gene any
		if g, ok := calls.Gene(v); ok {
			gene = g
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO variants (analysis_id, position, key, gene) VALUES (?, ?, ?, ?)`,
			id, v, calls.Keys[v], gene); err != nil {
			return fmt.Errorf("failed to insert variant: %w", err)
		}

		for s := 0; s < samples; s++ {
			var reads, coverage, absent, present any
			if v < len(calls.Reads) && calls.Reads[v] != nil {
				reads = calls.Reads[v][s]
			}
			if v < len(calls.Coverage) && calls.Coverage[v] != nil {
				coverage = calls.Coverage[v][s]
			}
			if v < len(calls.LogProbs) && calls.LogProbs[v] != nil && calls.LogProbs[v][s].Known() {
				absent = calls.LogProbs[v][s].Absent
				present = calls.LogProbs[v][s].Present
			}
			if reads == nil && coverage == nil && absent == nil {
				continue
			}
			if _, err := tx.ExecContext(ctx, `
			INSERT INTO calls (analysis_id, variant_position, sample_position, reads, coverage, log_p_absent, log_p_present)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			`, id, v, s, reads, coverage, absent, present); err != nil {
				return fmt.Errorf("failed to insert call: %w", err)
			}
		}
	}
	return nil
}

func savePairwise(ctx context.Context, tx *sql.Tx, id int64, m *model.SimilarityMatrices) error {
	if m == nil {
		return nil
	}
	for _, grid := range []struct {
		kind string
		rows [][]float64
	}{
		{kindSimilarity, model.DenseRows(m.Similarity)},
		{kindDistance, model.DenseRows(m.Distance)},
	} {
		for i, row := range grid.rows {
			for j, value := range row {
				var cell any
				if !math.IsNaN(value) {
					cell = value
				}
				if _, err := tx.ExecContext(ctx, `
				INSERT INTO pairwise (analysis_id, kind, row_position, col_position, value)
				VALUES (?, ?, ?, ?, ?)
				`, id, grid.kind, i, j, cell); err != nil {
					return fmt.Errorf("failed to insert pairwise value: %w", err)
				}
			}
		}
	}
	return nil
}

func saveArtifacts(ctx context.Context, tx *sql.Tx, id int64, cohort *model.SampleCohort,
	calls *model.VariantCallMatrix, p *model.PhylogenyResult) error {
	if p == nil {
		return nil
	}
	insert := `INSERT INTO artifacts (analysis_id, kind, variant_key, sample_name) VALUES (?, ?, ?, ?)`
	for _, v := range p.Conflicting {
		if _, err := tx.ExecContext(ctx, insert, id, model.Conflicting, calls.Keys[v], nil); err != nil {
			return fmt.Errorf("failed to insert artifact: %w", err)
		}
	}
	for _, set := range []struct {
		kind model.ArtifactKind
		m    map[int][]int
	}{
		{model.FalsePositive, p.FalsePositives},
		{model.FalseNegative, p.FalseNegatives},
		{model.FalseNegativeUnknown, p.FalseNegativeUnknowns},
	} {
		for _, v := range sortedKeys(set.m) {
			for _, s := range set.m[v] {
				if _, err := tx.ExecContext(ctx, insert, id, set.kind, calls.Keys[v], cohort.Names[s]); err != nil {
					return fmt.Errorf("failed to insert artifact: %w", err)
				}
			}
		}
	}
	return nil
}
