package database

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/nao1215/phyloreport/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *SnapshotDB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "snapshots.db"), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func lp(p float64) model.LogProb {
	return model.LogProb{Absent: math.Log(1 - p), Present: math.Log(p)}
}

// createTestAnalysis returns a three sample analysis touching every table.
func createTestAnalysis(t *testing.T, subject string) *model.Analysis {
	t.Helper()

	calls := &model.VariantCallMatrix{
		Keys:     []string{"chr17_7577120_C__T", "chr12_25398284_C__A", "chr5_112175770_G__A"},
		Genes:    []string{"TP53", "", "APC"},
		Reads:    [][]int{{40, 35, 28}, {0, 14, 0}, {3, 0, 0}},
		Coverage: [][]int{{120, 110, 95}, {100, 90, -1}, {80, 75, 4}},
		LogProbs: [][]model.LogProb{
			{lp(0.99), lp(0.99), lp(0.98)},
			{lp(0.02), lp(0.97), lp(0.5)},
			{lp(0.9), lp(0.05), lp(0.3)},
		},
	}
	cohort := &model.SampleCohort{
		Names:     []string{"PT_1", "LM_2", "LM_3"},
		Purities:  map[string]float64{"PT_1": 0.65, "LM_3": 0.4},
		Discarded: []string{"LM_9"},
	}
	cohort.DeriveSampleData(calls)

	matrices, err := model.NewSimilarityMatrices(
		[][]float64{{1, 0.5, 0.25}, {0.5, 1, math.NaN()}, {0.25, math.NaN(), 1}},
		[][]float64{{0, 2, 3}, {2, 0, 1.5}, {3, 1.5, 0}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return &model.Analysis{
		Subject:  subject,
		Cohort:   cohort,
		Calls:    calls,
		Matrices: matrices,
		Phylogeny: &model.PhylogenyResult{
			MinScore:              0.33,
			Conflicting:           []int{2},
			FalsePositives:        map[int][]int{2: {0}},
			FalseNegatives:        map[int][]int{1: {0, 2}},
			FalseNegativeUnknowns: map[int][]int{1: {2}},
		},
		Figures: model.Figures{
			ConflictGraph: model.Figure{Path: subject + "_mp_graph.png", Width: 550},
			Artifacts:     model.Figure{Path: subject + "_artifacts.png"},
		},
		Settings: model.Settings{ErrorRate: 0.005, AbsentPrior: 0.5, MinVarReads: 3},
	}
}

// compareAnalyses reports differences between two analyses, comparing the
// matrices through their rows.
func compareAnalyses(t *testing.T, want, got *model.Analysis) {
	t.Helper()

	nan := cmpopts.EquateNaNs()
	if diff := cmp.Diff(model.DenseRows(want.Matrices.Similarity), model.DenseRows(got.Matrices.Similarity), nan); diff != "" {
		t.Errorf("similarity mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(model.DenseRows(want.Matrices.Distance), model.DenseRows(got.Matrices.Distance), nan); diff != "" {
		t.Errorf("distance mismatch (-want +got):\n%s", diff)
	}

	w, g := *want, *got
	w.Matrices, g.Matrices = nil, nil
	if diff := cmp.Diff(&w, &g, nan); diff != "" {
		t.Errorf("analysis mismatch (-want +got):\n%s", diff)
	}
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "newdir", "subdir", "snapshots.db")
		db, err := Open(dbPath, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != dbPath {
			t.Errorf("expected path %s, got %s", dbPath, db.Path())
		}
	})

	t.Run("read-only open requires an existing database", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "missing.db")
		if _, err := Open(dbPath, ReadOnlyOptions()); err == nil {
			t.Fatal("expected error for missing database")
		}
		if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
			t.Error("read-only open must not create the database")
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		if _, err := Open(filepath.Join(t.TempDir(), "missing.db"), Options{}); err == nil {
			t.Fatal("expected error for missing database")
		}
	})

	t.Run("schema is idempotent", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "snapshots.db")
		for range 2 {
			db, err := Open(dbPath, DefaultOptions())
			if err != nil {
				t.Fatalf("failed to open database: %v", err)
			}
			_ = db.Close()
		}
	})
}

// TestSaveAndLoadAnalysis tests the round trip through the database.
func TestSaveAndLoadAnalysis(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		want := createTestAnalysis(t, "Pam03")

		if err := db.SaveAnalysis(ctx, want); err != nil {
			t.Fatalf("failed to save analysis: %v", err)
		}
		got, err := db.LoadAnalysis(ctx, "Pam03")
		if err != nil {
			t.Fatalf("failed to load analysis: %v", err)
		}
		compareAnalyses(t, want, got)
	})

	t.Run("analysis without phylogeny or genes", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		want := createTestAnalysis(t, "Pam04")
		want.Phylogeny = nil
		want.Calls.Genes = nil

		if err := db.SaveAnalysis(ctx, want); err != nil {
			t.Fatalf("failed to save analysis: %v", err)
		}
		got, err := db.LoadAnalysis(ctx, "Pam04")
		if err != nil {
			t.Fatalf("failed to load analysis: %v", err)
		}
		if got.Phylogeny != nil {
			t.Errorf("expected no phylogeny, got %+v", got.Phylogeny)
		}
		if got.Calls.Genes != nil {
			t.Errorf("expected no gene annotation, got %v", got.Calls.Genes)
		}
	})

	t.Run("missing rows stay missing", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		a := createTestAnalysis(t, "Pam05")
		a.Calls.Coverage[1] = nil
		a.Phylogeny = nil

		if err := db.SaveAnalysis(ctx, a); err != nil {
			t.Fatalf("failed to save analysis: %v", err)
		}
		got, err := db.LoadAnalysis(ctx, "Pam05")
		if err != nil {
			t.Fatalf("failed to load analysis: %v", err)
		}
		if got.Calls.Coverage[1] != nil {
			t.Errorf("expected nil coverage row, got %v", got.Calls.Coverage[1])
		}
		if got.Calls.Reads[1] == nil {
			t.Error("expected reads row to be kept")
		}
	})

	t.Run("saving replaces an earlier analysis", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		first := createTestAnalysis(t, "Pam06")
		second := createTestAnalysis(t, "Pam06")
		second.Settings.ErrorRate = 0.01

		for _, a := range []*model.Analysis{first, second} {
			if err := db.SaveAnalysis(ctx, a); err != nil {
				t.Fatalf("failed to save analysis: %v", err)
			}
		}
		got, err := db.LoadAnalysis(ctx, "Pam06")
		if err != nil {
			t.Fatalf("failed to load analysis: %v", err)
		}
		compareAnalyses(t, second, got)

		subjects, err := db.Subjects(ctx)
		if err != nil {
			t.Fatalf("failed to list subjects: %v", err)
		}
		if diff := cmp.Diff([]string{"Pam06"}, subjects); diff != "" {
			t.Errorf("subjects mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("malformed analysis is rejected", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		a := createTestAnalysis(t, "Pam07")
		a.Calls.Reads[0] = []int{1}

		var shapeErr *model.ShapeError
		if err := db.SaveAnalysis(context.Background(), a); !errors.As(err, &shapeErr) {
			t.Errorf("expected ShapeError, got %v", err)
		}
	})
}

// TestLoadAnalysisErrors tests lookup and reference failures.
func TestLoadAnalysisErrors(t *testing.T) {
	t.Parallel()

	t.Run("unknown subject", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		if _, err := db.LoadAnalysis(context.Background(), "Pam99"); !errors.Is(err, ErrSubjectNotFound) {
			t.Errorf("expected ErrSubjectNotFound, got %v", err)
		}
	})

	tests := []struct {
		name    string
		key     string
		sample  string
		wantErr error
	}{
		{name: "unknown variant", key: "chrX_1_A__G", sample: "PT_1", wantErr: model.ErrUnknownVariant},
		{name: "unknown sample", key: "chr17_7577120_C__T", sample: "LM_9", wantErr: model.ErrUnknownSample},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := setupTestDB(t)
			ctx := context.Background()
			if err := db.SaveAnalysis(ctx, createTestAnalysis(t, "Pam08")); err != nil {
				t.Fatalf("failed to save analysis: %v", err)
			}
			_, err := db.db.ExecContext(ctx, `
			INSERT INTO artifacts (analysis_id, kind, variant_key, sample_name)
			SELECT id, 'false_negative', ?, ? FROM analyses WHERE subject = 'Pam08'
			`, tt.key, tt.sample)
			if err != nil {
				t.Fatalf("failed to insert artifact: %v", err)
			}

			if _, err := db.LoadAnalysis(ctx, "Pam08"); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestLoadAnalysisSparseCalls tests that missing call cells are never
// mistaken for recorded values.
func TestLoadAnalysisSparseCalls(t *testing.T) {
	t.Parallel()

	t.Run("unclassified cell survives round trip", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		want := createTestAnalysis(t, "Pam11")
		want.Calls.LogProbs[0][1] = model.LogProb{Absent: math.NaN(), Present: math.NaN()}

		if err := db.SaveAnalysis(ctx, want); err != nil {
			t.Fatalf("failed to save analysis: %v", err)
		}
		got, err := db.LoadAnalysis(ctx, "Pam11")
		if err != nil {
			t.Fatalf("failed to load analysis: %v", err)
		}
		compareAnalyses(t, want, got)
		if got.Calls.Called(0, 1) {
			t.Error("unclassified cell must not be called")
		}
	})

	db := setupTestDB(t)
	ctx := context.Background()
	if err := db.SaveAnalysis(ctx, createTestAnalysis(t, "Pam12")); err != nil {
		t.Fatalf("failed to save analysis: %v", err)
	}
	for _, stmt := range []string{
		`UPDATE calls SET log_p_absent = NULL, log_p_present = NULL, coverage = NULL
		WHERE variant_position = 0 AND sample_position = 1`,
		`UPDATE calls SET log_p_absent = NULL, log_p_present = NULL
		WHERE variant_position = 1 AND sample_position = 1`,
		`UPDATE calls SET reads = NULL WHERE variant_position = 0 AND sample_position = 2`,
	} {
		if _, err := db.db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("failed to clear call cells: %v", err)
		}
	}

	got, err := db.LoadAnalysis(ctx, "Pam12")
	if err != nil {
		t.Fatalf("failed to load analysis: %v", err)
	}
	calls := got.Calls

	tests := []struct {
		name string
		v, s int
		want bool
		got  func(v, s int) bool
	}{
		{name: "recorded classification is called", v: 0, s: 0, want: true, got: calls.Called},
		{name: "missing classification is not called", v: 0, s: 1, want: false, got: calls.Called},
		{name: "missing classification is unknown", v: 0, s: 1, want: false, got: func(v, s int) bool {
			return calls.LogProbs[v][s].Known()
		}},
		{name: "missing coverage has no coverage", v: 0, s: 1, want: false, got: calls.HasCoverage},
		{name: "recorded coverage", v: 0, s: 0, want: true, got: calls.HasCoverage},
		{name: "missing reads keep recorded coverage", v: 0, s: 2, want: true, got: calls.HasCoverage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.got(tt.v, tt.s); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	t.Run("missing reads are zero", func(t *testing.T) {
		t.Parallel()

		reads, coverage, ok := calls.ReadsAt(0, 2)
		if !ok || reads != 0 || coverage != 95 {
			t.Errorf("expected 0 reads of 95, got %d of %d (ok=%v)", reads, coverage, ok)
		}
	})

	t.Run("variant without any remaining call is not present", func(t *testing.T) {
		t.Parallel()

		if diff := cmp.Diff([]int{0, 2}, calls.Present()); diff != "" {
			t.Errorf("present variants mismatch (-want +got):\n%s", diff)
		}
		if founders := calls.Founders(); len(founders) != 0 {
			t.Errorf("expected no founders, got %v", founders)
		}
	})
}

// TestReadOnly tests that read-only databases serve reads only.
func TestReadOnly(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "snapshots.db")
	rw, err := Open(dbPath, DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	ctx := context.Background()
	if err := rw.SaveAnalysis(ctx, createTestAnalysis(t, "Pam10")); err != nil {
		t.Fatalf("failed to save analysis: %v", err)
	}
	if err := rw.Close(); err != nil {
		t.Fatalf("failed to close database: %v", err)
	}

	ro, err := Open(dbPath, ReadOnlyOptions())
	if err != nil {
		t.Fatalf("failed to open database read-only: %v", err)
	}
	defer ro.Close()

	if _, err := ro.LoadAnalysis(ctx, "Pam10"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ro.SaveAnalysis(ctx, createTestAnalysis(t, "Pam11")); err == nil {
		t.Error("expected write to a read-only database to fail")
	}
}
