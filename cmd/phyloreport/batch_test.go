package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/phyloreport/internal/config"
	"github.com/nao1215/phyloreport/internal/database"
	"github.com/nao1215/phyloreport/internal/loader"
)

// writeDatabase stores the fixture analysis under every subject.
func writeDatabase(t *testing.T, dir string, subjects ...string) string {
	t.Helper()

	ctx := context.Background()
	a, err := loader.New().LoadOne(ctx, writeFile(t, dir, "fixture.yaml", snapshotYAML))
	if err != nil {
		t.Fatalf("failed to load fixture: %v", err)
	}

	path := filepath.Join(dir, "cohort.db")
	db, err := database.Open(path, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	for _, subject := range subjects {
		a.Subject = subject
		if err := db.SaveAnalysis(ctx, a); err != nil {
			t.Fatalf("failed to save %s: %v", subject, err)
		}
	}
	return path
}

// TestNewBatchCmd tests the batch command flags.
func TestNewBatchCmd(t *testing.T) {
	t.Parallel()

	cmd := NewBatchCmd()
	dir := cmd.Flags().Lookup("dir")
	if dir == nil || dir.Shorthand != "d" || dir.DefValue != config.DefaultOutputDir {
		t.Errorf("unexpected dir flag: %+v", dir)
	}
	batch := cmd.Flags().Lookup("batch")
	if batch == nil || batch.Shorthand != "b" || batch.DefValue != "4" {
		t.Errorf("unexpected batch flag: %+v", batch)
	}
}

// TestRunBatchCmd tests concurrent rendering through the CLI.
func TestRunBatchCmd(t *testing.T) {
	t.Parallel()

	t.Run("renders every document", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		settings := writeFile(t, dir, "settings.yaml", settingsYAML)
		first := writeFile(t, dir, "Pam03.yaml", snapshotYAML)
		second := writeFile(t, dir, "Pam04.yaml", strings.Replace(snapshotYAML, "Pam03", "Pam04", 1))
		outDir := filepath.Join(dir, "reports")

		stdout, _, err := execute(t, "batch", first, second, "-d", outDir, "-b", "2", "-c", settings)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, subject := range []string{"Pam03", "Pam04"} {
			html := readFile(t, filepath.Join(outDir, subject+".html"))
			if !strings.Contains(html, "patient "+subject) {
				t.Errorf("%s report does not name its subject", subject)
			}
		}
		if !strings.Contains(stdout, "[2/2] Report written") {
			t.Errorf("expected progress output, got:\n%s", stdout)
		}
	})

	t.Run("renders every subject of a database", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		settings := writeFile(t, dir, "settings.yaml", settingsYAML)
		db := writeDatabase(t, dir, "Pam03", "Pam04", "Pam05")
		outDir := filepath.Join(dir, "reports")

		if _, _, err := execute(t, "batch", db, "-d", outDir, "-c", settings); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, subject := range []string{"Pam03", "Pam04", "Pam05"} {
			if _, err := os.Stat(filepath.Join(outDir, subject+".html")); err != nil {
				t.Errorf("expected report of %s: %v", subject, err)
			}
		}
	})

	t.Run("rejects colliding reports", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		settings := writeFile(t, dir, "settings.yaml", settingsYAML)
		snapshot := writeFile(t, dir, "Pam03.yaml", snapshotYAML)
		outDir := filepath.Join(dir, "reports")

		_, _, err := execute(t, "batch", snapshot, snapshot, "-d", outDir, "-c", settings)
		if err == nil || !strings.Contains(err.Error(), "would both write") {
			t.Fatalf("expected collision error, got %v", err)
		}
		if _, err := os.Stat(outDir); !os.IsNotExist(err) {
			t.Error("expected nothing to be written")
		}
	})

	t.Run("isolates failed reports", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		settings := writeFile(t, dir, "settings.yaml", settingsYAML)
		first := writeFile(t, dir, "Pam03.yaml", snapshotYAML)
		second := writeFile(t, dir, "Pam04.yaml", strings.Replace(snapshotYAML, "Pam03", "Pam04", 1))
		outDir := filepath.Join(dir, "reports")
		// a directory where the second report should go
		if err := os.MkdirAll(filepath.Join(outDir, "Pam04.html"), 0750); err != nil {
			t.Fatal(err)
		}

		stdout, _, err := execute(t, "batch", first, second, "-d", outDir, "-c", settings)
		if err == nil || !strings.Contains(err.Error(), "1 of 2 reports failed") {
			t.Fatalf("expected one failure, got %v", err)
		}
		if !strings.Contains(readFile(t, filepath.Join(outDir, "Pam03.html")), "</html>") {
			t.Error("expected the first report to be complete")
		}
		if !strings.Contains(stdout, "Render failed") {
			t.Errorf("expected failure in progress output, got:\n%s", stdout)
		}
	})

	t.Run("invalid batch size", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		settings := writeFile(t, dir, "settings.yaml", settingsYAML)
		snapshot := writeFile(t, dir, "Pam03.yaml", snapshotYAML)

		_, _, err := execute(t, "batch", snapshot, "-b", "0", "-c", settings)
		if !errors.Is(err, config.ErrInvalidBatchSize) {
			t.Errorf("error = %v, want %v", err, config.ErrInvalidBatchSize)
		}
	})
}

// TestSubjectReportPath tests report names derived from subjects.
func TestSubjectReportPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		subject string
		want    string
	}{
		{subject: "Pam03", want: filepath.Join("reports", "Pam03.html")},
		{subject: "Pam.03", want: filepath.Join("reports", "Pam.03.html")},
		{subject: "study/Pam03", want: filepath.Join("reports", "Pam03.html")},
	}
	for _, tt := range tests {
		if got := subjectReportPath("reports", tt.subject); got != tt.want {
			t.Errorf("subjectReportPath(%q) = %q, want %q", tt.subject, got, tt.want)
		}
	}
}
