package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/phyloreport/internal/config"
	"github.com/nao1215/phyloreport/internal/loader"
	"github.com/nao1215/phyloreport/internal/log"
)

// TestNewRenderCmd tests the render command flags.
func TestNewRenderCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRenderCmd()
	for _, tt := range []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{name: "output", shorthand: "o"},
		{name: "config", shorthand: "c"},
		{name: "subject", shorthand: "s"},
		{name: "summary", defValue: config.SummaryText},
	} {
		flag := cmd.Flags().Lookup(tt.name)
		if flag == nil {
			t.Errorf("expected %s flag", tt.name)
			continue
		}
		if flag.Shorthand != tt.shorthand {
			t.Errorf("%s: shorthand = %q, want %q", tt.name, flag.Shorthand, tt.shorthand)
		}
		if flag.DefValue != tt.defValue {
			t.Errorf("%s: default = %q, want %q", tt.name, flag.DefValue, tt.defValue)
		}
	}
}

// TestRunRenderCmd tests rendering one snapshot through the CLI.
func TestRunRenderCmd(t *testing.T) {
	t.Parallel()

	t.Run("renders report and json summary", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		snapshot := writeFile(t, dir, "snapshot.yaml", snapshotYAML)
		settings := writeFile(t, dir, "settings.yaml", settingsYAML)
		outPath := filepath.Join(dir, "out", "report.html")

		stdout, _, err := execute(t, "render", snapshot, "-o", outPath, "-c", settings, "--summary", "json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		html := readFile(t, outPath)
		for _, want := range []string{
			"<title>Tester analysis report of patient Pam03</title>",
			`style="max-width:1200px"`,
			// snapshot value wins, file fills the gap
			"sequencing error rate e: 0.005",
			"prior absent probability c0: 0.5",
			"&copy; Tester",
			"</html>",
		} {
			if !strings.Contains(html, want) {
				t.Errorf("report does not contain %q", want)
			}
		}

		var got struct {
			Subject      string `json:"subject"`
			TotalSamples int    `json:"total_samples"`
		}
		if err := json.Unmarshal([]byte(stdout), &got); err != nil {
			t.Fatalf("summary is not JSON: %v\n%s", err, stdout)
		}
		if got.Subject != "Pam03" || got.TotalSamples != 2 {
			t.Errorf("unexpected summary: %+v", got)
		}
	})

	t.Run("text summary names the report", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		snapshot := writeFile(t, dir, "snapshot.yaml", snapshotYAML)
		settings := writeFile(t, dir, "settings.yaml", settingsYAML)
		outPath := filepath.Join(dir, "report.html")

		stdout, _, err := execute(t, "render", snapshot, "-o", outPath, "-c", settings)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, outPath) {
			t.Errorf("summary does not name %s:\n%s", outPath, stdout)
		}
	})

	t.Run("no summary", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		snapshot := writeFile(t, dir, "snapshot.yaml", snapshotYAML)
		settings := writeFile(t, dir, "settings.yaml", settingsYAML)

		stdout, _, err := execute(t, "render", snapshot, "-o", filepath.Join(dir, "r.html"),
			"-c", settings, "--summary", "none")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "" {
			t.Errorf("expected no output, got %q", stdout)
		}
	})

	t.Run("masks identifiers in logs", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		snapshot := writeFile(t, dir, "snapshot.yaml", snapshotYAML)
		settings := writeFile(t, dir, "settings.yaml", settingsYAML)

		_, stderr, err := execute(t, "-v", "render", snapshot, "-o", filepath.Join(dir, "r.html"),
			"-c", settings, "--summary", "none")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(stderr, "Pam03") {
			t.Errorf("subject leaked into logs:\n%s", stderr)
		}
		if !strings.Contains(stderr, log.MaskValue) {
			t.Errorf("expected masked subject in logs:\n%s", stderr)
		}
	})

	t.Run("shows identifiers on request", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		snapshot := writeFile(t, dir, "snapshot.yaml", snapshotYAML)
		settings := writeFile(t, dir, "settings.yaml", settingsYAML)

		_, stderr, err := execute(t, "-v", "--show-identifiers", "render", snapshot,
			"-o", filepath.Join(dir, "r.html"), "-c", settings, "--summary", "none")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stderr, "subject=Pam03") {
			t.Errorf("expected subject in logs:\n%s", stderr)
		}
	})
}

// TestRunRenderCmdErrors tests failures reported by the render command.
func TestRunRenderCmdErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	snapshot := writeFile(t, dir, "snapshot.yaml", snapshotYAML)
	settings := writeFile(t, dir, "settings.yaml", settingsYAML)

	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing settings file",
			args:    []string{"render", snapshot, "-c", filepath.Join(dir, "missing.yaml")},
			wantMsg: "configuration file not found",
		},
		{
			name:    "unknown summary format",
			args:    []string{"render", snapshot, "-c", settings, "--summary", "xml"},
			wantErr: config.ErrUnknownSummaryFormat,
		},
		{
			name:    "unsupported snapshot",
			args:    []string{"render", filepath.Join(dir, "snapshot.csv"), "-c", settings},
			wantErr: loader.ErrUnsupportedFormat,
		},
		{
			name:    "unknown subject",
			args:    []string{"render", snapshot, "-c", settings, "-s", "Pam99"},
			wantErr: loader.ErrSubjectNotFound,
		},
		{
			name:    "output is a directory",
			args:    []string{"render", snapshot, "-c", settings, "-o", dir},
			wantMsg: "failed to render",
		},
		{
			name:    "no snapshot",
			args:    []string{"render", "-c", settings},
			wantMsg: "accepts 1 arg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %v, want message containing %q", err, tt.wantMsg)
			}
		})
	}
}

// TestRunRenderDefaultPath tests that reports are named after the snapshot.
func TestRunRenderDefaultPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.Snapshots = []string{writeFile(t, dir, "Pam03.yaml", snapshotYAML)}
	cfg.OutputDir = filepath.Join(dir, "reports")
	cfg.SummaryFormat = config.SummaryMarkdown

	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := runRender(context.Background(), &out, cfg, "", logger); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html := readFile(t, filepath.Join(dir, "reports", "Pam03.html"))
	if !strings.Contains(html, "&copy; PhyloReport") {
		t.Error("expected default tool name in footer")
	}
	if !strings.Contains(out.String(), "Pam03") {
		t.Errorf("expected markdown summary, got %q", out.String())
	}
}
