package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// snapshotYAML is a two sample analysis with one conflicting variant.
const snapshotYAML = `subject: Pam03
samples:
  - name: PT_1
    purity: 0.7
  - name: LM_1
variants:
  - key: chr17_7577120_C__T
    gene: TP53
    reads: [20, 18]
    coverage: [100, 90]
    log_probs: [[-4.6, -0.01], [-4.6, -0.01]]
  - key: chr5_112175770_G__A
    gene: APC
    reads: [2, 0]
    coverage: [50, 40]
    log_probs: [[-0.5, -0.9], [-0.02, -3.9]]
similarity: [[1, 0.5], [0.5, 1]]
distance: [[0, 2], [2, 0]]
phylogeny:
  min_score: 0.4
  conflicting: [chr5_112175770_G__A]
figures:
  conflict_graph:
    path: Pam03_mp_graph.png
settings:
  e: 0.005
`

// settingsYAML is a settings file overriding presentation and one setting.
const settingsYAML = `settings:
  e: 0.01
  c0: 0.5
report:
  tool_name: Tester
  max_width: 1200
`

// writeFile writes content to name inside dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// readFile returns the contents of path.
func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path) //nolint:gosec // test path
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
