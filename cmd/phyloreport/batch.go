package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nao1215/phyloreport/internal/config"
	"github.com/nao1215/phyloreport/internal/loader"
	"github.com/nao1215/phyloreport/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewBatchCmd creates the batch command.
func NewBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <snapshot>...",
		Short: "Render the HTML reports of many analyses concurrently",
		Long: `Batch renders one HTML report per analysis into a directory.

Every subject of a database snapshot gets its own report named after the
subject. Other snapshots produce one report named after the file.
A failed report does not stop the others; the command fails at the end if
any report could not be rendered.

Examples:
  # Render all documents into ./reports
  phyloreport batch -d reports data/*.yaml

  # Render every subject of a database, eight at a time
  phyloreport batch -b 8 -d reports cohort.db`,
		Args: cobra.MinimumNArgs(1),
		RunE: runBatchCmd,
	}

	cmd.Flags().StringP("dir", "d", config.DefaultOutputDir,
		"Directory the reports are written to (created if needed)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of reports rendered concurrently")
	cmd.Flags().StringP("config", "c", "",
		"Settings file path (default: .phyloreport in current, XDG config or home directory)")

	return cmd
}

// runBatchCmd executes the batch command.
func runBatchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	cfg.OutputDir, err = cmd.Flags().GetString("dir")
	if err != nil {
		return err
	}
	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg)
	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	return runBatch(ctx, cmd.OutOrStdout(), cfg, logger)
}

// runBatch loads every snapshot and renders the reports concurrently.
func runBatch(ctx context.Context, out io.Writer, cfg *config.Config, logger *slog.Logger) error {
	tasks, err := collectTasks(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	fmt.Fprintf(out, "Rendering %d reports (concurrency: %d)...\n\n", len(tasks), cfg.BatchSize)
	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.ReportPipeline(pipeline.WithLogger(logger))
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
		pipeline.WithReportOptions(reportOptions(cfg)...),
	)

	var (
		mu     sync.Mutex
		done   int
		failed int
	)
	err = bp.ProcessBatchWithCallback(ctx, tasks, func(job *pipeline.Job, index int) {
		mu.Lock()
		defer mu.Unlock()

		done++
		if job.Err != nil {
			failed++
			fmt.Fprintf(out, "[%d/%d] Render failed: %s: %v\n", done, len(tasks), tasks[index].OutPath, job.Err)
			return
		}
		fmt.Fprintf(out, "[%d/%d] Report written: %s\n", done, len(tasks), tasks[index].OutPath)
	})

	fmt.Fprintf(out, "\nBatch completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d reports failed", failed, len(tasks))
	}
	return nil
}

// collectTasks loads the analyses of every snapshot and assigns each one
// an output path. Two analyses that would share a path are rejected before
// anything is written.
func collectTasks(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]pipeline.Task, error) {
	l := loader.New(loader.WithLogger(logger))

	var tasks []pipeline.Task
	owners := make(map[string]string)
	for _, snapshot := range cfg.Snapshots {
		analyses, err := l.Load(ctx, snapshot)
		if err != nil {
			return nil, err
		}

		for _, a := range analyses {
			a.Settings = cfg.File.ApplySettings(a.Settings)

			outPath := cfg.ReportPath(snapshot)
			if len(analyses) > 1 {
				outPath = subjectReportPath(cfg.OutputDir, a.Subject)
			}
			if prev, ok := owners[outPath]; ok {
				return nil, fmt.Errorf("%s and %s would both write %s", prev, snapshot, outPath)
			}
			owners[outPath] = snapshot

			tasks = append(tasks, pipeline.Task{Analysis: a, OutPath: outPath})
		}
	}
	return tasks, nil
}

// subjectReportPath names a report after its subject.
func subjectReportPath(dir, subject string) string {
	return filepath.Join(dir, filepath.Base(subject)+config.ReportExtension)
}
