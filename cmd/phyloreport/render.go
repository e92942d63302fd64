package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nao1215/phyloreport/internal/config"
	"github.com/nao1215/phyloreport/internal/loader"
	"github.com/nao1215/phyloreport/internal/model"
	"github.com/nao1215/phyloreport/internal/pipeline"
	"github.com/nao1215/phyloreport/internal/summary"
	"github.com/spf13/cobra"
)

// NewRenderCmd creates the render command.
func NewRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <snapshot>",
		Short: "Render the HTML report of one analysis",
		Long: `Render writes the HTML report of one analysis snapshot and prints a short
summary to stdout.

Supported snapshot formats:
- YAML or JSON documents (.yaml, .yml, .json)
- Excel workbooks (.xlsx)
- SQLite databases (.db, .sqlite, .sqlite3)

A database may hold several subjects; select one with --subject.

Settings missing from the snapshot are taken from the settings file
(.phyloreport in the current directory, the XDG config directory, or home).

Examples:
  # Render Pam03.html into the current directory
  phyloreport render Pam03.yaml

  # Write the report to a specific file
  phyloreport render -o reports/pam03.html Pam03.xlsx

  # Render one subject of a database and print a JSON summary
  phyloreport render --subject Pam03 --summary json cohort.db`,
		Args: cobra.ExactArgs(1),
		RunE: runRenderCmd,
	}

	cmd.Flags().StringP("output", "o", "",
		"Write the report to the specified file (default: <snapshot>.html)")
	cmd.Flags().StringP("config", "c", "",
		"Settings file path (default: .phyloreport in current, XDG config or home directory)")
	cmd.Flags().StringP("subject", "s", "",
		"Subject to render when the snapshot holds several")
	cmd.Flags().String("summary", config.DefaultSummaryFormat,
		"Summary printed to stdout: text, markdown, json or none")

	return cmd
}

// runRenderCmd executes the render command.
func runRenderCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	cfg.SummaryFormat, err = cmd.Flags().GetString("summary")
	if err != nil {
		return err
	}
	subject, err := cmd.Flags().GetString("subject")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg)
	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	return runRender(ctx, cmd.OutOrStdout(), cfg, subject, logger)
}

// runRender loads the snapshot, renders its report and prints the summary.
func runRender(ctx context.Context, out io.Writer, cfg *config.Config, subject string, logger *slog.Logger) error {
	snapshot := cfg.Snapshots[0]

	a, err := loader.New(loader.WithSubject(subject), loader.WithLogger(logger)).LoadOne(ctx, snapshot)
	if err != nil {
		return err
	}
	a.Settings = cfg.File.ApplySettings(a.Settings)

	outPath := cfg.ReportPath(snapshot)
	if err := ensureDir(outPath); err != nil {
		return err
	}

	logger.Info("rendering report", "subject", a.Subject, "output", outPath)
	startTime := time.Now()

	p := pipeline.ReportPipeline(pipeline.WithLogger(logger))
	if _, err := p.Render(ctx, a, outPath, reportOptions(cfg)...); err != nil {
		return fmt.Errorf("failed to render %s: %w", outPath, err)
	}

	logger.Debug("report rendered", "output", outPath, "elapsed", time.Since(startTime).Round(time.Millisecond))

	return writeSummary(out, cfg.SummaryFormat, a, outPath)
}

// writeSummary prints the analysis summary in the requested format.
func writeSummary(out io.Writer, format string, a *model.Analysis, reportPath string) error {
	w := newSummaryWriter(out, format, reportPath)
	if w == nil {
		return nil
	}
	if _, err := w.Write(model.Summarize(a)); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// newSummaryWriter returns the writer for format, or nil for SummaryNone.
func newSummaryWriter(out io.Writer, format, reportPath string) summary.Writer {
	switch format {
	case config.SummaryNone:
		return nil
	case config.SummaryMarkdown:
		return summary.NewMarkdownWriter(out)
	case config.SummaryJSON:
		return summary.NewJSONWriter(out, summary.WithPrettyPrint())
	default:
		return summary.NewSimpleWriter(out, summary.WithReportPath(reportPath))
	}
}
