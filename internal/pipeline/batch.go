package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/phyloreport/internal/model"
	"github.com/nao1215/phyloreport/internal/report"
)

// Task is one analysis to render and the file to render it into.
type Task struct {
	Analysis *model.Analysis
	OutPath  string
}

// BatchProcessor renders multiple analyses concurrently.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: Each analysis gets its own Report and its own pipeline.
// A Report is not safe for concurrent use, so nothing is shared between
// goroutines except the logger.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each analysis.
	pipelineFactory func() *Pipeline

	// reportOpts are applied to every report.
	reportOpts []report.Option

	// concurrency is the maximum number of concurrent renders.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent renders.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithReportOptions sets the options applied to every report.
func WithReportOptions(opts ...report.Option) BatchOption {
	return func(b *BatchProcessor) {
		b.reportOpts = append(b.reportOpts, opts...)
	}
}

// DefaultConcurrency is the number of reports rendered at once by default.
const DefaultConcurrency = 4

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each analysis to create a fresh
// pipeline instance. A nil factory selects ReportPipeline.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	if bp.pipelineFactory == nil {
		logger := bp.logger
		bp.pipelineFactory = func() *Pipeline { return ReportPipeline(WithLogger(logger)) }
	}

	return bp
}

// ProcessBatch renders every task concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
//
// Returns one job per task in task order, even for analyses that failed.
// A failed render is recorded in its job and does not stop the others;
// the error return is only set when the batch was cancelled. Tasks that were
// never started because of a cancellation have a nil job.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, tasks []Task) ([]*Job, error) {
	jobs := make([]*Job, len(tasks))
	err := bp.ProcessBatchWithCallback(ctx, tasks, func(job *Job, index int) {
		// Each index is written by exactly one goroutine.
		jobs[index] = job
	})
	return jobs, err
}

// ProcessBatchWithCallback renders every task and calls callback for each
// completed job. This is useful for streaming results.
//
// The callback is called from the goroutine that rendered the task, so it
// should be thread-safe if it accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	tasks []Task,
	callback func(job *Job, index int),
) error {
	bp.logger.Info("starting batch rendering",
		"total_reports", len(tasks),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, task := range tasks {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("rendering report",
				"subject", task.Analysis.Subject,
				"index", i+1,
				"total", len(tasks),
			)

			job, err := bp.pipelineFactory().Render(ctx, task.Analysis, task.OutPath, bp.reportOpts...)
			if err != nil {
				bp.logger.Warn("render failed",
					"subject", task.Analysis.Subject,
					"path", task.OutPath,
					"error", err,
				)
			}

			callback(job, i)

			// Don't return the error to errgroup: one broken analysis must
			// not cancel the others.
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch rendering complete",
		"total_reports", len(tasks),
		"elapsed", time.Since(startTime),
	)

	return err
}
