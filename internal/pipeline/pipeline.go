package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nao1215/phyloreport/internal/model"
	"github.com/nao1215/phyloreport/internal/report"
)

// ErrSkipped is returned by a step whose input is not available, e.g. a
// section whose figure was not rendered upstream. Skipped steps are logged
// and recorded but do not fail the pipeline.
var ErrSkipped = errors.New("step skipped")

// Job is the unit of work passed through the pipeline: one analysis rendered
// into one report.
type Job struct {
	// Analysis is the rendered data. Steps never modify it.
	Analysis *model.Analysis

	// Report is the document under construction.
	Report *report.Report

	// PerformedSteps lists the steps that completed, in order.
	PerformedSteps []string

	// SkippedSteps lists the steps that returned ErrSkipped.
	SkippedSteps []string

	// Err is the error that stopped the pipeline, if any.
	Err error
}

// NewJob creates a job rendering a into r.
func NewJob(a *model.Analysis, r *report.Report) *Job {
	return &Job{Analysis: a, Report: r}
}

// Subject returns the analysed subject, or an empty string.
func (j *Job) Subject() string {
	if j.Analysis == nil {
		return ""
	}
	return j.Analysis.Subject
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence against the same job.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state
// 2. It provides a Name() method for logging and debugging
type Step interface {
	// Do executes the pipeline step.
	// It returns ErrSkipped when the step has nothing to render.
	Do(ctx context.Context, job *Job) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
// This follows the functional options pattern for clean API design.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, a default logger is created.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails.
//
// Design decision: A section rejected for malformed input writes nothing, so
// the remaining sections can still produce a useful report. The default is
// to stop because the report then lacks a section the reader expects.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:           make([]Step, 0),
		continueOnError: false,
	}

	// Apply options
	for _, opt := range opts {
		opt(p)
	}

	// Set default logger if not provided
	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
// It respects context cancellation and logs each step's execution.
//
// Design decision: We check context.Done() before each step rather than
// during, because a section is written in one go and cannot be interrupted
// without leaving unbalanced markup.
//
// Returns the first error encountered if continueOnError is false,
// or the first error after running every step otherwise.
func (p *Pipeline) Execute(ctx context.Context, job *Job) error {
	for _, step := range p.steps {
		// Check for cancellation before starting each step
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			if job.Err == nil {
				job.Err = ctx.Err()
			}
			return ctx.Err()
		default:
			// Continue with execution
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"subject", job.Subject(),
		)

		err := step.Do(ctx, job)
		switch {
		case errors.Is(err, ErrSkipped):
			p.logger.Debug("step skipped",
				"step", step.Name(),
				"subject", job.Subject(),
			)
			job.SkippedSteps = append(job.SkippedSteps, step.Name())
			continue
		case err != nil:
			p.logger.Error("step failed",
				"step", step.Name(),
				"subject", job.Subject(),
				"error", err,
			)

			if job.Err == nil {
				job.Err = err
			}

			// Stop or continue based on configuration
			if !p.continueOnError {
				return err
			}
			continue
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"subject", job.Subject(),
		)
		job.PerformedSteps = append(job.PerformedSteps, step.Name())
	}

	return job.Err
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// Render creates the report file at outPath, runs the pipeline against it,
// and releases the file on every path.
func (p *Pipeline) Render(ctx context.Context, a *model.Analysis, outPath string, opts ...report.Option) (job *Job, err error) {
	r, err := report.Create(outPath, a.Subject, opts...)
	if err != nil {
		return &Job{Analysis: a, Err: err}, err
	}
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = cerr
			job.Err = cerr
		}
	}()

	job = NewJob(a, r)
	return job, p.Execute(ctx, job)
}

// Render renders a into outPath with the standard report pipeline.
func Render(ctx context.Context, a *model.Analysis, outPath string, opts ...report.Option) (*Job, error) {
	return ReportPipeline().Render(ctx, a, outPath, opts...)
}
