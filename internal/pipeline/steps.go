package pipeline

import (
	"context"
	"log/slog"
)

// Step names in report order.
const (
	StepHeader               = "header"
	StepSequencing           = "sequencing"
	StepSimilarity           = "similarity"
	StepConflictGraph        = "conflict_graph"
	StepIncompatiblePatterns = "incompatible_patterns"
	StepArtifacts            = "artifacts"
	StepFinalize             = "finalize"
)

// ReportPipeline returns a pipeline with every report section in the order
// the report lays them out.
func ReportPipeline(opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddSteps(
		&HeaderStep{},
		&SequencingStep{},
		&SimilarityStep{},
		&ConflictGraphStep{},
		&IncompatiblePatternsStep{},
		&ArtifactsStep{},
		NewFinalizeStep(p.logger),
	)
	return p
}

// HeaderStep writes the document head and page header.
type HeaderStep struct{}

// Name returns the step name.
func (s *HeaderStep) Name() string {
	return StepHeader
}

// Do executes the header step.
func (s *HeaderStep) Do(_ context.Context, job *Job) error {
	return job.Report.Start()
}

// SequencingStep writes the per-sample input data table and cohort summary.
type SequencingStep struct{}

// Name returns the step name.
func (s *SequencingStep) Name() string {
	return StepSequencing
}

// Do executes the sequencing step.
func (s *SequencingStep) Do(_ context.Context, job *Job) error {
	a := job.Analysis
	return job.Report.AddSequencingInfo(a.Cohort, a.Calls, a.Figures.MutationTable)
}

// SimilarityStep writes the pairwise similarity and distance tables. It is
// the checkpoint after which a failed report leaves a readable prefix.
type SimilarityStep struct{}

// Name returns the step name.
func (s *SimilarityStep) Name() string {
	return StepSimilarity
}

// Do executes the similarity step.
func (s *SimilarityStep) Do(_ context.Context, job *Job) error {
	a := job.Analysis
	return job.Report.AddSimilarity(a.Cohort, a.Matrices)
}

// ConflictGraphStep embeds the evolutionary conflict graph.
// It is skipped when no graph image was rendered.
type ConflictGraphStep struct{}

// Name returns the step name.
func (s *ConflictGraphStep) Name() string {
	return StepConflictGraph
}

// Do executes the conflict graph step.
func (s *ConflictGraphStep) Do(_ context.Context, job *Job) error {
	a := job.Analysis
	if !a.Figures.ConflictGraph.IsSet() {
		return ErrSkipped
	}
	return job.Report.AddConflictGraph(a.Cohort, a.Figures.ConflictGraph, a.Phylogeny)
}

// IncompatiblePatternsStep writes the table of conflicting variants.
// It is skipped when no phylogeny was inferred.
type IncompatiblePatternsStep struct{}

// Name returns the step name.
func (s *IncompatiblePatternsStep) Name() string {
	return StepIncompatiblePatterns
}

// Do executes the incompatible patterns step.
func (s *IncompatiblePatternsStep) Do(_ context.Context, job *Job) error {
	a := job.Analysis
	if a.Phylogeny == nil {
		return ErrSkipped
	}
	return job.Report.AddIncompatiblePatterns(a.Cohort, a.Phylogeny, a.Calls, a.Figures.IncompatiblePatterns)
}

// ArtifactsStep writes the putative data artifacts.
// It is skipped when no phylogeny was inferred.
type ArtifactsStep struct{}

// Name returns the step name.
func (s *ArtifactsStep) Name() string {
	return StepArtifacts
}

// Do executes the artifacts step.
func (s *ArtifactsStep) Do(_ context.Context, job *Job) error {
	a := job.Analysis
	if a.Phylogeny == nil {
		return ErrSkipped
	}
	return job.Report.AddArtifacts(a.Cohort, a.Phylogeny, a.Calls, a.Figures.Artifacts)
}

// FinalizeStep writes the settings and footer and closes the report.
type FinalizeStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// NewFinalizeStep creates a finalize step that logs the output location.
func NewFinalizeStep(logger *slog.Logger) *FinalizeStep {
	return &FinalizeStep{logger: logger}
}

// Name returns the step name.
func (s *FinalizeStep) Name() string {
	return StepFinalize
}

// Do executes the finalize step.
func (s *FinalizeStep) Do(_ context.Context, job *Job) error {
	if err := job.Report.Finalize(job.Analysis.Settings); err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Info("report written", "path", job.Report.Path())
	}
	return nil
}
