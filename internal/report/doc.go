// Package report renders an analysis into a single styled HTML document.
//
// A Report owns one output sink and writes markup immediately as each section
// method is called. The expected call order over the lifetime of a report is:
//
//	r, err := report.Create("report.html", "Pam03", report.WithVersion(v))
//	defer r.Close()
//	r.Start()
//	r.AddSequencingInfo(cohort, calls, figures.MutationTable)
//	r.AddSimilarity(cohort, matrices)
//	r.AddConflictGraph(cohort, figures.ConflictGraph, phylogeny)
//	r.AddIncompatiblePatterns(cohort, phylogeny, calls, figures.IncompatiblePatterns)
//	r.AddArtifacts(cohort, phylogeny, calls, figures.Artifacts)
//	r.Finalize(settings)
//
// Design decision: Section methods never open or close elements directly.
// They receive a block that only offers self-closing helpers (within, element,
// line), so every section leaves the document at the nesting depth it found
// it. Only the document frame written by Start and closed by Finalize spans
// several calls.
//
// AddSimilarity flushes and syncs the sink. A report aborted after that point
// leaves a readable prefix on disk.
package report
