// Package pipeline renders analyses into reports by executing section steps
// in sequence.
//
// Every report section is implemented as a Step that receives the Job (the
// analysis plus the report under construction). ReportPipeline assembles the
// steps in the order the report lays them out, and Render wraps the whole run
// so the output file is released on every path.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows sections to be skipped when their input is missing
// 2. It provides consistent error handling and logging across sections
// 3. It supports cancellation via context between sections
//
// The pipeline supports both individual reports and batch rendering with
// concurrency control using errgroup.
package pipeline
