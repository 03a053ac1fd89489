// Package preprocessing transforms raw wide-format survey-response
// tables into cleaned, per-construct summary scores.
//
// # Architecture
//
// The package is organized into three main components:
//
// 1. Preprocessor: the four table stages (project, exclude, rename, aggregate)
// 2. Runner: applies a PipelineSpec end to end with tracing and metrics
// 3. BatchRunner: processes a directory of survey exports with bounded concurrency
//
// # Usage
//
// Scoring a single table:
//
//	pre := preprocessing.NewPreprocessor(logger, preprocessing.DefaultPreprocessorConfig())
//	kept, err := pre.Project(ctx, table, []string{"participant_id", "dass_3", "dass_5"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	scored, report, err := pre.Aggregate(ctx, kept, scales)
//
// Running a full spec against a file:
//
//	runner, err := preprocessing.NewRunner(logger, providers, domain.MissingPolicyFail)
//	report, err := runner.RunFile(ctx, spec, "data/raw/wave1.csv", "data/clean/wave1.csv")
//
// # Missing data
//
// A missing or unparseable item value never contributes zero to a
// subscale sum. Under MissingPolicyFail the aggregation aborts with a
// MISSING_VALUE error; under MissingPolicyPropagate the affected
// subscale cell stays empty and every occurrence is listed in the run
// report.
//
// # Error Handling
//
// Stage errors carry the offending field, group, and row in their
// context so callers can report exactly what failed. Nothing is
// silently corrected and no operation is retried.
package preprocessing
