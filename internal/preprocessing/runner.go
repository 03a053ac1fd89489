package preprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"scaleprep/internal/errors"
	"scaleprep/internal/exporter"
	"scaleprep/internal/importer"
	"scaleprep/internal/infrastructure"
	"scaleprep/internal/validation"
	"scaleprep/pkg/contracts/domain"
)

const (
	// TracerName identifies preprocessing spans.
	TracerName = "scaleprep.preprocessing"
)

// Runner drives a full preprocessing run: it validates the pipeline
// spec and applies project, exclude, rename, and aggregate in sequence,
// with a span and metrics per stage.
type Runner struct {
	logger    *slog.Logger
	pre       *Preprocessor
	policy    domain.MissingPolicy
	validator *validation.SpecValidator
	tracer    trace.Tracer
	metrics   *infrastructure.PipelineMetrics
}

// NewRunner creates a runner. providers may be nil, in which case the
// global OpenTelemetry tracer and meter are used. missingPolicy is the
// fallback for specs that leave the policy unset; a policy declared in
// the spec always wins.
func NewRunner(logger *slog.Logger, providers *infrastructure.OTelProviders, missingPolicy domain.MissingPolicy) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if missingPolicy == "" {
		missingPolicy = domain.MissingPolicyFail
	}

	meter := otel.Meter(infrastructure.MeterName)
	if providers != nil && providers.Meter != nil {
		meter = providers.Meter
	}

	metrics, err := infrastructure.CreatePipelineMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	return &Runner{
		logger:    logger,
		pre:       NewPreprocessor(logger, PreprocessorConfig{MissingPolicy: missingPolicy}),
		policy:    missingPolicy,
		validator: validation.NewSpecValidator(logger),
		tracer:    otel.Tracer(TracerName),
		metrics:   metrics,
	}, nil
}

// Run applies the pipeline spec to the table and returns the resulting
// table and a run report. The input table is not modified.
func (r *Runner) Run(ctx context.Context, spec *domain.PipelineSpec, table *domain.Table) (*domain.Table, *RunReport, error) {
	ctx = infrastructure.EnsureTraceID(ctx)

	if err := r.validator.ValidateSpec(spec); err != nil {
		return nil, nil, err
	}

	// The stages key off table.IDField; align it with the spec so a
	// caller-built table with a blank or stale id column still works.
	if table.IDField != spec.IDField {
		if !table.HasField(spec.IDField) {
			return nil, nil, errors.NewUnknownFieldError(spec.IDField)
		}
		table = table.Clone()
		table.IDField = spec.IDField
	}

	// The spec's policy governs aggregation; the constructor policy is
	// only the fallback for specs that leave it unset.
	policy := r.policy
	if spec.MissingPolicy != "" {
		policy = spec.MissingPolicy
	}

	runID := uuid.New().String()
	started := time.Now()

	report := &RunReport{
		RunID:     runID,
		RowsIn:    table.NumRows(),
		StartedAt: started,
	}

	ctx, span := r.tracer.Start(ctx, "preprocess.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("run.rows_in", table.NumRows()),
			attribute.Int("run.fields_in", table.NumFields()),
			attribute.String("run.missing_policy", string(policy)),
		),
	)
	defer span.End()

	r.metrics.RunsTotal.Add(ctx, 1)

	r.logger.InfoContext(ctx, "starting preprocessing run",
		slog.String("run_id", runID),
		slog.Int("rows", table.NumRows()),
		slog.Int("fields", table.NumFields()))

	current := table
	var err error

	if len(spec.Project) > 0 {
		current, err = r.runStage(ctx, report, "project", current, func(ctx context.Context, t *domain.Table) (*domain.Table, error) {
			return r.pre.Project(ctx, t, spec.Project)
		})
		if err != nil {
			return nil, nil, r.failRun(ctx, runID, err)
		}
	}

	if len(spec.Exclude) > 0 {
		rowsBefore := current.NumRows()
		current, err = r.runStage(ctx, report, "exclude", current, func(ctx context.Context, t *domain.Table) (*domain.Table, error) {
			return r.pre.Exclude(ctx, t, spec.Exclude)
		})
		if err != nil {
			return nil, nil, r.failRun(ctx, runID, err)
		}
		r.metrics.RowsExcluded.Add(ctx, int64(rowsBefore-current.NumRows()))
	}

	if !spec.Rename.IsZero() {
		current, err = r.runStage(ctx, report, "rename", current, func(ctx context.Context, t *domain.Table) (*domain.Table, error) {
			return r.pre.Rename(ctx, t, spec.Rename)
		})
		if err != nil {
			return nil, nil, r.failRun(ctx, runID, err)
		}
	}

	if len(spec.Scales) > 0 {
		pre := r.pre.WithMissingPolicy(policy)
		var aggReport *AggregateReport
		current, err = r.runStage(ctx, report, "aggregate", current, func(ctx context.Context, t *domain.Table) (*domain.Table, error) {
			out, rep, err := pre.Aggregate(ctx, t, spec.Scales)
			aggReport = rep
			return out, err
		})
		if err != nil {
			return nil, nil, r.failRun(ctx, runID, err)
		}
		if aggReport != nil && len(aggReport.MissingCells) > 0 {
			report.MissingCells = aggReport.MissingCells
			r.metrics.MissingValuesTotal.Add(ctx, int64(len(aggReport.MissingCells)))
		}
	}

	report.RowsOut = current.NumRows()
	report.FieldsOut = current.NumFields()
	report.Duration = time.Since(started)

	r.metrics.RowsProcessed.Add(ctx, int64(report.RowsOut))
	r.metrics.RunDuration.Record(ctx, report.Duration.Seconds())

	span.SetAttributes(
		attribute.Int("run.rows_out", report.RowsOut),
		attribute.Int("run.fields_out", report.FieldsOut),
		attribute.Int("run.missing_cells", len(report.MissingCells)),
		attribute.Float64("run.duration_seconds", report.Duration.Seconds()),
	)

	r.logger.InfoContext(ctx, "preprocessing run complete",
		slog.String("run_id", runID),
		slog.Int("rows_out", report.RowsOut),
		slog.Int("fields_out", report.FieldsOut),
		slog.Int("missing_cells", len(report.MissingCells)),
		slog.Duration("duration", report.Duration))

	return current, report, nil
}

// RunFile reads a CSV file, applies the pipeline spec, and writes the
// resulting table to outputPath.
func (r *Runner) RunFile(ctx context.Context, spec *domain.PipelineSpec, inputPath, outputPath string) (*RunReport, error) {
	reader := importer.NewReader(r.logger)
	table, err := reader.ReadFile(inputPath, spec.IDField)
	if err != nil {
		return nil, err
	}

	result, report, err := r.Run(ctx, spec, table)
	if err != nil {
		return nil, err
	}

	writer := exporter.NewCSVWriter("")
	if err := writer.WriteTable(outputPath, result); err != nil {
		return nil, errors.NewStorageError("failed to write preprocessed table", err).
			WithContext("path", outputPath)
	}

	r.logger.InfoContext(ctx, "wrote preprocessed table",
		slog.String("input", inputPath),
		slog.String("output", outputPath),
		slog.Int("rows", result.NumRows()))

	return report, nil
}

// runStage executes one pipeline stage under its own span and records
// stage metrics.
func (r *Runner) runStage(ctx context.Context, report *RunReport, stage string, table *domain.Table, fn func(context.Context, *domain.Table) (*domain.Table, error)) (*domain.Table, error) {
	ctx, span := r.tracer.Start(ctx, fmt.Sprintf("preprocess.stage.%s", stage),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("stage.name", stage),
			attribute.Int("stage.rows_in", table.NumRows()),
		),
	)
	defer span.End()

	started := time.Now()
	out, err := fn(ctx, table)
	duration := time.Since(started)

	attrs := metric.WithAttributes(attribute.String("stage", stage))
	r.metrics.StageExecutions.Add(ctx, 1, attrs)
	r.metrics.StageDuration.Record(ctx, duration.Seconds(), attrs)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("%s stage: %w", stage, err)
	}

	span.SetAttributes(
		attribute.Int("stage.rows_out", out.NumRows()),
		attribute.Int("stage.fields_out", out.NumFields()),
	)

	report.Stages = append(report.Stages, StageReport{
		Stage:    stage,
		RowsIn:   table.NumRows(),
		RowsOut:  out.NumRows(),
		Fields:   out.NumFields(),
		Duration: duration,
	})

	return out, nil
}

// failRun records a failed run on the span and metrics before returning.
func (r *Runner) failRun(ctx context.Context, runID string, err error) error {
	r.metrics.RunErrors.Add(ctx, 1)
	infrastructure.RecordError(ctx, err)

	r.logger.ErrorContext(ctx, "preprocessing run failed",
		slog.String("run_id", runID),
		slog.String("error", err.Error()))

	return err
}
