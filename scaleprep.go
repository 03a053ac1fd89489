// Package scaleprep preprocesses wide-format survey exports into
// cleaned, per-construct summary scores. It exposes the pipeline
// entry points; the stage implementations live in the internal
// packages.
package scaleprep

import (
	"context"
	"log/slog"

	"scaleprep/internal/config"
	"scaleprep/internal/infrastructure"
	"scaleprep/internal/preprocessing"
	"scaleprep/pkg/contracts"
	"scaleprep/pkg/contracts/domain"
)

// Core data model and spec types.
type (
	Table         = domain.Table
	PipelineSpec  = domain.PipelineSpec
	GroupSpec     = domain.GroupSpec
	RenameSpec    = domain.RenameSpec
	PrefixRule    = domain.PrefixRule
	MissingPolicy = domain.MissingPolicy
)

// Pipeline execution types.
type (
	Runner      = preprocessing.Runner
	BatchRunner = preprocessing.BatchRunner
	BatchConfig = preprocessing.BatchConfig
	RunReport   = preprocessing.RunReport
	FileResult  = preprocessing.FileResult
)

// Telemetry types.
type (
	OTelConfig    = infrastructure.OTelConfig
	OTelProviders = infrastructure.OTelProviders
)

const (
	// MissingPolicyFail aborts a run on the first missing item value.
	MissingPolicyFail = domain.MissingPolicyFail
	// MissingPolicyPropagate leaves affected subscale cells empty and
	// reports them instead of aborting.
	MissingPolicyPropagate = domain.MissingPolicyPropagate
)

// VersionInfo describes the library build.
type VersionInfo = contracts.VersionInfo

// Version returns the library version string.
func Version() string {
	return contracts.GetVersionString()
}

// BuildInfo returns detailed version and build information.
func BuildInfo() VersionInfo {
	return contracts.GetVersionInfo()
}

// NewTable creates a table with the given field names and id field.
func NewTable(fields []string, idField string) *Table {
	return domain.NewTable(fields, idField)
}

// ItemFields builds item column names from a shared prefix and 1-based
// item numbers.
func ItemFields(prefix string, numbers []int) []string {
	return domain.ItemFields(prefix, numbers)
}

// NewRunner creates a pipeline runner. providers may be nil, in which
// case the global OpenTelemetry tracer and meter are used.
func NewRunner(logger *slog.Logger, providers *OTelProviders, missingPolicy MissingPolicy) (*Runner, error) {
	return preprocessing.NewRunner(logger, providers, missingPolicy)
}

// NewBatchRunner creates a batch runner around an existing Runner.
func NewBatchRunner(logger *slog.Logger, runner *Runner, cfg BatchConfig) *BatchRunner {
	return preprocessing.NewBatchRunner(logger, runner, cfg)
}

// LoadPipelineSpec loads a pipeline spec from a YAML file.
func LoadPipelineSpec(path string) (*PipelineSpec, error) {
	return config.LoadPipelineSpec(path)
}

// InitializeTelemetry sets up tracing and metrics. cfg may be nil for
// defaults. The returned providers should be shut down when done:
//
//	providers, err := scaleprep.InitializeTelemetry(nil, logger)
//	if err != nil { ... }
//	defer providers.Shutdown(ctx)
func InitializeTelemetry(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	return infrastructure.InitializeOTel(cfg, logger)
}

// Shutdown is a convenience wrapper for shutting down telemetry
// providers with a context.
func Shutdown(ctx context.Context, providers *OTelProviders) error {
	if providers == nil {
		return nil
	}
	return providers.Shutdown(ctx)
}

// Bootstrap loads configuration from the environment (SCALEPREP_*
// variables) and the optional scaleprep.yaml file, initializes the
// global logger and telemetry, and returns a runner wired to both. The
// missing-value policy still comes from each pipeline spec at run time.
// Callers should shut the providers down when done.
func Bootstrap() (*Runner, *OTelProviders, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("starting "+contracts.GetVersionString(),
		slog.String("build", contracts.GetFullVersionString()))

	providers, err := infrastructure.InitializeOTel(
		infrastructure.NewOTelConfigFromTelemetry(cfg.Telemetry), logger)
	if err != nil {
		return nil, nil, err
	}

	runner, err := preprocessing.NewRunner(logger, providers, "")
	if err != nil {
		return nil, nil, err
	}

	return runner, providers, nil
}
