package preprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"scaleprep/internal/files"
	"scaleprep/internal/validation"
	"scaleprep/pkg/contracts/domain"
)

// BatchRunner applies the same pipeline spec to every survey export in
// a directory. Files are processed concurrently with a bounded worker
// count; each individual file still goes through the synchronous
// single-pass pipeline.
type BatchRunner struct {
	logger      *slog.Logger
	runner      *Runner
	validator   *validation.FileValidator
	discovery   *files.Discovery
	pattern     string
	concurrency int
}

// BatchConfig holds configuration options for the BatchRunner.
type BatchConfig struct {
	// FilePattern is the glob matched against input file names, e.g. "*.csv".
	FilePattern string
	// Concurrency bounds the number of files processed at once.
	Concurrency int
}

// FileResult records the outcome for one input file.
type FileResult struct {
	InputPath  string     `json:"input_path"`
	OutputPath string     `json:"output_path"`
	Report     *RunReport `json:"report,omitempty"`
	Err        error      `json:"-"`
}

// NewBatchRunner creates a batch runner around an existing Runner.
func NewBatchRunner(logger *slog.Logger, runner *Runner, config BatchConfig) *BatchRunner {
	if logger == nil {
		logger = slog.Default()
	}
	if config.FilePattern == "" {
		config.FilePattern = "*.csv"
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 4
	}

	return &BatchRunner{
		logger:      logger,
		runner:      runner,
		validator:   validation.NewFileValidator(logger),
		discovery:   files.NewDiscovery(""),
		pattern:     config.FilePattern,
		concurrency: config.Concurrency,
	}
}

// ProcessDirectory preprocesses every matching file in inputDir and
// writes results under outputDir with the same base name. The returned
// results are ordered by input path; a per-file failure is recorded in
// its FileResult and also aborts the remaining work.
func (b *BatchRunner) ProcessDirectory(ctx context.Context, spec *domain.PipelineSpec, inputDir, outputDir string) ([]FileResult, error) {
	if err := b.validator.ValidateInputDirectory(inputDir, b.pattern); err != nil {
		return nil, err
	}
	if err := b.validator.ValidateOutputDirectory(outputDir); err != nil {
		return nil, err
	}

	matches, err := b.discovery.FindFilesByPattern(inputDir, b.pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list input files: %w", err)
	}

	if len(matches) == 0 {
		b.logger.InfoContext(ctx, "no survey files to process",
			slog.String("input_dir", inputDir),
			slog.String("pattern", b.pattern))
		return nil, nil
	}

	b.logger.InfoContext(ctx, "starting batch preprocessing",
		slog.String("input_dir", inputDir),
		slog.String("output_dir", outputDir),
		slog.Int("files", len(matches)),
		slog.Int("concurrency", b.concurrency))

	results := make([]FileResult, len(matches))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, file := range matches {
		g.Go(func() error {
			inputPath := file.Path
			outputPath := filepath.Join(outputDir, file.Name)
			report, err := b.runner.RunFile(gctx, spec, inputPath, outputPath)

			mu.Lock()
			results[i] = FileResult{
				InputPath:  inputPath,
				OutputPath: outputPath,
				Report:     report,
				Err:        err,
			}
			mu.Unlock()

			if err != nil {
				return fmt.Errorf("process %s: %w", inputPath, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	b.logger.InfoContext(ctx, "batch preprocessing complete",
		slog.Int("files", len(results)))

	return results, nil
}
