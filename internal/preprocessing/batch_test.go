package preprocessing

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scaleprep/pkg/contracts/domain"
)

func writeSurveyFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewBatchRunner_Defaults(t *testing.T) {
	runner := newRunnerForTest(t, domain.MissingPolicyFail)

	batch := NewBatchRunner(nil, runner, BatchConfig{})

	assert.Equal(t, "*.csv", batch.pattern)
	assert.Equal(t, 4, batch.concurrency)
	assert.NotNil(t, batch.logger)
}

func TestBatchRunner_ProcessDirectory(t *testing.T) {
	ctx := context.Background()
	runner := newRunnerForTest(t, domain.MissingPolicyFail)
	batch := NewBatchRunner(slog.Default(), runner, BatchConfig{Concurrency: 2})

	inputDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "clean")

	content := "participant_id,q1,q2\n1,2,3\n2,0,1\n"
	writeSurveyFile(t, inputDir, "wave1.csv", content)
	writeSurveyFile(t, inputDir, "wave2.csv", content)
	writeSurveyFile(t, inputDir, "notes.txt", "not a survey")

	spec := &domain.PipelineSpec{
		IDField: "participant_id",
		Scales:  []domain.GroupSpec{{Name: "total", Items: []string{"q1", "q2"}}},
	}

	results, err := batch.ProcessDirectory(ctx, spec, inputDir, outputDir)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, filepath.Join(inputDir, "wave1.csv"), results[0].InputPath)
	assert.Equal(t, filepath.Join(inputDir, "wave2.csv"), results[1].InputPath)

	for _, res := range results {
		require.NoError(t, res.Err)
		require.NotNil(t, res.Report)
		assert.Equal(t, 2, res.Report.RowsOut)
		assert.FileExists(t, res.OutputPath)
	}
}

func TestBatchRunner_ProcessDirectory_EmptyDirectory(t *testing.T) {
	ctx := context.Background()
	runner := newRunnerForTest(t, domain.MissingPolicyFail)
	batch := NewBatchRunner(slog.Default(), runner, BatchConfig{})

	results, err := batch.ProcessDirectory(ctx,
		&domain.PipelineSpec{IDField: "participant_id"},
		t.TempDir(), t.TempDir())

	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestBatchRunner_ProcessDirectory_MissingInputDir(t *testing.T) {
	ctx := context.Background()
	runner := newRunnerForTest(t, domain.MissingPolicyFail)
	batch := NewBatchRunner(slog.Default(), runner, BatchConfig{})

	_, err := batch.ProcessDirectory(ctx,
		&domain.PipelineSpec{IDField: "participant_id"},
		filepath.Join(t.TempDir(), "does-not-exist"), t.TempDir())

	require.Error(t, err)
}

func TestBatchRunner_ProcessDirectory_FileFailureRecorded(t *testing.T) {
	ctx := context.Background()
	runner := newRunnerForTest(t, domain.MissingPolicyFail)
	batch := NewBatchRunner(slog.Default(), runner, BatchConfig{Concurrency: 1})

	inputDir := t.TempDir()
	// missing the q2 column referenced by the scale
	writeSurveyFile(t, inputDir, "bad.csv", "participant_id,q1\n1,2\n")

	spec := &domain.PipelineSpec{
		IDField: "participant_id",
		Scales:  []domain.GroupSpec{{Name: "total", Items: []string{"q1", "q2"}}},
	}

	results, err := batch.ProcessDirectory(ctx, spec, inputDir, t.TempDir())
	require.Error(t, err)
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
}
