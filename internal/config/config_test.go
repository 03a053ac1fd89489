package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Point the loader at a directory without a config file
	t.Setenv("SCALEPREP_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "data/raw", cfg.Paths.InputDir)
	assert.Equal(t, "data/clean", cfg.Paths.OutputDir)
	assert.Equal(t, "pipeline.yaml", cfg.Paths.SpecFile)
	assert.Equal(t, "*.csv", cfg.Batch.FilePattern)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.Equal(t, "stdout", cfg.Telemetry.TraceExporter)
	assert.Equal(t, "prometheus", cfg.Telemetry.MetricExporter)
	assert.True(t, cfg.Telemetry.TracingEnabled())
	assert.True(t, cfg.Telemetry.MetricsEnabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SCALEPREP_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("SCALEPREP_LOGGING_LEVEL", "debug")
	t.Setenv("SCALEPREP_PATHS_INPUT_DIR", "/srv/surveys")
	t.Setenv("SCALEPREP_BATCH_CONCURRENCY", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/srv/surveys", cfg.Paths.InputDir)
	assert.Equal(t, 8, cfg.Batch.Concurrency)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "scaleprep.yaml")

	content := `
logging:
  level: warn
  file_path: logs/custom.log
paths:
  input_dir: surveys/in
  output_dir: surveys/out
batch:
  file_pattern: "wave*.csv"
  concurrency: 2
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	t.Setenv("SCALEPREP_CONFIG", configPath)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "logs/custom.log", cfg.Logging.FilePath)
	assert.Equal(t, "surveys/in", cfg.Paths.InputDir)
	assert.Equal(t, "surveys/out", cfg.Paths.OutputDir)
	assert.Equal(t, "wave*.csv", cfg.Batch.FilePattern)
	assert.Equal(t, 2, cfg.Batch.Concurrency)
}

func TestLoad_ForcesJSONLogFormat(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "scaleprep.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("logging:\n  format: text\n"), 0644))
	t.Setenv("SCALEPREP_CONFIG", configPath)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Batch.Concurrency = 0 },
			wantErr: true,
		},
		{
			name:    "empty file pattern",
			mutate:  func(c *Config) { c.Batch.FilePattern = "" },
			wantErr: true,
		},
		{
			name:    "sample ratio out of range",
			mutate:  func(c *Config) { c.Telemetry.SampleRatio = 1.5 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				Logging:   LoggingConfig{Level: "info", Format: "json", Output: "stdout", FilePath: "logs/a.log"},
				Paths:     PathsConfig{InputDir: "in", OutputDir: "out", SpecFile: "pipeline.yaml", LogsDir: "logs"},
				Telemetry: TelemetryConfig{SampleRatio: 1.0},
				Batch:     BatchConfig{FilePattern: "*.csv", Concurrency: 4},
			}
			tt.mutate(&cfg)

			err := cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
