package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Batch     BatchConfig     `yaml:"batch" envconfig:"BATCH"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	InputDir  string `yaml:"input_dir" envconfig:"INPUT_DIR"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	SpecFile  string `yaml:"spec_file" envconfig:"SPEC_FILE"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// TelemetryConfig contains observability configuration. Tracing and
// metrics are disabled by setting the respective exporter to "none".
type TelemetryConfig struct {
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// TracingEnabled reports whether a trace exporter is configured.
func (t TelemetryConfig) TracingEnabled() bool {
	return t.TraceExporter != "none"
}

// MetricsEnabled reports whether a metric exporter is configured.
func (t TelemetryConfig) MetricsEnabled() bool {
	return t.MetricExporter != "none"
}

// BatchConfig controls batch processing of input directories
type BatchConfig struct {
	FilePattern string `yaml:"file_pattern" envconfig:"FILE_PATTERN"`
	Concurrency int    `yaml:"concurrency" envconfig:"CONCURRENCY"`
}

// Load loads configuration from environment variables and config file.
// Environment variables take precedence over the file; defaults fill
// whatever remains unset.
func Load() (*Config, error) {
	var cfg Config

	// Explicit env vars win over everything
	if err := envconfig.Process("SCALEPREP", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Logging.Level == "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if envConfig.Logging.Format == "" {
		envConfig.Logging.Format = fileConfig.Logging.Format
	}
	if envConfig.Logging.Output == "" {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if envConfig.Logging.FilePath == "" {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if envConfig.Paths.InputDir == "" {
		envConfig.Paths.InputDir = fileConfig.Paths.InputDir
	}
	if envConfig.Paths.OutputDir == "" {
		envConfig.Paths.OutputDir = fileConfig.Paths.OutputDir
	}
	if envConfig.Paths.SpecFile == "" {
		envConfig.Paths.SpecFile = fileConfig.Paths.SpecFile
	}
	if envConfig.Paths.LogsDir == "" {
		envConfig.Paths.LogsDir = fileConfig.Paths.LogsDir
	}
	if envConfig.Telemetry.TraceExporter == "" {
		envConfig.Telemetry.TraceExporter = fileConfig.Telemetry.TraceExporter
	}
	if envConfig.Telemetry.MetricExporter == "" {
		envConfig.Telemetry.MetricExporter = fileConfig.Telemetry.MetricExporter
	}
	if envConfig.Telemetry.SampleRatio == 0 {
		envConfig.Telemetry.SampleRatio = fileConfig.Telemetry.SampleRatio
	}
	if envConfig.Batch.FilePattern == "" {
		envConfig.Batch.FilePattern = fileConfig.Batch.FilePattern
	}
	if envConfig.Batch.Concurrency == 0 {
		envConfig.Batch.Concurrency = fileConfig.Batch.Concurrency
	}

	return envConfig
}

// applyDefaults fills any setting still unset after env and file merge
func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "both"
	}
	if c.Paths.LogsDir == "" {
		c.Paths.LogsDir = "logs"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = filepath.Join(c.Paths.LogsDir, "scaleprep.log")
	}
	if c.Paths.InputDir == "" {
		c.Paths.InputDir = "data/raw"
	}
	if c.Paths.OutputDir == "" {
		c.Paths.OutputDir = "data/clean"
	}
	if c.Paths.SpecFile == "" {
		c.Paths.SpecFile = "pipeline.yaml"
	}
	if c.Telemetry.TraceExporter == "" {
		c.Telemetry.TraceExporter = "stdout"
	}
	if c.Telemetry.MetricExporter == "" {
		c.Telemetry.MetricExporter = "prometheus"
	}
	if c.Telemetry.SampleRatio == 0 {
		c.Telemetry.SampleRatio = 1.0
	}
	if c.Batch.FilePattern == "" {
		c.Batch.FilePattern = "*.csv"
	}
	if c.Batch.Concurrency == 0 {
		c.Batch.Concurrency = 4
	}
}

// getConfigFilePath returns the configuration file path, honoring the
// SCALEPREP_CONFIG override.
func getConfigFilePath() string {
	if path := os.Getenv("SCALEPREP_CONFIG"); path != "" {
		return path
	}
	return "scaleprep.yaml"
}

// validate validates the configuration
func (c *Config) validate() error {
	// Structured log aggregation expects JSON records
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	if c.Batch.Concurrency <= 0 {
		return fmt.Errorf("batch concurrency must be positive, got %d", c.Batch.Concurrency)
	}

	if c.Batch.FilePattern == "" {
		return fmt.Errorf("batch file pattern must not be empty")
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry sample ratio must be in [0,1], got %f", c.Telemetry.SampleRatio)
	}

	return nil
}
