package config

import (
	"fmt"

	"go.uber.org/zap/zapcore"

	"github.com/ajitpratap0/cohortdata/pkg/compression"
	"github.com/ajitpratap0/cohortdata/pkg/logger"
	"github.com/ajitpratap0/cohortdata/pkg/source"
)

// Output formats.
const (
	FormatText      = "text"
	FormatJSON      = "json"
	FormatJSONLines = "jsonl"
	FormatCSV       = "csv"
)

// Config is the complete cohortdata configuration.
type Config struct {
	// Source locates the roster file
	Source SourceConfig `yaml:"source" json:"source" mapstructure:"source"`

	// Output controls how query results are rendered
	Output OutputConfig `yaml:"output" json:"output" mapstructure:"output"`

	// Observability settings for logging, metrics and tracing
	Observability ObservabilityConfig `yaml:"observability" json:"observability" mapstructure:"observability"`
}

// SourceConfig locates and decodes the roster file.
type SourceConfig struct {
	// Path is a local path or a file://, s3:// or gs:// URI
	Path string `yaml:"path" json:"path" mapstructure:"path"`
	// Compression is auto, none, gzip, zstd, lz4, snappy or s2
	Compression string `yaml:"compression" json:"compression" mapstructure:"compression"`
	// Region is the AWS region for s3:// paths
	Region string `yaml:"region" json:"region" mapstructure:"region"`
	// Endpoint overrides the S3 endpoint
	Endpoint string `yaml:"endpoint" json:"endpoint" mapstructure:"endpoint"`
	// CredentialsFile is a GCS service account key
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file" mapstructure:"credentials_file"`
}

// OutputConfig controls result rendering.
type OutputConfig struct {
	// Format is text, json, jsonl or csv
	Format string `yaml:"format" json:"format" mapstructure:"format"`
	// Pretty indents JSON output
	Pretty bool `yaml:"pretty" json:"pretty" mapstructure:"pretty"`
}

// ObservabilityConfig contains monitoring and observability settings.
type ObservabilityConfig struct {
	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
	// LogEncoding is console or json
	LogEncoding string `yaml:"log_encoding" json:"log_encoding" mapstructure:"log_encoding"`
	// EnableMetrics activates metrics collection
	EnableMetrics bool `yaml:"enable_metrics" json:"enable_metrics" mapstructure:"enable_metrics"`
	// MetricsFile receives a Prometheus text dump on exit
	MetricsFile string `yaml:"metrics_file" json:"metrics_file" mapstructure:"metrics_file"`
	// EnableTracing activates span export
	EnableTracing bool `yaml:"enable_tracing" json:"enable_tracing" mapstructure:"enable_tracing"`
	// TracingSampleRate controls trace sampling (0.0-1.0)
	TracingSampleRate float64 `yaml:"tracing_sample_rate" json:"tracing_sample_rate" mapstructure:"tracing_sample_rate"`
}

// NewDefault returns a configuration with default values.
func NewDefault() *Config {
	return &Config{
		Source: SourceConfig{
			Path:        "cohort_data.txt",
			Compression: string(compression.Auto),
		},
		Output: OutputConfig{
			Format: FormatText,
		},
		Observability: ObservabilityConfig{
			LogLevel:          "warn",
			LogEncoding:       "console",
			EnableMetrics:     false,
			EnableTracing:     false,
			TracingSampleRate: 1.0,
		},
	}
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.Source.Path == "" {
		return fmt.Errorf("source.path is required")
	}
	if _, err := compression.ParseAlgorithm(c.Source.Compression); err != nil {
		return fmt.Errorf("source.compression: %w", err)
	}

	switch c.Output.Format {
	case FormatText, FormatJSON, FormatJSONLines, FormatCSV:
	default:
		return fmt.Errorf("output.format must be one of text, json, jsonl, csv; got %q", c.Output.Format)
	}

	if _, err := zapcore.ParseLevel(c.Observability.LogLevel); err != nil {
		return fmt.Errorf("observability.log_level: %w", err)
	}
	switch c.Observability.LogEncoding {
	case "console", "json":
	default:
		return fmt.Errorf("observability.log_encoding must be console or json; got %q", c.Observability.LogEncoding)
	}
	if c.Observability.TracingSampleRate < 0 || c.Observability.TracingSampleRate > 1 {
		return fmt.Errorf("observability.tracing_sample_rate must be between 0 and 1")
	}
	return nil
}

// CompressionAlgorithm returns the parsed compression setting.
func (s SourceConfig) CompressionAlgorithm() compression.Algorithm {
	alg, err := compression.ParseAlgorithm(s.Compression)
	if err != nil {
		return compression.Auto
	}
	return alg
}

// Backend returns the settings passed to source openers.
func (s SourceConfig) Backend() source.Config {
	return source.Config{
		Region:          s.Region,
		Endpoint:        s.Endpoint,
		CredentialsFile: s.CredentialsFile,
	}
}

// Logger returns the logger configuration.
func (o ObservabilityConfig) Logger() logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = o.LogLevel
	cfg.Encoding = o.LogEncoding
	return cfg
}
