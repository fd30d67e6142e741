package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. COHORTDATA_SOURCE_PATH.
const EnvPrefix = "COHORTDATA"

// FlagBinding maps a command-line flag onto a configuration key. A bound
// flag overrides the file and environment only when set explicitly.
type FlagBinding struct {
	Key  string
	Flag *pflag.Flag
}

// Load builds a Config from defaults, the optional file at path,
// COHORTDATA_* environment variables and bound flags, in increasing order of
// precedence. ${VAR} references in the file are expanded before parsing.
func Load(path string, bindings ...FlagBinding) (*Config, error) {
	v := viper.New()
	setDefaults(v, NewDefault())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // G304: path is supplied by the operator
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		v.SetConfigType(configType(path))
		if err := v.ReadConfig(bytes.NewReader([]byte(substituteEnvVars(string(data))))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	for _, b := range bindings {
		if b.Flag == nil {
			continue
		}
		if err := v.BindPFlag(b.Key, b.Flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", b.Flag.Name, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save saves a configuration to a YAML file
func Save(filePath string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("source.path", d.Source.Path)
	v.SetDefault("source.compression", d.Source.Compression)
	v.SetDefault("source.region", d.Source.Region)
	v.SetDefault("source.endpoint", d.Source.Endpoint)
	v.SetDefault("source.credentials_file", d.Source.CredentialsFile)

	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.pretty", d.Output.Pretty)

	v.SetDefault("observability.log_level", d.Observability.LogLevel)
	v.SetDefault("observability.log_encoding", d.Observability.LogEncoding)
	v.SetDefault("observability.enable_metrics", d.Observability.EnableMetrics)
	v.SetDefault("observability.metrics_file", d.Observability.MetricsFile)
	v.SetDefault("observability.enable_tracing", d.Observability.EnableTracing)
	v.SetDefault("observability.tracing_sample_rate", d.Observability.TracingSampleRate)
}

func configType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	default:
		return "yaml"
	}
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values
func substituteEnvVars(content string) string {
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		varName := content[start+2 : end]
		envValue := os.Getenv(varName)
		content = content[:start] + envValue + content[end+1:]
	}
	return content
}
