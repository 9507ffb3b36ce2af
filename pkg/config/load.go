package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values and validates the result. An empty path yields
// the default configuration. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides named FILEFORMAT_SECTION_FIELD (e.g.
// FILEFORMAT_RECORDS_PATH). Environment variables take precedence over the
// file.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Unparsable boolean values are ignored.
func applyEnvOverrides(cfg *Config) {
	// Formats overrides
	if val := os.Getenv("FILEFORMAT_FORMATS_PATH"); val != "" {
		cfg.Formats.Path = val
	}
	if val := os.Getenv("FILEFORMAT_FORMATS_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Formats.Watch = b
		}
	}

	// Records overrides
	if val := os.Getenv("FILEFORMAT_RECORDS_DRIVER"); val != "" {
		cfg.Records.Driver = val
	}
	if val := os.Getenv("FILEFORMAT_RECORDS_PATH"); val != "" {
		cfg.Records.Path = val
	}

	// Export overrides
	if val := os.Getenv("FILEFORMAT_EXPORT_FAILURE_MODE"); val != "" {
		cfg.Export.FailureMode = val
	}

	// Telemetry overrides
	if val := os.Getenv("FILEFORMAT_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("FILEFORMAT_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("FILEFORMAT_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("FILEFORMAT_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}
}
