package config

import "time"

// Default values for configuration fields.
const (
	// Formats defaults
	DefaultFormatsPath     = "./formats"
	DefaultFormatsDebounce = 100 * time.Millisecond

	// Records defaults
	DefaultRecordsDriver       = "sqlite3"
	DefaultRecordsPath         = "data/records.db"
	DefaultRecordsBusyTimeout  = 5 * time.Second
	DefaultRecordsMaxOpenConns = 4

	// Export defaults
	DefaultExportFailureMode = "suppress"

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "text"
	DefaultLoggingOutput      = "stderr"
	DefaultLogFilePath        = "logs/fileformat.log"
	DefaultLogFileMaxSizeMB   = 10
	DefaultLogFileMaxBackups  = 10
	DefaultLogFileMaxAgeDays  = 30
	DefaultMetricsNamespace   = "fileformat"
	DefaultMetricsSubsystem   = "export"
	DefaultMetricsListenAddr  = "127.0.0.1:9464"
	DefaultPrometheusPath     = "/metrics"
)

// DefaultDurationBuckets are the export duration histogram buckets in seconds.
var DefaultDurationBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Formats defaults
	if cfg.Formats.Path == "" {
		cfg.Formats.Path = DefaultFormatsPath
	}
	if cfg.Formats.Debounce == 0 {
		cfg.Formats.Debounce = DefaultFormatsDebounce
	}

	// Records defaults
	if cfg.Records.Driver == "" {
		cfg.Records.Driver = DefaultRecordsDriver
	}
	if cfg.Records.Path == "" {
		cfg.Records.Path = DefaultRecordsPath
	}
	if cfg.Records.BusyTimeout == 0 {
		cfg.Records.BusyTimeout = DefaultRecordsBusyTimeout
	}
	if cfg.Records.MaxOpenConns == 0 {
		cfg.Records.MaxOpenConns = DefaultRecordsMaxOpenConns
	}

	// Export defaults
	if cfg.Export.FailureMode == "" {
		cfg.Export.FailureMode = DefaultExportFailureMode
	}

	// Logging defaults
	logging := &cfg.Telemetry.Logging
	if logging.Level == "" {
		logging.Level = DefaultLoggingLevel
	}
	if logging.Format == "" {
		logging.Format = DefaultLoggingFormat
	}
	if logging.Output == "" {
		logging.Output = DefaultLoggingOutput
	}
	if logging.File.Path == "" {
		logging.File.Path = DefaultLogFilePath
	}
	if logging.File.MaxSizeMB == 0 {
		logging.File.MaxSizeMB = DefaultLogFileMaxSizeMB
	}
	if logging.File.MaxBackups == 0 {
		logging.File.MaxBackups = DefaultLogFileMaxBackups
	}
	if logging.File.MaxAgeDays == 0 {
		logging.File.MaxAgeDays = DefaultLogFileMaxAgeDays
	}

	// Metrics defaults
	metrics := &cfg.Telemetry.Metrics
	if metrics.Namespace == "" {
		metrics.Namespace = DefaultMetricsNamespace
	}
	if metrics.Subsystem == "" {
		metrics.Subsystem = DefaultMetricsSubsystem
	}
	if metrics.ListenAddress == "" {
		metrics.ListenAddress = DefaultMetricsListenAddr
	}
	if metrics.Path == "" {
		metrics.Path = DefaultPrometheusPath
	}
	if len(metrics.DurationBuckets) == 0 {
		metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}
}
