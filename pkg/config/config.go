package config

import "time"

// Config is the root configuration structure for the fileformat service.
// It contains the format definition source, the record backend, export
// behavior, scheduled jobs and telemetry settings.
type Config struct {
	// Formats locates the format definition files.
	Formats FormatsConfig `yaml:"formats"`

	// Records configures the database the record ids are resolved against.
	Records RecordsConfig `yaml:"records"`

	// Export controls how output files are written.
	Export ExportConfig `yaml:"export"`

	// Jobs are exports run on a cron schedule by "fileformat serve".
	Jobs []JobConfig `yaml:"jobs"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// FormatsConfig locates the format definitions.
type FormatsConfig struct {
	// Path is a YAML file or a directory of YAML files.
	// Default: "./formats"
	Path string `yaml:"path"`

	// Watch reloads the definitions when the files change.
	// Default: false
	Watch bool `yaml:"watch"`

	// Debounce is the quiet period after a file change before reloading.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce"`
}

// RecordsConfig configures the record backend.
type RecordsConfig struct {
	// Driver selects the SQLite driver.
	// Options: "sqlite3" (github.com/mattn/go-sqlite3, cgo),
	// "sqlite" (modernc.org/sqlite, pure Go)
	// Default: "sqlite3"
	Driver string `yaml:"driver"`

	// Path is the database file path.
	// Default: "data/records.db"
	Path string `yaml:"path"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 4
	MaxOpenConns int `yaml:"max_open_conns"`

	// Models maps model names (e.g. "party.party") onto tables.
	Models map[string]ModelConfig `yaml:"models"`
}

// ModelConfig maps one model onto a table.
type ModelConfig struct {
	// Table defaults to the model name with dots replaced by underscores.
	Table string `yaml:"table"`

	// IDColumn defaults to "id".
	IDColumn string `yaml:"id_column"`

	// Relations are one-to-many collections keyed by attribute name.
	Relations map[string]RelationConfig `yaml:"relations"`
}

// RelationConfig names the related model and its foreign key column.
type RelationConfig struct {
	Model      string `yaml:"model"`
	ForeignKey string `yaml:"foreign_key"`
}

// ExportConfig controls output writing.
type ExportConfig struct {
	// FailureMode decides whether write failures are returned.
	// Options: "suppress" (log and continue), "strict" (log and fail)
	// Default: "suppress"
	FailureMode string `yaml:"failure_mode"`

	// CreateDirs creates missing output directories.
	// Default: false
	CreateDirs bool `yaml:"create_dirs"`
}

// JobConfig is one scheduled export.
type JobConfig struct {
	// Name identifies the job in logs and metrics.
	Name string `yaml:"name"`

	// Schedule is a standard 5-field cron expression or a descriptor such as
	// "@hourly".
	Schedule string `yaml:"schedule"`

	// Format is the format definition name.
	Format string `yaml:"format"`

	// IDs are the record ids to export.
	IDs []string `yaml:"ids"`

	// All exports every record of the format's model instead of IDs.
	All bool `yaml:"all"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// Output selects the destination.
	// Options: "stderr", "file", "both"
	// Default: "stderr"
	Output string `yaml:"output"`

	// File configures the rotated log file used by the "file" and "both"
	// outputs.
	File LogFileConfig `yaml:"file"`
}

// LogFileConfig configures log file rotation.
type LogFileConfig struct {
	// Path is the log file path.
	// Default: "logs/fileformat.log"
	Path string `yaml:"path"`

	// MaxSizeMB is the size in megabytes at which the file is rotated.
	// Default: 10
	MaxSizeMB int `yaml:"max_size_mb"`

	// MaxBackups is the number of rotated files to keep.
	// Default: 10
	MaxBackups int `yaml:"max_backups"`

	// MaxAgeDays is the number of days to keep rotated files.
	// Default: 30
	MaxAgeDays int `yaml:"max_age_days"`

	// Compress gzips rotated files.
	// Default: false
	Compress bool `yaml:"compress"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether export metrics are collected and served.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "fileformat"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "export"
	Subsystem string `yaml:"subsystem"`

	// ListenAddress is where "fileformat serve" exposes the metrics and
	// health endpoints.
	// Default: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// DurationBuckets defines histogram buckets for export duration (seconds).
	// Default: [0.01, 0.05, 0.1, 0.5, 1, 5, 30]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}
