package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "records.driver").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// cronParser accepts the same expressions as the export scheduler.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate validates the entire configuration. All validation errors are
// collected and returned together as a ValidationError.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateFormats(&cfg.Formats)...)
	errs = append(errs, validateRecords(&cfg.Records)...)
	errs = append(errs, validateExport(&cfg.Export)...)
	errs = append(errs, validateJobs(cfg.Jobs)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateFormats(cfg *FormatsConfig) []FieldError {
	var errs []FieldError
	if cfg.Path == "" {
		errs = append(errs, FieldError{Field: "formats.path", Message: "path is required"})
	}
	if cfg.Debounce < 0 {
		errs = append(errs, FieldError{Field: "formats.debounce", Message: "debounce cannot be negative"})
	}
	return errs
}

func validateRecords(cfg *RecordsConfig) []FieldError {
	var errs []FieldError

	switch cfg.Driver {
	case "sqlite3", "sqlite":
	default:
		errs = append(errs, FieldError{
			Field:   "records.driver",
			Message: fmt.Sprintf("invalid driver %q (must be one of: sqlite3, sqlite)", cfg.Driver),
		})
	}
	if cfg.Path == "" {
		errs = append(errs, FieldError{Field: "records.path", Message: "path is required"})
	}
	if cfg.BusyTimeout < 0 {
		errs = append(errs, FieldError{Field: "records.busy_timeout", Message: "busy timeout cannot be negative"})
	}
	if cfg.MaxOpenConns < 0 {
		errs = append(errs, FieldError{Field: "records.max_open_conns", Message: "max open connections cannot be negative"})
	}

	for name, model := range cfg.Models {
		prefix := fmt.Sprintf("records.models.%s", name)
		for attr, rel := range model.Relations {
			field := fmt.Sprintf("%s.relations.%s", prefix, attr)
			if rel.Model == "" {
				errs = append(errs, FieldError{Field: field + ".model", Message: "model is required"})
			} else if _, ok := cfg.Models[rel.Model]; !ok {
				errs = append(errs, FieldError{Field: field + ".model", Message: fmt.Sprintf("unknown model %q", rel.Model)})
			}
			if rel.ForeignKey == "" {
				errs = append(errs, FieldError{Field: field + ".foreign_key", Message: "foreign key is required"})
			}
		}
	}
	return errs
}

func validateExport(cfg *ExportConfig) []FieldError {
	switch cfg.FailureMode {
	case "suppress", "strict":
		return nil
	default:
		return []FieldError{{
			Field:   "export.failure_mode",
			Message: fmt.Sprintf("invalid failure mode %q (must be one of: suppress, strict)", cfg.FailureMode),
		}}
	}
}

func validateJobs(jobs []JobConfig) []FieldError {
	var errs []FieldError
	seen := make(map[string]bool, len(jobs))
	for i, job := range jobs {
		prefix := fmt.Sprintf("jobs[%d]", i)
		if job.Name == "" {
			errs = append(errs, FieldError{Field: prefix + ".name", Message: "name is required"})
		} else if seen[job.Name] {
			errs = append(errs, FieldError{Field: prefix + ".name", Message: fmt.Sprintf("duplicate job name %q", job.Name)})
		}
		seen[job.Name] = true

		if job.Schedule == "" {
			errs = append(errs, FieldError{Field: prefix + ".schedule", Message: "schedule is required"})
		} else if _, err := cronParser.Parse(job.Schedule); err != nil {
			errs = append(errs, FieldError{Field: prefix + ".schedule", Message: fmt.Sprintf("invalid cron expression: %v", err)})
		}
		if job.Format == "" {
			errs = append(errs, FieldError{Field: prefix + ".format", Message: "format is required"})
		}
		if job.All && len(job.IDs) > 0 {
			errs = append(errs, FieldError{Field: prefix + ".ids", Message: "ids cannot be combined with all"})
		}
		if !job.All && len(job.IDs) == 0 {
			errs = append(errs, FieldError{Field: prefix + ".ids", Message: "ids are required unless all is set"})
		}
	}
	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	logging := cfg.Logging
	switch logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q (must be one of: debug, info, warn, error)", logging.Level),
		})
	}
	switch logging.Format {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q (must be one of: json, text, console)", logging.Format),
		})
	}
	switch logging.Output {
	case "stderr", "file", "both":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.output",
			Message: fmt.Sprintf("invalid log output %q (must be one of: stderr, file, both)", logging.Output),
		})
	}
	if logging.Output != "stderr" && logging.File.Path == "" {
		errs = append(errs, FieldError{Field: "telemetry.logging.file.path", Message: "path is required for file output"})
	}
	if logging.File.MaxSizeMB < 0 {
		errs = append(errs, FieldError{Field: "telemetry.logging.file.max_size_mb", Message: "max size cannot be negative"})
	}

	metrics := cfg.Metrics
	if metrics.Enabled {
		if _, _, err := net.SplitHostPort(metrics.ListenAddress); err != nil {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.listen_address",
				Message: fmt.Sprintf("invalid listen address %q: %v", metrics.ListenAddress, err),
			})
		}
		if !strings.HasPrefix(metrics.Path, "/") {
			errs = append(errs, FieldError{Field: "telemetry.metrics.path", Message: "path must start with /"})
		}
	}
	for i := 1; i < len(metrics.DurationBuckets); i++ {
		if metrics.DurationBuckets[i] <= metrics.DurationBuckets[i-1] {
			errs = append(errs, FieldError{Field: "telemetry.metrics.duration_buckets", Message: "buckets must be strictly increasing"})
			break
		}
	}
	return errs
}
