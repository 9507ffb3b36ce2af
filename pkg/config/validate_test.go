package config

import (
	"errors"
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Records.Models = map[string]ModelConfig{
		"party.party": {
			Relations: map[string]RelationConfig{
				"addresses": {Model: "party.address", ForeignKey: "party"},
			},
		},
		"party.address": {},
	}
	cfg.Jobs = []JobConfig{
		{Name: "nightly", Schedule: "0 2 * * *", Format: "party-export", All: true},
		{Name: "hourly", Schedule: "@hourly", Format: "party-export", IDs: []string{"1", "2"}},
	}
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"empty formats path", func(c *Config) { c.Formats.Path = "" }, "formats.path"},
		{"negative debounce", func(c *Config) { c.Formats.Debounce = -1 }, "formats.debounce"},
		{"unknown driver", func(c *Config) { c.Records.Driver = "postgres" }, "records.driver"},
		{"empty records path", func(c *Config) { c.Records.Path = "" }, "records.path"},
		{"negative conns", func(c *Config) { c.Records.MaxOpenConns = -1 }, "records.max_open_conns"},
		{"unknown relation model", func(c *Config) {
			c.Records.Models["party.party"] = ModelConfig{Relations: map[string]RelationConfig{
				"contacts": {Model: "party.contact", ForeignKey: "party"},
			}}
		}, "records.models.party.party.relations.contacts.model"},
		{"missing foreign key", func(c *Config) {
			c.Records.Models["party.party"] = ModelConfig{Relations: map[string]RelationConfig{
				"addresses": {Model: "party.address"},
			}}
		}, "records.models.party.party.relations.addresses.foreign_key"},
		{"failure mode", func(c *Config) { c.Export.FailureMode = "loud" }, "export.failure_mode"},
		{"job without name", func(c *Config) { c.Jobs[0].Name = "" }, "jobs[0].name"},
		{"duplicate job", func(c *Config) { c.Jobs[1].Name = "nightly" }, "jobs[1].name"},
		{"invalid schedule", func(c *Config) { c.Jobs[0].Schedule = "every day" }, "jobs[0].schedule"},
		{"job without format", func(c *Config) { c.Jobs[0].Format = "" }, "jobs[0].format"},
		{"job ids and all", func(c *Config) { c.Jobs[0].IDs = []string{"1"} }, "jobs[0].ids"},
		{"job without ids", func(c *Config) { c.Jobs[1].IDs = nil }, "jobs[1].ids"},
		{"log level", func(c *Config) { c.Telemetry.Logging.Level = "trace" }, "telemetry.logging.level"},
		{"log format", func(c *Config) { c.Telemetry.Logging.Format = "xml" }, "telemetry.logging.format"},
		{"log output", func(c *Config) { c.Telemetry.Logging.Output = "syslog" }, "telemetry.logging.output"},
		{"log file path", func(c *Config) {
			c.Telemetry.Logging.Output = "file"
			c.Telemetry.Logging.File.Path = ""
		}, "telemetry.logging.file.path"},
		{"metrics address", func(c *Config) {
			c.Telemetry.Metrics.Enabled = true
			c.Telemetry.Metrics.ListenAddress = "localhost"
		}, "telemetry.metrics.listen_address"},
		{"metrics path", func(c *Config) {
			c.Telemetry.Metrics.Enabled = true
			c.Telemetry.Metrics.Path = "metrics"
		}, "telemetry.metrics.path"},
		{"buckets", func(c *Config) { c.Telemetry.Metrics.DurationBuckets = []float64{1, 0.5} }, "telemetry.metrics.duration_buckets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() error = nil, want error")
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error type = %T, want ValidationError", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("errors = %v, want one for field %q", verr.Errors, tt.field)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "records.path", Message: "path is required"}}}
	if got, want := single.Error(), "configuration validation failed: records.path: path is required"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	multi := ValidationError{Errors: []FieldError{
		{Field: "records.path", Message: "path is required"},
		{Field: "formats.path", Message: "path is required"},
	}}
	got := multi.Error()
	if !strings.HasPrefix(got, "configuration validation failed with 2 errors:\n") {
		t.Errorf("Error() = %q", got)
	}
	if !strings.Contains(got, "  - formats.path: path is required\n") {
		t.Errorf("Error() = %q", got)
	}

	if got := (ValidationError{}).Error(); got != "configuration validation failed" {
		t.Errorf("Error() = %q", got)
	}
}
