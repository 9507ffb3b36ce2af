package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fileformat.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
formats:
  path: /etc/fileformat/formats
  watch: true
  debounce: 250ms
records:
  driver: sqlite
  path: /var/lib/fileformat/records.db
  models:
    party.party:
      relations:
        addresses:
          model: party.address
          foreign_key: party
    party.address:
      table: addresses
export:
  failure_mode: strict
  create_dirs: true
jobs:
  - name: nightly
    schedule: "0 2 * * *"
    format: party-export
    all: true
telemetry:
  logging:
    level: debug
    format: json
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Formats.Path != "/etc/fileformat/formats" {
		t.Errorf("Formats.Path = %q", cfg.Formats.Path)
	}
	if !cfg.Formats.Watch {
		t.Error("Formats.Watch = false, want true")
	}
	if cfg.Formats.Debounce != 250*time.Millisecond {
		t.Errorf("Formats.Debounce = %v, want 250ms", cfg.Formats.Debounce)
	}
	if cfg.Records.Driver != "sqlite" {
		t.Errorf("Records.Driver = %q, want sqlite", cfg.Records.Driver)
	}
	if got := cfg.Records.Models["party.address"].Table; got != "addresses" {
		t.Errorf("party.address table = %q, want addresses", got)
	}
	rel := cfg.Records.Models["party.party"].Relations["addresses"]
	if rel.Model != "party.address" || rel.ForeignKey != "party" {
		t.Errorf("relation = %+v", rel)
	}
	if cfg.Export.FailureMode != "strict" || !cfg.Export.CreateDirs {
		t.Errorf("Export = %+v", cfg.Export)
	}
	if len(cfg.Jobs) != 1 || cfg.Jobs[0].Name != "nightly" || !cfg.Jobs[0].All {
		t.Errorf("Jobs = %+v", cfg.Jobs)
	}
	if cfg.Telemetry.Logging.Level != "debug" || cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Telemetry.Logging)
	}

	// Defaults fill the rest
	if cfg.Records.BusyTimeout != DefaultRecordsBusyTimeout {
		t.Errorf("Records.BusyTimeout = %v, want %v", cfg.Records.BusyTimeout, DefaultRecordsBusyTimeout)
	}
	if cfg.Telemetry.Metrics.Path != DefaultPrometheusPath {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Telemetry.Metrics.Path, DefaultPrometheusPath)
	}
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\") error = %v", err)
	}
	if cfg.Formats.Path != DefaultFormatsPath {
		t.Errorf("Formats.Path = %q, want %q", cfg.Formats.Path, DefaultFormatsPath)
	}
	if cfg.Records.Driver != DefaultRecordsDriver {
		t.Errorf("Records.Driver = %q, want %q", cfg.Records.Driver, DefaultRecordsDriver)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "invalid yaml",
			content: "formats: [unterminated",
			wantErr: "failed to parse configuration file",
		},
		{
			name:    "invalid driver",
			content: "records:\n  driver: postgres\n",
			wantErr: "records.driver",
		},
		{
			name:    "invalid failure mode",
			content: "export:\n  failure_mode: loud\n",
			wantErr: "export.failure_mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("LoadConfig() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("LoadConfig() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "failed to read configuration file") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
formats:
  path: ./formats
records:
  path: data/records.db
`)

	t.Setenv("FILEFORMAT_FORMATS_PATH", "/srv/formats")
	t.Setenv("FILEFORMAT_FORMATS_WATCH", "true")
	t.Setenv("FILEFORMAT_RECORDS_DRIVER", "sqlite")
	t.Setenv("FILEFORMAT_RECORDS_PATH", "/srv/records.db")
	t.Setenv("FILEFORMAT_EXPORT_FAILURE_MODE", "strict")
	t.Setenv("FILEFORMAT_LOG_LEVEL", "warn")
	t.Setenv("FILEFORMAT_LOG_FORMAT", "json")
	t.Setenv("FILEFORMAT_METRICS_ENABLED", "true")
	t.Setenv("FILEFORMAT_METRICS_LISTEN_ADDRESS", "0.0.0.0:9100")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Formats.Path != "/srv/formats" {
		t.Errorf("Formats.Path = %q", cfg.Formats.Path)
	}
	if !cfg.Formats.Watch {
		t.Error("Formats.Watch = false, want true")
	}
	if cfg.Records.Driver != "sqlite" || cfg.Records.Path != "/srv/records.db" {
		t.Errorf("Records = %+v", cfg.Records)
	}
	if cfg.Export.FailureMode != "strict" {
		t.Errorf("Export.FailureMode = %q", cfg.Export.FailureMode)
	}
	if cfg.Telemetry.Logging.Level != "warn" || cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Telemetry.Logging)
	}
	if !cfg.Telemetry.Metrics.Enabled || cfg.Telemetry.Metrics.ListenAddress != "0.0.0.0:9100" {
		t.Errorf("Metrics = %+v", cfg.Telemetry.Metrics)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidOverride(t *testing.T) {
	t.Setenv("FILEFORMAT_RECORDS_DRIVER", "mysql")

	_, err := LoadConfigWithEnvOverrides("")
	if err == nil {
		t.Fatal("LoadConfigWithEnvOverrides() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "after environment overrides") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestLoadConfigWithEnvOverrides_UnparsableBool(t *testing.T) {
	t.Setenv("FILEFORMAT_FORMATS_WATCH", "sometimes")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}
	if cfg.Formats.Watch {
		t.Error("Formats.Watch = true, want unparsable value ignored")
	}
}
