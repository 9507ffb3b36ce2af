// Package config provides configuration management for the fileformat
// service.
//
// Configuration is read from a YAML file, completed with defaults,
// overridden from the environment and validated:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("fileformat.yaml")
//
// An empty path starts from the defaults alone.
//
// # Environment Variable Overrides
//
// Environment variables take precedence over the file:
//
//   - FILEFORMAT_FORMATS_PATH overrides formats.path
//   - FILEFORMAT_FORMATS_WATCH overrides formats.watch
//   - FILEFORMAT_RECORDS_DRIVER overrides records.driver
//   - FILEFORMAT_RECORDS_PATH overrides records.path
//   - FILEFORMAT_EXPORT_FAILURE_MODE overrides export.failure_mode
//   - FILEFORMAT_LOG_LEVEL overrides telemetry.logging.level
//   - FILEFORMAT_LOG_FORMAT overrides telemetry.logging.format
//   - FILEFORMAT_METRICS_ENABLED overrides telemetry.metrics.enabled
//   - FILEFORMAT_METRICS_LISTEN_ADDRESS overrides telemetry.metrics.listen_address
//
// # Validation
//
// Every rule is checked and the failures are reported together:
//
//	configuration validation failed with 2 errors:
//	  - records.driver: invalid driver "postgres" (must be one of: sqlite3, sqlite)
//	  - jobs[0].schedule: schedule is required
//
// # Example Configuration
//
//	formats:
//	  path: ./formats
//	  watch: true
//
//	records:
//	  driver: sqlite
//	  path: data/records.db
//	  models:
//	    party.party:
//	      relations:
//	        addresses:
//	          model: party.address
//	          foreign_key: party
//	    party.address: {}
//
//	export:
//	  failure_mode: suppress
//
//	jobs:
//	  - name: nightly-parties
//	    schedule: "0 2 * * *"
//	    format: party-export
//	    all: true
//
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
//	  metrics:
//	    enabled: true
//
// # Process-wide Configuration
//
// SetConfig, GetConfig and ReloadConfig keep one configuration for the
// process. The CLI stores the loaded configuration with SetConfig, and the
// serve command calls ReloadConfig when the configuration file changes.
// Tests should pass explicit Config values instead.
package config
