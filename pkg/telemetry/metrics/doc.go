// Package metrics provides Prometheus metrics for file format exports.
//
// The Collector implements export.Observer and is passed to the exporter:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	exporter, err := export.New(export.Config{
//	    Resolver: resolver,
//	    Observer: collector,
//	})
//
// It also records scheduled job executions and format definition reloads,
// and serves everything through Handler.
//
// # Metrics
//
// With the default namespace "fileformat" and subsystem "export":
//
//   - fileformat_export_runs_total{format,kind,status}
//   - fileformat_export_duration_seconds{format}
//   - fileformat_export_records_total{format}
//   - fileformat_export_files_total{format}
//   - fileformat_export_field_errors_total{format,field}
//   - fileformat_export_write_failures_total{format,kind}
//   - fileformat_job_runs_total{job,status}
//   - fileformat_job_last_run_timestamp_seconds{job}
//   - fileformat_format_reloads_total{result}
//   - fileformat_formats_loaded
package metrics
