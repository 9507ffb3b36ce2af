// Package telemetry groups the observability packages of the fileformat
// service.
//
//   - logging: slog logger with optional rotated file output
//   - metrics: Prometheus counters and histograms for exports and jobs
//   - health: checks behind the /healthz endpoint
package telemetry
