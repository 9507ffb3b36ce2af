package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/fileformat/pkg/config"
)

// ExportMetrics tracks export runs.
//
// Metrics:
//   - fileformat_export_runs_total: Export runs by format, kind and status
//   - fileformat_export_duration_seconds: Export run duration
//   - fileformat_export_records_total: Records rendered
//   - fileformat_export_files_total: Files written
//   - fileformat_export_field_errors_total: Fields that fell back to empty
//   - fileformat_export_write_failures_total: Files that could not be written
type ExportMetrics struct {
	runsTotal          *prometheus.CounterVec
	duration           *prometheus.HistogramVec
	recordsTotal       *prometheus.CounterVec
	filesTotal         *prometheus.CounterVec
	fieldErrorsTotal   *prometheus.CounterVec
	writeFailuresTotal *prometheus.CounterVec
}

// NewExportMetrics creates and registers export metrics with the provided registry.
func NewExportMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ExportMetrics {
	em := &ExportMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "runs_total",
				Help:      "Total number of export runs",
			},
			[]string{"format", "kind", "status"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "duration_seconds",
				Help:      "Duration of export runs in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"format"},
		),

		recordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "records_total",
				Help:      "Total number of records rendered",
			},
			[]string{"format"},
		),

		filesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "files_total",
				Help:      "Total number of files written",
			},
			[]string{"format"},
		),

		fieldErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "field_errors_total",
				Help:      "Total number of field expressions that failed",
			},
			[]string{"format", "field"},
		),

		writeFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "write_failures_total",
				Help:      "Total number of files that could not be written",
			},
			[]string{"format", "kind"},
		),
	}

	registry.MustRegister(
		em.runsTotal,
		em.duration,
		em.recordsTotal,
		em.filesTotal,
		em.fieldErrorsTotal,
		em.writeFailuresTotal,
	)

	return em
}

// RecordExport records a completed run.
func (em *ExportMetrics) RecordExport(formatName, kind, status string, duration time.Duration, records, files int) {
	em.runsTotal.WithLabelValues(formatName, kind, status).Inc()
	em.duration.WithLabelValues(formatName).Observe(duration.Seconds())
	em.recordsTotal.WithLabelValues(formatName).Add(float64(records))
	em.filesTotal.WithLabelValues(formatName).Add(float64(files))
}

// RecordFieldError records one failed field.
func (em *ExportMetrics) RecordFieldError(formatName, fieldName string) {
	em.fieldErrorsTotal.WithLabelValues(formatName, fieldName).Inc()
}

// RecordWriteFailure records one failed file write.
func (em *ExportMetrics) RecordWriteFailure(formatName, kind string) {
	em.writeFailuresTotal.WithLabelValues(formatName, kind).Inc()
}
