package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/fileformat/pkg/config"
)

// JobMetrics tracks scheduled jobs and format definition reloads.
//
// Metrics:
//   - fileformat_job_runs_total: Scheduled job executions by job and status
//   - fileformat_job_last_run_timestamp_seconds: Unix time of the last run
//   - fileformat_format_reloads_total: Definition reloads by result
//   - fileformat_formats_loaded: Definitions currently loaded
type JobMetrics struct {
	runsTotal     *prometheus.CounterVec
	lastRun       *prometheus.GaugeVec
	reloadsTotal  *prometheus.CounterVec
	formatsLoaded prometheus.Gauge
}

// NewJobMetrics creates and registers job metrics with the provided registry.
// They live outside the export subsystem.
func NewJobMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *JobMetrics {
	jm := &JobMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "job_runs_total",
				Help:      "Total number of scheduled job executions",
			},
			[]string{"job", "status"},
		),

		lastRun: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "job_last_run_timestamp_seconds",
				Help:      "Unix time of the last execution of a scheduled job",
			},
			[]string{"job"},
		),

		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "format_reloads_total",
				Help:      "Total number of format definition reloads",
			},
			[]string{"result"},
		),

		formatsLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "formats_loaded",
				Help:      "Number of format definitions currently loaded",
			},
		),
	}

	registry.MustRegister(
		jm.runsTotal,
		jm.lastRun,
		jm.reloadsTotal,
		jm.formatsLoaded,
	)

	return jm
}

// RecordRun records one job execution.
func (jm *JobMetrics) RecordRun(job, status string, duration time.Duration) {
	jm.runsTotal.WithLabelValues(job, status).Inc()
	jm.lastRun.WithLabelValues(job).Set(float64(time.Now().Add(-duration).Unix()))
}

// RecordReload records a reload attempt.
func (jm *JobMetrics) RecordReload(success bool, formats int) {
	if !success {
		jm.reloadsTotal.WithLabelValues("failure").Inc()
		return
	}
	jm.reloadsTotal.WithLabelValues("success").Inc()
	jm.formatsLoaded.Set(float64(formats))
}
