package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/fileformat/pkg/config"
	"mercator-hq/fileformat/pkg/format"
	"mercator-hq/fileformat/pkg/format/export"
)

// Export run statuses.
const (
	StatusSuccess  = "success"
	StatusDegraded = "degraded"
)

// Collector owns every Prometheus metric of the service. It implements
// export.Observer so an Exporter can report to it directly.
//
// When the configuration has Enabled false every Record and Observe method
// is a no-op.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	exportMetrics *ExportMetrics
	jobMetrics    *JobMetrics
}

var _ export.Observer = (*Collector)(nil)

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a new registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "fileformat",
//		Subsystem: "export",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = append([]float64(nil), config.DefaultDurationBuckets...)
	}

	return &Collector{
		config:        cfg,
		registry:      registry,
		exportMetrics: NewExportMetrics(cfg, registry),
		jobMetrics:    NewJobMetrics(cfg, registry),
	}
}

// Registry returns the registry the metrics are registered with.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveExport records a completed export run.
//
// The run counts as "degraded" when any field fell back to an empty value or
// any file could not be written, and "success" otherwise.
func (c *Collector) ObserveExport(result *export.Result, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	status := StatusSuccess
	if result.FieldErrors > 0 || result.WriteFailures > 0 {
		status = StatusDegraded
	}
	c.exportMetrics.RecordExport(result.Format, string(result.Kind), status, duration, result.Records, len(result.Paths))
}

// ObserveFieldError records a field whose expression failed.
func (c *Collector) ObserveFieldError(formatName, fieldName string) {
	if !c.config.Enabled {
		return
	}
	c.exportMetrics.RecordFieldError(formatName, fieldName)
}

// ObserveWriteFailure records a file that could not be written.
func (c *Collector) ObserveWriteFailure(formatName string, kind format.Kind) {
	if !c.config.Enabled {
		return
	}
	c.exportMetrics.RecordWriteFailure(formatName, string(kind))
}

// RecordJobRun records one execution of a scheduled job.
//
// Parameters:
//   - job: configured job name
//   - status: "success", "error" or "skipped"
//   - duration: time spent, including record resolution
func (c *Collector) RecordJobRun(job, status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.jobMetrics.RecordRun(job, status, duration)
}

// RecordReload records a format definition reload and, when it succeeded,
// the number of definitions now loaded.
func (c *Collector) RecordReload(success bool, formats int) {
	if !c.config.Enabled {
		return
	}
	c.jobMetrics.RecordReload(success, formats)
}
