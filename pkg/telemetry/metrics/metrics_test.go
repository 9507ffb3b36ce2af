package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/fileformat/pkg/config"
	"mercator-hq/fileformat/pkg/format"
	"mercator-hq/fileformat/pkg/format/export"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:         true,
		Namespace:       "test",
		Subsystem:       "export",
		DurationBuckets: []float64{0.1, 0.5, 1.0},
	}
}

func TestNewCollector_Defaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	collector := NewCollector(cfg, nil)

	if collector.Registry() == nil {
		t.Fatal("Registry() = nil")
	}
	if cfg.Namespace != config.DefaultMetricsNamespace {
		t.Errorf("Namespace = %q, want %q", cfg.Namespace, config.DefaultMetricsNamespace)
	}
	if len(cfg.DurationBuckets) == 0 {
		t.Error("DurationBuckets not defaulted")
	}
}

func TestCollector_ObserveExport(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	em := collector.exportMetrics

	collector.ObserveExport(&export.Result{
		Format:  "parties",
		Kind:    format.KindDelimited,
		Records: 3,
		Paths:   []string{"/out/parties.csv"},
	}, 200*time.Millisecond)

	collector.ObserveExport(&export.Result{
		Format:      "parties",
		Kind:        format.KindDelimited,
		Records:     2,
		Paths:       []string{"/out/parties.csv"},
		FieldErrors: 1,
	}, 100*time.Millisecond)

	if got := testutil.ToFloat64(em.runsTotal.WithLabelValues("parties", "delimited", StatusSuccess)); got != 1 {
		t.Errorf("success runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(em.runsTotal.WithLabelValues("parties", "delimited", StatusDegraded)); got != 1 {
		t.Errorf("degraded runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(em.recordsTotal.WithLabelValues("parties")); got != 5 {
		t.Errorf("records = %v, want 5", got)
	}
	if got := testutil.ToFloat64(em.filesTotal.WithLabelValues("parties")); got != 2 {
		t.Errorf("files = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(em.duration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

func TestCollector_FieldAndWriteFailures(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	em := collector.exportMetrics

	collector.ObserveFieldError("parties", "code")
	collector.ObserveFieldError("parties", "code")
	collector.ObserveWriteFailure("invoices", format.KindTemplated)

	if got := testutil.ToFloat64(em.fieldErrorsTotal.WithLabelValues("parties", "code")); got != 2 {
		t.Errorf("field errors = %v, want 2", got)
	}
	if got := testutil.ToFloat64(em.writeFailuresTotal.WithLabelValues("invoices", "templated")); got != 1 {
		t.Errorf("write failures = %v, want 1", got)
	}
}

func TestCollector_Jobs(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	jm := collector.jobMetrics

	collector.RecordJobRun("nightly", "success", time.Second)
	collector.RecordJobRun("nightly", "skipped", 0)
	collector.RecordReload(true, 4)
	collector.RecordReload(false, 0)

	if got := testutil.ToFloat64(jm.runsTotal.WithLabelValues("nightly", "success")); got != 1 {
		t.Errorf("success runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(jm.runsTotal.WithLabelValues("nightly", "skipped")); got != 1 {
		t.Errorf("skipped runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(jm.lastRun.WithLabelValues("nightly")); got <= 0 {
		t.Errorf("last run = %v, want a timestamp", got)
	}
	if got := testutil.ToFloat64(jm.reloadsTotal.WithLabelValues("failure")); got != 1 {
		t.Errorf("failed reloads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(jm.formatsLoaded); got != 4 {
		t.Errorf("formats loaded = %v, want 4 after failed reload", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, prometheus.NewRegistry())

	collector.ObserveExport(&export.Result{Format: "parties", Kind: format.KindDelimited}, time.Second)
	collector.ObserveFieldError("parties", "code")
	collector.RecordJobRun("nightly", "success", time.Second)

	if got := testutil.CollectAndCount(collector.exportMetrics.runsTotal); got != 0 {
		t.Errorf("runs series = %d, want 0 when disabled", got)
	}
	if got := testutil.CollectAndCount(collector.jobMetrics.runsTotal); got != 0 {
		t.Errorf("job series = %d, want 0 when disabled", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.ObserveFieldError("parties", "code")

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `test_export_field_errors_total{field="code",format="parties"} 1`) {
		t.Errorf("body missing field error series:\n%s", rec.Body.String())
	}
}
