package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

type fakeCounter int

func (f fakeCounter) Count() int { return int(f) }

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func TestChecker_Check(t *testing.T) {
	checker := New(time.Second)
	checker.Register("formats", FormatsCheck(fakeCounter(2)))
	checker.Register("records", DatabaseCheck(fakePinger{}))

	report := checker.Check(context.Background())
	if !report.Healthy() {
		t.Fatalf("report = %+v, want healthy", report)
	}
	if len(report.Checks) != 2 {
		t.Errorf("checks = %d, want 2", len(report.Checks))
	}
	if got, want := checker.Names(), []string{"formats", "records"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestChecker_Unhealthy(t *testing.T) {
	checker := New(time.Second)
	checker.Register("formats", FormatsCheck(fakeCounter(0)))
	checker.Register("records", DatabaseCheck(fakePinger{err: errors.New("database is locked")}))

	report := checker.Check(context.Background())
	if report.Healthy() {
		t.Fatal("report healthy, want unhealthy")
	}
	if got := report.Checks["records"].Message; got != "database is locked" {
		t.Errorf("records message = %q", got)
	}
	if got := report.Checks["formats"].Status; got != StatusUnhealthy {
		t.Errorf("formats status = %q", got)
	}
}

func TestChecker_Timeout(t *testing.T) {
	checker := New(20 * time.Millisecond)
	checker.Register("slow", func(ctx context.Context) error {
		time.Sleep(500 * time.Millisecond)
		return nil
	})

	report := checker.Check(context.Background())
	if got := report.Checks["slow"].Message; got != ErrCheckTimeout.Error() {
		t.Errorf("message = %q, want %q", got, ErrCheckTimeout.Error())
	}
}

func TestChecker_NoChecks(t *testing.T) {
	if report := New(0).Check(context.Background()); !report.Healthy() {
		t.Errorf("report = %+v, want healthy", report)
	}
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		formats    int
		method     string
		wantStatus int
	}{
		{"healthy", 1, http.MethodGet, http.StatusOK},
		{"unhealthy", 0, http.MethodGet, http.StatusServiceUnavailable},
		{"head", 1, http.MethodHead, http.StatusOK},
		{"post", 1, http.MethodPost, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			checker.Register("formats", FormatsCheck(fakeCounter(tt.formats)))

			rec := httptest.NewRecorder()
			checker.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, "/healthz", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.method != http.MethodGet {
				return
			}
			var report Report
			if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
				t.Fatalf("body is not a report: %v", err)
			}
			if _, ok := report.Checks["formats"]; !ok {
				t.Errorf("report = %+v, want formats check", report)
			}
		})
	}
}

func TestVersionHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	VersionHandler("1.2.0", "abc123", "2026-01-01").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	var info VersionInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Version != "1.2.0" || info.Commit != "abc123" || info.GoVersion == "" {
		t.Errorf("info = %+v", info)
	}
}
