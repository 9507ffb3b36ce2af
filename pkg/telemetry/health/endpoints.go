package health

import (
	"encoding/json"
	"net/http"
	"runtime"
)

// Handler serves the aggregated report: 200 when every check passes, 503
// otherwise.
//
// Example response:
//
//	{
//	    "status": "unhealthy",
//	    "checks": {
//	        "formats": {"status": "unhealthy", "message": "no format definitions loaded", "duration_ms": 0.002},
//	        "records": {"status": "ok", "duration_ms": 0.41}
//	    },
//	    "timestamp": "2026-03-02T10:30:00Z"
//	}
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		report := c.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if report.Healthy() {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(report)
		}
	}
}

// VersionInfo contains build and version information.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// VersionHandler serves the build information as JSON.
func VersionHandler(version, commit, buildTime string) http.HandlerFunc {
	info := VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(info)
	}
}
