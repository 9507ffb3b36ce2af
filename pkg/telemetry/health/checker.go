package health

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// Check statuses.
const (
	StatusOK        = "ok"
	StatusUnhealthy = "unhealthy"
)

// ErrCheckTimeout is reported when a check does not return in time.
var ErrCheckTimeout = errors.New("health check timeout")

// CheckFunc reports whether a component works. It returns nil when healthy.
type CheckFunc func(ctx context.Context) error

// CheckResult is the outcome of one check.
type CheckResult struct {
	Status   string  `json:"status"`
	Message  string  `json:"message,omitempty"`
	Duration float64 `json:"duration_ms"`
}

// Report aggregates every check. Status is "ok" only when every check
// passed.
type Report struct {
	Status    string                 `json:"status"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp time.Time              `json:"timestamp"`
}

// Healthy reports whether every check passed.
func (r Report) Healthy() bool {
	return r.Status == StatusOK
}

// Checker runs named health checks.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]CheckFunc
	timeout time.Duration
}

// New creates a checker. Each check gets timeout, 5 seconds when zero.
func New(timeout time.Duration) *Checker {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Checker{
		checks:  make(map[string]CheckFunc),
		timeout: timeout,
	}
}

// Register adds or replaces the check called name.
func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Names returns the registered check names in sorted order.
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check runs every registered check concurrently.
func (c *Checker) Check(ctx context.Context) Report {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	report := Report{
		Status: StatusOK,
		Checks: make(map[string]CheckResult, len(checks)),
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for name, check := range checks {
		name, check := name, check
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := c.run(ctx, check)

			mu.Lock()
			defer mu.Unlock()
			report.Checks[name] = result
			if result.Status != StatusOK {
				report.Status = StatusUnhealthy
			}
		}()
	}
	wg.Wait()

	report.Timestamp = time.Now()
	return report
}

func (c *Checker) run(ctx context.Context, check CheckFunc) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- check(ctx)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ErrCheckTimeout
	}

	result := CheckResult{
		Status:   StatusOK,
		Duration: float64(time.Since(start).Microseconds()) / 1000,
	}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Message = err.Error()
	}
	return result
}
