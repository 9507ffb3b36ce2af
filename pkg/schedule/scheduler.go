package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"mercator-hq/fileformat/pkg/format"
	"mercator-hq/fileformat/pkg/format/export"
	"mercator-hq/fileformat/pkg/telemetry/logging"
)

// Job run statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// ErrJobNotFound is returned by RunJob for an unknown job name.
var ErrJobNotFound = errors.New("job not found")

// Job is one scheduled export.
type Job struct {
	// Name identifies the job in logs and metrics.
	Name string

	// Schedule is a 5-field cron expression or a descriptor such as "@daily".
	Schedule string

	// Format is the name of the definition to export through.
	Format string

	// IDs are the record ids to export. Ignored when All is set.
	IDs []string

	// All exports every record of the format's model.
	All bool
}

// Formats looks up format definitions by name. *source.Registry implements it.
type Formats interface {
	Get(name string) (*format.Definition, error)
}

// Exporter runs one export. *export.Exporter implements it.
type Exporter interface {
	Export(ctx context.Context, def *format.Definition, ids []string) (*export.Result, error)
}

// Recorder is told about every job execution. *metrics.Collector implements
// it.
type Recorder interface {
	RecordJobRun(job, status string, duration time.Duration)
}

// Config configures a Scheduler.
type Config struct {
	Jobs     []Job
	Formats  Formats
	Exporter Exporter

	// Lister enumerates record ids for jobs with All set. Required when any
	// job has All set.
	Lister export.Lister

	// Recorder is optional.
	Recorder Recorder

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Scheduler runs export jobs on their cron schedules.
//
// Executions never overlap: a job that comes due while another one is
// running waits for it, so a delimited output file only ever has one writer.
type Scheduler struct {
	jobs     map[string]Job
	order    []string
	formats  Formats
	exporter Exporter
	lister   export.Lister
	recorder Recorder
	logger   *slog.Logger

	cron    *cron.Cron
	entries map[string]cron.EntryID

	mu      sync.Mutex
	running bool

	// runMu serializes job executions.
	runMu sync.Mutex
}

// NewScheduler creates a scheduler for cfg.Jobs. Schedules are parsed when
// the scheduler starts.
func NewScheduler(cfg Config) (*Scheduler, error) {
	if cfg.Formats == nil {
		return nil, errors.New("formats are required")
	}
	if cfg.Exporter == nil {
		return nil, errors.New("exporter is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	jobs := make(map[string]Job, len(cfg.Jobs))
	order := make([]string, 0, len(cfg.Jobs))
	for _, job := range cfg.Jobs {
		if job.Name == "" {
			return nil, errors.New("job name cannot be empty")
		}
		if _, ok := jobs[job.Name]; ok {
			return nil, fmt.Errorf("duplicate job %q", job.Name)
		}
		if job.All && cfg.Lister == nil {
			return nil, fmt.Errorf("job %q exports all records but no lister is configured", job.Name)
		}
		jobs[job.Name] = job
		order = append(order, job.Name)
	}

	return &Scheduler{
		jobs:     jobs,
		order:    order,
		formats:  cfg.Formats,
		exporter: cfg.Exporter,
		lister:   cfg.Lister,
		recorder: cfg.Recorder,
		logger:   cfg.Logger.With("component", "schedule"),
		cron:     cron.New(),
		entries:  make(map[string]cron.EntryID, len(jobs)),
	}, nil
}

// Start registers every job with cron and starts it. The scheduler stops
// when ctx is cancelled.
//
// Common cron expressions:
//   - "0 2 * * *"    - Daily at 2 AM
//   - "*/15 * * * *" - Every 15 minutes
//   - "@hourly"      - At the start of every hour
//
// Without jobs Start does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("scheduler already running")
	}
	if len(s.jobs) == 0 {
		s.logger.Info("no export jobs configured, skipping scheduler")
		return nil
	}

	for _, name := range s.order {
		job := s.jobs[name]
		id, err := s.cron.AddFunc(job.Schedule, func() {
			_, _ = s.RunJob(ctx, job.Name)
		})
		if err != nil {
			for _, id := range s.entries {
				s.cron.Remove(id)
			}
			clear(s.entries)
			return fmt.Errorf("invalid cron schedule %q for job %q: %w", job.Schedule, job.Name, err)
		}
		s.entries[job.Name] = id
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("export scheduler started", "jobs", len(s.jobs))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// RunJob runs the named job now, waiting for any other job in progress.
//
// A job whose format is disabled is skipped and returns a nil Result.
func (s *Scheduler) RunJob(ctx context.Context, name string) (*export.Result, error) {
	job, ok := s.jobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	ctx = logging.WithJob(ctx, job.Name)
	ctx = logging.WithFormat(ctx, job.Format)
	start := time.Now()

	result, status, err := s.run(ctx, job)

	duration := time.Since(start)
	if s.recorder != nil {
		s.recorder.RecordJobRun(job.Name, status, duration)
	}

	switch status {
	case StatusError:
		s.logger.ErrorContext(ctx, "scheduled export failed", "error", err, "duration", duration)
	case StatusSuccess:
		s.logger.InfoContext(ctx, "scheduled export completed",
			"run_id", result.RunID,
			"records", result.Records,
			"duration", duration,
		)
	}
	return result, err
}

func (s *Scheduler) run(ctx context.Context, job Job) (*export.Result, string, error) {
	def, err := s.formats.Get(job.Format)
	if err != nil {
		return nil, StatusError, err
	}
	if !def.Active() {
		s.logger.InfoContext(ctx, "format disabled, skipping scheduled export", "state", def.State)
		return nil, StatusSkipped, nil
	}

	ids := job.IDs
	if job.All {
		ids, err = s.lister.IDs(ctx, def.Model)
		if err != nil {
			return nil, StatusError, fmt.Errorf("failed to list records of model %q: %w", def.Model, err)
		}
	}

	s.logger.DebugContext(ctx, "starting scheduled export", "records", len(ids))

	result, err := s.exporter.Export(ctx, def, ids)
	if err != nil {
		return result, StatusError, err
	}
	return result, StatusSuccess, nil
}

// Stop stops the scheduler and waits for a running job to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("export scheduler stopped")
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next time the named job runs, or nil when the job is
// not scheduled.
func (s *Scheduler) NextRun(name string) *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.entries[name]
	if !ok || !s.running {
		return nil
	}
	next := s.cron.Entry(id).Next
	return &next
}

// Jobs returns the configured jobs in configuration order.
func (s *Scheduler) Jobs() []Job {
	out := make([]Job, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.jobs[name])
	}
	return out
}
