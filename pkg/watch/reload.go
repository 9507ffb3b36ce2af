package watch

import (
	"context"
	"log/slog"

	"mercator-hq/fileformat/pkg/format/source"
)

// ReloadRecorder is told about every reload. *metrics.Collector implements it.
type ReloadRecorder interface {
	RecordReload(success bool, formats int)
}

// Reloader loads a source into a registry. A failed load leaves the registry
// as it was.
type Reloader struct {
	registry *source.Registry
	source   source.Source
	recorder ReloadRecorder
	logger   *slog.Logger
}

// NewReloader creates a reloader. recorder may be nil.
func NewReloader(registry *source.Registry, src source.Source, recorder ReloadRecorder, logger *slog.Logger) *Reloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reloader{
		registry: registry,
		source:   src,
		recorder: recorder,
		logger:   logger.With("component", "watch"),
	}
}

// Reload loads the source into the registry. It has the signature Run
// expects.
func (r *Reloader) Reload(ctx context.Context) error {
	if err := r.registry.Load(ctx, r.source); err != nil {
		if r.recorder != nil {
			r.recorder.RecordReload(false, r.registry.Count())
		}
		r.logger.Warn("keeping previous format definitions",
			"formats", r.registry.Count(),
			"version", r.registry.Version(),
		)
		return err
	}

	if r.recorder != nil {
		r.recorder.RecordReload(true, r.registry.Count())
	}
	r.logger.Info("format definitions reloaded",
		"formats", r.registry.Count(),
		"version", r.registry.Version(),
	)
	return nil
}
