package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"mercator-hq/fileformat/pkg/cli"
	"mercator-hq/fileformat/pkg/config"
	"mercator-hq/fileformat/pkg/format/export"
	"mercator-hq/fileformat/pkg/format/source"
	"mercator-hq/fileformat/pkg/format/writer"
	"mercator-hq/fileformat/pkg/record/storage"
	"mercator-hq/fileformat/pkg/schedule"
	"mercator-hq/fileformat/pkg/telemetry/logging"
	"mercator-hq/fileformat/pkg/telemetry/metrics"
)

// app holds the components shared by the commands.
type app struct {
	// configPath is the file the configuration was read from, empty when
	// running on defaults.
	configPath string

	cfg       *config.Config
	logger    *logging.Logger
	registry  *source.Registry
	source    *source.FileSource
	resolver  *storage.SQLiteResolver
	exporter  *export.Exporter
	collector *metrics.Collector
}

// appOptions selects the components a command needs.
type appOptions struct {
	// formatsPath overrides formats.path.
	formatsPath string

	// records opens the record database and builds the exporter.
	records bool

	// failureMode overrides export.failure_mode.
	failureMode string
}

// configPath returns the file named by --config, falling back to
// fileformat.yaml in the working directory. An empty path selects the
// defaults.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile
	}
	return ""
}

// loadConfig reads the configuration from path and stores it as the
// process-wide configuration.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, cli.NewConfigError("", err)
	}
	applyFlags(cfg)
	config.SetConfig(cfg)
	return config.GetConfig(), nil
}

// applyFlags applies the global flags that override configuration values.
func applyFlags(cfg *config.Config) {
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
}

func newLogger(cfg *config.LoggingConfig, w io.Writer) (*logging.Logger, error) {
	logger, err := logging.New(logging.Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		AddSource: cfg.AddSource,
		Output:    cfg.Output,
		File: logging.FileConfig{
			Path:       cfg.File.Path,
			MaxSizeMB:  cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAgeDays: cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		},
		Writer: w,
	})
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err)
	}
	return logger, nil
}

// newApp loads the configuration and format definitions and, when asked,
// opens the record database. Logs go to stderr.
func newApp(ctx context.Context, stderr io.Writer, opts appOptions) (*app, error) {
	path := configPath()
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}
	if opts.formatsPath != "" {
		cfg.Formats.Path = opts.formatsPath
	}
	if opts.failureMode != "" {
		cfg.Export.FailureMode = opts.failureMode
	}

	logger, err := newLogger(&cfg.Telemetry.Logging, stderr)
	if err != nil {
		return nil, err
	}
	a := &app{
		configPath: path,
		cfg:        cfg,
		logger:     logger,
		registry:   source.NewRegistry(),
		source:     source.NewFileSource(cfg.Formats.Path, logger.Slog()),
		collector:  metrics.NewCollector(&cfg.Telemetry.Metrics, nil),
	}

	if err := a.registry.Load(ctx, a.source); err != nil {
		a.Close()
		return nil, cli.NewConfigError("formats.path", err)
	}

	if !opts.records {
		return a, nil
	}

	a.resolver, err = storage.NewSQLiteResolver(storage.SQLiteConfig{
		Driver:       cfg.Records.Driver,
		Path:         cfg.Records.Path,
		BusyTimeout:  cfg.Records.BusyTimeout,
		MaxOpenConns: cfg.Records.MaxOpenConns,
		Models:       storageModels(cfg.Records.Models),
		Logger:       logger.Slog(),
	})
	if err != nil {
		a.Close()
		return nil, cli.NewCommandError("open records", err)
	}

	policy, err := writer.PolicyFor(cfg.Export.FailureMode)
	if err != nil {
		a.Close()
		return nil, cli.NewConfigError("export.failure_mode", err)
	}

	exportCfg := export.Config{
		Resolver: a.resolver,
		Logger:   logger.Slog(),
		Writer: writer.Options{
			Policy:     policy,
			CreateDirs: cfg.Export.CreateDirs,
		},
	}
	if cfg.Telemetry.Metrics.Enabled {
		exportCfg.Observer = a.collector
	}
	a.exporter, err = export.New(exportCfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}
	return a, nil
}

// reloadConfig reads the configuration file again and applies the log level
// to the running logger. On failure the previous configuration stays in
// effect. Other settings are picked up on restart.
func (a *app) reloadConfig(ctx context.Context) error {
	if err := config.ReloadConfig(a.configPath); err != nil {
		a.logger.Warn("configuration reload failed, keeping previous configuration",
			"path", a.configPath,
			"error", err,
		)
		return err
	}

	cfg := config.GetConfig()
	applyFlags(cfg)
	if err := a.logger.SetLevel(cfg.Telemetry.Logging.Level); err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "configuration reloaded",
		"path", a.configPath,
		"log_level", cfg.Telemetry.Logging.Level,
	)
	return nil
}

// Close releases the database and the log file.
func (a *app) Close() {
	if a.resolver != nil {
		if err := a.resolver.Close(); err != nil {
			a.logger.Warn("failed to close record storage", "error", err)
		}
	}
	_ = a.logger.Close()
}

func storageModels(models map[string]config.ModelConfig) map[string]storage.Model {
	out := make(map[string]storage.Model, len(models))
	for name, m := range models {
		model := storage.Model{
			Table:    m.Table,
			IDColumn: m.IDColumn,
		}
		if len(m.Relations) > 0 {
			model.Relations = make(map[string]storage.Relation, len(m.Relations))
			for attr, rel := range m.Relations {
				model.Relations[attr] = storage.Relation{Model: rel.Model, ForeignKey: rel.ForeignKey}
			}
		}
		out[name] = model
	}
	return out
}

func scheduleJobs(jobs []config.JobConfig) []schedule.Job {
	out := make([]schedule.Job, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, schedule.Job{
			Name:     j.Name,
			Schedule: j.Schedule,
			Format:   j.Format,
			IDs:      j.IDs,
			All:      j.All,
		})
	}
	return out
}
