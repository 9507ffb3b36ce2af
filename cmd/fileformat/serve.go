package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/fileformat/pkg/cli"
	"mercator-hq/fileformat/pkg/schedule"
	"mercator-hq/fileformat/pkg/telemetry/health"
	"mercator-hq/fileformat/pkg/watch"
)

const (
	healthCheckTimeout = 2 * time.Second
	shutdownTimeout    = 10 * time.Second
)

var serveFlags struct {
	listen string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled exports",
	Long: `Run the configured export jobs on their cron schedules until interrupted.

With formats.watch enabled, format definitions are reloaded when their files
change; a reload that fails keeps the previous definitions. The configuration
file is watched too: a changed telemetry.logging.level applies at once, other
settings on restart. An HTTP listener
serves /healthz, /version and, with telemetry.metrics.enabled, the Prometheus
metrics endpoint.

Examples:
  # Serve with the default configuration
  fileformat serve

  # Listen on a different address
  fileformat serve --listen 0.0.0.0:9464`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveFlags.listen, "listen", "", "HTTP listen address (overrides telemetry.metrics.listen_address)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx, cmd.ErrOrStderr(), appOptions{records: true})
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger.Slog()

	scheduler, err := schedule.NewScheduler(schedule.Config{
		Jobs:     scheduleJobs(a.cfg.Jobs),
		Formats:  a.registry,
		Exporter: a.exporter,
		Lister:   a.resolver,
		Recorder: a.collector,
		Logger:   logger,
	})
	if err != nil {
		return cli.NewConfigError("jobs", err)
	}
	if err := scheduler.Start(ctx); err != nil {
		return cli.NewConfigError("jobs", err)
	}
	defer scheduler.Stop()

	watchErr := make(chan error, 2)
	if a.configPath != "" {
		configWatcher, err := watch.New(watch.Config{
			Path:     a.configPath,
			Debounce: a.cfg.Formats.Debounce,
			Logger:   logger,
		})
		if err != nil {
			return cli.NewCommandError("serve", err)
		}
		go func() {
			if err := configWatcher.Run(ctx, a.reloadConfig); err != nil {
				watchErr <- fmt.Errorf("configuration watcher failed: %w", err)
			}
		}()
	}
	if a.cfg.Formats.Watch {
		watcher, err := watch.New(watch.Config{
			Path:     a.cfg.Formats.Path,
			Debounce: a.cfg.Formats.Debounce,
			Logger:   logger,
		})
		if err != nil {
			return cli.NewCommandError("serve", err)
		}
		reloader := watch.NewReloader(a.registry, a.source, a.collector, logger)
		go func() {
			if err := watcher.Run(ctx, reloader.Reload); err != nil {
				watchErr <- fmt.Errorf("format watcher failed: %w", err)
			}
		}()
	}

	listen := a.cfg.Telemetry.Metrics.ListenAddress
	if serveFlags.listen != "" {
		listen = serveFlags.listen
	}
	server := &http.Server{
		Addr:              listen,
		Handler:           serveMux(a),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP listener started", "address", listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		return cli.NewCommandError("serve", fmt.Errorf("HTTP listener failed: %w", err))
	case err := <-watchErr:
		return cli.NewCommandError("serve", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP listener did not shut down cleanly", "error", err)
	}
	logger.Info("fileformat stopped")
	return nil
}

// serveMux routes the health, version and metrics endpoints.
func serveMux(a *app) *http.ServeMux {
	checker := health.New(healthCheckTimeout)
	checker.Register("formats", health.FormatsCheck(a.registry))
	if a.resolver != nil {
		checker.Register("records", health.DatabaseCheck(a.resolver.DB()))
	}

	mux := http.NewServeMux()
	mux.Handle("/healthz", checker.Handler())
	mux.Handle("/version", health.VersionHandler(Version, GitCommit, BuildDate))
	if a.cfg.Telemetry.Metrics.Enabled {
		mux.Handle(a.cfg.Telemetry.Metrics.Path, a.collector.Handler())
	}
	return mux
}
