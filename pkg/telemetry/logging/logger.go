package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFormat represents the output format for logs.
type LogFormat string

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON LogFormat = "json"
	// FormatText outputs logs in logfmt style key=value pairs.
	FormatText LogFormat = "text"
	// FormatConsole outputs text without timestamps, for interactive use.
	FormatConsole LogFormat = "console"
)

// Output selects where log lines go.
type Output string

const (
	OutputStderr Output = "stderr"
	OutputFile   Output = "file"
	OutputBoth   Output = "both"
)

// FileConfig configures the rotated log file.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Config contains configuration for the Logger.
type Config struct {
	// Level is the minimum log level ("debug", "info", "warn", "error")
	Level string

	// Format is the output format ("json", "text", "console")
	Format string

	// AddSource includes file and line number in logs
	AddSource bool

	// Output is "stderr", "file" or "both". Defaults to "stderr".
	Output string

	// File is used by the "file" and "both" outputs.
	File FileConfig

	// Writer replaces os.Stderr as the terminal destination.
	Writer io.Writer
}

// Logger is a slog logger whose handler adds the export fields carried by
// the context. Its level can be changed while it is in use. Close releases
// the log file when one is open.
type Logger struct {
	*slog.Logger

	level *slog.LevelVar
	file  *lumberjack.Logger
}

// New creates a new Logger with the given configuration.
func New(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	format, err := parseFormat(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid log format: %w", err)
	}

	output, err := parseOutput(cfg.Output)
	if err != nil {
		return nil, fmt.Errorf("invalid log output: %w", err)
	}

	terminal := cfg.Writer
	if terminal == nil {
		terminal = os.Stderr
	}

	var file *lumberjack.Logger
	if output != OutputStderr {
		if cfg.File.Path == "" {
			return nil, fmt.Errorf("log file path is required for %s output", output)
		}
		file = &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		}
	}

	var w io.Writer
	switch output {
	case OutputFile:
		w = file
	case OutputBoth:
		w = io.MultiWriter(terminal, file)
	default:
		w = terminal
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	opts := &slog.HandlerOptions{
		Level:     levelVar,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	case FormatConsole:
		opts.ReplaceAttr = dropTime
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(NewContextHandler(handler)),
		level:  levelVar,
		file:   file,
	}, nil
}

// Level returns the current minimum level.
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// SetLevel changes the minimum level of the logger and of every logger
// derived from it.
func (l *Logger) SetLevel(level string) error {
	lvl, err := parseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	l.level.Set(lvl)
	return nil
}

// Slog returns the underlying slog logger, to be passed to components.
func (l *Logger) Slog() *slog.Logger {
	return l.Logger
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// WithContext returns a logger carrying the context's export fields as
// attributes.
func (l *Logger) WithContext(ctx context.Context) *slog.Logger {
	fields := extractContextFields(ctx)
	if len(fields) == 0 {
		return l.Logger
	}
	return l.Logger.With(fields...)
}

func dropTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}

// parseLevel parses a log level string into slog.Level.
func parseLevel(levelStr string) (slog.Level, error) {
	switch levelStr {
	case "debug", "DEBUG":
		return slog.LevelDebug, nil
	case "info", "INFO", "":
		return slog.LevelInfo, nil
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn, nil
	case "error", "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", levelStr)
	}
}

// parseFormat parses a log format string into LogFormat.
func parseFormat(formatStr string) (LogFormat, error) {
	switch formatStr {
	case "text", "TEXT", "":
		return FormatText, nil
	case "json", "JSON":
		return FormatJSON, nil
	case "console", "CONSOLE":
		return FormatConsole, nil
	default:
		return FormatText, fmt.Errorf("unknown log format: %s", formatStr)
	}
}

func parseOutput(outputStr string) (Output, error) {
	switch Output(outputStr) {
	case OutputStderr, "":
		return OutputStderr, nil
	case OutputFile:
		return OutputFile, nil
	case OutputBoth:
		return OutputBoth, nil
	default:
		return OutputStderr, fmt.Errorf("unknown log output: %s", outputStr)
	}
}
