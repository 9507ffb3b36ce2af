package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"mercator-hq/fileformat/pkg/format/source"
)

// DefaultDebounce is the quiet period used when Config.Debounce is zero.
const DefaultDebounce = 100 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	// Path is the file or directory to watch. A directory only reports
	// format definition files.
	Path string

	// Debounce is the quiet period after the last change before the
	// callback runs. Default: DefaultDebounce
	Debounce time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Watcher calls back when a watched file, or a format definition file below a
// watched directory, changes.
//
// A directory is watched recursively, including directories created later.
// A single file is watched through its parent directory so that editors
// which replace the file on save are still noticed. Only YAML files that are
// not hidden count as changes.
type Watcher struct {
	path     string
	file     string
	fsw      *fsnotify.Watcher
	debounce *Debouncer
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// New creates a watcher for cfg.Path, which must exist.
func New(cfg Config) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, errors.New("watch path cannot be empty")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	info, err := os.Stat(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat watch path %q: %w", cfg.Path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		path:     cfg.Path,
		fsw:      fsw,
		debounce: NewDebouncer(cfg.Debounce),
		logger:   cfg.Logger.With("component", "watch"),
	}
	if !info.IsDir() {
		w.file = filepath.Clean(cfg.Path)
		err = fsw.Add(filepath.Dir(w.file))
	} else {
		err = w.addTree(cfg.Path)
	}
	if err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run delivers debounced change notifications to onChange until ctx is
// cancelled. An error returned by onChange is logged and watching goes on.
// The watcher is closed when Run returns.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context) error) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.debounce.Stop()
		w.fsw.Close()
	}()

	w.logger.Info("watching for changes",
		"path", w.path,
		"debounce", w.debounce.Interval(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped", "path", w.path)
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			w.handle(ctx, event, onChange)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("watcher error", "path", w.path, "error", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event, onChange func(ctx context.Context) error) {
	if w.file == "" && event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !hidden(event.Name) {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			w.trigger(ctx, event, onChange)
			return
		}
	}

	if !w.relevant(event) {
		return
	}
	w.logger.Debug("format file changed", "path", event.Name, "op", event.Op.String())
	w.trigger(ctx, event, onChange)
}

func (w *Watcher) trigger(ctx context.Context, event fsnotify.Event, onChange func(ctx context.Context) error) {
	w.debounce.Trigger(func() {
		if ctx.Err() != nil {
			return
		}
		w.logger.Info("watched file changed, reloading", "path", event.Name, "op", event.Op.String())
		if err := onChange(ctx); err != nil {
			w.logger.Error("reload failed", "path", event.Name, "error", err)
		}
	})
}

// relevant reports whether event concerns a watched format file.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if w.file != "" {
		return filepath.Clean(event.Name) == w.file
	}
	return source.IsFormatFile(event.Name) && !hidden(event.Name)
}

// addTree watches dir and every non-hidden directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && hidden(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", path, err)
		}
		return nil
	})
}

func hidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
