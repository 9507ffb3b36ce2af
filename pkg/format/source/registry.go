package source

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"mercator-hq/fileformat/pkg/format"
)

// Registry is a thread-safe set of loaded format definitions, keyed by name.
// Updates replace the whole set at once.
type Registry struct {
	mu       sync.RWMutex
	defs     map[string]*format.Definition
	version  string
	loadTime time.Time
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	r := &Registry{defs: make(map[string]*format.Definition)}
	r.updateVersion()
	return r
}

// Load loads definitions from src and replaces the registry content. On
// failure the current content is kept.
func (r *Registry) Load(ctx context.Context, src Source) error {
	defs, err := src.Load(ctx)
	if err != nil {
		return err
	}
	return r.Replace(defs)
}

// Replace atomically replaces every definition.
func (r *Registry) Replace(defs []*format.Definition) error {
	next := make(map[string]*format.Definition, len(defs))
	for _, def := range defs {
		if def == nil {
			return fmt.Errorf("replace: format cannot be nil")
		}
		if def.Name == "" {
			return fmt.Errorf("replace: format name cannot be empty")
		}
		if _, ok := next[def.Name]; ok {
			return fmt.Errorf("replace: duplicate format %q", def.Name)
		}
		next[def.Name] = def
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.defs = next
	r.loadTime = time.Now()
	r.updateVersion()
	return nil
}

// Get returns a definition by name. The error wraps format.ErrFormatNotFound
// when no such format is registered.
func (r *Registry) Get(name string) (*format.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", format.ErrFormatNotFound, name)
	}
	return def, nil
}

// List returns every definition sorted by name.
func (r *Registry) List() []*format.Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]*format.Definition, 0, len(r.defs))
	for _, def := range r.defs {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].Name < defs[j].Name
	})
	return defs
}

// Count returns the number of registered formats.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// Version returns a short hash of the registered formats. It changes whenever
// the set of names, source files or field counts changes.
func (r *Registry) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// LoadTime returns when the registry content was last replaced.
func (r *Registry) LoadTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadTime
}

// updateVersion must be called with the write lock held.
func (r *Registry) updateVersion() {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		def := r.defs[name]
		h.Write([]byte(def.Name))
		h.Write([]byte(def.SourceFile))
		h.Write([]byte(strconv.Itoa(len(def.Fields))))
	}
	r.version = fmt.Sprintf("%x", h.Sum(nil))[:16]
}
