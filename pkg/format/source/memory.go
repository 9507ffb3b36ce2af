package source

import (
	"context"
	"sync"

	"mercator-hq/fileformat/pkg/format"
)

// MemorySource is an in-memory format source for testing and embedding.
type MemorySource struct {
	mu   sync.RWMutex
	defs []*format.Definition
}

// NewMemorySource creates a new in-memory format source.
func NewMemorySource(defs ...*format.Definition) *MemorySource {
	return &MemorySource{defs: defs}
}

// Load applies defaults to the stored definitions and validates them.
func (s *MemorySource) Load(ctx context.Context) ([]*format.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	defs := make([]*format.Definition, len(s.defs))
	for i, def := range s.defs {
		c := *def
		c.Fields = append([]format.FieldDefinition(nil), def.Fields...)
		c.ApplyDefaults()
		defs[i] = &c
	}
	if err := checkDefinitions(defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// SetDefinitions replaces the stored definitions.
func (s *MemorySource) SetDefinitions(defs ...*format.Definition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defs = defs
}
