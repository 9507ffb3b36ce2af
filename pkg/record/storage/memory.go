package storage

import (
	"context"
	"sort"
	"sync"

	"mercator-hq/fileformat/pkg/record"
)

// MemoryResolver serves records kept in memory, keyed by model and id.
// It is safe for concurrent use.
type MemoryResolver struct {
	mu      sync.RWMutex
	records map[string]map[string]record.Record
}

// NewMemoryResolver creates an empty in-memory resolver.
func NewMemoryResolver() *MemoryResolver {
	return &MemoryResolver{
		records: make(map[string]map[string]record.Record),
	}
}

// Add stores records under model, replacing records with the same id.
func (m *MemoryResolver) Add(model string, records ...record.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byID, ok := m.records[model]
	if !ok {
		byID = make(map[string]record.Record)
		m.records[model] = byID
	}
	for _, r := range records {
		byID[r.ID()] = r
	}
}

// Resolve returns the records for ids in the order requested.
func (m *MemoryResolver) Resolve(ctx context.Context, model string, ids []string) ([]record.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byID, ok := m.records[model]
	if !ok {
		return nil, &UnknownModelError{Model: model}
	}

	out := make([]record.Record, 0, len(ids))
	var missing []string
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		out = append(out, r)
	}
	if len(missing) > 0 {
		return nil, NewRecordNotFoundError(model, missing)
	}
	return out, nil
}

// IDs returns every record id of model, sorted.
func (m *MemoryResolver) IDs(ctx context.Context, model string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byID, ok := m.records[model]
	if !ok {
		return nil, &UnknownModelError{Model: model}
	}
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
