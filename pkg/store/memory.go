package store

import (
	"context"
	"sync"

	"github.com/matzehuels/vlanimate/pkg/errors"
)

// Memory keeps records in a map.
type Memory struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*Record)}
}

func (m *Memory) Put(_ context.Context, r *Record) error {
	if err := errors.ValidateGraphID(r.ID); err != nil {
		return err
	}
	cp := *r
	m.mu.Lock()
	m.records[r.ID] = &cp
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*Record, error) {
	m.mu.RLock()
	r, ok := m.records[id]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "graph %s not found", id)
	}
	cp := *r
	return &cp, nil
}

func (m *Memory) Lookup(_ context.Context, docHash, compiler string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var best *Record
	for _, r := range m.records {
		if r.DocHash != docHash || r.Compiler != compiler {
			continue
		}
		if best == nil || r.CreatedAt.After(best.CreatedAt) {
			best = r
		}
	}
	if best == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "no graph for document %s", docHash)
	}
	cp := *best
	return &cp, nil
}

func (m *Memory) Close(context.Context) error { return nil }

var _ Store = (*Memory)(nil)
