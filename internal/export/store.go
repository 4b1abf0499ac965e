package export

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/kazi-app/ups/internal/domain"
)

// ErrNotFound is returned for unknown export ids.
var ErrNotFound = errors.New("export not found")

// Store archives export records and their encoded data.
type Store interface {
	// Save inserts or replaces the record with rec.ID.
	Save(ctx context.Context, rec domain.ExportRecord, data []byte) error

	// Get returns a record and its data.
	Get(ctx context.Context, id string) (domain.ExportRecord, []byte, error)

	// List returns the records of a project, oldest first. An empty
	// projectID lists everything.
	List(ctx context.Context, projectID string) ([]domain.ExportRecord, error)

	Close() error
}

// MemoryStore is a Store backed by a map.
type MemoryStore struct {
	mu    sync.RWMutex
	order []string
	recs  map[string]domain.ExportRecord
	data  map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		recs: make(map[string]domain.ExportRecord),
		data: make(map[string][]byte),
	}
}

func (s *MemoryStore) Save(_ context.Context, rec domain.ExportRecord, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recs[rec.ID]; !ok {
		s.order = append(s.order, rec.ID)
	}
	s.recs[rec.ID] = rec
	s.data[rec.ID] = slices.Clone(data)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (domain.ExportRecord, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[id]
	if !ok {
		return domain.ExportRecord{}, nil, ErrNotFound
	}
	return rec, slices.Clone(s.data[id]), nil
}

func (s *MemoryStore) List(_ context.Context, projectID string) ([]domain.ExportRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ExportRecord, 0, len(s.order))
	for _, id := range s.order {
		rec := s.recs[id]
		if projectID == "" || rec.ProjectID == projectID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
