package persist

import (
	"context"
	"sync"

	"github.com/teranos/foreman/errors"
)

// MemoryStore keeps records in process memory. It backs dry runs and tests.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	records []Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (m *MemoryStore) Get(ctx context.Context, key string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].Key == key {
			rec := m.records[i]
			return &rec, nil
		}
	}
	return nil, notFound(key)
}

func (m *MemoryStore) List(ctx context.Context, key string) ([]*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Record
	for i := range m.records {
		if m.records[i].Key == key {
			rec := m.records[i]
			out = append(out, &rec)
		}
	}
	return out, nil
}

func (m *MemoryStore) Add(ctx context.Context, key string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := newRecord(key)
	rec.ID = m.nextID
	m.nextID++
	m.records = append(m.records, *rec)
	return rec, nil
}

func (m *MemoryStore) Save(ctx context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == rec.ID {
			m.records[i] = *rec
			return nil
		}
	}
	return errors.Wrapf(errors.ErrNotFound, "record %d (%q) no longer exists", rec.ID, rec.Key)
}

func (m *MemoryStore) Delete(ctx context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == rec.ID {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return nil
}

// Len returns the number of stored records.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

var _ Store = (*MemoryStore)(nil)
