package repository

import (
	"context"
	"sort"
	"sync"

	"callintake_backend/internal/calls/transport"
)

// MemoryStore keeps call records in process memory. It is the fallback of
// last resort so the service stays usable with no database or Redis.
type MemoryStore struct {
	mu      sync.RWMutex
	records []transport.CallRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Name identifies the backend for logging.
func (s *MemoryStore) Name() string { return "memory" }

// Save appends the record.
func (s *MemoryStore) Save(_ context.Context, record transport.CallRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// List returns a copy of all records, newest first.
func (s *MemoryStore) List(_ context.Context) ([]transport.CallRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := append([]transport.CallRecord(nil), s.records...)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return records, nil
}

// Clear removes all records.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}

// Compile-time check that MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
