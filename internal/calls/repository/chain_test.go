package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"callintake_backend/internal/calls/transport"
	"callintake_backend/platform/logger"
)

var errBackendDown = errors.New("backend down")

// brokenStore fails every operation, standing in for a Postgres or Redis
// backend that is unreachable.
type brokenStore struct{}

func (s *brokenStore) Name() string { return "broken" }

func (s *brokenStore) Save(context.Context, transport.CallRecord) error {
	return errBackendDown
}

func (s *brokenStore) List(context.Context) ([]transport.CallRecord, error) {
	return nil, errBackendDown
}

func (s *brokenStore) Clear(context.Context) error {
	return errBackendDown
}

func TestChainFallsBackToNextStore(t *testing.T) {
	ctx := context.Background()
	memory := NewMemoryStore()
	chain := NewChain(logger.New("test"), &brokenStore{}, memory)

	record := testRecord(t, time.Now())
	if err := chain.Save(ctx, record); err != nil {
		t.Fatalf("Save: %v", err)
	}

	records, err := chain.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 || records[0].ID != record.ID {
		t.Errorf("List = %v, want the record saved through the fallback", records)
	}
}

func TestChainSaveFailsWhenAllStoresFail(t *testing.T) {
	chain := NewChain(logger.New("test"), &brokenStore{}, &brokenStore{})

	err := chain.Save(context.Background(), testRecord(t, time.Now()))
	if err == nil {
		t.Fatal("Save succeeded with all stores failing")
	}
	if !errors.Is(err, errBackendDown) {
		t.Errorf("Save error = %v, want wrapped backend error", err)
	}
}

func TestChainClearWipesEveryStore(t *testing.T) {
	ctx := context.Background()
	first := NewMemoryStore()
	second := NewMemoryStore()
	chain := NewChain(logger.New("test"), first, second)

	record := testRecord(t, time.Now())
	if err := first.Save(ctx, record); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := second.Save(ctx, record); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := chain.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	for i, store := range []*MemoryStore{first, second} {
		records, err := store.List(ctx)
		if err != nil {
			t.Fatalf("List store %d: %v", i, err)
		}
		if len(records) != 0 {
			t.Errorf("store %d holds %d records after Clear, want 0", i, len(records))
		}
	}
}

func TestChainClearReportsFailures(t *testing.T) {
	ctx := context.Background()
	memory := NewMemoryStore()
	chain := NewChain(logger.New("test"), &brokenStore{}, memory)

	if err := memory.Save(ctx, testRecord(t, time.Now())); err != nil {
		t.Fatalf("Save: %v", err)
	}

	err := chain.Clear(ctx)
	if !errors.Is(err, errBackendDown) {
		t.Errorf("Clear error = %v, want wrapped backend error", err)
	}

	// The healthy store is still cleared.
	records, err := memory.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("memory holds %d records after Clear, want 0", len(records))
	}
}
