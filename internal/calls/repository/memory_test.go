package repository

import (
	"context"
	"testing"
	"time"

	"callintake_backend/internal/calls/transport"

	"github.com/google/uuid"
)

func testRecord(t *testing.T, ts time.Time) transport.CallRecord {
	t.Helper()
	return transport.CallRecord{
		ID:                  uuid.New(),
		Timestamp:           ts,
		DurationSeconds:     120,
		Outcome:             transport.OutcomeFollowUp,
		ConversationHistory: nil,
	}
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	oldest := testRecord(t, base)
	middle := testRecord(t, base.Add(time.Minute))
	newest := testRecord(t, base.Add(2*time.Minute))

	// Insert out of order; List sorts by timestamp.
	for _, record := range []transport.CallRecord{middle, oldest, newest} {
		if err := store.Save(ctx, record); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("List returned %d records, want 3", len(records))
	}
	if records[0].ID != newest.ID || records[2].ID != oldest.ID {
		t.Errorf("List order = [%s %s %s], want newest first", records[0].ID, records[1].ID, records[2].ID)
	}
}

func TestMemoryStoreClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Save(ctx, testRecord(t, time.Now())); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("List returned %d records after Clear, want 0", len(records))
	}
}
