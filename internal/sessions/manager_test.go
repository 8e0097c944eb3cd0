package sessions

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"callintake_backend/internal/calls/repository"
	callservice "callintake_backend/internal/calls/service"
	"callintake_backend/internal/calls/transport"
	"callintake_backend/internal/dialogue"
	"callintake_backend/platform/apperr"
	"callintake_backend/platform/events"
	"callintake_backend/platform/logger"

	"github.com/google/uuid"
)

func newTestManager(t *testing.T, idleTTL time.Duration) (*Manager, *callservice.Service) {
	t.Helper()

	log := logger.New("test")
	calls := callservice.New(repository.NewMemoryStore(), events.NewInMemoryBus(log), log)

	newEngine := func() (*dialogue.Engine, error) {
		return dialogue.NewEngine(dialogue.Options{
			Rand: rand.New(rand.NewSource(1)),
			Now:  func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) },
		})
	}

	return NewManager(newEngine, calls, log, idleTTL), calls
}

func TestManagerStartAndTurn(t *testing.T) {
	manager, _ := newTestManager(t, time.Hour)
	ctx := context.Background()

	id, greeting, err := manager.Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if id == (uuid.UUID{}) {
		t.Fatal("Start returned zero session ID")
	}
	if greeting == "" {
		t.Error("Start returned empty greeting")
	}
	if manager.Active() != 1 {
		t.Errorf("Active = %d, want 1", manager.Active())
	}

	reply, state, err := manager.Turn(ctx, id, "Hi, I think my roof is leaking")
	if err != nil {
		t.Fatalf("Turn: %v", err)
	}
	if reply == "" {
		t.Error("Turn returned empty reply")
	}
	if state.Stage == dialogue.StageGreeting {
		t.Errorf("stage still %s after a turn", state.Stage)
	}
	if len(state.ConversationHistory) == 0 {
		t.Error("conversation history not recorded")
	}
}

func TestManagerUnknownSession(t *testing.T) {
	manager, _ := newTestManager(t, time.Hour)
	ctx := context.Background()

	_, _, err := manager.Turn(ctx, uuid.New(), "hello")
	assertNotFound(t, "Turn", err)

	_, err = manager.State(ctx, uuid.New())
	assertNotFound(t, "State", err)

	_, err = manager.End(ctx, uuid.New())
	assertNotFound(t, "End", err)
}

func assertNotFound(t *testing.T, op string, err error) {
	t.Helper()
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindNotFound {
		t.Errorf("%s error = %v, want not found", op, err)
	}
}

func TestManagerEndPersistsRecord(t *testing.T) {
	manager, calls := newTestManager(t, time.Hour)
	ctx := context.Background()

	id, _, err := manager.Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, _, err := manager.Turn(ctx, id, "Water is pouring in through the ceiling!"); err != nil {
		t.Fatalf("Turn: %v", err)
	}

	record, err := manager.End(ctx, id)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if !record.Escalated {
		t.Error("record not marked escalated after emergency turn")
	}
	if record.Outcome != transport.OutcomeEscalated {
		t.Errorf("Outcome = %s, want escalated", record.Outcome)
	}
	if manager.Active() != 0 {
		t.Errorf("Active = %d after End, want 0", manager.Active())
	}

	// Ending twice is a not-found, not a duplicate record.
	if _, err := manager.End(ctx, id); err == nil {
		t.Error("second End succeeded, want not found")
	}

	records, err := calls.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("stored %d records, want 1", len(records))
	}
}

func TestManagerSweepFinalizesIdleSessions(t *testing.T) {
	manager, calls := newTestManager(t, 10*time.Minute)
	ctx := context.Background()

	current := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return current }

	idleID, _, err := manager.Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Second session stays active past the cutoff.
	current = current.Add(15 * time.Minute)
	activeID, _, err := manager.Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	manager.sweep(ctx)

	if manager.Active() != 1 {
		t.Fatalf("Active = %d after sweep, want 1", manager.Active())
	}
	if _, err := manager.State(ctx, idleID); err == nil {
		t.Error("idle session still present after sweep")
	}
	if _, err := manager.State(ctx, activeID); err != nil {
		t.Errorf("active session swept: %v", err)
	}

	records, err := calls.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("stored %d records after sweep, want 1", len(records))
	}
}
