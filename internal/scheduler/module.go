package scheduler

import (
	"context"
	"time"

	"callintake_backend/internal/calls/transport"
	"callintake_backend/internal/events"
	"callintake_backend/platform/logger"
)

// Module schedules follow-up work off the event bus. It has no HTTP surface.
type Module struct {
	client FollowUpScheduler
	delay  time.Duration
	log    *logger.Logger
}

// NewModule creates the scheduler module and subscribes it to the bus.
// A nil client disables scheduling, which keeps the demo runnable without
// Redis.
func NewModule(bus events.Bus, client FollowUpScheduler, delay time.Duration, log *logger.Logger) *Module {
	m := &Module{client: client, delay: delay, log: log}

	bus.Subscribe(events.CallCompleted{}.EventName(), events.HandlerFunc(m.onCallCompleted))

	return m
}

func (m *Module) onCallCompleted(ctx context.Context, event events.Event) error {
	completed, ok := event.(events.CallCompleted)
	if !ok {
		return nil
	}

	if completed.Record.Outcome != transport.OutcomeFollowUp {
		return nil
	}

	if m.client == nil {
		m.log.Info("follow-up scheduling skipped, queue disabled", "call_id", completed.Record.ID.String())
		return nil
	}

	payload := CallFollowUpPayload{
		CallID: completed.Record.ID.String(),
		Record: completed.Record,
	}
	runAt := time.Now().Add(m.delay)

	if err := m.client.ScheduleCallFollowUp(ctx, payload, runAt); err != nil {
		m.log.Error("failed to schedule follow-up", "call_id", payload.CallID, "error", err)
		return err
	}

	m.log.Info("follow-up scheduled", "call_id", payload.CallID, "run_at", runAt)
	return nil
}
