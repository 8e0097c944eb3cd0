package notification

import (
	"context"

	"callintake_backend/internal/events"
	"callintake_backend/platform/logger"
)

// Module wires escalation alerts to the event bus. It has no HTTP surface.
type Module struct {
	sender Sender
	log    *logger.Logger
}

// NewModule creates the notification module and subscribes it to the bus.
// A nil sender disables delivery, which keeps the demo runnable without
// SMTP credentials.
func NewModule(bus events.Bus, sender Sender, log *logger.Logger) *Module {
	m := &Module{sender: sender, log: log}

	bus.Subscribe(events.CallEscalated{}.EventName(), events.HandlerFunc(m.onCallEscalated))

	return m
}

func (m *Module) onCallEscalated(ctx context.Context, event events.Event) error {
	escalated, ok := event.(events.CallEscalated)
	if !ok {
		return nil
	}

	if m.sender == nil {
		m.log.Info("escalation alert skipped, email disabled", "call_id", escalated.Record.ID.String())
		return nil
	}

	if err := m.sender.SendEscalationAlert(ctx, escalated.Record); err != nil {
		m.log.Error("failed to send escalation alert", "call_id", escalated.Record.ID.String(), "error", err)
		return err
	}

	m.log.Info("escalation alert sent", "call_id", escalated.Record.ID.String())
	return nil
}
