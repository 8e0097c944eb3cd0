package notification

import (
	"context"
	"testing"

	"callintake_backend/internal/calls/transport"
	"callintake_backend/internal/events"
	"callintake_backend/platform/logger"

	"github.com/google/uuid"
)

type testSender struct {
	escalations int
	followUps   int
}

func (s *testSender) SendEscalationAlert(context.Context, transport.CallRecord) error {
	s.escalations++
	return nil
}

func (s *testSender) SendFollowUp(context.Context, string, transport.CallRecord) error {
	s.followUps++
	return nil
}

func escalatedEvent() events.CallEscalated {
	return events.CallEscalated{
		BaseEvent: events.NewBaseEvent(),
		Record: transport.CallRecord{
			ID:        uuid.New(),
			Escalated: true,
			Outcome:   transport.OutcomeEscalated,
		},
	}
}

func TestEscalationEventSendsAlert(t *testing.T) {
	log := logger.New("test")
	bus := events.NewInMemoryBus(log)
	sender := &testSender{}

	NewModule(bus, sender, log)

	if err := bus.PublishSync(context.Background(), escalatedEvent()); err != nil {
		t.Fatalf("PublishSync: %v", err)
	}

	if sender.escalations != 1 {
		t.Errorf("escalation alerts sent = %d, want 1", sender.escalations)
	}
	if sender.followUps != 0 {
		t.Errorf("follow-ups sent = %d, want 0", sender.followUps)
	}
}

func TestNilSenderSkipsDelivery(t *testing.T) {
	log := logger.New("test")
	bus := events.NewInMemoryBus(log)

	NewModule(bus, nil, log)

	if err := bus.PublishSync(context.Background(), escalatedEvent()); err != nil {
		t.Errorf("PublishSync with nil sender = %v, want nil", err)
	}
}
