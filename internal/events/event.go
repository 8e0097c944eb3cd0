// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"callintake_backend/internal/calls/transport"
	"callintake_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Call Domain Events
// =============================================================================

// CallCompleted is published whenever a finished call is recorded,
// regardless of outcome.
type CallCompleted struct {
	BaseEvent
	Record transport.CallRecord `json:"record"`
}

func (e CallCompleted) EventName() string { return "calls.call.completed" }

// CallEscalated is published when a recorded call reached the escalation
// flow. The notification module turns this into a dispatch alert.
type CallEscalated struct {
	BaseEvent
	Record transport.CallRecord `json:"record"`
}

func (e CallEscalated) EventName() string { return "calls.call.escalated" }
