package sessions

import (
	"callintake_backend/internal/calls/transport"
	"callintake_backend/internal/dialogue"

	"github.com/google/uuid"
)

// StartResponse is returned when a new call session opens.
type StartResponse struct {
	SessionID uuid.UUID `json:"sessionId"`
	Greeting  string    `json:"greeting"`
}

// TurnRequest carries one caller utterance.
type TurnRequest struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}

// TurnResponse is the assistant's reply with the resulting call state.
type TurnResponse struct {
	Reply             string         `json:"reply"`
	Stage             dialogue.Stage `json:"stage"`
	EmergencyDetected bool           `json:"emergencyDetected"`
	Escalated         bool           `json:"escalated"`
	Confidence        float64        `json:"confidence"`
}

// StateResponse exposes the full call state for the dashboard.
type StateResponse struct {
	SessionID uuid.UUID          `json:"sessionId"`
	State     dialogue.CallState `json:"state"`
}

// EndResponse wraps the finalized call record.
type EndResponse struct {
	Record transport.CallRecord `json:"record"`
}
