// Package transport defines the wire types for the calls module.
package transport

import (
	"time"

	"callintake_backend/internal/dialogue"
	"callintake_backend/internal/emergency"

	"github.com/google/uuid"
)

// Outcome is how a finished call ended.
type Outcome string

const (
	OutcomeScheduled Outcome = "scheduled"
	OutcomeFollowUp  Outcome = "follow_up"
	OutcomeEscalated Outcome = "escalated"
	OutcomeNoShow    Outcome = "no_show"
)

// knownOutcomes is the set of valid outcomes.
var knownOutcomes = map[Outcome]struct{}{
	OutcomeScheduled: {},
	OutcomeFollowUp:  {},
	OutcomeEscalated: {},
	OutcomeNoShow:    {},
}

// IsValid reports whether the outcome is one of the known values.
func (o Outcome) IsValid() bool {
	_, ok := knownOutcomes[o]
	return ok
}

// CallRecord is the persisted artifact of a finished call.
type CallRecord struct {
	ID                  uuid.UUID          `json:"id"`
	Timestamp           time.Time          `json:"timestamp"`
	DurationSeconds     int                `json:"duration"`
	Emergency           bool               `json:"emergency"`
	EmergencyDetected   bool               `json:"emergencyDetected"`
	EmergencyConfidence float64            `json:"emergencyConfidence"`
	EmergencySeverity   emergency.Severity `json:"emergencySeverity"`
	Escalated           bool               `json:"escalated"`
	LeadInfo            dialogue.LeadInfo  `json:"leadInfo"`
	ConversationHistory []dialogue.Turn    `json:"conversationHistory"`
	Outcome             Outcome            `json:"outcome"`
}

// SaveCallRequest is the payload for recording a call from an external
// intake client. The ID is optional; a missing ID gets generated.
type SaveCallRequest struct {
	ID                  *uuid.UUID        `json:"id"`
	Timestamp           time.Time         `json:"timestamp" validate:"required"`
	DurationSeconds     int               `json:"duration" validate:"gte=0"`
	Emergency           bool              `json:"emergency"`
	EmergencyDetected   bool              `json:"emergencyDetected"`
	EmergencyConfidence float64           `json:"emergencyConfidence" validate:"gte=0,lte=1"`
	EmergencySeverity   string            `json:"emergencySeverity" validate:"omitempty,oneof=critical high medium low"`
	Escalated           bool              `json:"escalated"`
	LeadInfo            dialogue.LeadInfo `json:"leadInfo"`
	ConversationHistory []dialogue.Turn   `json:"conversationHistory"`
	Outcome             string            `json:"outcome" validate:"required,oneof=scheduled follow_up escalated no_show"`
}

// ToRecord converts the request into a record, generating an ID and
// defaulting the severity when absent.
func (r SaveCallRequest) ToRecord() CallRecord {
	id := uuid.New()
	if r.ID != nil {
		id = *r.ID
	}

	severity := emergency.Severity(r.EmergencySeverity)
	if severity == "" {
		severity = emergency.SeverityLow
	}

	return CallRecord{
		ID:                  id,
		Timestamp:           r.Timestamp,
		DurationSeconds:     r.DurationSeconds,
		Emergency:           r.Emergency,
		EmergencyDetected:   r.EmergencyDetected,
		EmergencyConfidence: r.EmergencyConfidence,
		EmergencySeverity:   severity,
		Escalated:           r.Escalated,
		LeadInfo:            r.LeadInfo,
		ConversationHistory: r.ConversationHistory,
		Outcome:             Outcome(r.Outcome),
	}
}

// ListResponse wraps a page of call records.
type ListResponse struct {
	Calls []CallRecord `json:"calls"`
	Count int          `json:"count"`
}

// StatsResponse aggregates the stored calls for the dashboard.
type StatsResponse struct {
	Total                  int     `json:"total"`
	Emergencies            int     `json:"emergencies"`
	CriticalEmergencies    int     `json:"criticalEmergencies"`
	Escalated              int     `json:"escalated"`
	Scheduled              int     `json:"scheduled"`
	AvgDuration            float64 `json:"avgDuration"`
	AvgEmergencyConfidence float64 `json:"avgEmergencyConfidence"`
}
