// Package dialogue implements the staged conversation engine that answers
// roofing calls. The engine walks a caller through intake stages, extracts
// lead details from free-form speech, and hands emergencies to the
// escalation flow driven by the emergency detector.
package dialogue

import (
	"time"

	"callintake_backend/internal/emergency"
)

// Stage identifies where a call is in the intake flow.
type Stage string

const (
	StageGreeting       Stage = "greeting"
	StageEmergencyCheck Stage = "emergency_check"
	StageQualification  Stage = "qualification"
	StageServiceDetails Stage = "service_details"
	StageScheduling     Stage = "scheduling"
	StageCollectingInfo Stage = "collecting_info"
	StageClosing        Stage = "closing"
	StageEscalation     Stage = "escalation"
)

// knownStages is the set of valid stages.
var knownStages = map[Stage]struct{}{
	StageGreeting:       {},
	StageEmergencyCheck: {},
	StageQualification:  {},
	StageServiceDetails: {},
	StageScheduling:     {},
	StageCollectingInfo: {},
	StageClosing:        {},
	StageEscalation:     {},
}

// IsValid reports whether the stage is one of the known intake stages.
func (s Stage) IsValid() bool {
	_, ok := knownStages[s]
	return ok
}

func (s Stage) String() string { return string(s) }

// IssueType classifies the roofing problem the caller describes.
type IssueType string

const (
	IssueLeak        IssueType = "leak"
	IssueDamage      IssueType = "damage"
	IssueInspection  IssueType = "inspection"
	IssueReplacement IssueType = "replacement"
	IssueRepair      IssueType = "repair"
	IssueMaintenance IssueType = "maintenance"
	IssueOther       IssueType = "other"
)

// PropertyType classifies the property the call concerns.
type PropertyType string

const (
	PropertyResidential PropertyType = "residential"
	PropertyCommercial  PropertyType = "commercial"
)

// LeadInfo holds the details extracted from the caller over the conversation.
// Fields fill in as the caller mentions them; empty means not yet captured.
type LeadInfo struct {
	Name             string            `json:"name,omitempty"`
	Phone            string            `json:"phone,omitempty"`
	Email            string            `json:"email,omitempty"`
	Address          string            `json:"address,omitempty"`
	Issue            string            `json:"issue,omitempty"`
	IssueType        IssueType         `json:"issueType,omitempty"`
	Urgency          emergency.Urgency `json:"urgency,omitempty"`
	PropertyType     PropertyType      `json:"propertyType,omitempty"`
	RoofAge          string            `json:"roofAge,omitempty"`
	AppointmentDate  string            `json:"appointmentDate,omitempty"`
	AppointmentTime  string            `json:"appointmentTime,omitempty"`
	PreferredContact string            `json:"preferredContact,omitempty"`
}

// Role identifies who spoke a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one utterance in the conversation history.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Context carries per-turn metadata about the conversation.
type Context struct {
	LastResponse string  `json:"lastResponse,omitempty"`
	UserIntent   string  `json:"userIntent,omitempty"`
	Confidence   float64 `json:"confidence,omitempty"`
}

// CallState is the full state of an in-progress call.
type CallState struct {
	Stage               Stage    `json:"stage"`
	EmergencyDetected   bool     `json:"emergencyDetected"`
	Escalated           bool     `json:"escalated"`
	QualificationStep   int      `json:"qualificationStep"`
	LeadInfo            LeadInfo `json:"leadInfo"`
	ConversationHistory []Turn   `json:"conversationHistory"`
	Context             Context  `json:"context"`
}

// snapshot returns an independent copy of the state. The history slice is
// copied so callers cannot mutate the engine's internals.
func (s *CallState) snapshot() CallState {
	copied := *s
	copied.ConversationHistory = append([]Turn(nil), s.ConversationHistory...)
	return copied
}

func newCallState() CallState {
	return CallState{
		Stage:               StageGreeting,
		QualificationStep:   0,
		LeadInfo:            LeadInfo{},
		ConversationHistory: nil,
		Context:             Context{},
	}
}
