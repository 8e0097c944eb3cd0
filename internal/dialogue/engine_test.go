package dialogue

import (
	"math/rand"
	"strings"
	"testing"
	"time"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(Options{
		Rand: rand.New(rand.NewSource(1)),
		Now:  func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

func TestGreetingMentionsBusiness(t *testing.T) {
	engine := newTestEngine(t)
	greeting := engine.Greeting()

	if !strings.Contains(greeting, DefaultBusinessName) {
		t.Errorf("greeting %q does not mention the business name", greeting)
	}
	// Abbreviations are expanded for speech before the reply leaves the engine.
	if strings.Contains(greeting, "AI ") {
		t.Errorf("greeting %q contains unexpanded AI abbreviation", greeting)
	}
}

func TestEmergencyEscalatesWithinTwoTurns(t *testing.T) {
	engine := newTestEngine(t)

	engine.ProcessInput("Yes, it's an emergency, water is pouring in!")

	state := engine.Snapshot()
	if state.Stage != StageEscalation {
		t.Fatalf("stage = %s after emergency utterance, want escalation", state.Stage)
	}
	if !state.EmergencyDetected {
		t.Errorf("EmergencyDetected = false, want true")
	}
	if !state.Escalated {
		t.Errorf("Escalated = false, want true")
	}
	if state.LeadInfo.Urgency == "" {
		t.Errorf("urgency not recorded on escalation")
	}
	if state.Context.Confidence <= 0 {
		t.Errorf("Context.Confidence = %f, want > 0", state.Context.Confidence)
	}
}

func TestRoutineFlowReachesClosing(t *testing.T) {
	engine := newTestEngine(t)

	engine.ProcessInput("Hi, I'd like to get an inspection")
	if got := engine.Snapshot().Stage; got != StageQualification {
		t.Fatalf("stage after greeting turn = %s, want qualification", got)
	}

	engine.ProcessInput("Some shingles are missing on my house")
	state := engine.Snapshot()
	if state.Stage != StageScheduling {
		t.Fatalf("stage after qualification turn = %s, want scheduling", state.Stage)
	}
	if state.LeadInfo.PropertyType != PropertyResidential {
		t.Errorf("PropertyType = %q, want residential from 'my house'", state.LeadInfo.PropertyType)
	}

	reply := engine.ProcessInput("tomorrow morning at 10am works")
	state = engine.Snapshot()
	if state.Stage != StageClosing {
		t.Fatalf("stage after scheduling turn = %s, want closing", state.Stage)
	}
	if state.LeadInfo.AppointmentDate != "tomorrow" {
		t.Errorf("AppointmentDate = %q, want %q", state.LeadInfo.AppointmentDate, "tomorrow")
	}
	if state.LeadInfo.AppointmentTime == "" {
		t.Errorf("AppointmentTime empty, want captured time")
	}
	if !strings.Contains(reply, "tomorrow") {
		t.Errorf("confirmation %q does not mention the date", reply)
	}
}

func TestEmergencyCheckActivePathWalksSafetyQuestions(t *testing.T) {
	engine := newTestEngine(t)

	// A bare yes at greeting flags an emergency without the detector firing.
	engine.ProcessInput("Yes")
	state := engine.Snapshot()
	if state.Stage != StageEmergencyCheck {
		t.Fatalf("stage = %s, want emergency_check", state.Stage)
	}
	if !state.EmergencyDetected {
		t.Fatalf("EmergencyDetected = false after explicit yes")
	}

	engine.ProcessInput("Yes, water is coming in")
	state = engine.Snapshot()
	if state.Stage != StageEscalation {
		t.Fatalf("stage = %s, want escalation on active emergency", state.Stage)
	}

	// Calm answers walk through the remaining safety questions, then the
	// engine collects address and phone.
	engine.ProcessInput("Everyone is fine")
	engine.ProcessInput("The power is off")
	reply := engine.ProcessInput("We are all outside")
	if !strings.Contains(strings.ToLower(reply), "address") {
		t.Errorf("reply after safety walk = %q, want address collection", reply)
	}

	engine.ProcessInput("We're at 45 Oak Avenue")
	state = engine.Snapshot()
	if state.LeadInfo.Address == "" {
		t.Fatalf("address not captured from utterance")
	}

	engine.ProcessInput("My number is 555-123-4567")
	state = engine.Snapshot()
	if state.LeadInfo.Phone != "5551234567" {
		t.Errorf("Phone = %q, want digits only", state.LeadInfo.Phone)
	}
	if state.Stage != StageClosing {
		t.Errorf("stage = %s after all info collected, want closing", state.Stage)
	}
}

func TestEmergencyCheckNonActivePathDowngradesToUrgent(t *testing.T) {
	engine := newTestEngine(t)

	engine.ProcessInput("Yes")
	engine.ProcessInput("No, it has stopped")

	state := engine.Snapshot()
	if state.Stage != StageQualification {
		t.Errorf("stage = %s, want qualification after non-active emergency", state.Stage)
	}
	if state.LeadInfo.Urgency != "urgent" {
		t.Errorf("Urgency = %q, want urgent", state.LeadInfo.Urgency)
	}
	if state.QualificationStep != 1 {
		t.Errorf("QualificationStep = %d, want 1", state.QualificationStep)
	}
}

func TestEscalationDangerAnswerJumpsToCollectingInfo(t *testing.T) {
	engine := newTestEngine(t)

	engine.ProcessInput("Emergency! Water is flooding in and it's dangerous")
	if got := engine.Snapshot().Stage; got != StageEscalation {
		t.Fatalf("stage = %s, want escalation", got)
	}

	reply := engine.ProcessInput("Yes, someone is hurt")
	state := engine.Snapshot()
	if state.Stage != StageCollectingInfo {
		t.Fatalf("stage = %s, want collecting_info on danger answer", state.Stage)
	}
	if !strings.Contains(reply, "dispatch emergency services") {
		t.Errorf("reply = %q, want immediate dispatch message", reply)
	}

	// Collecting info asks for phone first, then address, then closes.
	engine.ProcessInput("555-123-4567")
	engine.ProcessInput("The house is at 12 Elm Street")
	state = engine.Snapshot()
	if state.Stage != StageClosing {
		t.Errorf("stage = %s, want closing once phone and address are in", state.Stage)
	}
}

func TestLeadExtractionIsSetOnce(t *testing.T) {
	engine := newTestEngine(t)

	engine.ProcessInput("I'm John Smith, my number is 555-123-4567")
	state := engine.Snapshot()
	if state.LeadInfo.Name != "John Smith" {
		t.Errorf("Name = %q, want %q", state.LeadInfo.Name, "John Smith")
	}
	if state.LeadInfo.Phone != "5551234567" {
		t.Errorf("Phone = %q, want %q", state.LeadInfo.Phone, "5551234567")
	}

	// Later mentions never overwrite the first captured values.
	engine.ProcessInput("Actually call my wife, this is Mary Jones at 999-888-7777")
	state = engine.Snapshot()
	if state.LeadInfo.Name != "John Smith" {
		t.Errorf("Name overwritten to %q, want original kept", state.LeadInfo.Name)
	}
	if state.LeadInfo.Phone != "5551234567" {
		t.Errorf("Phone overwritten to %q, want original kept", state.LeadInfo.Phone)
	}
}

func TestEmergencyDetectedIsMonotonic(t *testing.T) {
	engine := newTestEngine(t)

	engine.ProcessInput("Water is leaking into the kitchen right now")
	if !engine.Snapshot().EmergencyDetected {
		t.Fatalf("EmergencyDetected = false after leak report")
	}

	engine.ProcessInput("Everything is calm now")
	engine.ProcessInput("It is fine really")
	if !engine.Snapshot().EmergencyDetected {
		t.Errorf("EmergencyDetected unset by later calm input, want monotonic")
	}
}

func TestClosingLoopsBackToQualification(t *testing.T) {
	engine := newTestEngine(t)

	engine.ProcessInput("I want to schedule a repair")
	engine.ProcessInput("The flashing needs fixing")
	engine.ProcessInput("tomorrow afternoon please")
	if got := engine.Snapshot().Stage; got != StageClosing {
		t.Fatalf("stage = %s, want closing before loopback", got)
	}

	engine.ProcessInput("Actually, one more thing")
	state := engine.Snapshot()
	if state.Stage != StageQualification {
		t.Fatalf("stage = %s, want qualification after loopback", state.Stage)
	}
	if state.QualificationStep != 0 {
		t.Errorf("QualificationStep = %d, want 0 after loopback", state.QualificationStep)
	}

	// The looped-back qualification turn routes through service details,
	// which captures roof age.
	engine.ProcessInput("My roof is 15 years old, should it be replaced?")
	state = engine.Snapshot()
	if state.Stage != StageServiceDetails {
		t.Errorf("stage = %s, want service_details on loopback turn", state.Stage)
	}

	engine.ProcessInput("It started around 20 years ago, the roof is 20 years old")
	state = engine.Snapshot()
	if state.LeadInfo.RoofAge == "" {
		t.Errorf("RoofAge not captured in service details")
	}
	if state.Stage != StageScheduling {
		t.Errorf("stage = %s, want scheduling after service details", state.Stage)
	}
}

func TestResetClearsEverything(t *testing.T) {
	engine := newTestEngine(t)

	engine.ProcessInput("Emergency! Water everywhere, I'm John Smith")
	engine.Reset()

	state := engine.Snapshot()
	if state.Stage != StageGreeting {
		t.Errorf("stage after Reset = %s, want greeting", state.Stage)
	}
	if state.EmergencyDetected || state.Escalated {
		t.Errorf("emergency flags survived Reset: %+v", state)
	}
	if state.LeadInfo.Name != "" {
		t.Errorf("LeadInfo survived Reset: %+v", state.LeadInfo)
	}
	if len(state.ConversationHistory) != 0 {
		t.Errorf("history survived Reset, len = %d", len(state.ConversationHistory))
	}
}

func TestSnapshotIsDefensiveCopy(t *testing.T) {
	engine := newTestEngine(t)
	engine.ProcessInput("Hello there")

	snap := engine.Snapshot()
	if len(snap.ConversationHistory) == 0 {
		t.Fatalf("expected history in snapshot")
	}
	snap.ConversationHistory[0].Text = "mutated"
	snap.LeadInfo.Name = "Mallory"

	fresh := engine.Snapshot()
	if fresh.ConversationHistory[0].Text == "mutated" {
		t.Errorf("snapshot shares history backing array with engine state")
	}
	if fresh.LeadInfo.Name == "Mallory" {
		t.Errorf("snapshot shares lead info with engine state")
	}
}

func TestConversationHistoryRecordsBothRoles(t *testing.T) {
	engine := newTestEngine(t)
	engine.ProcessInput("Hi, I need my roof checked")

	history := engine.Snapshot().ConversationHistory
	if len(history) != 2 {
		t.Fatalf("history length = %d, want user + assistant turns", len(history))
	}
	if history[0].Role != RoleUser || history[1].Role != RoleAssistant {
		t.Errorf("history roles = %s, %s, want user then assistant", history[0].Role, history[1].Role)
	}
	if history[0].Timestamp.IsZero() {
		t.Errorf("turn timestamp is zero")
	}
}

func TestStageValidation(t *testing.T) {
	for _, stage := range []Stage{
		StageGreeting, StageEmergencyCheck, StageQualification, StageServiceDetails,
		StageScheduling, StageCollectingInfo, StageClosing, StageEscalation,
	} {
		if !stage.IsValid() {
			t.Errorf("stage %s reported invalid", stage)
		}
	}
	if Stage("voicemail").IsValid() {
		t.Errorf("unknown stage reported valid")
	}
}
