package dialogue

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"callintake_backend/internal/emergency"
)

// DefaultBusinessName is used when no business name is configured.
const DefaultBusinessName = "Premium Roofing Solutions"

// Options configures an Engine. Zero values fall back to sensible defaults;
// Rand and Now exist so tests can pin template choice and timestamps.
type Options struct {
	BusinessName  string
	TemplatesPath string
	Rand          *rand.Rand
	Now           func() time.Time
}

// Engine runs one call's conversation. It owns the call state, the emergency
// detector for the call, and the safety question walk during escalation.
// Safe for concurrent use, though a call's turns are inherently sequential.
type Engine struct {
	mu           sync.Mutex
	businessName string
	templates    *TemplateSet
	detector     *emergency.Detector
	rng          *rand.Rand
	now          func() time.Time

	state              CallState
	safetyQuestions    []string
	safetyQuestionStep int
}

// NewEngine creates an engine for a single call.
func NewEngine(opts Options) (*Engine, error) {
	businessName := opts.BusinessName
	if businessName == "" {
		businessName = DefaultBusinessName
	}

	templates, err := loadTemplates(opts.TemplatesPath, businessName)
	if err != nil {
		return nil, err
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(now().UnixNano()))
	}

	return &Engine{
		businessName: businessName,
		templates:    templates,
		detector:     emergency.NewDetectorWithClock(now),
		rng:          rng,
		now:          now,
		state:        newCallState(),
	}, nil
}

// Greeting returns the opening line for a new call.
func (e *Engine) Greeting() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return normalizeReply(pick(e.rng, e.templates.Greeting))
}

// DetectEmergency analyzes an utterance without advancing the conversation.
// The utterance still lands in the detector's sliding window.
func (e *Engine) DetectEmergency(input string) emergency.Detection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.detector.Analyze(input)
}

// EmergencySummary returns the detector's aggregate view of the call.
func (e *Engine) EmergencySummary() emergency.Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.detector.Summary()
}

// Snapshot returns a defensive copy of the current call state.
func (e *Engine) Snapshot() CallState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.snapshot()
}

// Reset returns the engine to the greeting stage and clears all state,
// including the emergency detector's window.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = newCallState()
	e.safetyQuestions = nil
	e.safetyQuestionStep = 0
	e.detector.Reset()
}

// ProcessInput runs one conversation turn: extract lead details, monitor for
// emergencies, dispatch the stage handler, and return the normalized reply.
func (e *Engine) ProcessInput(input string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.addTurn(RoleUser, input)

	// Lead fields are set-once: the first mention wins for the whole call.
	if name := extractName(input); name != "" && e.state.LeadInfo.Name == "" {
		e.state.LeadInfo.Name = name
	}
	if phone := extractPhoneNumber(input); phone != "" && e.state.LeadInfo.Phone == "" {
		e.state.LeadInfo.Phone = phone
	}
	if address := extractAddress(input); address != "" && e.state.LeadInfo.Address == "" {
		e.state.LeadInfo.Address = address
	}

	e.monitorEmergency(input)

	if issueType := detectServiceType(input); issueType != "" && e.state.LeadInfo.IssueType == "" {
		e.state.LeadInfo.IssueType = issueType
	}

	// Dispatch on the post-monitor stage: a detection mid-turn means the
	// escalation or emergency handler answers this same utterance.
	var reply string
	switch e.state.Stage {
	case StageGreeting:
		reply = e.handleGreeting(input)
	case StageEmergencyCheck:
		reply = e.handleEmergencyCheck(input)
	case StageQualification:
		reply = e.handleQualification(input)
	case StageServiceDetails:
		reply = e.handleServiceDetails(input)
	case StageScheduling:
		reply = e.handleScheduling(input)
	case StageCollectingInfo:
		reply = e.handleCollectingInfo(input)
	case StageClosing:
		reply = e.handleClosing(input)
	case StageEscalation:
		reply = e.handleEscalation(input)
	default:
		reply = "I'm here to help. How can I assist you with your roofing needs today?"
	}

	e.state.Context.LastResponse = reply
	e.addTurn(RoleAssistant, reply)

	return normalizeReply(reply)
}

// monitorEmergency runs detection on every utterance. Only the first
// detection of the call redirects the flow; emergencyDetected never unsets.
func (e *Engine) monitorEmergency(input string) {
	detection := e.detector.Analyze(input)

	if !detection.Detected || e.state.EmergencyDetected {
		return
	}

	e.state.EmergencyDetected = true
	e.state.LeadInfo.Urgency = detection.Urgency
	e.state.Context.Confidence = detection.Confidence

	if e.detector.ShouldEscalate(detection) {
		e.enterEscalation(e.detector.SafetyQuestions(detection))
	} else {
		e.state.Stage = StageEmergencyCheck
	}
}

// enterEscalation moves the call into the escalation stage with a fresh
// safety question walk.
func (e *Engine) enterEscalation(questions []string) {
	e.state.Stage = StageEscalation
	e.state.Escalated = true
	e.safetyQuestions = questions
	e.safetyQuestionStep = 0
}

func (e *Engine) handleGreeting(input string) string {
	lower := strings.ToLower(input)

	if e.state.EmergencyDetected {
		return pick(e.rng, e.templates.ReassuringGreeting)
	}

	if strings.Contains(lower, "yes") || strings.Contains(lower, "emergency") || strings.Contains(lower, "urgent") {
		e.state.EmergencyDetected = true
		e.state.LeadInfo.Urgency = emergency.UrgencyEmergency
		e.state.Stage = StageEmergencyCheck
		return pick(e.rng, e.templates.ReassuringGreeting)
	}

	e.state.Stage = StageQualification
	e.state.QualificationStep = 1
	return pick(e.rng, e.templates.Qualification)
}

func (e *Engine) handleEmergencyCheck(input string) string {
	lower := strings.ToLower(input)

	if containsAny(lower, []string{"yes", "active", "coming", "pouring", "dripping"}) {
		e.state.LeadInfo.Urgency = emergency.UrgencyEmergency
		e.enterEscalation(e.detector.SafetyQuestions(e.detector.Analyze(input)))
		e.safetyQuestionStep = 1
		return e.templates.safetyQuestionReply(e.rng, 1)
	}

	if containsAny(lower, []string{"no", "not", "stopped", "was"}) {
		e.state.LeadInfo.Urgency = emergency.UrgencyUrgent
		e.state.Stage = StageQualification
		e.state.QualificationStep = 1
		return pick(e.rng, e.templates.NonActiveEmergency)
	}

	return "I need to understand the urgency. Is water actively coming into your home right now, or has the leak stopped? Please stay calm - we're going to help you."
}

func (e *Engine) handleEscalation(input string) string {
	// A freshly entered escalation asks the first safety question before
	// anything else.
	if e.safetyQuestionStep == 0 && len(e.safetyQuestions) > 0 {
		e.safetyQuestionStep = 1
		return e.templates.safetyQuestionReply(e.rng, 1)
	}

	if e.safetyQuestionStep > 0 && e.safetyQuestionStep <= len(e.safetyQuestions) {
		lower := strings.ToLower(input)

		// "Yes" combined with danger language cuts the walk short.
		if strings.Contains(lower, "yes") && containsAny(lower, []string{"danger", "unsafe", "injury", "hurt"}) {
			e.state.Stage = StageCollectingInfo
			return "I understand this is a critical situation. We're going to dispatch emergency services immediately. What's the address where you are, and what's your phone number?"
		}

		e.safetyQuestionStep++
		if e.safetyQuestionStep <= len(e.safetyQuestions) {
			return e.templates.safetyQuestionReply(e.rng, e.safetyQuestionStep)
		}
	}

	if e.state.LeadInfo.Address == "" {
		return pick(e.rng, e.templates.AddressCollection)
	}

	if e.state.LeadInfo.Phone == "" {
		return pick(e.rng, e.templates.PhoneCollection)
	}

	e.state.Stage = StageClosing
	return pick(e.rng, e.templates.FinalReassurance)
}

func (e *Engine) handleQualification(input string) string {
	lower := strings.ToLower(input)

	if e.state.LeadInfo.Issue == "" {
		e.state.LeadInfo.Issue = input
	}

	if issueType := detectServiceType(input); issueType != "" {
		e.state.LeadInfo.IssueType = issueType
	}

	e.state.QualificationStep++

	if e.state.QualificationStep == 1 {
		e.state.Stage = StageServiceDetails
		issueType := e.state.LeadInfo.IssueType
		if issueType == "" {
			issueType = "issue"
		}
		reply := pick(e.rng, e.templates.ServiceDetails)
		return strings.ReplaceAll(reply, "{issue}", string(issueType))
	}

	if e.state.QualificationStep == 2 {
		if e.state.LeadInfo.PropertyType == "" {
			if containsAny(lower, []string{"home", "house", "residential"}) {
				e.state.LeadInfo.PropertyType = PropertyResidential
			} else if containsAny(lower, []string{"business", "commercial", "office"}) {
				e.state.LeadInfo.PropertyType = PropertyCommercial
			}
		}

		e.state.Stage = StageScheduling
		return pick(e.rng, e.templates.Scheduling)
	}

	e.state.Stage = StageScheduling
	return pick(e.rng, e.templates.Scheduling)
}

func (e *Engine) handleServiceDetails(input string) string {
	if e.state.LeadInfo.Issue == "" {
		e.state.LeadInfo.Issue = input
	}

	if age := extractRoofAge(input); age != "" {
		e.state.LeadInfo.RoofAge = age
	}

	e.state.Stage = StageScheduling
	return pick(e.rng, e.templates.Scheduling)
}

func (e *Engine) handleScheduling(input string) string {
	date, timeOfDay := parseAppointment(input)

	if date != "" {
		e.state.LeadInfo.AppointmentDate = date
	}
	if timeOfDay != "" {
		e.state.LeadInfo.AppointmentTime = timeOfDay
	}

	if e.state.LeadInfo.AppointmentDate != "" && e.state.LeadInfo.AppointmentTime != "" {
		e.state.Stage = StageClosing
		return e.closingConfirmation()
	}

	if e.state.LeadInfo.AppointmentDate != "" {
		return fmt.Sprintf("Great! We have you scheduled for %s. What time would work best? We have morning, afternoon, and evening slots available.", e.state.LeadInfo.AppointmentDate)
	}

	if e.state.LeadInfo.AppointmentTime != "" {
		return "Perfect timing preference. Which day would you like? We have availability today, tomorrow, and later this week."
	}

	return "I can schedule an appointment for you. When would be most convenient? We have availability today, tomorrow, and later this week. What day and time work best for you?"
}

func (e *Engine) handleCollectingInfo(input string) string {
	if phone := extractPhoneNumber(input); phone != "" && e.state.LeadInfo.Phone == "" {
		e.state.LeadInfo.Phone = phone
	}
	if address := extractAddress(input); address != "" && e.state.LeadInfo.Address == "" {
		e.state.LeadInfo.Address = address
	}
	if name := extractName(input); name != "" && e.state.LeadInfo.Name == "" {
		e.state.LeadInfo.Name = name
	}

	if e.state.LeadInfo.Phone == "" {
		return pick(e.rng, e.templates.PhoneCollection)
	}

	if e.state.LeadInfo.Address == "" {
		return pick(e.rng, e.templates.AddressCollection)
	}

	e.state.Stage = StageClosing
	return pick(e.rng, e.templates.FinalReassurance)
}

func (e *Engine) handleClosing(input string) string {
	lower := strings.ToLower(input)

	if containsAny(lower, []string{"no", "nothing", "that's all", "thank you"}) {
		return fmt.Sprintf("You're very welcome. Thank you for choosing %s. Have a great day, and we'll see you soon!", e.businessName)
	}

	if containsAny(lower, []string{"yes", "one more", "actually"}) {
		// Loop back for a follow-up question. Step 0 means the next
		// qualification turn routes through service details again.
		e.state.Stage = StageQualification
		e.state.QualificationStep = 0
		return "Of course! What else can I help you with?"
	}

	return fmt.Sprintf("Thank you for calling %s. Is there anything else I can help you with today?", e.businessName)
}

func (e *Engine) closingConfirmation() string {
	date := formatAppointmentDate(e.state.LeadInfo.AppointmentDate)
	timeOfDay := formatAppointmentTime(e.state.LeadInfo.AppointmentTime)

	reply := pick(e.rng, e.templates.Closing)
	reply = strings.ReplaceAll(reply, "{date}", date)
	reply = strings.ReplaceAll(reply, "{time}", timeOfDay)
	return reply
}

func (e *Engine) addTurn(role Role, text string) {
	e.state.ConversationHistory = append(e.state.ConversationHistory, Turn{
		Role:      role,
		Text:      text,
		Timestamp: e.now(),
	})
}

// containsAny checks if s contains any of the keywords.
func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
