package dialogue

import (
	"fmt"
	"math/rand"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// businessPlaceholder is substituted with the configured business name in
// both built-in and file-provided templates.
const businessPlaceholder = "{business}"

// TemplateSet holds the reply banks for every stage of the conversation.
// Every bank has at least one entry; a reply is picked at random to keep the
// assistant from sounding canned on repeat calls.
type TemplateSet struct {
	Greeting            []string `yaml:"greeting"`
	Emergency           []string `yaml:"emergency"`
	Qualification       []string `yaml:"qualification"`
	ServiceDetails      []string `yaml:"service_details"`
	Scheduling          []string `yaml:"scheduling"`
	Closing             []string `yaml:"closing"`
	ReassuringGreeting  []string `yaml:"reassuring_greeting"`
	SafetyQuestion1     []string `yaml:"safety_question_1"`
	SafetyQuestion2     []string `yaml:"safety_question_2"`
	SafetyQuestion3     []string `yaml:"safety_question_3"`
	SafetyQuestionExtra []string `yaml:"safety_question_extra"`
	AddressCollection   []string `yaml:"address_collection"`
	PhoneCollection     []string `yaml:"phone_collection"`
	FinalReassurance    []string `yaml:"final_reassurance"`
	NonActiveEmergency  []string `yaml:"non_active_emergency"`
	Calming             []string `yaml:"calming"`
}

// defaultTemplates returns the built-in reply banks with the business name
// substituted in.
func defaultTemplates(businessName string) *TemplateSet {
	ts := &TemplateSet{
		Greeting: []string{
			fmt.Sprintf("Thank you for calling %s. I'm your AI assistant, and I'm here to help with all your roofing needs. Are you experiencing a roofing emergency right now, or is this a general inquiry?", businessName),
			fmt.Sprintf("Welcome to %s. This is your AI assistant speaking. To best assist you, I need to know - are you dealing with a roofing emergency, or would you like to schedule a routine service?", businessName),
			fmt.Sprintf("Hello, and thank you for calling %s. I'm here to help. First, let me ask - is this an emergency situation, or are you looking to schedule a regular service?", businessName),
		},
		Emergency: []string{
			"I understand this is urgent. To help you as quickly as possible, I need to know - is water actively coming into your home right now?",
			"I hear you're dealing with an emergency. Let me prioritize this. Is water currently leaking into your property?",
			"This sounds serious. To dispatch the right technician, can you tell me - is there active water damage happening right now?",
		},
		Qualification: []string{
			"I'd be happy to help you with that. Can you tell me a bit more about what's going on with your roof?",
			"Thank you for that information. To better understand your situation, what type of roofing issue are you experiencing?",
			"I see. To schedule the right service for you, what would you say is the main concern with your roof?",
		},
		ServiceDetails: []string{
			"I understand you're dealing with a {issue}. Can you tell me when this first started?",
			"Thank you for that detail. When did you first notice this {issue}?",
			"I see. To help our technicians prepare, when did the {issue} begin?",
		},
		Scheduling: []string{
			"Great! I'd be happy to schedule an appointment for you. When would be most convenient? We have availability today, tomorrow, and later this week.",
			"Perfect timing. Let's get you scheduled. What day works best for you? We can do today, tomorrow, or any day this week.",
			"Excellent. I can schedule a visit for you. When would you prefer? We have openings today and throughout the week.",
		},
		Closing: []string{
			"Perfect! I've scheduled your appointment for {date} at {time}. A technician will call you within the next hour to confirm and provide an arrival window. Is there anything else I can help you with today?",
			"Excellent! Your appointment is confirmed for {date} at {time}. Our team will call you to confirm the details and provide an estimated arrival time. Anything else I can assist you with?",
			"Great! I've got you scheduled for {date} at {time}. You'll receive a confirmation call shortly, and our technician will arrive within the scheduled window. Is there anything else you'd like to discuss?",
		},
		ReassuringGreeting: []string{
			"I understand this is urgent. I'm here to help you right away. Let me get you the assistance you need as quickly as possible.",
			"I hear you're dealing with an emergency. Please stay calm - we're going to help you. I'm here to get you connected with immediate assistance.",
			"Thank you for calling. I understand this is an urgent situation. Let's get this resolved quickly and safely. I'm here to help.",
		},
		SafetyQuestion1: []string{
			"First, I need to make sure everyone is safe. Is anyone in immediate danger right now?",
			"Most importantly - is everyone safe? Is anyone in immediate danger?",
			"Before we proceed, let me ask - is everyone safe? Is anyone in immediate danger?",
		},
		SafetyQuestion2: []string{
			"Good. Now, is water actively coming into your home right now?",
			"Thank you. Is water currently leaking into your property?",
			"I understand. Is water actively coming in right now?",
		},
		SafetyQuestion3: []string{
			"Have you been able to move to a safe area?",
			"Are you in a safe location right now?",
			"Are you and your family in a safe area?",
		},
		SafetyQuestionExtra: []string{
			"Let me get one more detail - can you describe what's happening?",
		},
		AddressCollection: []string{
			"To send our technician to you, what's the address where the emergency is happening?",
			"I need the address where we should send the technician. What's the location?",
			"Where should we send the emergency technician? What's the address?",
		},
		PhoneCollection: []string{
			"What's the best phone number to reach you at? Our technician will call when they're on their way.",
			"What phone number should we use to contact you?",
			"I need a phone number where we can reach you. What's the best number?",
		},
		FinalReassurance: []string{
			"Perfect. I have everything I need. Our emergency technician will be there within 2 hours, and they'll call you when they're on their way. Please stay safe, and we'll take care of this. Is there anything else I can help you with right now?",
			"Excellent. I've got all the information. Help is on the way, and you'll receive a call from our technician shortly. Stay safe, and we'll get this resolved for you. Anything else I can help with?",
			"I have everything I need. We're dispatching someone immediately, and they'll contact you when they're heading to your location. Please stay safe. Is there anything else I can assist you with?",
		},
		NonActiveEmergency: []string{
			"I understand. Even though it's not actively happening right now, we should address this quickly. Let me schedule an urgent appointment for you.",
			"Thank you for that information. Even though it's not ongoing, this is still urgent. Let's get you scheduled as soon as possible.",
			"I see. While it's not actively happening now, we should still address this urgently. Let me get you scheduled right away.",
		},
		Calming: []string{
			"I understand this is stressful. Take a deep breath - we're going to get this sorted out. Let me help you.",
			"I know this is difficult. We're going to take care of this. Can you help me understand what's happening?",
			"I hear you, and I understand this is urgent. Let's work through this together, step by step.",
		},
	}
	return ts
}

// loadTemplates returns the built-in banks, optionally overridden by a YAML
// file. Banks absent from the file keep their defaults; present banks replace
// the default wholesale. The {business} placeholder is substituted after load.
func loadTemplates(path, businessName string) (*TemplateSet, error) {
	defaults := defaultTemplates(businessName)
	if path == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates %s: %w", path, err)
	}

	var overrides TemplateSet
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse templates %s: %w", path, err)
	}

	merged := mergeTemplates(defaults, &overrides)
	substituteBusiness(merged, businessName)
	return merged, nil
}

func mergeTemplates(defaults, overrides *TemplateSet) *TemplateSet {
	merged := *defaults
	apply := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = src
		}
	}
	apply(&merged.Greeting, overrides.Greeting)
	apply(&merged.Emergency, overrides.Emergency)
	apply(&merged.Qualification, overrides.Qualification)
	apply(&merged.ServiceDetails, overrides.ServiceDetails)
	apply(&merged.Scheduling, overrides.Scheduling)
	apply(&merged.Closing, overrides.Closing)
	apply(&merged.ReassuringGreeting, overrides.ReassuringGreeting)
	apply(&merged.SafetyQuestion1, overrides.SafetyQuestion1)
	apply(&merged.SafetyQuestion2, overrides.SafetyQuestion2)
	apply(&merged.SafetyQuestion3, overrides.SafetyQuestion3)
	apply(&merged.SafetyQuestionExtra, overrides.SafetyQuestionExtra)
	apply(&merged.AddressCollection, overrides.AddressCollection)
	apply(&merged.PhoneCollection, overrides.PhoneCollection)
	apply(&merged.FinalReassurance, overrides.FinalReassurance)
	apply(&merged.NonActiveEmergency, overrides.NonActiveEmergency)
	apply(&merged.Calming, overrides.Calming)
	return &merged
}

func substituteBusiness(ts *TemplateSet, businessName string) {
	banks := [][]string{
		ts.Greeting, ts.Emergency, ts.Qualification, ts.ServiceDetails,
		ts.Scheduling, ts.Closing, ts.ReassuringGreeting,
		ts.SafetyQuestion1, ts.SafetyQuestion2, ts.SafetyQuestion3,
		ts.SafetyQuestionExtra, ts.AddressCollection, ts.PhoneCollection,
		ts.FinalReassurance, ts.NonActiveEmergency, ts.Calming,
	}
	for _, bank := range banks {
		for i, entry := range bank {
			bank[i] = strings.ReplaceAll(entry, businessPlaceholder, businessName)
		}
	}
}

// pick selects a random entry from a bank.
func pick(rng *rand.Rand, bank []string) string {
	if len(bank) == 0 {
		return ""
	}
	return bank[rng.Intn(len(bank))]
}

// safetyQuestionReply returns the scripted phrasing for the nth safety
// question. Questions past the scripted three use the generic follow-up.
func (ts *TemplateSet) safetyQuestionReply(rng *rand.Rand, questionNumber int) string {
	switch questionNumber {
	case 1:
		return pick(rng, ts.SafetyQuestion1)
	case 2:
		return pick(rng, ts.SafetyQuestion2)
	case 3:
		return pick(rng, ts.SafetyQuestion3)
	default:
		return pick(rng, ts.SafetyQuestionExtra)
	}
}
