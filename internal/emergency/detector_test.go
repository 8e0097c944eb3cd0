package emergency

import (
	"math"
	"testing"
	"time"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAnalyzeClassification(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantDetected bool
		wantSeverity Severity
		wantUrgency  Urgency
	}{
		{
			name:         "benign business question",
			text:         "What are your hours?",
			wantDetected: false,
			wantSeverity: SeverityLow,
			wantUrgency:  UrgencyNormal,
		},
		{
			name:         "active water intrusion",
			text:         "water is pouring in",
			wantDetected: true,
			wantSeverity: SeverityCritical,
			wantUrgency:  UrgencyEmergency,
		},
		{
			name:         "safety keywords force critical",
			text:         "the wires are exposed",
			wantDetected: true,
			wantSeverity: SeverityCritical,
			wantUrgency:  UrgencyEmergency,
		},
		{
			name:         "storm damage without danger",
			text:         "the storm knocked a hole in it",
			wantDetected: true,
			wantSeverity: SeverityHigh,
			wantUrgency:  UrgencyUrgent,
		},
		{
			name:         "scheduling request",
			text:         "I would like to book an inspection next month",
			wantDetected: false,
			wantSeverity: SeverityLow,
			wantUrgency:  UrgencyNormal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector()
			got := d.Analyze(tt.text)

			if got.Detected != tt.wantDetected {
				t.Errorf("Detected = %v, want %v (confidence %.2f)", got.Detected, tt.wantDetected, got.Confidence)
			}
			if got.Severity != tt.wantSeverity {
				t.Errorf("Severity = %s, want %s", got.Severity, tt.wantSeverity)
			}
			if got.Urgency != tt.wantUrgency {
				t.Errorf("Urgency = %s, want %s", got.Urgency, tt.wantUrgency)
			}
			if got.Confidence < 0 || got.Confidence > 1 {
				t.Errorf("Confidence = %f, want within [0, 1]", got.Confidence)
			}
		})
	}
}

func TestAnalyzeConfidenceIsClamped(t *testing.T) {
	d := NewDetector()

	// Stack enough keywords and patterns to exceed 1.0 before clamping.
	got := d.Analyze("Emergency! Water is flooding in, it's unsafe and dangerous, the wires are exposed, I need help right now!")

	if !almostEqual(got.Confidence, 1.0) {
		t.Errorf("Confidence = %f, want clamped to 1.0", got.Confidence)
	}
	if got.Severity != SeverityCritical {
		t.Errorf("Severity = %s, want critical", got.Severity)
	}
}

func TestAnalyzePatternOnlyDetection(t *testing.T) {
	d := NewDetector()

	// No tier keywords, but the can't-wait pattern matches.
	got := d.Analyze("This really can't wait until next week")

	if !got.Detected {
		t.Errorf("Detected = false, want true on pattern-only match (confidence %.2f)", got.Confidence)
	}
}

func TestSlidingWindowBoostsConfidence(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	current := base
	d := NewDetectorWithClock(func() time.Time { return current })

	first := d.Analyze("there is a water leak")
	if len(first.Keywords) == 0 {
		t.Fatalf("expected keywords from first utterance, got none")
	}

	// Two seconds later, a keyword-free utterance still gets a context boost.
	current = base.Add(2 * time.Second)
	boosted := d.Analyze("it is getting worse")
	wantBoost := float64(len(first.Keywords)) * 0.1
	if !almostEqual(boosted.Confidence, wantBoost) {
		t.Errorf("boosted Confidence = %f, want %f from window context", boosted.Confidence, wantBoost)
	}

	// Past the five second window, the boost is gone.
	d.Reset()
	current = base
	d.Analyze("there is a water leak")
	current = base.Add(6 * time.Second)
	cold := d.Analyze("it is getting worse")
	if !almostEqual(cold.Confidence, 0) {
		t.Errorf("Confidence = %f outside window, want 0", cold.Confidence)
	}
}

func TestShouldEscalate(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"critical severity", "water is flooding the kitchen", true},
		{"safety keyword", "it feels dangerous up there", true},
		{"moderate damage", "some shingles are missing", false},
		{"benign", "I want a quote for a new roof", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d.Reset()
			detection := d.Analyze(tt.text)
			if got := d.ShouldEscalate(detection); got != tt.want {
				t.Errorf("ShouldEscalate(%q) = %v, want %v (severity %s, confidence %.2f)",
					tt.text, got, tt.want, detection.Severity, detection.Confidence)
			}
		})
	}
}

func TestSafetyQuestions(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name         string
		text         string
		wantContains string
	}{
		{"water hazard", "water is leaking everywhere", "Is water actively coming into your home right now?"},
		{"electrical hazard", "the wires are shocking people", "Is the electrical hazard still active?"},
		{"structural hazard", "part of the roof collapsed", "Is the structure safe to enter?"},
		{"generic fallback", "this is urgent, please hurry", "Is anyone in immediate danger?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d.Reset()
			detection := d.Analyze(tt.text)
			questions := d.SafetyQuestions(detection)

			if len(questions) == 0 {
				t.Fatalf("expected safety questions, got none")
			}
			found := false
			for _, q := range questions {
				if q == tt.wantContains {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("questions %v missing %q", questions, tt.wantContains)
			}
		})
	}
}

func TestSummaryAndReset(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	current := base
	d := NewDetectorWithClock(func() time.Time { return current })

	d.Analyze("water is flooding the basement")
	current = base.Add(time.Second)
	d.Analyze("the storm broke some shingles")

	summary := d.Summary()
	if summary.TotalDetections != 2 {
		t.Errorf("TotalDetections = %d, want 2", summary.TotalDetections)
	}
	if summary.CriticalCount != 1 {
		t.Errorf("CriticalCount = %d, want 1", summary.CriticalCount)
	}
	if summary.AverageConfidence <= 0 {
		t.Errorf("AverageConfidence = %f, want > 0", summary.AverageConfidence)
	}
	if len(summary.RecentKeywords) == 0 {
		t.Errorf("RecentKeywords empty, want keywords from both utterances")
	}

	d.Reset()
	summary = d.Summary()
	if summary.TotalDetections != 0 || summary.CriticalCount != 0 {
		t.Errorf("summary after Reset = %+v, want zeroed", summary)
	}
	if len(d.History()) != 0 {
		t.Errorf("history after Reset = %v, want empty", d.History())
	}
}

func TestHistoryIsBounded(t *testing.T) {
	d := NewDetector()
	for i := 0; i < 15; i++ {
		d.Analyze("hello there")
	}
	if got := len(d.History()); got != 10 {
		t.Errorf("history length = %d, want capped at 10", got)
	}
}
