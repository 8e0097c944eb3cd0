// Package emergency provides real-time emergency detection for call
// transcripts. It scores each utterance against weighted keyword tiers and
// urgent phrase patterns, with a short sliding window of recent detections
// boosting confidence when a caller keeps repeating emergency language.
package emergency

import (
	"regexp"
	"strings"
	"sync"
	"time"
)

// Severity classifies how dangerous a detected situation is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Urgency classifies how fast the business should respond.
type Urgency string

const (
	UrgencyEmergency Urgency = "emergency"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyNormal    Urgency = "normal"
)

const (
	// Confidence weights per match category. Safety keywords weigh the
	// heaviest because they signal danger to people, not just property.
	criticalKeywordWeight = 0.3
	highKeywordWeight     = 0.2
	safetyKeywordWeight   = 0.4
	patternWeight         = 0.25
	recentContextWeight   = 0.1

	// Thresholds for classification.
	detectedThreshold  = 0.3
	urgentThreshold    = 0.4
	emergencyThreshold = 0.7

	// Sliding window and history bounds.
	detectionWindow = 5 * time.Second
	historyLimit    = 10
)

// criticalKeywords are the highest priority emergency indicators.
var criticalKeywords = []string{
	"emergency", "urgent", "critical", "immediate", "asap", "right now",
	"leak", "leaking", "water", "flood", "flooding", "dripping",
	"collapsed", "caved in", "structural damage", "unsafe",
	"electrical", "shocking", "fire", "smoke",
}

// highPriorityKeywords indicate active damage without immediate danger.
var highPriorityKeywords = []string{
	"damage", "damaged", "broken", "crack", "hole", "missing",
	"storm", "wind", "hail", "tree", "fallen", "crash",
	"active", "coming in", "pouring", "soaking", "wet", "moisture",
}

// safetyKeywords indicate danger to people. Any hit forces critical severity.
var safetyKeywords = []string{
	"unsafe", "dangerous", "hazard", "risk", "electrical", "wires",
	"exposed", "falling", "collapsing", "structural", "foundation",
}

// urgentPatterns match urgent phrasing that loose keywords miss.
var urgentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)need.*(?:help|assistance|someone|technician|now|immediately|urgent)`),
	regexp.MustCompile(`(?i)(?:asap|right now|immediately|urgent|emergency|critical)`),
	regexp.MustCompile(`(?i)(?:water|leak|flood).*(?:coming|pouring|dripping|active|flowing)`),
	regexp.MustCompile(`(?i)(?:damage|broken|collapsed).*(?:now|immediately|urgent)`),
	regexp.MustCompile(`(?i)(?:unsafe|dangerous|hazard|risk|electrical)`),
	regexp.MustCompile(`(?i)(?:can't|cannot|can not).*(?:wait|delay|postpone)`),
}

var safetyKeywordSet = makeKeywordSet(safetyKeywords)

func makeKeywordSet(keywords []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		set[kw] = struct{}{}
	}
	return set
}

// Detection is the result of analyzing a single utterance.
type Detection struct {
	Detected   bool      `json:"detected"`
	Confidence float64   `json:"confidence"`
	Urgency    Urgency   `json:"urgency"`
	Keywords   []string  `json:"keywords"`
	Timestamp  time.Time `json:"timestamp"`
	Severity   Severity  `json:"severity"`
}

// Summary aggregates detections inside the sliding window.
type Summary struct {
	TotalDetections   int      `json:"totalDetections"`
	CriticalCount     int      `json:"criticalCount"`
	AverageConfidence float64  `json:"averageConfidence"`
	RecentKeywords    []string `json:"recentKeywords"`
}

// Detector analyzes utterances for emergency signals. Each call gets its own
// Detector because the sliding window is per conversation. Safe for
// concurrent use.
type Detector struct {
	mu      sync.Mutex
	now     func() time.Time
	recent  []Detection
	history []string
}

// NewDetector creates a detector using the wall clock.
func NewDetector() *Detector {
	return NewDetectorWithClock(time.Now)
}

// NewDetectorWithClock creates a detector with an injectable clock.
// Tests use this to exercise the sliding window deterministically.
func NewDetectorWithClock(now func() time.Time) *Detector {
	return &Detector{now: now}
}

// Analyze scores a single utterance and records it in the sliding window.
// Recent-window context is read before the current utterance is recorded, so
// an utterance never boosts its own score.
func (d *Detector) Analyze(text string) Detection {
	d.mu.Lock()
	defer d.mu.Unlock()

	lowerText := strings.ToLower(text)
	timestamp := d.now()

	criticalMatches := matchKeywords(lowerText, criticalKeywords)
	highMatches := matchKeywords(lowerText, highPriorityKeywords)
	safetyMatches := matchKeywords(lowerText, safetyKeywords)

	patternMatches := 0
	for _, pattern := range urgentPatterns {
		if pattern.MatchString(text) {
			patternMatches++
		}
	}

	confidence := 0.0
	severity := SeverityLow

	if len(criticalMatches) > 0 {
		confidence += float64(len(criticalMatches)) * criticalKeywordWeight
		severity = SeverityCritical
	}

	if len(highMatches) > 0 {
		confidence += float64(len(highMatches)) * highKeywordWeight
		if severity == SeverityLow {
			severity = SeverityHigh
		}
	}

	// Safety keywords always force critical severity.
	if len(safetyMatches) > 0 {
		confidence += float64(len(safetyMatches)) * safetyKeywordWeight
		severity = SeverityCritical
	}

	confidence += float64(patternMatches) * patternWeight

	recentContext := d.recentContextLocked(timestamp)
	if len(recentContext) > 0 {
		confidence += float64(len(recentContext)) * recentContextWeight
	}

	confidence = clampConfidence(confidence)

	urgency := UrgencyNormal
	switch {
	case confidence > emergencyThreshold || severity == SeverityCritical:
		urgency = UrgencyEmergency
	case confidence > urgentThreshold || severity == SeverityHigh:
		urgency = UrgencyUrgent
	}

	keywords := make([]string, 0, len(criticalMatches)+len(highMatches)+len(safetyMatches))
	keywords = append(keywords, criticalMatches...)
	keywords = append(keywords, highMatches...)
	keywords = append(keywords, safetyMatches...)

	detection := Detection{
		Detected:   confidence > detectedThreshold || patternMatches > 0,
		Confidence: confidence,
		Urgency:    urgency,
		Keywords:   keywords,
		Timestamp:  timestamp,
		Severity:   severity,
	}

	d.recordLocked(text, detection, timestamp)

	return detection
}

// ShouldEscalate reports whether a detection warrants immediate human
// escalation instead of the normal intake flow.
func (d *Detector) ShouldEscalate(detection Detection) bool {
	if !detection.Detected {
		return false
	}
	if detection.Severity == SeverityCritical || detection.Confidence > emergencyThreshold {
		return true
	}
	for _, kw := range detection.Keywords {
		if _, ok := safetyKeywordSet[kw]; ok {
			return true
		}
	}
	return false
}

// SafetyQuestions returns the triage questions to ask for the hazards the
// detection matched. Falls back to generic danger questions when no specific
// hazard category applies.
func (d *Detector) SafetyQuestions(detection Detection) []string {
	var questions []string

	if keywordsIntersect(detection.Keywords, []string{"water", "leak", "flood"}) {
		questions = append(questions,
			"Is water actively coming into your home right now?",
			"Is anyone in immediate danger?",
			"Have you turned off the electricity in the affected area?",
		)
	}

	if keywordsIntersect(detection.Keywords, []string{"electrical", "wires", "shocking"}) {
		questions = append(questions,
			"Is the electrical hazard still active?",
			"Have you shut off power to the affected area?",
			"Is anyone in immediate danger?",
		)
	}

	if keywordsIntersect(detection.Keywords, []string{"structural", "collapsed", "falling"}) {
		questions = append(questions,
			"Is the structure safe to enter?",
			"Has anyone been injured?",
			"Are you currently inside the building?",
		)
	}

	if len(questions) == 0 {
		questions = append(questions,
			"Is anyone in immediate danger?",
			"Is the situation safe for you right now?",
		)
	}

	return questions
}

// Summary returns aggregate statistics over the current sliding window.
func (d *Detector) Summary() Summary {
	d.mu.Lock()
	defer d.mu.Unlock()

	total := len(d.recent)
	critical := 0
	confidenceSum := 0.0
	seen := make(map[string]struct{})
	var keywords []string

	for _, det := range d.recent {
		if det.Severity == SeverityCritical {
			critical++
		}
		confidenceSum += det.Confidence
		for _, kw := range det.Keywords {
			if _, ok := seen[kw]; !ok {
				seen[kw] = struct{}{}
				keywords = append(keywords, kw)
			}
		}
	}

	avg := 0.0
	if total > 0 {
		avg = confidenceSum / float64(total)
	}

	return Summary{
		TotalDetections:   total,
		CriticalCount:     critical,
		AverageConfidence: avg,
		RecentKeywords:    keywords,
	}
}

// Reset clears the sliding window and utterance history.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recent = nil
	d.history = nil
}

// History returns the recent utterances, newest last.
func (d *Detector) History() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.history...)
}

func (d *Detector) recentContextLocked(now time.Time) []string {
	var keywords []string
	for _, det := range d.recent {
		if now.Sub(det.Timestamp) < detectionWindow {
			keywords = append(keywords, det.Keywords...)
		}
	}
	return keywords
}

func (d *Detector) recordLocked(text string, detection Detection, now time.Time) {
	d.recent = append(d.recent, detection)

	kept := d.recent[:0]
	for _, det := range d.recent {
		if now.Sub(det.Timestamp) < detectionWindow {
			kept = append(kept, det)
		}
	}
	d.recent = kept

	d.history = append(d.history, text)
	if len(d.history) > historyLimit {
		d.history = d.history[1:]
	}
}

// matchKeywords returns keywords found as substrings of the lowercased text.
func matchKeywords(lowerText string, keywords []string) []string {
	var matches []string
	for _, kw := range keywords {
		if strings.Contains(lowerText, kw) {
			matches = append(matches, kw)
		}
	}
	return matches
}

func keywordsIntersect(keywords []string, targets []string) bool {
	for _, kw := range keywords {
		for _, target := range targets {
			if kw == target {
				return true
			}
		}
	}
	return false
}

func clampConfidence(value float64) float64 {
	if value > 1.0 {
		return 1.0
	}
	if value < 0 {
		return 0
	}
	return value
}
