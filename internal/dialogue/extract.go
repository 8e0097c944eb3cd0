package dialogue

import (
	"regexp"
	"strings"
)

// Extraction patterns for lead details mentioned in free-form speech. Names
// keep their capitalization requirement so random lowercase words after
// "I'm" don't get mistaken for a name.
var (
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i:i'?m|i am|my name is|this is)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`),
		regexp.MustCompile(`(?i:calling|speaking with)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`),
	}

	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d{3}[-.\s]?\d{3}[-.\s]?\d{4})\b`),
		regexp.MustCompile(`\b(\d{10})\b`),
		regexp.MustCompile(`(?i)(?:phone|number|call|contact).*?(\d{3}[-.\s]?\d{3}[-.\s]?\d{4})`),
	}

	phoneSeparators = regexp.MustCompile(`[-.\s]`)

	addressPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:at|address|location|property).*?(\d+\s+[A-Za-z0-9\s,]+(?:street|st|road|rd|avenue|ave|drive|dr|lane|ln|boulevard|blvd|court|ct|way|circle|cir))`),
		regexp.MustCompile(`(?i)(\d+\s+[A-Za-z0-9\s,]+(?:street|st|road|rd|avenue|ave|drive|dr))`),
	}

	roofAgePattern = regexp.MustCompile(`(?i)(\d+)\s*(?:year|yr|old)`)

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`today|right now`),
		regexp.MustCompile(`tomorrow|next day`),
		regexp.MustCompile(`monday|tuesday|wednesday|thursday|friday|saturday|sunday`),
		regexp.MustCompile(`\d{1,2}[/\-]\d{1,2}(?:[/\-]\d{2,4})?`),
		regexp.MustCompile(`next week|this week|weekend`),
	}

	timePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d{1,2}:?(?:\d{2})?\s?(?:am|pm|morning|afternoon|evening)`),
		regexp.MustCompile(`morning|afternoon|evening|am|pm`),
		regexp.MustCompile(`(?:at|around|about)\s?\d{1,2}:?(?:\d{2})?\s?(?:am|pm)?`),
	}
)

// serviceTypeKeywords maps each issue type to its trigger keywords. Ordered
// so detection is deterministic when an utterance matches several types.
var serviceTypeKeywords = []struct {
	issueType IssueType
	keywords  []string
}{
	{IssueLeak, []string{"leak", "leaking", "water", "drip", "dripping", "moisture", "wet"}},
	{IssueDamage, []string{"damage", "damaged", "broken", "crack", "hole", "missing", "torn"}},
	{IssueInspection, []string{"inspection", "inspect", "check", "evaluate", "assess", "look at"}},
	{IssueReplacement, []string{"replacement", "replace", "new roof", "roofing", "roof job"}},
	{IssueRepair, []string{"repair", "fix", "service", "maintenance", "maintain"}},
	{IssueMaintenance, []string{"maintenance", "maintain", "upkeep", "care", "service"}},
}

// detectServiceType returns the first issue type whose keywords appear in
// the input, or empty when nothing matches.
func detectServiceType(input string) IssueType {
	lower := strings.ToLower(input)
	for _, entry := range serviceTypeKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.issueType
			}
		}
	}
	return ""
}

// extractName pulls a capitalized name following a self-introduction phrase.
func extractName(input string) string {
	for _, pattern := range namePatterns {
		if match := pattern.FindStringSubmatch(input); len(match) > 1 && match[1] != "" {
			return strings.TrimSpace(match[1])
		}
	}
	return ""
}

// extractPhoneNumber pulls a US phone number and strips separators, so
// "555-123-4567" comes back as "5551234567".
func extractPhoneNumber(input string) string {
	for _, pattern := range phonePatterns {
		if match := pattern.FindStringSubmatch(input); len(match) > 1 && match[1] != "" {
			return phoneSeparators.ReplaceAllString(match[1], "")
		}
	}
	return ""
}

// extractAddress pulls a street address ending in a street suffix.
func extractAddress(input string) string {
	for _, pattern := range addressPatterns {
		if match := pattern.FindStringSubmatch(input); len(match) > 1 && match[1] != "" {
			return strings.TrimSpace(match[1])
		}
	}
	return ""
}

// extractRoofAge pulls the numeric age from phrases like "about 15 years old".
func extractRoofAge(input string) string {
	if match := roofAgePattern.FindStringSubmatch(input); len(match) > 1 {
		return match[1]
	}
	return ""
}

// parseAppointment pulls a requested date and time from scheduling speech.
// Either result may be empty when the caller only gave one of the two.
func parseAppointment(input string) (date, timeOfDay string) {
	lower := strings.ToLower(input)

	for _, pattern := range datePatterns {
		if match := pattern.FindString(lower); match != "" {
			date = match
			break
		}
	}

	for _, pattern := range timePatterns {
		if match := pattern.FindString(lower); match != "" {
			timeOfDay = match
			break
		}
	}

	return date, timeOfDay
}

// formatAppointmentDate renders a parsed date for the confirmation reply.
func formatAppointmentDate(date string) string {
	if date == "" {
		return "your preferred date"
	}
	return date
}

// formatAppointmentTime renders a parsed time for the confirmation reply.
func formatAppointmentTime(timeOfDay string) string {
	if timeOfDay == "" {
		return "your preferred time"
	}
	lower := strings.ToLower(timeOfDay)
	switch {
	case strings.Contains(lower, "morning"):
		return "morning"
	case strings.Contains(lower, "afternoon"):
		return "afternoon"
	case strings.Contains(lower, "evening"):
		return "evening"
	}
	return timeOfDay
}
