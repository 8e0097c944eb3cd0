package dialogue

import "regexp"

// Speech synthesis reads abbreviations literally, so replies expand them
// before being handed to the synthesizer.
var (
	asapPattern  = regexp.MustCompile(`(?i)\bASAP\b`)
	aiPattern    = regexp.MustCompile(`(?i)\bAI\b`)
	hoursPattern = regexp.MustCompile(`(?i)\b(\d+)\s*hrs?\b`)
	minsPattern  = regexp.MustCompile(`(?i)\b(\d+)\s*mins?\b`)
)

// normalizeReply expands abbreviations for natural text-to-speech delivery.
func normalizeReply(text string) string {
	normalized := asapPattern.ReplaceAllString(text, "as soon as possible")
	normalized = aiPattern.ReplaceAllString(normalized, "A I")
	normalized = hoursPattern.ReplaceAllString(normalized, "$1 hours")
	normalized = minsPattern.ReplaceAllString(normalized, "$1 minutes")
	return normalized
}
