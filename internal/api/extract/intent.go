package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultDuration is used when the message names no duration.
const DefaultDuration = "3 days"

// Intent is the destination and duration read from a chat message.
type Intent struct {
	Destination string `json:"destination"`
	Duration    string `json:"duration"`
}

type matcher struct {
	pattern *regexp.Regexp
	extract func(groups []string) string
}

func firstGroup(groups []string) string { return groups[1] }

// Tried in order, first non-empty match wins.
var destinationMatchers = []matcher{
	{regexp.MustCompile(`(?i)\b(?:plan|visit|travel to|go to|trip to|explore)\s+(?:the\s+)?([^.!?,]+)`), firstGroup},
	{regexp.MustCompile(`(?i)\b(?:in|about)\s+([^.!?,]+)`), firstGroup},
	{regexp.MustCompile(`(?i)([^.!?,]+?)\s+(?:trip|itinerary|vacation|holiday)\b`), firstGroup},
}

var (
	durationPattern = regexp.MustCompile(`(?i)(\d+)\s+(days?|weeks?|months?)\b`)

	leadingTripPhrase = regexp.MustCompile(`(?i)^(?:(?:a|an|my|our|the)\s+)?(?:trip|visit|vacation|holiday|journey|tour|getaway)\s+(?:to|in|of|around)\s+`)
	leadingVerb       = regexp.MustCompile(`(?i)^to\s+(?:visit|go to|travel to|explore|see)\s+`)
	leadingArticle    = regexp.MustCompile(`(?i)^the\s+`)
	trailingDuration  = regexp.MustCompile(`(?i)\s+(?:(?:for|in|over|during)\s+)?(?:\d+|a|an|one|a few|few)\s+(?:days?|weeks?|months?|nights?)\b.*$`)
	trailingFor       = regexp.MustCompile(`(?i)\s+for\s+.*$`)
)

// ExtractIntent reads a destination and a duration from free text. It always
// produces a destination: the trimmed input when no pattern matches.
func ExtractIntent(input string) Intent {
	input = strings.TrimSpace(input)
	return Intent{
		Destination: ExtractDestination(input),
		Duration:    ExtractDuration(input),
	}
}

func ExtractDestination(input string) string {
	input = strings.TrimSpace(input)
	for _, m := range destinationMatchers {
		groups := m.pattern.FindStringSubmatch(input)
		if groups == nil {
			continue
		}
		if dest := cleanDestination(m.extract(groups)); dest != "" {
			return dest
		}
	}
	return input
}

func cleanDestination(s string) string {
	s = strings.TrimSpace(s)
	for {
		trimmed := leadingTripPhrase.ReplaceAllString(s, "")
		trimmed = leadingVerb.ReplaceAllString(trimmed, "")
		trimmed = leadingArticle.ReplaceAllString(trimmed, "")
		if trimmed == s {
			break
		}
		s = trimmed
	}
	s = trailingDuration.ReplaceAllString(s, "")
	s = trailingFor.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func ExtractDuration(input string) string {
	m := durationPattern.FindStringSubmatch(input)
	if m == nil {
		return DefaultDuration
	}
	return m[1] + " " + strings.ToLower(m[2])
}

// DurationDays converts a duration phrase to a day count. Weeks count seven
// days and months thirty. Unparseable input yields 0.
func DurationDays(duration string) int {
	m := durationPattern.FindStringSubmatch(duration)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	switch unit := strings.ToLower(m[2]); {
	case strings.HasPrefix(unit, "week"):
		return n * 7
	case strings.HasPrefix(unit, "month"):
		return n * 30
	default:
		return n
	}
}
