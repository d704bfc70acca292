package extract

import (
	"regexp"
	"strings"
)

// Lines matching any of these are tool-invocation or search echoes leaked by
// the backend agents and are removed before parsing.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*running:\s*[\w.]+\s*\(.*$`),
	regexp.MustCompile(`(?i)^\s*</?function(?:=|>|\s).*$`),
	regexp.MustCompile(`(?i)^\s*(?:calling|invoking)\s+(?:tool|function)\b.*$`),
	regexp.MustCompile(`(?i)^\s*(?:search query|searching for|query)\s*:.*$`),
	regexp.MustCompile(`(?i)^\s*[\w.]*(?:_search|get_location_coordinates)\s*\(.*\)\s*$`),
	regexp.MustCompile(`(?i)waiting for the result of the function call`),
	regexp.MustCompile(`(?i)please wait for the function result`),
	regexp.MustCompile(`(?i)^\s*once i have the coordinates`),
	regexp.MustCompile(`(?i)\(please provide the result of the function call\)`),
}

var blankRun = regexp.MustCompile(`\n(?:[ \t]*\n){2,}`)

// StripNoise drops debug-trace lines and collapses the blank runs they leave.
func StripNoise(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if isNoise(line) {
			continue
		}
		kept = append(kept, line)
	}
	out := strings.Join(kept, "\n")
	out = blankRun.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

func isNoise(line string) bool {
	for _, p := range noisePatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}
