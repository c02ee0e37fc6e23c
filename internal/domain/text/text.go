// Package text holds the string clean-up helpers shared by catalog normalization,
// enrichment and response composition.
package text

import (
	"regexp"
	"strings"
)

var (
	urlPattern      = regexp.MustCompile(`(?i)https?://\S+`)
	wwwPattern      = regexp.MustCompile(`(?i)www\.\S+`)
	citationPattern = regexp.MustCompile(`\[\d+\]`)
)

// StripLinks removes URLs and collapses whitespace.
func StripLinks(s string) string {
	s = urlPattern.ReplaceAllString(s, "")
	s = wwwPattern.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// StripCitations removes links and bracketed reference markers like "[12]".
func StripCitations(s string) string {
	return strings.TrimSpace(citationPattern.ReplaceAllString(StripLinks(s), ""))
}

// TruncateWords keeps at most maxWords whitespace-separated words,
// appending "..." when anything was cut.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	if maxWords <= 0 {
		return ""
	}
	return strings.Join(words[:maxWords], " ") + "..."
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// FirstSentence returns the text up to and including the first sentence terminator.
func FirstSentence(s string) string {
	s = strings.TrimSpace(s)
	for i, r := range s {
		if r == '.' || r == '!' || r == '?' {
			return s[:i+1]
		}
	}
	return s
}
