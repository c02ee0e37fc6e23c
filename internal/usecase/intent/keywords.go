package intent

import (
	"regexp"

	domintent "github.com/JIG555ERA/llm-api/internal/domain/intent"
)

// Keyword fallback confidences.
const (
	ConfidenceAuthor    = 0.5
	ConfidencePrice     = 0.5
	ConfidenceCharacter = 0.45
	ConfidencePublisher = 0.45
	ConfidenceGeneral   = 0.4
)

type keywordRule struct {
	mode       domintent.Mode
	pattern    *regexp.Regexp
	confidence float64
}

// keywordRules are evaluated in order; the first match wins.
var keywordRules = []keywordRule{
	{
		mode:       domintent.Author,
		pattern:    regexp.MustCompile(`(?i)\b(who (wrote|is the author|authored)|written by|authors? (of|behind|for)|books? by|writer of|novels? by)\b`),
		confidence: ConfidenceAuthor,
	},
	{
		mode:       domintent.Price,
		pattern:    regexp.MustCompile(`(?i)(\b(price|prices|priced|cost|costs|how much|cheap|cheapest|budget|affordable|under|below|rs|inr)\b|₹)`),
		confidence: ConfidencePrice,
	},
	{
		mode:       domintent.Character,
		pattern:    regexp.MustCompile(`(?i)\b(characters?|protagonists?|antagonists?|heroine|hero|villains?|main lead)\b`),
		confidence: ConfidenceCharacter,
	},
	{
		mode:       domintent.Publisher,
		pattern:    regexp.MustCompile(`(?i)\b(publishers?|published by|publishing|publication|imprint)\b`),
		confidence: ConfidencePublisher,
	},
}

// ClassifyKeywords applies the ordered keyword checks, defaulting to general.
func ClassifyKeywords(text string) domintent.Decision {
	for _, r := range keywordRules {
		if r.pattern.MatchString(text) {
			return domintent.Decision{Mode: r.mode, Confidence: r.confidence, Path: domintent.PathKeyword}
		}
	}
	return domintent.Decision{Mode: domintent.General, Confidence: ConfidenceGeneral, Path: domintent.PathKeyword}
}
