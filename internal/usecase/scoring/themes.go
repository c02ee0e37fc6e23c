package scoring

import (
	"strings"

	"github.com/JIG555ERA/llm-api/internal/domain/intent"
	"github.com/JIG555ERA/llm-api/internal/domain/query"
)

// Theme is a keyword-defined topical bucket.
type Theme int

// Theme buckets.
const (
	Romance Theme = iota
	Mythology
	Finance
	Thriller
	themeCount
)

// HeavyThreshold is the keyword count from which text is dominated by a theme.
const HeavyThreshold = 2

func (t Theme) String() string {
	switch t {
	case Romance:
		return "romance"
	case Mythology:
		return "mythology"
	case Finance:
		return "finance"
	case Thriller:
		return "thriller"
	default:
		return "unknown"
	}
}

var themeKeywords = [themeCount][]string{
	Romance: {
		"romance", "romantic", "love", "lover", "lovers", "passion", "passionate",
		"relationship", "wedding", "marriage", "kiss", "heartbreak", "desire",
		"affair", "love story",
	},
	Mythology: {
		"mythology", "myth", "myths", "mythological", "god", "gods", "goddess",
		"epic", "legend", "legends", "ramayana", "mahabharata", "krishna", "shiva",
		"rama", "vishnu", "deity", "divine", "puranas",
	},
	Finance: {
		"finance", "financial", "money", "wealth", "wealthy", "rich", "invest",
		"investing", "investment", "investor", "stock", "stocks", "market",
		"savings", "income", "economics", "debt", "millionaire", "tax",
		"personal finance", "passive income",
	},
	Thriller: {
		"thriller", "thrillers", "suspense", "mystery", "murder", "crime",
		"detective", "killer", "spy", "conspiracy", "investigation", "heist",
	},
}

// Counts holds the number of keywords of each theme found in a text.
type Counts [themeCount]int

// Heavy reports whether the theme reaches HeavyThreshold.
func (c Counts) Heavy(t Theme) bool {
	return c[t] >= HeavyThreshold
}

// CountThemes counts the keywords of every theme present in text, either as a
// token or, for multi-word keywords, as a phrase.
func CountThemes(text string) Counts {
	tokens := query.NewTokenSet(query.Tokenize(text))
	padded := " " + query.Normalize(text) + " "

	var c Counts
	for t, keywords := range themeKeywords {
		for _, kw := range keywords {
			if strings.Contains(kw, " ") {
				if strings.Contains(padded, " "+kw+" ") {
					c[t]++
				}
				continue
			}
			if tokens.Has(kw) {
				c[t]++
			}
		}
	}
	return c
}

// DetectTopic derives which topic a query asks for from its theme counts.
// A topic is asked for when it is mentioned and no other topical theme is
// mentioned more often.
func DetectTopic(c Counts) intent.Topic {
	topical := []Theme{Romance, Mythology, Finance}
	asks := func(t Theme) bool {
		if c[t] == 0 {
			return false
		}
		for _, other := range topical {
			if c[other] > c[t] {
				return false
			}
		}
		return true
	}
	return intent.Topic{
		AsksFinance:   asks(Finance),
		AsksRomance:   asks(Romance),
		AsksMythology: asks(Mythology),
	}
}
