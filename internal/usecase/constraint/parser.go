package constraint

import (
	"regexp"
	"strconv"
	"strings"

	domcat "github.com/JIG555ERA/llm-api/internal/domain/catalog"
	"github.com/JIG555ERA/llm-api/internal/domain/query"
)

const amount = `(?:rs\.?|₹|inr)?\s*([0-9][0-9,]*(?:\.[0-9]+)?)`

var (
	maxPricePattern = regexp.MustCompile(`(?i)\b(under|below|less than|up to|upto)\s*` + amount)
	minPricePattern = regexp.MustCompile(`(?i)\b(above|over|more than|greater than)\s*` + amount)
)

// Parse extracts constraints from text. Category mentions are recognized against the
// category vocabulary of the full catalog; author mentions against the authors
// collection and the authors named on books.
func Parse(text string, books []domcat.Book, authors []domcat.Author) Constraints {
	var c Constraints
	lower := strings.ToLower(text)

	parseMaxPrice(lower, &c)
	parseMinPrice(lower, &c)

	c.Categories = mentionedCategories(lower, books)
	c.GenreHints = mentionedGenres(query.Normalize(text))
	c.Authors = mentionedAuthors(query.Normalize(text), books, authors)
	c.Chunks = Chunks(query.Tokenize(text))
	return c
}

// parseMaxPrice keeps the tightest upper bound when several are mentioned.
func parseMaxPrice(lower string, c *Constraints) {
	for _, m := range maxPricePattern.FindAllStringSubmatch(lower, -1) {
		v, ok := parseAmount(m[2])
		if !ok {
			continue
		}
		inclusive := m[1] == "up to" || m[1] == "upto"
		if c.MaxPrice == nil || v < *c.MaxPrice {
			c.MaxPrice = &v
			c.MaxInclusive = inclusive
		}
	}
}

// parseMinPrice keeps the tightest lower bound when several are mentioned.
func parseMinPrice(lower string, c *Constraints) {
	for _, m := range minPricePattern.FindAllStringSubmatch(lower, -1) {
		v, ok := parseAmount(m[2])
		if !ok {
			continue
		}
		if c.MinPrice == nil || v > *c.MinPrice {
			c.MinPrice = &v
		}
	}
}

func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func mentionedCategories(lower string, books []domcat.Book) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, cat := range domcat.CategoryVocabulary(books) {
		name := strings.ToLower(strings.TrimSpace(cat))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		if strings.Contains(lower, name) {
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

func mentionedAuthors(normQuery string, books []domcat.Book, authors []domcat.Author) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(name string) {
		norm := query.Normalize(name)
		if norm == "" {
			return
		}
		if _, ok := seen[norm]; ok {
			return
		}
		seen[norm] = struct{}{}
		if strings.Contains(normQuery, norm) {
			out = append(out, norm)
		}
	}

	for i := range authors {
		add(authors[i].Name)
		add(authors[i].PenName)
	}
	for i := range books {
		for _, name := range books[i].Authors {
			add(name)
		}
	}
	return out
}

// Chunks returns every unigram, bigram and trigram window over tokens,
// deduplicated in first-seen order, keeping chunks of at least three characters.
func Chunks(tokens []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for n := 1; n <= 3; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			chunk := strings.Join(tokens[i:i+n], " ")
			if len(chunk) < query.MinTokenLength {
				continue
			}
			if _, ok := seen[chunk]; ok {
				continue
			}
			seen[chunk] = struct{}{}
			out = append(out, chunk)
		}
	}
	return out
}
