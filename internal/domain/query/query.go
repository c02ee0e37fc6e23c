// Package query derives the normalized forms of a free-text query.
package query

import (
	"strings"
	"unicode"
)

// MinTokenLength is the shortest alphanumeric run kept as a token.
const MinTokenLength = 3

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "about": {}, "from": {}, "that": {},
	"this": {}, "are": {}, "was": {}, "were": {}, "you": {}, "your": {}, "have": {},
	"has": {}, "had": {}, "into": {}, "any": {}, "some": {}, "not": {}, "but": {},
	"can": {}, "could": {}, "would": {}, "should": {}, "will": {}, "please": {},
	"give": {}, "show": {}, "tell": {}, "want": {}, "need": {}, "like": {}, "get": {},
	"book": {}, "books": {}, "novel": {}, "novels": {}, "read": {}, "reading": {},
	"what": {}, "which": {}, "who": {}, "whom": {}, "whose": {}, "how": {}, "does": {},
	"did": {}, "there": {}, "their": {}, "them": {}, "they": {}, "its": {}, "also": {},
	"more": {}, "most": {}, "very": {}, "just": {}, "all": {}, "one": {}, "our": {},
	"suggest": {}, "recommend": {}, "find": {}, "looking": {}, "something": {},
}

// TokenSet is a set of lowercase tokens.
type TokenSet map[string]struct{}

// Has reports whether the token is in the set.
func (s TokenSet) Has(token string) bool {
	_, ok := s[token]
	return ok
}

// Overlap counts tokens (deduplicated) that are present in the set.
func (s TokenSet) Overlap(tokens []string) int {
	n := 0
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if s.Has(t) {
			n++
		}
	}
	return n
}

// NewTokenSet builds a set from tokens.
func NewTokenSet(tokens []string) TokenSet {
	s := make(TokenSet, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

// Query is a raw query with its derived lowercase form and tokens.
type Query struct {
	Raw      string
	Lower    string
	Tokens   []string
	TokenSet TokenSet
}

// New derives the lowercase form and the stop-word-free token list of raw.
func New(raw string) Query {
	tokens := Tokenize(raw)
	return Query{
		Raw:      raw,
		Lower:    strings.ToLower(raw),
		Tokens:   tokens,
		TokenSet: NewTokenSet(tokens),
	}
}

// Tokenize splits text into lowercase alphanumeric runs of at least MinTokenLength
// characters, dropping stop words and duplicates while keeping first-seen order.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < MinTokenLength {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Normalize lowercases s, replaces every non-alphanumeric rune with a space
// and collapses whitespace. Used for substring matching of names.
func Normalize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}
