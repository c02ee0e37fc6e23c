// Package hint models the aggregated signal gathered from external discovery sources.
package hint

import (
	"strings"

	"github.com/JIG555ERA/llm-api/internal/domain/query"
)

// Hit is one remote search result.
type Hit struct {
	Title       string
	Authors     []string
	Categories  []string
	Description string
}

// Partial is what a single discovery source returns for a query, best hit first.
type Partial struct {
	Source string
	Hits   []Hit
}

// First returns the best hit, if any.
func (p *Partial) First() (Hit, bool) {
	if len(p.Hits) == 0 {
		return Hit{}, false
	}
	return p.Hits[0], true
}

// Bundle is the read-only hint signal consumed by the scorer.
type Bundle struct {
	// Titles holds one token set per remote title.
	Titles []query.TokenSet
	// Tokens is the union of remote title and description tokens.
	Tokens     query.TokenSet
	Authors    map[string]struct{}
	Categories map[string]struct{}
	// CategoryTokens is the union of tokens of all remote categories.
	CategoryTokens query.TokenSet
	Sources        []string
}

// Empty returns a bundle without any signal.
func Empty() Bundle {
	return Bundle{
		Tokens:         query.TokenSet{},
		Authors:        map[string]struct{}{},
		Categories:     map[string]struct{}{},
		CategoryTokens: query.TokenSet{},
	}
}

// IsEmpty reports whether the bundle carries no signal.
func (b *Bundle) IsEmpty() bool {
	return len(b.Titles) == 0 && len(b.Tokens) == 0 && len(b.Authors) == 0 && len(b.Categories) == 0
}

// HasAuthor reports whether the lowercase author name appeared remotely.
func (b *Bundle) HasAuthor(name string) bool {
	_, ok := b.Authors[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Merge folds partial results into a bundle, in the order given.
func Merge(partials ...Partial) Bundle {
	b := Empty()
	for _, p := range partials {
		if p.Source != "" {
			b.Sources = append(b.Sources, p.Source)
		}
		for i := range p.Hits {
			b.addHit(&p.Hits[i])
		}
	}
	return b
}

func (b *Bundle) addHit(h *Hit) {
	if tokens := query.Tokenize(h.Title); len(tokens) > 0 {
		b.Titles = append(b.Titles, query.NewTokenSet(tokens))
		for _, t := range tokens {
			b.Tokens[t] = struct{}{}
		}
	}
	for _, t := range query.Tokenize(h.Description) {
		b.Tokens[t] = struct{}{}
	}
	for _, a := range h.Authors {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			b.Authors[a] = struct{}{}
		}
	}
	for _, c := range h.Categories {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			b.Categories[c] = struct{}{}
			for _, t := range query.Tokenize(c) {
				b.CategoryTokens[t] = struct{}{}
			}
		}
	}
}
