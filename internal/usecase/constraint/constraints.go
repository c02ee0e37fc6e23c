// Package constraint extracts structured filters (price bounds, category, genre and
// author mentions) and query chunks from free text.
package constraint

import (
	"strings"

	domcat "github.com/JIG555ERA/llm-api/internal/domain/catalog"
	"github.com/JIG555ERA/llm-api/internal/domain/query"
)

// Constraints are the filters mentioned in a query. Set-like fields keep
// first-mention order and hold lowercase values.
type Constraints struct {
	MaxPrice *float64
	// MaxInclusive is true for "up to N"; every other max phrasing is strict.
	MaxInclusive bool
	// MinPrice is always inclusive.
	MinPrice *float64

	Categories []string
	GenreHints []string
	// Authors holds normalized author names (see query.Normalize).
	Authors []string
	// Chunks are the 1-3 token windows of the query, used for coverage only.
	Chunks []string
}

// HasHardFilters reports whether any price, category, genre or author filter is active.
// Chunks are a soft signal and never make a filter active.
func (c *Constraints) HasHardFilters() bool {
	return c.PriceActive() || len(c.Categories) > 0 || len(c.GenreHints) > 0 || len(c.Authors) > 0
}

// PriceActive reports whether a min or max price was mentioned.
func (c *Constraints) PriceActive() bool {
	return c.MaxPrice != nil || c.MinPrice != nil
}

// PriceOK checks the effective price against the bounds. Items without a price
// fail an active price filter.
func (c *Constraints) PriceOK(b *domcat.Book) bool {
	if !c.PriceActive() {
		return true
	}
	price, ok := b.EffectivePrice()
	if !ok {
		return false
	}
	if c.MaxPrice != nil {
		if c.MaxInclusive && price > *c.MaxPrice {
			return false
		}
		if !c.MaxInclusive && price >= *c.MaxPrice {
			return false
		}
	}
	if c.MinPrice != nil && price < *c.MinPrice {
		return false
	}
	return true
}

// AuthorsOK reports whether the book has any mentioned author.
func (c *Constraints) AuthorsOK(b *domcat.Book) bool {
	if len(c.Authors) == 0 {
		return true
	}
	return c.AuthorHit(b)
}

// AuthorHit reports whether a mentioned author wrote the book; false without mentions.
func (c *Constraints) AuthorHit(b *domcat.Book) bool {
	for _, name := range b.Authors {
		norm := query.Normalize(name)
		if norm == "" {
			continue
		}
		for _, mention := range c.Authors {
			if norm == mention || strings.Contains(norm, mention) {
				return true
			}
		}
	}
	return false
}

// CategoriesOK reports whether the book is in any mentioned category.
func (c *Constraints) CategoriesOK(b *domcat.Book) bool {
	if len(c.Categories) == 0 {
		return true
	}
	return c.CategoryHit(b)
}

// CategoryHit reports whether the book carries a mentioned category; false without mentions.
func (c *Constraints) CategoryHit(b *domcat.Book) bool {
	for _, cat := range b.Categories {
		lower := strings.ToLower(strings.TrimSpace(cat))
		for _, mention := range c.Categories {
			if lower == mention {
				return true
			}
		}
	}
	return false
}

// GenresOK reports whether the book matches any genre hint.
func (c *Constraints) GenresOK(b *domcat.Book) bool {
	if len(c.GenreHints) == 0 {
		return true
	}
	return c.GenreHit(b)
}

// GenreHit reports whether the book matches a genre hint; false without hints.
func (c *Constraints) GenreHit(b *domcat.Book) bool {
	for _, g := range c.GenreHints {
		if bookHasGenre(b, g) {
			return true
		}
	}
	return false
}

// HardPass reports whether the book satisfies every active filter.
func (c *Constraints) HardPass(b *domcat.Book) bool {
	return c.PriceOK(b) && c.AuthorsOK(b) && c.CategoriesOK(b) && c.GenresOK(b)
}
