package catalog

import (
	"cmp"
	"slices"
)

// ScoredBook is a book with its ranking state for one query.
type ScoredBook struct {
	Book       Book
	Score      float64
	FieldCount int
	HardPass   bool
}

// SortByScore sorts descending by score, keeping the existing order of ties.
func SortByScore(items []ScoredBook) {
	slices.SortStableFunc(items, func(a, b ScoredBook) int {
		return cmp.Compare(b.Score, a.Score)
	})
}
