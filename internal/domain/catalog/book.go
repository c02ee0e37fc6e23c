package catalog

import "strings"

// Price holds the optional selling and purchase prices of a book.
type Price struct {
	Selling  *float64
	Purchase *float64
}

// Book is a catalog item. Books are immutable once fetched and are replaced
// wholesale when the catalog snapshot is refreshed.
type Book struct {
	ID          string
	Title       string
	Description string
	Language    string
	Authors     []string
	Categories  []string
	Price       Price
}

// EffectivePrice returns the selling price, falling back to the purchase price.
func (b *Book) EffectivePrice() (float64, bool) {
	if b.Price.Selling != nil {
		return *b.Price.Selling, true
	}
	if b.Price.Purchase != nil {
		return *b.Price.Purchase, true
	}
	return 0, false
}

// Blob concatenates the searchable fields in lowercase:
// title, description, authors, categories.
func (b *Book) Blob() string {
	parts := make([]string, 0, 2+len(b.Authors)+len(b.Categories))
	parts = append(parts, b.Title, b.Description)
	parts = append(parts, b.Authors...)
	parts = append(parts, b.Categories...)
	return strings.ToLower(strings.Join(parts, " "))
}
