package compose

import (
	"slices"

	domcat "github.com/JIG555ERA/llm-api/internal/domain/catalog"
	domintent "github.com/JIG555ERA/llm-api/internal/domain/intent"
)

// Item is a book as returned to the caller. Which fields are set depends on the mode.
type Item struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Language    string     `json:"language,omitempty"`
	Authors     []string   `json:"authors,omitempty"`
	Categories  []string   `json:"categories,omitempty"`
	Price       *ItemPrice `json:"price,omitempty"`
}

// ItemPrice mirrors the catalog price; absent values encode as null.
type ItemPrice struct {
	Selling  *float64 `json:"selling"`
	Purchase *float64 `json:"purchase"`
}

// ShapeItems projects books onto the field set of the given mode.
// The books are never modified and the result shares no memory with them.
func ShapeItems(mode domintent.Mode, books []domcat.Book) []Item {
	items := make([]Item, 0, len(books))
	for i := range books {
		items = append(items, shapeItem(mode, &books[i]))
	}
	return items
}

func shapeItem(mode domintent.Mode, b *domcat.Book) Item {
	it := Item{ID: b.ID, Title: b.Title}
	switch mode {
	case domintent.Greeting:
	case domintent.Price:
		it.Authors = slices.Clone(b.Authors)
		it.Price = itemPrice(b.Price)
	case domintent.Author:
		it.Authors = slices.Clone(b.Authors)
		it.Categories = slices.Clone(b.Categories)
		it.Language = b.Language
	default:
		it.Description = b.Description
		it.Language = b.Language
		it.Authors = slices.Clone(b.Authors)
		it.Categories = slices.Clone(b.Categories)
		it.Price = itemPrice(b.Price)
	}
	return it
}

func itemPrice(p domcat.Price) *ItemPrice {
	return &ItemPrice{Selling: clonePtr(p.Selling), Purchase: clonePtr(p.Purchase)}
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
