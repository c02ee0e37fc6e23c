// Package catalogapi fetches the book and author collections from the catalog HTTP API.
package catalogapi

import (
	"context"
	"fmt"

	domcat "github.com/JIG555ERA/llm-api/internal/domain/catalog"
	"github.com/JIG555ERA/llm-api/internal/domain/text"
	"github.com/JIG555ERA/llm-api/internal/transport/httpjson"
)

// Source name used in errors and metrics.
const Source = "catalog"

// Client reads the catalog collections.
type Client struct {
	http       *httpjson.Client
	booksURL   string
	authorsURL string
}

// New creates a catalog client for the two collection endpoints.
func New(booksURL, authorsURL string, opts ...httpjson.Option) *Client {
	return &Client{
		http:       httpjson.New(Source, opts...),
		booksURL:   booksURL,
		authorsURL: authorsURL,
	}
}

// FetchBooks returns every book, with links stripped from all text fields.
func (c *Client) FetchBooks(ctx context.Context) ([]domcat.Book, error) {
	var payload envelope[rawBook]
	if err := c.http.GetJSON(ctx, c.booksURL, &payload); err != nil {
		return nil, fmt.Errorf("fetch books: %w", err)
	}

	books := make([]domcat.Book, 0, len(payload))
	for i := range payload {
		books = append(books, toBook(&payload[i]))
	}
	return books, nil
}

// FetchAuthors returns every author. An empty authors URL yields no authors.
func (c *Client) FetchAuthors(ctx context.Context) ([]domcat.Author, error) {
	if c.authorsURL == "" {
		return nil, nil
	}

	var payload envelope[rawAuthor]
	if err := c.http.GetJSON(ctx, c.authorsURL, &payload); err != nil {
		return nil, fmt.Errorf("fetch authors: %w", err)
	}

	authors := make([]domcat.Author, 0, len(payload))
	for i := range payload {
		a := &payload[i]
		name := text.StripLinks(a.Name)
		if name == "" {
			continue
		}
		count := a.BookCount
		if !count.ok {
			count = a.BooksCount
		}
		authors = append(authors, domcat.Author{
			ID:        string(a.ID),
			Name:      name,
			PenName:   text.StripLinks(a.PenName),
			Bio:       text.StripLinks(a.Bio),
			BookCount: int(count.v),
		})
	}
	return authors, nil
}

// HealthCheck fetches the books collection.
func (c *Client) HealthCheck(ctx context.Context) error {
	var payload envelope[rawBook]
	return c.http.GetJSON(ctx, c.booksURL, &payload)
}

func toBook(r *rawBook) domcat.Book {
	b := domcat.Book{
		ID:          string(r.ID),
		Title:       text.StripLinks(r.Title),
		Description: text.StripLinks(r.Description),
		Language:    text.StripLinks(r.Language),
		Authors:     names(r.Authors),
		Categories:  names(r.Categories),
	}
	if len(r.Price) > 0 {
		b.Price = domcat.Price{
			Selling:  r.Price[0].Selling.ptr(),
			Purchase: r.Price[0].Purchase.ptr(),
		}
	}
	return b
}

func names(in []named) []string {
	out := make([]string, 0, len(in))
	for _, n := range in {
		if s := text.StripLinks(n.Name); s != "" {
			out = append(out, s)
		}
	}
	return out
}
