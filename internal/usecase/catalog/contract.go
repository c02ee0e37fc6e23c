package catalog

import (
	"context"

	domcat "github.com/JIG555ERA/llm-api/internal/domain/catalog"
)

// Source fetches the two catalog collections from upstream.
type Source interface {
	FetchBooks(ctx context.Context) ([]domcat.Book, error)
	FetchAuthors(ctx context.Context) ([]domcat.Author, error)
}
