package rerank

import (
	"context"

	"github.com/JIG555ERA/llm-api/internal/domain"
)

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Capability reports whether the embedding backend may be used.
type Capability interface {
	Available() bool
}
