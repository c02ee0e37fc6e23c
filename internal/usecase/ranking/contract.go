package ranking

import (
	"context"

	domcat "github.com/JIG555ERA/llm-api/internal/domain/catalog"
)

// Reranker adjusts the scores of the leading candidates.
type Reranker interface {
	Rerank(ctx context.Context, text string, cands []domcat.ScoredBook) []domcat.ScoredBook
}
