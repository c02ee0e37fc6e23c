package resolve

import (
	"context"

	"github.com/JIG555ERA/llm-api/internal/domain"
	domcat "github.com/JIG555ERA/llm-api/internal/domain/catalog"
	"github.com/JIG555ERA/llm-api/internal/domain/hint"
	domintent "github.com/JIG555ERA/llm-api/internal/domain/intent"
	"github.com/JIG555ERA/llm-api/internal/usecase/compose"
	"github.com/JIG555ERA/llm-api/internal/usecase/ranking"
)

// Catalog provides the cached catalog collections.
type Catalog interface {
	Get(ctx context.Context) ([]domcat.Book, []domcat.Author, error)
}

// HintSource is an external discovery service.
type HintSource interface {
	Name() string
	Search(ctx context.Context, text string) (hint.Partial, error)
}

// Enricher looks up a short piece of external context. A nil extract means nothing was found.
type Enricher interface {
	Lookup(ctx context.Context, q string) (*domain.Extract, error)
}

// Classifier decides the intent of a query.
type Classifier interface {
	Classify(ctx context.Context, text string) domintent.Decision
}

// Ranker selects the best catalog items for a query.
type Ranker interface {
	Rank(ctx context.Context, in ranking.Input) []domcat.ScoredBook
}

// Composer writes the answer text.
type Composer interface {
	Compose(ctx context.Context, in compose.Input) compose.Output
	Summarize(ctx context.Context, in compose.SummaryInput) string
}
