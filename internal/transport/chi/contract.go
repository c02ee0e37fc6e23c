package chi

import (
	"context"

	healthuc "github.com/JIG555ERA/llm-api/internal/usecase/health"
	"github.com/JIG555ERA/llm-api/internal/usecase/resolve"
)

// Resolver answers catalog queries.
type Resolver interface {
	Resolve(ctx context.Context, q string, opts resolve.Options) (*resolve.Result, error)
	Search(ctx context.Context, q string, limit *int) (*resolve.SearchResult, error)
	Summarize(ctx context.Context, req resolve.SummaryRequest) (*resolve.Summary, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
