package compose

import (
	"context"

	"github.com/JIG555ERA/llm-api/internal/domain"
)

// Generator produces long-form text. Optional: a nil generator keeps the template answer.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (string, error)
}
