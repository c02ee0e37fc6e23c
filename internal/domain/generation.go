package domain

import "context"

// GenerationRequest is a single long-form generation call.
type GenerationRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Generator produces free text from a composed prompt.
// Implementations return ErrGenerationUnavailable (wrapped) on any failure.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// Extract is a short piece of external context about a query subject.
type Extract struct {
	Title string
	Text  string
}
