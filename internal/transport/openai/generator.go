package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/JIG555ERA/llm-api/internal/domain"
	"github.com/JIG555ERA/llm-api/internal/metrics"
)

// Generator produces long-form answers via chat completions.
type Generator struct {
	client *openai.Client
	apiKey string
	model  string
	user   string
	logger *zap.Logger
}

// NewGenerator creates a chat-completion generator.
func NewGenerator(cfg *Config) *Generator {
	return &Generator{
		client: newClient(cfg),
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		user:   cfg.User,
		logger: cfg.Logger,
	}
}

// Generate implements domain.Generator. Every failure, including an empty
// completion, wraps ErrGenerationUnavailable.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	if g.apiKey == "" {
		metrics.GenerationRequestsTotal.WithLabelValues(g.model, "unavailable").Inc()
		return "", fmt.Errorf("no API key configured: %w", domain.ErrGenerationUnavailable)
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		User:        g.user,
	})
	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.model, "error").Inc()
		return "", parseAPIError("generation", err, domain.ErrGenerationUnavailable, domain.ErrGenerationUnavailable)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.GenerationRequestsTotal.WithLabelValues(g.model, "empty").Inc()
		return "", fmt.Errorf("empty completion: %w", domain.ErrGenerationUnavailable)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.model, "success").Inc()
	g.logger.Debug("Generation completed",
		zap.String("model", g.model),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)
	return resp.Choices[0].Message.Content, nil
}
