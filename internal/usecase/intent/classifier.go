// Package intent classifies the purpose of a query.
package intent

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	domintent "github.com/JIG555ERA/llm-api/internal/domain/intent"
	"github.com/JIG555ERA/llm-api/internal/logger"
	"github.com/JIG555ERA/llm-api/internal/metrics"
	"github.com/JIG555ERA/llm-api/internal/usecase/rerank"
)

// Exemplar is a labeled phrase representing one mode.
type Exemplar struct {
	Mode domintent.Mode
	Text string
}

// DefaultExemplars has one phrase per mode, in declaration order.
var DefaultExemplars = []Exemplar{
	{domintent.Greeting, "hello there, hi, good morning, how are you doing today"},
	{domintent.Author, "who is the author of this book and what else has the writer written"},
	{domintent.Price, "how much does this book cost, what is its price"},
	{domintent.Character, "who is the main character of the story, tell me about the protagonist"},
	{domintent.Publisher, "which publisher published this book, who is the publishing house"},
	{domintent.General, "recommend some good books for me to read"},
}

// Classifier picks the mode whose exemplar is closest to the query,
// falling back to keyword checks without an embedding backend.
type Classifier struct {
	embed     Embedder
	cap       Capability
	exemplars []Exemplar

	mu      sync.Mutex
	vectors [][]float32
}

// New creates a classifier with DefaultExemplars. A nil embedder means keyword-only.
func New(embed Embedder, capability Capability) *Classifier {
	return NewWithExemplars(embed, capability, DefaultExemplars)
}

// NewWithExemplars creates a classifier with custom exemplars.
func NewWithExemplars(embed Embedder, capability Capability, exemplars []Exemplar) *Classifier {
	return &Classifier{embed: embed, cap: capability, exemplars: exemplars}
}

// Classify never fails: any embedding problem degrades to the keyword checks.
func (c *Classifier) Classify(ctx context.Context, text string) domintent.Decision {
	d, err := c.classifyEmbedding(ctx, text)
	if err != nil {
		logger.FromContext(ctx).Debug("Intent keyword fallback", zap.Error(err))
		d = ClassifyKeywords(text)
	}
	metrics.IntentDecisionsTotal.WithLabelValues(string(d.Mode), string(d.Path)).Inc()
	return d
}

func (c *Classifier) classifyEmbedding(ctx context.Context, text string) (domintent.Decision, error) {
	if c.embed == nil || c.cap == nil || !c.cap.Available() {
		return domintent.Decision{}, fmt.Errorf("embedding backend not available")
	}

	vectors, err := c.exemplarVectors(ctx)
	if err != nil {
		return domintent.Decision{}, err
	}

	q, err := c.embed.Embed(ctx, text)
	if err != nil {
		return domintent.Decision{}, fmt.Errorf("embed query: %w", err)
	}

	scores := make([]domintent.ModeScore, len(c.exemplars))
	best := 0
	for i, ex := range c.exemplars {
		scores[i] = domintent.ModeScore{Mode: ex.Mode, Score: rerank.Cosine(q.Embedding, vectors[i])}
		if scores[i].Score > scores[best].Score {
			best = i
		}
	}
	top := scores[best]

	slices.SortStableFunc(scores, func(a, b domintent.ModeScore) int {
		return cmp.Compare(b.Score, a.Score)
	})

	return domintent.Decision{
		Mode:       top.Mode,
		Confidence: min(max(top.Score, 0), 1),
		Scores:     scores,
		Path:       domintent.PathEmbedding,
	}, nil
}

// exemplarVectors embeds the exemplars once per process. Failures are not
// cached, so a transient error is retried by the next query.
func (c *Classifier) exemplarVectors(ctx context.Context) ([][]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vectors != nil {
		return c.vectors, nil
	}
	if len(c.exemplars) == 0 {
		return nil, fmt.Errorf("no exemplars configured")
	}

	vectors := make([][]float32, len(c.exemplars))
	for i, ex := range c.exemplars {
		res, err := c.embed.Embed(ctx, ex.Text)
		if err != nil {
			return nil, fmt.Errorf("embed %s exemplar: %w", ex.Mode, err)
		}
		vectors[i] = res.Embedding
	}
	c.vectors = vectors
	return vectors, nil
}
