package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/JIG555ERA/llm-api/internal/domain"
	"github.com/JIG555ERA/llm-api/internal/metrics"
)

// Capability tracks whether the embedding backend can be used.
// Once disabled it stays disabled for the process lifetime.
type Capability struct {
	disabled atomic.Bool
	logger   *zap.Logger
}

// NewCapability creates a capability flag. available=false means no backend is configured.
func NewCapability(available bool, logger *zap.Logger) *Capability {
	c := &Capability{logger: logger}
	if !available {
		c.disabled.Store(true)
		metrics.EmbeddingCapabilityDisabled.Set(1)
	}
	return c
}

// Available reports whether callers should attempt embedding.
func (c *Capability) Available() bool {
	return c != nil && !c.disabled.Load()
}

// Disable turns the capability off permanently. Only the first call logs.
func (c *Capability) Disable(reason error) {
	if c == nil {
		return
	}
	if c.disabled.CompareAndSwap(false, true) {
		metrics.EmbeddingCapabilityDisabled.Set(1)
		c.logger.Warn("Embedding backend disabled for the process lifetime", zap.Error(reason))
	}
}

// GatedEmbedder short-circuits when the capability is off and turns it off on
// permanent failures. Transient failures are returned without changing the flag.
type GatedEmbedder struct {
	inner domain.Embedder
	cap   *Capability
}

// NewGatedEmbedder wraps inner with the capability gate. inner may be nil when no backend is configured.
func NewGatedEmbedder(inner domain.Embedder, capability *Capability) *GatedEmbedder {
	if inner == nil {
		capability.Disable(domain.ErrEmbeddingUnavailable)
	}
	return &GatedEmbedder{inner: inner, cap: capability}
}

// Capability returns the flag shared by the gate.
func (g *GatedEmbedder) Capability() *Capability {
	return g.cap
}

// Embed delegates to the inner embedder while the capability is available.
func (g *GatedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if !g.cap.Available() {
		return domain.EmbeddingResult{}, domain.ErrEmbeddingUnavailable
	}
	result, err := g.inner.Embed(ctx, text)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingUnavailable) {
			g.cap.Disable(err)
		}
		return domain.EmbeddingResult{}, fmt.Errorf("gated embed: %w", err)
	}
	return result, nil
}
