package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/JIG555ERA/llm-api/internal/domain"
)

func TestCapability_Unconfigured(t *testing.T) {
	c := NewCapability(false, zap.NewNop())
	if c.Available() {
		t.Fatal("expected unavailable capability")
	}

	var nilCap *Capability
	if nilCap.Available() {
		t.Fatal("nil capability must be unavailable")
	}
	nilCap.Disable(errors.New("noop"))
}

func TestGatedEmbedder_NilInnerDisables(t *testing.T) {
	c := NewCapability(true, zap.NewNop())
	g := NewGatedEmbedder(nil, c)

	if c.Available() {
		t.Fatal("missing backend must disable the capability")
	}
	if _, err := g.Embed(context.Background(), "x"); !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestGatedEmbedder_PermanentFailureDisables(t *testing.T) {
	inner := &mockEmbedder{err: fmt.Errorf("401 unauthorized: %w", domain.ErrEmbeddingUnavailable)}
	c := NewCapability(true, zap.NewNop())
	g := NewGatedEmbedder(inner, c)

	if _, err := g.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
	if c.Available() {
		t.Fatal("permanent failure must disable the capability")
	}

	// Later calls never reach the backend.
	if _, err := g.Embed(context.Background(), "y"); !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 backend call, got %d", inner.calls)
	}
}

func TestGatedEmbedder_TransientFailureKeepsCapability(t *testing.T) {
	inner := &mockEmbedder{err: fmt.Errorf("timeout: %w", domain.ErrEmbeddingProviderError)}
	c := NewCapability(true, zap.NewNop())
	g := NewGatedEmbedder(inner, c)

	for range 3 {
		if _, err := g.Embed(context.Background(), "x"); !errors.Is(err, domain.ErrEmbeddingProviderError) {
			t.Fatalf("expected provider error, got %v", err)
		}
	}
	if !c.Available() {
		t.Fatal("transient failures must not disable the capability")
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 backend calls, got %d", inner.calls)
	}
}

func TestCapability_ConcurrentDisable(t *testing.T) {
	c := NewCapability(true, zap.NewNop())
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Disable(domain.ErrEmbeddingUnavailable)
		}()
	}
	wg.Wait()
	if c.Available() {
		t.Fatal("expected disabled capability")
	}
}
