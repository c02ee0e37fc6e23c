package domain

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type stubEmbedder struct {
	result EmbeddingResult
	err    error
	got    string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	s.got = text
	return s.result, s.err
}

func TestInstructionEmbedder_PrependsInstruction(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	emb := NewInstructionEmbedder(inner, "query: ")

	result, err := emb.Embed(context.Background(), "books about money")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.got != "query: books about money" {
		t.Errorf("expected prepended text, got %q", inner.got)
	}
	if len(result.Embedding) != 3 {
		t.Errorf("expected 3-element vector, got %d", len(result.Embedding))
	}
}

func TestInstructionEmbedder_ErrorPropagation(t *testing.T) {
	inner := &stubEmbedder{err: ErrEmbeddingUnavailable}
	emb := NewInstructionEmbedder(inner, "passage: ")

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Errorf("expected wrapped inner error, got %v", err)
	}
}

func TestEmbeddingUsage_ConcurrentAdds(t *testing.T) {
	ctx, usage := NewContextWithUsage(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			UsageFromContext(ctx).AddTokens(2)
		}()
	}
	wg.Wait()

	if usage.TotalTokens() != 100 {
		t.Errorf("expected 100 tokens, got %d", usage.TotalTokens())
	}
	if !usage.Used() {
		t.Error("expected usage to be marked used")
	}
}

func TestEmbeddingUsage_NilSafe(t *testing.T) {
	u := UsageFromContext(context.Background())
	u.AddTokens(5)
	if u.TotalTokens() != 0 || u.Used() {
		t.Error("nil usage must be a no-op")
	}
}
