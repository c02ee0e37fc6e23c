package intent

import (
	"context"
	"math"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/JIG555ERA/llm-api/internal/domain"
	domintent "github.com/JIG555ERA/llm-api/internal/domain/intent"
	"github.com/JIG555ERA/llm-api/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterPipelineMetrics()
	os.Exit(m.Run())
}

// --- Mocks ---

type fakeCap bool

func (c fakeCap) Available() bool { return bool(c) }

// vectorEmbedder maps text (by prefix) to vectors; failOnce makes the first
// call fail with a transient error.
type vectorEmbedder struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	failOnce bool
	calls    int
}

func (e *vectorEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.failOnce {
		e.failOnce = false
		return domain.EmbeddingResult{}, domain.ErrEmbeddingProviderError
	}
	for prefix, v := range e.vectors {
		if strings.HasPrefix(text, prefix) {
			return domain.EmbeddingResult{Embedding: v}, nil
		}
	}
	return domain.EmbeddingResult{}, domain.ErrEmbeddingProviderError
}

var testExemplars = []Exemplar{
	{domintent.Greeting, "ex-greeting"},
	{domintent.Author, "ex-author"},
	{domintent.Price, "ex-price"},
	{domintent.Character, "ex-character"},
	{domintent.Publisher, "ex-publisher"},
	{domintent.General, "ex-general"},
}

func exemplarVectors() map[string][]float32 {
	return map[string][]float32{
		"ex-greeting":  {1, 0, 0, 0, 0, 0},
		"ex-author":    {0, 1, 0, 0, 0, 0},
		"ex-price":     {0, 0, 1, 0, 0, 0},
		"ex-character": {0, 0, 0, 1, 0, 0},
		"ex-publisher": {0, 0, 0, 0, 1, 0},
		"ex-general":   {0, 0, 0, 0, 0, 1},
	}
}

// --- Tests ---

func TestClassifyKeywords(t *testing.T) {
	tests := []struct {
		text string
		mode domintent.Mode
		conf float64
	}{
		{"who wrote the alchemist", domintent.Author, ConfidenceAuthor},
		{"books by chetan bhagat", domintent.Author, ConfidenceAuthor},
		{"how much is rich dad poor dad", domintent.Price, ConfidencePrice},
		{"thrillers under 300", domintent.Price, ConfidencePrice},
		{"who is the protagonist of the alchemist", domintent.Character, ConfidenceCharacter},
		{"which publisher printed wings of fire", domintent.Publisher, ConfidencePublisher},
		{"a good mythology novel", domintent.General, ConfidenceGeneral},
		{"hello", domintent.General, ConfidenceGeneral},
		// Author check runs before price.
		{"books by ruskin bond under 200", domintent.Author, ConfidenceAuthor},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			d := ClassifyKeywords(tt.text)
			if d.Mode != tt.mode {
				t.Errorf("expected mode %s, got %s", tt.mode, d.Mode)
			}
			if d.Confidence != tt.conf {
				t.Errorf("expected confidence %v, got %v", tt.conf, d.Confidence)
			}
			if d.Path != domintent.PathKeyword {
				t.Errorf("expected keyword path, got %s", d.Path)
			}
			if d.Scores != nil {
				t.Errorf("keyword path should not carry scores")
			}
		})
	}
}

func TestClassify_EmbeddingPath(t *testing.T) {
	vecs := exemplarVectors()
	vecs["query"] = []float32{0.2, 0.1, 0.9, 0, 0, 0}
	c := NewWithExemplars(&vectorEmbedder{vectors: vecs}, fakeCap(true), testExemplars)

	d := c.Classify(context.Background(), "query about cost")
	if d.Path != domintent.PathEmbedding {
		t.Fatalf("expected embedding path, got %s", d.Path)
	}
	if d.Mode != domintent.Price {
		t.Errorf("expected price, got %s", d.Mode)
	}
	if d.Confidence <= 0 || d.Confidence > 1 {
		t.Errorf("confidence out of range: %v", d.Confidence)
	}
	if len(d.Scores) != len(testExemplars) {
		t.Fatalf("expected %d scores, got %d", len(testExemplars), len(d.Scores))
	}
	for i := 1; i < len(d.Scores); i++ {
		if d.Scores[i].Score > d.Scores[i-1].Score {
			t.Errorf("scores not ranked at %d: %v", i, d.Scores)
		}
	}
	if d.Scores[0].Mode != domintent.Price || d.Scores[1].Mode != domintent.Greeting {
		t.Errorf("unexpected ranking: %v", d.Scores)
	}
}

func TestClassify_GreetingReachableByEmbedding(t *testing.T) {
	vecs := exemplarVectors()
	vecs["hi"] = []float32{1, 0, 0, 0, 0, 0.1}
	c := NewWithExemplars(&vectorEmbedder{vectors: vecs}, fakeCap(true), testExemplars)

	d := c.Classify(context.Background(), "hi there")
	if d.Mode != domintent.Greeting {
		t.Errorf("expected greeting, got %s", d.Mode)
	}
}

func TestClassify_TieBreaksByDeclarationOrder(t *testing.T) {
	vecs := exemplarVectors()
	// Equal similarity to author and price.
	vecs["tie"] = []float32{0, 1, 1, 0, 0, 0}
	c := NewWithExemplars(&vectorEmbedder{vectors: vecs}, fakeCap(true), testExemplars)

	d := c.Classify(context.Background(), "tie")
	if d.Mode != domintent.Author {
		t.Errorf("expected author (declared first), got %s", d.Mode)
	}
	if d.Scores[0].Mode != domintent.Author || d.Scores[1].Mode != domintent.Price {
		t.Errorf("stable ranking broken: %v", d.Scores)
	}
}

func TestClassify_NegativeCosineClampsToZero(t *testing.T) {
	vecs := map[string][]float32{
		"ex-": {1, 0},
		"neg": {-1, 0},
	}
	ex := []Exemplar{{domintent.General, "ex-general"}}
	c := NewWithExemplars(&vectorEmbedder{vectors: vecs}, fakeCap(true), ex)

	d := c.Classify(context.Background(), "neg")
	if d.Confidence != 0 {
		t.Errorf("expected clamped confidence 0, got %v", d.Confidence)
	}
	if math.Abs(d.Scores[0].Score+1) > 1e-9 {
		t.Errorf("raw score should be kept, got %v", d.Scores[0].Score)
	}
}

func TestClassify_CapabilityUnavailableUsesKeywords(t *testing.T) {
	e := &vectorEmbedder{vectors: exemplarVectors()}
	c := NewWithExemplars(e, fakeCap(false), testExemplars)

	d := c.Classify(context.Background(), "who wrote this")
	if d.Path != domintent.PathKeyword || d.Mode != domintent.Author {
		t.Errorf("expected keyword author, got %+v", d)
	}
	if e.calls != 0 {
		t.Errorf("embedder should not be called, got %d calls", e.calls)
	}
}

func TestClassify_NilEmbedderUsesKeywords(t *testing.T) {
	c := New(nil, fakeCap(true))
	d := c.Classify(context.Background(), "price of the hobbit")
	if d.Path != domintent.PathKeyword || d.Mode != domintent.Price {
		t.Errorf("expected keyword price, got %+v", d)
	}
}

func TestClassify_QueryEmbedFailureUsesKeywords(t *testing.T) {
	// "unknown" has no vector so the query embedding fails.
	c := NewWithExemplars(&vectorEmbedder{vectors: exemplarVectors()}, fakeCap(true), testExemplars)
	d := c.Classify(context.Background(), "unknown publisher question")
	if d.Path != domintent.PathKeyword || d.Mode != domintent.Publisher {
		t.Errorf("expected keyword publisher, got %+v", d)
	}
}

func TestClassify_ExemplarsCachedAfterSuccess(t *testing.T) {
	vecs := exemplarVectors()
	vecs["q"] = []float32{0, 0, 0, 0, 0, 1}
	e := &vectorEmbedder{vectors: vecs}
	c := NewWithExemplars(e, fakeCap(true), testExemplars)

	c.Classify(context.Background(), "q1")
	c.Classify(context.Background(), "q2")

	// Exemplars once plus one query embedding per call.
	want := len(testExemplars) + 2
	if e.calls != want {
		t.Errorf("expected %d embed calls, got %d", want, e.calls)
	}
}

func TestClassify_TransientExemplarFailureNotCached(t *testing.T) {
	vecs := exemplarVectors()
	vecs["q"] = []float32{0, 0, 0, 0, 0, 1}
	e := &vectorEmbedder{vectors: vecs, failOnce: true}
	c := NewWithExemplars(e, fakeCap(true), testExemplars)

	first := c.Classify(context.Background(), "q1")
	if first.Path != domintent.PathKeyword {
		t.Fatalf("expected keyword fallback on exemplar failure, got %s", first.Path)
	}

	second := c.Classify(context.Background(), "q2")
	if second.Path != domintent.PathEmbedding {
		t.Fatalf("expected embedding path after retry, got %s", second.Path)
	}
	if second.Mode != domintent.General {
		t.Errorf("expected general, got %s", second.Mode)
	}
}

func TestDefaultExemplars_DeclarationOrder(t *testing.T) {
	modes := domintent.Modes()
	if len(DefaultExemplars) != len(modes) {
		t.Fatalf("expected %d exemplars, got %d", len(modes), len(DefaultExemplars))
	}
	for i, m := range modes {
		if DefaultExemplars[i].Mode != m {
			t.Errorf("exemplar %d: expected %s, got %s", i, m, DefaultExemplars[i].Mode)
		}
		if DefaultExemplars[i].Text == "" {
			t.Errorf("exemplar %s has empty text", m)
		}
	}
}
