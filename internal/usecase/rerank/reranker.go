package rerank

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	domcat "github.com/JIG555ERA/llm-api/internal/domain/catalog"
	"github.com/JIG555ERA/llm-api/internal/metrics"
)

// Weight scales the cosine similarity added to a candidate's score.
const Weight = 180

// DefaultPoolSize bounds concurrent candidate embeddings.
const DefaultPoolSize = 8

// Reranker adds semantic similarity to candidate scores.
type Reranker struct {
	embed  Embedder
	cap    Capability
	pool   *ants.Pool
	logger *zap.Logger
}

// New creates a reranker with a bounded embedding pool.
func New(embed Embedder, capability Capability, poolSize int, logger *zap.Logger) (*Reranker, error) {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("create rerank pool: %w", err)
	}
	return &Reranker{embed: embed, cap: capability, pool: pool, logger: logger}, nil
}

// Release stops the worker pool. The reranker must not be used afterwards.
func (r *Reranker) Release() {
	r.pool.Release()
}

// Rerank returns the candidates with Weight×cosine(query, item) added and
// re-sorted descending (stable). Without an embedding backend, or when the
// query cannot be embedded, the input is returned unchanged. A candidate whose
// embedding fails contributes zero.
func (r *Reranker) Rerank(ctx context.Context, text string, cands []domcat.ScoredBook) []domcat.ScoredBook {
	if len(cands) == 0 || r.embed == nil || r.cap == nil || !r.cap.Available() {
		metrics.RerankTotal.WithLabelValues("skipped").Inc()
		return cands
	}

	qres, err := r.embed.Embed(ctx, text)
	if err != nil {
		metrics.RerankTotal.WithLabelValues("failed").Inc()
		r.logger.Warn("Rerank skipped: query embedding failed", zap.Error(err))
		return cands
	}

	sims := make([]float64, len(cands))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures int
	)
	for i := range cands {
		wg.Add(1)
		blob := cands[i].Book.Blob()
		task := func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			res, err := r.embed.Embed(ctx, blob)
			if err != nil {
				mu.Lock()
				failures++
				mu.Unlock()
				return
			}
			sims[i] = Cosine(qres.Embedding, res.Embedding)
		}
		if err := r.pool.Submit(task); err != nil {
			wg.Done()
			mu.Lock()
			failures++
			mu.Unlock()
		}
	}
	wg.Wait()

	if failures > 0 {
		r.logger.Debug("Some candidate embeddings failed", zap.Int("failed", failures), zap.Int("total", len(cands)))
	}

	out := make([]domcat.ScoredBook, len(cands))
	copy(out, cands)
	for i := range out {
		out[i].Score += Weight * sims[i]
	}
	domcat.SortByScore(out)

	metrics.RerankTotal.WithLabelValues("applied").Inc()
	return out
}
