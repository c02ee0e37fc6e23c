// Package ranking turns scored catalog items into the final candidate set.
package ranking

import (
	"context"
	"strings"

	"go.uber.org/zap"

	domcat "github.com/JIG555ERA/llm-api/internal/domain/catalog"
	"github.com/JIG555ERA/llm-api/internal/domain/hint"
	"github.com/JIG555ERA/llm-api/internal/domain/query"
	"github.com/JIG555ERA/llm-api/internal/logger"
	"github.com/JIG555ERA/llm-api/internal/usecase/constraint"
	"github.com/JIG555ERA/llm-api/internal/usecase/scoring"
)

// Pipeline weights and sizes.
const (
	FieldWeight         = 45
	CoverageWeight      = 120
	HardFailPenalty     = 300
	DefaultRerankWindow = 15
	DefaultLimit        = 5
	FallbackSize        = 3
)

// Input is everything one ranking pass needs.
type Input struct {
	Query       query.Query
	Books       []domcat.Book
	Constraints constraint.Constraints
	Hints       *hint.Bundle
	Limit       int
}

// Pipeline scores, filters, reranks and selects catalog items.
type Pipeline struct {
	scorer   *scoring.Scorer
	reranker Reranker
	window   int
}

// New creates a ranking pipeline. A nil reranker disables semantic reranking.
func New(scorer *scoring.Scorer, reranker Reranker, window int) *Pipeline {
	if window <= 0 {
		window = DefaultRerankWindow
	}
	return &Pipeline{scorer: scorer, reranker: reranker, window: window}
}

// Rank returns at most Limit items, never empty for a non-empty catalog.
func (p *Pipeline) Rank(ctx context.Context, in Input) []domcat.ScoredBook {
	if len(in.Books) == 0 {
		return nil
	}
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	sctx := p.scorer.Prepare(in.Query, in.Hints)
	sorted := make([]domcat.ScoredBook, len(in.Books))
	for i := range in.Books {
		sorted[i] = p.scoreOne(sctx, &in.Books[i], in.Query, &in.Constraints)
	}
	domcat.SortByScore(sorted)

	pool := hardPassPool(sorted)
	window := min(p.window, len(pool))

	head := make([]domcat.ScoredBook, window)
	copy(head, pool[:window])
	if p.reranker != nil {
		head = p.reranker.Rerank(ctx, in.Query.Raw, head)
	}
	merged := mergeByID(head, pool[window:])

	strong := strongMatches(merged, limit)
	log := logger.FromContext(ctx)
	if len(strong) > 0 {
		log.Debug("Ranking selected strong matches",
			zap.Int("catalog", len(in.Books)),
			zap.Int("pool", len(pool)),
			zap.Int("selected", len(strong)),
		)
		return strong
	}

	n := min(FallbackSize, limit, len(pool))
	log.Debug("Ranking fell back to top of sorted pool",
		zap.Int("catalog", len(in.Books)),
		zap.Int("pool", len(pool)),
		zap.Int("selected", n),
	)
	out := make([]domcat.ScoredBook, n)
	copy(out, pool[:n])
	return out
}

func (p *Pipeline) scoreOne(
	sctx *scoring.Context, b *domcat.Book, q query.Query, c *constraint.Constraints,
) domcat.ScoredBook {
	lexical := p.scorer.Score(sctx, scoring.NewItem(b))
	fields := MatchedFields(b, q, c)
	hardPass := c.HardPass(b)

	score := lexical + FieldWeight*float64(fields) + CoverageWeight*ChunkCoverage(b, c.Chunks)
	if !hardPass {
		score -= HardFailPenalty
	}
	return domcat.ScoredBook{Book: *b, Score: score, FieldCount: fields, HardPass: hardPass}
}

// hardPassPool keeps hard-pass items when there are any, else everything.
func hardPassPool(sorted []domcat.ScoredBook) []domcat.ScoredBook {
	var pool []domcat.ScoredBook
	for i := range sorted {
		if sorted[i].HardPass {
			pool = append(pool, sorted[i])
		}
	}
	if len(pool) == 0 {
		return sorted
	}
	return pool
}

// mergeByID concatenates head and tail, dropping repeated IDs.
func mergeByID(head, tail []domcat.ScoredBook) []domcat.ScoredBook {
	out := make([]domcat.ScoredBook, 0, len(head)+len(tail))
	seen := make(map[string]struct{}, len(head)+len(tail))
	for _, part := range [][]domcat.ScoredBook{head, tail} {
		for i := range part {
			id := part[i].Book.ID
			if _, ok := seen[id]; ok && id != "" {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, part[i])
		}
	}
	return out
}

// strongMatches keeps positive items whose field count is within one of the best.
func strongMatches(merged []domcat.ScoredBook, limit int) []domcat.ScoredBook {
	maxFields := 0
	for i := range merged {
		maxFields = max(maxFields, merged[i].FieldCount)
	}
	var out []domcat.ScoredBook
	for i := range merged {
		if len(out) == limit {
			break
		}
		if merged[i].Score > 0 && merged[i].FieldCount >= maxFields-1 {
			out = append(out, merged[i])
		}
	}
	return out
}

// MatchedFields counts title, author, category, description, price and genre hits.
func MatchedFields(b *domcat.Book, q query.Query, c *constraint.Constraints) int {
	n := 0
	title := strings.ToLower(strings.TrimSpace(b.Title))
	if title != "" && (strings.Contains(q.Lower, title) || q.TokenSet.Overlap(query.Tokenize(b.Title)) > 0) {
		n++
	}
	if c.AuthorHit(b) || anyContained(q.Lower, b.Authors) {
		n++
	}
	if c.CategoryHit(b) || categoryTokenHit(b, q) {
		n++
	}
	if strings.TrimSpace(b.Description) != "" && q.TokenSet.Overlap(query.Tokenize(b.Description)) > 0 {
		n++
	}
	if c.PriceActive() && c.PriceOK(b) {
		n++
	}
	if c.GenreHit(b) {
		n++
	}
	return n
}

// ChunkCoverage is the share of query chunks found as whole words in the item's text.
func ChunkCoverage(b *domcat.Book, chunks []string) float64 {
	if len(chunks) == 0 {
		return 0
	}
	padded := " " + query.Normalize(b.Blob()) + " "
	hit := 0
	for _, ch := range chunks {
		if strings.Contains(padded, " "+ch+" ") {
			hit++
		}
	}
	return float64(hit) / float64(len(chunks))
}

func anyContained(lower string, names []string) bool {
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" && strings.Contains(lower, name) {
			return true
		}
	}
	return false
}

func categoryTokenHit(b *domcat.Book, q query.Query) bool {
	for _, c := range b.Categories {
		if q.TokenSet.Overlap(query.Tokenize(c)) > 0 {
			return true
		}
	}
	return false
}
