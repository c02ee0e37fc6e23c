// Package resolve answers free-text catalog queries end to end.
package resolve

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JIG555ERA/llm-api/internal/domain"
	domcat "github.com/JIG555ERA/llm-api/internal/domain/catalog"
	"github.com/JIG555ERA/llm-api/internal/domain/hint"
	domintent "github.com/JIG555ERA/llm-api/internal/domain/intent"
	"github.com/JIG555ERA/llm-api/internal/domain/query"
	"github.com/JIG555ERA/llm-api/internal/domain/text"
	"github.com/JIG555ERA/llm-api/internal/logger"
	"github.com/JIG555ERA/llm-api/internal/usecase/compose"
	"github.com/JIG555ERA/llm-api/internal/usecase/constraint"
	"github.com/JIG555ERA/llm-api/internal/usecase/ranking"
)

// Deps are the collaborators of the service. Sources and Enricher are optional.
type Deps struct {
	Catalog    Catalog
	Sources    []HintSource
	Enricher   Enricher
	Classifier Classifier
	Ranker     Ranker
	Composer   Composer
}

// Service runs the query pipeline: analyze, rank, enrich, compose.
type Service struct {
	deps Deps
	cfg  Config
}

// New creates a resolve service.
func New(deps Deps, cfg Config) *Service {
	cfg.applyDefaults()
	return &Service{deps: deps, cfg: cfg}
}

// MatchedAuthor is a catalog author relevant to the answer.
type MatchedAuthor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PenName   string `json:"pen_name,omitempty"`
	Bio       string `json:"bio,omitempty"`
	BookCount int    `json:"book_count"`
}

// Result is the answer to one query.
type Result struct {
	Text        string
	Items       []compose.Item
	Authors     []MatchedAuthor
	Display     compose.Display
	TokenUsage  int
	Decision    domintent.Decision
	Constraints constraint.Constraints
}

// analysis is the output of the concurrent first stage.
type analysis struct {
	query       query.Query
	books       []domcat.Book
	authors     []domcat.Author
	constraints constraint.Constraints
	decision    domintent.Decision
	hints       hint.Bundle
}

// Resolve answers a query. Only catalog failures, an empty catalog and invalid
// input are returned as errors; every other collaborator degrades silently.
func (s *Service) Resolve(ctx context.Context, q string, opts Options) (*Result, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRequest, MsgPromptRequired)
	}
	if errs := opts.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRequest, strings.Join(errs, " "))
	}

	a, err := s.analyze(ctx, q)
	if err != nil {
		return nil, err
	}

	limit := opts.limit(s.cfg.DefaultLimit)
	want := limit
	if opts.IncludeSimilar {
		want += s.cfg.SimilarCount
	}
	ranked := s.deps.Ranker.Rank(ctx, ranking.Input{
		Query:       a.query,
		Books:       a.books,
		Constraints: a.constraints,
		Hints:       &a.hints,
		Limit:       want,
	})
	top, similar := split(books(ranked), limit)

	subject := q
	if len(top) > 0 {
		subject = top[0].Title
	}
	extract := s.enrich(ctx, subject)

	matched := matchedAuthors(a.authors, &a.constraints, top)
	out := s.deps.Composer.Compose(ctx, compose.Input{
		Query:    q,
		Books:    top,
		Similar:  similar,
		Authors:  matched,
		Decision: a.decision,
		Context:  extract,
		Options:  opts.compose(),
	})

	logger.FromContext(ctx).Debug("Query resolved",
		zap.String("mode", string(out.Display.Mode)),
		zap.String("intent_path", string(a.decision.Path)),
		zap.Int("items", len(out.Items)),
		zap.Bool("generated", out.Generated),
		zap.Bool("enriched", extract != nil),
	)

	return &Result{
		Text:        out.Text,
		Items:       out.Items,
		Authors:     authorViews(matched),
		Display:     out.Display,
		TokenUsage:  text.WordCount(out.Text),
		Decision:    a.decision,
		Constraints: a.constraints,
	}, nil
}

// SearchResult is a ranked list without narrative.
type SearchResult struct {
	Items       []compose.Item
	Decision    domintent.Decision
	Constraints constraint.Constraints
}

// Search ranks the catalog for q without enrichment or composition.
func (s *Service) Search(ctx context.Context, q string, limit *int) (*SearchResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRequest, MsgQueryRequired)
	}
	opts := Options{Limit: limit}
	if errs := opts.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRequest, strings.Join(errs, " "))
	}

	a, err := s.analyze(ctx, q)
	if err != nil {
		return nil, err
	}

	ranked := s.deps.Ranker.Rank(ctx, ranking.Input{
		Query:       a.query,
		Books:       a.books,
		Constraints: a.constraints,
		Hints:       &a.hints,
		Limit:       opts.limit(s.cfg.DefaultLimit),
	})
	return &SearchResult{
		Items:       compose.ShapeItems(domintent.General, books(ranked)),
		Decision:    a.decision,
		Constraints: a.constraints,
	}, nil
}

// analyze runs catalog load plus constraint parsing, intent classification and
// hint discovery concurrently. Only the catalog branch can fail.
func (s *Service) analyze(ctx context.Context, q string) (*analysis, error) {
	a := &analysis{query: query.New(q)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		books, authors, err := s.deps.Catalog.Get(gctx)
		if err != nil {
			return fmt.Errorf("get catalog: %w", err)
		}
		if len(books) == 0 {
			return fmt.Errorf("catalog has no books: %w", domain.ErrNoCandidates)
		}
		a.books, a.authors = books, authors
		a.constraints = constraint.Parse(q, books, authors)
		return nil
	})
	g.Go(func() error {
		a.decision = s.deps.Classifier.Classify(gctx, q)
		return nil
	})
	g.Go(func() error {
		a.hints = hint.Merge(s.discover(gctx, q)...)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return a, nil
}

// discover queries every hint source concurrently. A failing source
// contributes an empty partial; results keep source order.
func (s *Service) discover(ctx context.Context, q string) []hint.Partial {
	partials := make([]hint.Partial, len(s.deps.Sources))

	var g errgroup.Group
	for i, src := range s.deps.Sources {
		g.Go(func() error {
			p, err := src.Search(ctx, q)
			if err != nil {
				logger.FromContext(ctx).Warn("Hint source failed",
					zap.String("source", src.Name()),
					zap.Error(err),
				)
				partials[i] = hint.Partial{Source: src.Name()}
				return nil
			}
			partials[i] = p
			return nil
		})
	}
	_ = g.Wait()
	return partials
}

func (s *Service) enrich(ctx context.Context, subject string) *domain.Extract {
	if s.deps.Enricher == nil || subject == "" {
		return nil
	}
	ex, err := s.deps.Enricher.Lookup(ctx, subject)
	if err != nil {
		logger.FromContext(ctx).Warn("Enrichment failed", zap.Error(err))
		return nil
	}
	return ex
}

func books(ranked []domcat.ScoredBook) []domcat.Book {
	out := make([]domcat.Book, len(ranked))
	for i := range ranked {
		out[i] = ranked[i].Book
	}
	return out
}

func split(bs []domcat.Book, n int) (head, tail []domcat.Book) {
	if len(bs) <= n {
		return bs, nil
	}
	return bs[:n], bs[n:]
}

// matchedAuthors returns catalog authors mentioned in the query, or failing that
// the catalog authors credited on the top item.
func matchedAuthors(authors []domcat.Author, c *constraint.Constraints, top []domcat.Book) []domcat.Author {
	mentioned := make(map[string]struct{}, len(c.Authors))
	for _, name := range c.Authors {
		mentioned[name] = struct{}{}
	}
	if len(mentioned) == 0 && len(top) > 0 {
		for _, name := range top[0].Authors {
			mentioned[query.Normalize(name)] = struct{}{}
		}
	}
	if len(mentioned) == 0 {
		return nil
	}

	var out []domcat.Author
	for _, a := range authors {
		_, byName := mentioned[query.Normalize(a.Name)]
		_, byPen := mentioned[query.Normalize(a.PenName)]
		if byName || (a.PenName != "" && byPen) {
			out = append(out, a)
		}
	}
	return out
}

func authorViews(authors []domcat.Author) []MatchedAuthor {
	if len(authors) == 0 {
		return nil
	}
	out := make([]MatchedAuthor, len(authors))
	for i, a := range authors {
		out[i] = MatchedAuthor{ID: a.ID, Name: a.Name, PenName: a.PenName, Bio: a.Bio, BookCount: a.BookCount}
	}
	return out
}
