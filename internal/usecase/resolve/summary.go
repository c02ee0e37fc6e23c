package resolve

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/JIG555ERA/llm-api/internal/domain"
	"github.com/JIG555ERA/llm-api/internal/domain/hint"
	"github.com/JIG555ERA/llm-api/internal/domain/text"
	"github.com/JIG555ERA/llm-api/internal/usecase/compose"
)

// SummaryRequest asks for a summary of one book.
type SummaryRequest struct {
	Title     string
	Author    string
	MaxTokens *int
}

// Summary is a book summary assembled from discovery sources.
type Summary struct {
	Title      string
	Authors    []string
	Categories []string
	Source     string
	Text       string
	TokenUsage int
}

// Summarize looks the book up in the discovery sources, in priority order,
// and summarizes the first hit. No hit at all is ErrNoCandidates.
func (s *Service) Summarize(ctx context.Context, req SummaryRequest) (*Summary, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRequest, MsgTitleRequired)
	}
	opts := Options{MaxTokens: req.MaxTokens}
	if errs := opts.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRequest, strings.Join(errs, " "))
	}

	author := strings.TrimSpace(req.Author)
	q := strings.TrimSpace(title + " " + author)

	hit, source, ok := firstHit(s.discover(ctx, q), author)
	if !ok {
		return nil, fmt.Errorf("no remote candidates for %q: %w", title, domain.ErrNoCandidates)
	}

	extract := s.enrich(ctx, hit.Title)
	body := s.deps.Composer.Summarize(ctx, compose.SummaryInput{
		Title:       hit.Title,
		Authors:     hit.Authors,
		Categories:  hit.Categories,
		Description: hit.Description,
		Context:     extract,
		Options:     opts.compose(),
	})

	return &Summary{
		Title:      hit.Title,
		Authors:    hit.Authors,
		Categories: hit.Categories,
		Source:     source,
		Text:       body,
		TokenUsage: text.WordCount(body),
	}, nil
}

// firstHit takes the first hit by source priority. With an author given,
// a hit crediting that author is preferred over an earlier one that does not.
func firstHit(partials []hint.Partial, author string) (hint.Hit, string, bool) {
	if author != "" {
		want := strings.ToLower(author)
		for _, p := range partials {
			for _, h := range p.Hits {
				if slices.ContainsFunc(h.Authors, func(a string) bool {
					return strings.Contains(strings.ToLower(a), want)
				}) {
					return h, p.Source, true
				}
			}
		}
	}
	for i := range partials {
		if h, ok := partials[i].First(); ok {
			return h, partials[i].Source, true
		}
	}
	return hint.Hit{}, "", false
}
