// Package scoring computes the additive lexical and theme relevance score of a
// catalog item for a query.
package scoring

import (
	"strings"

	domcat "github.com/JIG555ERA/llm-api/internal/domain/catalog"
	"github.com/JIG555ERA/llm-api/internal/domain/hint"
	"github.com/JIG555ERA/llm-api/internal/domain/intent"
	"github.com/JIG555ERA/llm-api/internal/domain/query"
)

// Context is the per-query state shared by every signal.
type Context struct {
	Query  query.Query
	Themes Counts
	Topic  intent.Topic
	Hints  *hint.Bundle

	romanceHeavyQuery bool
}

// Item is a book with the derived forms the signals read.
type Item struct {
	Book        *domcat.Book
	title       string
	titleTokens []string
	descTokens  []string
	themes      Counts
}

// NewItem derives the lowercase and tokenized forms of a book.
func NewItem(b *domcat.Book) *Item {
	return &Item{
		Book:        b,
		title:       strings.ToLower(strings.TrimSpace(b.Title)),
		titleTokens: query.Tokenize(b.Title),
		descTokens:  query.Tokenize(b.Description),
		themes:      CountThemes(b.Title + " " + b.Description + " " + strings.Join(b.Categories, " ")),
	}
}

// Contribution is the delta a single named signal added to a score.
type Contribution struct {
	Signal string
	Delta  float64
}

// Scorer sums an ordered list of signals.
type Scorer struct {
	signals []Signal
}

// New creates a scorer with the default signal list.
func New() *Scorer {
	return &Scorer{signals: Signals()}
}

// NewWithSignals creates a scorer with a custom signal list.
func NewWithSignals(signals []Signal) *Scorer {
	return &Scorer{signals: signals}
}

// Prepare derives the per-query context. A nil hints bundle is treated as empty.
func (s *Scorer) Prepare(q query.Query, hints *hint.Bundle) *Context {
	if hints == nil {
		empty := hint.Empty()
		hints = &empty
	}
	themes := CountThemes(q.Raw)
	romanceHeavy := themes.Heavy(Romance) && themes[Mythology] == 0 && themes[Finance] == 0
	return &Context{
		Query:             q,
		Themes:            themes,
		Topic:             DetectTopic(themes),
		Hints:             hints,
		romanceHeavyQuery: romanceHeavy,
	}
}

// Score returns the sum of all signal deltas for the item.
func (s *Scorer) Score(ctx *Context, it *Item) float64 {
	var total float64
	for _, sig := range s.signals {
		total += sig.Apply(ctx, it)
	}
	return total
}

// Breakdown returns the non-zero contribution of each signal in evaluation order.
func (s *Scorer) Breakdown(ctx *Context, it *Item) []Contribution {
	var out []Contribution
	for _, sig := range s.signals {
		if d := sig.Apply(ctx, it); d != 0 {
			out = append(out, Contribution{Signal: sig.Name, Delta: d})
		}
	}
	return out
}
