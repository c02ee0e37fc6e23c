package scoring

import (
	"strings"

	"github.com/JIG555ERA/llm-api/internal/domain/query"
)

// Signal weights.
const (
	WeightTitleInQuery     = 100
	WeightAuthorInQuery    = 60
	WeightCategoryInQuery  = 30
	WeightTitleToken       = 18
	WeightDescriptionToken = 7
	WeightThemeSimilarity  = 22

	BonusRomanceMatch   = 70
	PenaltyRomanceCross = -35

	BonusAsksFinance     = 140
	PenaltyAsksFinance   = -60
	BonusAsksRomance     = 95
	PenaltyAsksRomance   = -45
	BonusAsksMythology   = 110
	PenaltyAsksMythology = -45

	WeightHintTitleToken    = 8
	BonusHintAuthor         = 45
	WeightHintCategoryToken = 6
)

// SignalFunc returns the delta one signal adds to an item's score.
type SignalFunc func(ctx *Context, it *Item) float64

// Signal is a named scoring rule.
type Signal struct {
	Name  string
	Apply SignalFunc
}

// Signals returns the default signals in evaluation order.
func Signals() []Signal {
	return []Signal{
		{"title_in_query", TitleInQuery},
		{"author_in_query", AuthorInQuery},
		{"category_in_query", CategoryInQuery},
		{"title_overlap", TitleOverlap},
		{"description_overlap", DescriptionOverlap},
		{"theme_similarity", ThemeSimilarity},
		{"romance_cross_theme", RomanceCrossTheme},
		{"topic_intent", TopicIntent},
		{"hint_title_tokens", HintTitleTokens},
		{"hint_author", HintAuthor},
		{"hint_category_tokens", HintCategoryTokens},
	}
}

// TitleInQuery fires when the query contains the whole title.
func TitleInQuery(ctx *Context, it *Item) float64 {
	if it.title != "" && strings.Contains(ctx.Query.Lower, it.title) {
		return WeightTitleInQuery
	}
	return 0
}

// AuthorInQuery adds a bonus per author named in the query.
func AuthorInQuery(ctx *Context, it *Item) float64 {
	return float64(WeightAuthorInQuery * countContained(ctx.Query.Lower, it.Book.Authors))
}

// CategoryInQuery adds a bonus per category named in the query.
func CategoryInQuery(ctx *Context, it *Item) float64 {
	return float64(WeightCategoryInQuery * countContained(ctx.Query.Lower, it.Book.Categories))
}

// TitleOverlap weighs query tokens shared with the title.
func TitleOverlap(ctx *Context, it *Item) float64 {
	return float64(WeightTitleToken * ctx.Query.TokenSet.Overlap(it.titleTokens))
}

// DescriptionOverlap weighs query tokens shared with the description.
func DescriptionOverlap(ctx *Context, it *Item) float64 {
	return float64(WeightDescriptionToken * ctx.Query.TokenSet.Overlap(it.descTokens))
}

// ThemeSimilarity rewards themes present in both query and item.
func ThemeSimilarity(ctx *Context, it *Item) float64 {
	shared := 0
	for _, t := range []Theme{Romance, Mythology, Finance, Thriller} {
		shared += min(ctx.Themes[t], it.themes[t])
	}
	return float64(WeightThemeSimilarity * shared)
}

// RomanceCrossTheme applies only to romance-heavy queries: romance-heavy items
// gain, mythology- or finance-heavy items lose.
func RomanceCrossTheme(ctx *Context, it *Item) float64 {
	if !ctx.romanceHeavyQuery {
		return 0
	}
	var delta float64
	if it.themes.Heavy(Romance) {
		delta += BonusRomanceMatch
	}
	if it.themes.Heavy(Mythology) || it.themes.Heavy(Finance) {
		delta += PenaltyRomanceCross
	}
	return delta
}

// TopicIntent attracts items heavy in the topic the query asks for and repels the rest.
func TopicIntent(ctx *Context, it *Item) float64 {
	var delta float64
	if ctx.Topic.AsksFinance {
		delta += pick(it.themes.Heavy(Finance), BonusAsksFinance, PenaltyAsksFinance)
	}
	if ctx.Topic.AsksRomance {
		delta += pick(it.themes.Heavy(Romance), BonusAsksRomance, PenaltyAsksRomance)
	}
	if ctx.Topic.AsksMythology {
		delta += pick(it.themes.Heavy(Mythology), BonusAsksMythology, PenaltyAsksMythology)
	}
	return delta
}

// HintTitleTokens rewards title tokens shared with each remote title.
func HintTitleTokens(ctx *Context, it *Item) float64 {
	shared := 0
	for _, remote := range ctx.Hints.Titles {
		shared += remote.Overlap(it.titleTokens)
	}
	return float64(WeightHintTitleToken * shared)
}

// HintAuthor fires once when any author appeared in the remote results.
func HintAuthor(ctx *Context, it *Item) float64 {
	for _, a := range it.Book.Authors {
		if ctx.Hints.HasAuthor(a) {
			return BonusHintAuthor
		}
	}
	return 0
}

// HintCategoryTokens rewards category tokens shared with remote categories.
func HintCategoryTokens(ctx *Context, it *Item) float64 {
	shared := 0
	for _, c := range it.Book.Categories {
		shared += ctx.Hints.CategoryTokens.Overlap(query.Tokenize(c))
	}
	return float64(WeightHintCategoryToken * shared)
}

func countContained(lower string, names []string) int {
	n := 0
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" && strings.Contains(lower, name) {
			n++
		}
	}
	return n
}

func pick(cond bool, yes, no float64) float64 {
	if cond {
		return yes
	}
	return no
}
