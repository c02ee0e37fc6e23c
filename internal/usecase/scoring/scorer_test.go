package scoring

import (
	"testing"

	domcat "github.com/JIG555ERA/llm-api/internal/domain/catalog"
	"github.com/JIG555ERA/llm-api/internal/domain/hint"
	"github.com/JIG555ERA/llm-api/internal/domain/query"
)

func prepare(text string, hints *hint.Bundle) *Context {
	return New().Prepare(query.New(text), hints)
}

func richDad() *domcat.Book {
	return &domcat.Book{
		ID:         "1",
		Title:      "Rich Dad Poor Dad",
		Authors:    []string{"Robert Kiyosaki"},
		Categories: []string{"finance"},
	}
}

func TestScore_RichDadScenario(t *testing.T) {
	s := New()
	ctx := s.Prepare(query.New("books about money and rich dad"), nil)

	if !ctx.Topic.AsksFinance {
		t.Fatal("expected finance topic")
	}

	it := NewItem(richDad())
	got := s.Score(ctx, it)
	// title_overlap 2×18 + theme_similarity 2×22 + topic_intent 140
	if got != 220 {
		t.Errorf("expected 220, got %v (%v)", got, s.Breakdown(ctx, it))
	}
	if got <= 100 {
		t.Error("expected score > 100")
	}
}

func TestSignals_Order(t *testing.T) {
	want := []string{
		"title_in_query", "author_in_query", "category_in_query",
		"title_overlap", "description_overlap", "theme_similarity",
		"romance_cross_theme", "topic_intent",
		"hint_title_tokens", "hint_author", "hint_category_tokens",
	}
	got := Signals()
	if len(got) != len(want) {
		t.Fatalf("expected %d signals, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Name != want[i] {
			t.Errorf("signal %d: got %q, want %q", i, got[i].Name, want[i])
		}
	}
}

func TestTitleInQuery(t *testing.T) {
	it := NewItem(&domcat.Book{Title: "Sapiens"})

	if got := TitleInQuery(prepare("tell me about sapiens please", nil), it); got != WeightTitleInQuery {
		t.Errorf("expected %d, got %v", WeightTitleInQuery, got)
	}
	// Title containing the query does not count.
	long := NewItem(&domcat.Book{Title: "Sapiens: A Brief History"})
	if got := TitleInQuery(prepare("sapiens", nil), long); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
	if got := TitleInQuery(prepare("anything", nil), NewItem(&domcat.Book{})); got != 0 {
		t.Errorf("empty title must not match, got %v", got)
	}
}

func TestAuthorAndCategoryInQuery(t *testing.T) {
	it := NewItem(&domcat.Book{
		Authors:    []string{"Amish Tripathi", "Devdutt Pattanaik"},
		Categories: []string{"Mythology", "Fiction"},
	})
	ctx := prepare("amish tripathi and devdutt pattanaik mythology fiction", nil)

	if got := AuthorInQuery(ctx, it); got != 120 {
		t.Errorf("expected 120, got %v", got)
	}
	if got := CategoryInQuery(ctx, it); got != 60 {
		t.Errorf("expected 60, got %v", got)
	}
}

func TestOverlapSignals(t *testing.T) {
	it := NewItem(&domcat.Book{
		Title:       "The Psychology of Money",
		Description: "Timeless lessons on wealth, greed and happiness",
	})
	ctx := prepare("psychology of wealth and happiness", nil)

	if got := TitleOverlap(ctx, it); got != 18 {
		t.Errorf("title overlap: expected 18, got %v", got)
	}
	if got := DescriptionOverlap(ctx, it); got != 14 {
		t.Errorf("description overlap: expected 14, got %v", got)
	}
}

func TestRomanceCrossTheme(t *testing.T) {
	romance := NewItem(&domcat.Book{Title: "A Love Story", Description: "romance and passion"})
	myth := NewItem(&domcat.Book{Title: "Gods of Olympus", Description: "a mythology epic"})
	ctx := prepare("romantic love stories with passion", nil)

	if got := RomanceCrossTheme(ctx, romance); got != BonusRomanceMatch {
		t.Errorf("expected %d, got %v", BonusRomanceMatch, got)
	}
	if got := RomanceCrossTheme(ctx, myth); got != PenaltyRomanceCross {
		t.Errorf("expected %d, got %v", PenaltyRomanceCross, got)
	}

	mixed := prepare("love and money", nil)
	if got := RomanceCrossTheme(mixed, romance); got != 0 {
		t.Errorf("query mixing finance is not romance-heavy, got %v", got)
	}
}

func TestTopicIntent(t *testing.T) {
	finance := NewItem(richDad())
	myth := NewItem(&domcat.Book{Title: "Gods of Olympus", Description: "a mythology epic"})

	ctx := prepare("investing money", nil)
	if got := TopicIntent(ctx, finance); got != BonusAsksFinance {
		t.Errorf("expected %d, got %v", BonusAsksFinance, got)
	}
	if got := TopicIntent(ctx, myth); got != PenaltyAsksFinance {
		t.Errorf("expected %d, got %v", PenaltyAsksFinance, got)
	}

	ctx = prepare("stories of krishna and the gods", nil)
	if got := TopicIntent(ctx, myth); got != BonusAsksMythology {
		t.Errorf("expected %d, got %v", BonusAsksMythology, got)
	}

	if got := TopicIntent(prepare("a detective story", nil), myth); got != 0 {
		t.Errorf("no topic asked, got %v", got)
	}
}

func TestHintSignals(t *testing.T) {
	bundle := hint.Merge(hint.Partial{Hits: []hint.Hit{
		{
			Title:      "Rich Dad Poor Dad",
			Authors:    []string{"Robert Kiyosaki"},
			Categories: []string{"Business & Finance"},
		},
		{Title: "Rich Dad's Cashflow Quadrant"},
	}})
	ctx := prepare("anything", &bundle)
	it := NewItem(richDad())

	// rich, dad, poor in the first title; rich, dad in the second.
	if got := HintTitleTokens(ctx, it); got != 40 {
		t.Errorf("hint titles: expected 40, got %v", got)
	}
	if got := HintAuthor(ctx, it); got != BonusHintAuthor {
		t.Errorf("hint author: expected %d, got %v", BonusHintAuthor, got)
	}
	if got := HintCategoryTokens(ctx, it); got != 6 {
		t.Errorf("hint categories: expected 6, got %v", got)
	}

	empty := prepare("anything", nil)
	if HintTitleTokens(empty, it)+HintAuthor(empty, it)+HintCategoryTokens(empty, it) != 0 {
		t.Error("empty bundle must not contribute")
	}
}

func TestScore_Deterministic(t *testing.T) {
	s := New()
	ctx := s.Prepare(query.New("romance under 300 by jane austen"), nil)
	it := NewItem(&domcat.Book{
		Title:       "Pride and Prejudice",
		Description: "A romance of manners and marriage",
		Authors:     []string{"Jane Austen"},
		Categories:  []string{"Romance", "Classics"},
	})
	first := s.Score(ctx, it)
	for range 5 {
		if got := s.Score(ctx, it); got != first {
			t.Fatalf("score changed between runs: %v vs %v", first, got)
		}
	}
}

func TestBreakdown_SumsToScore(t *testing.T) {
	s := New()
	ctx := s.Prepare(query.New("books about money and rich dad"), nil)
	it := NewItem(richDad())

	var sum float64
	for _, c := range s.Breakdown(ctx, it) {
		sum += c.Delta
	}
	if sum != s.Score(ctx, it) {
		t.Errorf("breakdown sum %v != score %v", sum, s.Score(ctx, it))
	}
}
