package constraint

import (
	"strings"

	domcat "github.com/JIG555ERA/llm-api/internal/domain/catalog"
	"github.com/JIG555ERA/llm-api/internal/domain/query"
)

// Genre vocabulary, in detection order.
const (
	GenreFiction    = "fiction"
	GenreRomance    = "romance"
	GenreMythology  = "mythology"
	GenreThriller   = "thriller"
	GenreFinance    = "finance"
	GenreSelfHelp   = "self-help"
	GenreBusiness   = "business"
	GenreNonFiction = "non-fiction"
)

// Genres lists the genre vocabulary in detection order.
var Genres = []string{
	GenreFiction, GenreRomance, GenreMythology, GenreThriller,
	GenreFinance, GenreSelfHelp, GenreBusiness, GenreNonFiction,
}

// queryForms are the normalized phrasings that mention a genre in a query.
var queryForms = map[string][]string{
	GenreFiction:    {"fiction"},
	GenreRomance:    {"romance", "romantic"},
	GenreMythology:  {"mythology", "mythological"},
	GenreThriller:   {"thriller", "thrillers"},
	GenreFinance:    {"finance", "financial"},
	GenreSelfHelp:   {"self help", "selfhelp"},
	GenreBusiness:   {"business"},
	GenreNonFiction: {"non fiction", "nonfiction"},
}

// itemForms are the normalized phrasings that place a catalog item in a genre.
var itemForms = map[string][]string{
	GenreFiction:    {"fiction", "novel", "novels"},
	GenreRomance:    {"romance", "romantic", "love story", "love stories"},
	GenreMythology:  {"mythology", "mythological", "myth", "myths", "epic", "epics"},
	GenreThriller:   {"thriller", "thrillers", "suspense", "mystery", "crime"},
	GenreFinance:    {"finance", "financial", "money", "investing", "investment", "economics", "wealth"},
	GenreSelfHelp:   {"self help", "selfhelp", "personal development", "self improvement", "motivation"},
	GenreBusiness:   {"business", "management", "entrepreneurship", "leadership"},
	GenreNonFiction: {"non fiction", "nonfiction"},
}

func mentionedGenres(normQuery string) []string {
	var out []string
	for _, g := range Genres {
		if containsAnyPhrase(normQuery, g, queryForms[g]) {
			out = append(out, g)
		}
	}
	return out
}

// bookHasGenre matches against the item's categories, falling back to its title.
func bookHasGenre(b *domcat.Book, genre string) bool {
	forms := itemForms[genre]
	for _, cat := range b.Categories {
		if containsAnyPhrase(query.Normalize(cat), genre, forms) {
			return true
		}
	}
	return containsAnyPhrase(query.Normalize(b.Title), genre, forms)
}

// containsAnyPhrase checks whole-word phrase containment in normalized text.
// "fiction" never matches inside "non fiction" / "nonfiction".
func containsAnyPhrase(norm, genre string, forms []string) bool {
	padded := " " + norm + " "
	if genre == GenreFiction {
		padded = strings.ReplaceAll(padded, " non fiction ", " ")
	}
	for _, f := range forms {
		if strings.Contains(padded, " "+f+" ") {
			return true
		}
	}
	return false
}
