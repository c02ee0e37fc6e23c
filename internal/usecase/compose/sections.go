package compose

import (
	"fmt"
	"strings"

	domcat "github.com/JIG555ERA/llm-api/internal/domain/catalog"
	"github.com/JIG555ERA/llm-api/internal/domain/text"
)

const (
	maxTakeaways = 3
	maxSimilar   = 3
	quoteWords   = 30
)

// sections renders the optional parts requested in opts, returning the
// rendered text and the sections that were enabled.
func sections(opts Options, books, similar []domcat.Book) (string, []Section) {
	enabled := make([]Section, 0, 3)
	var parts []string

	if opts.IncludeQuotes {
		enabled = append(enabled, SectionQuotes)
		parts = append(parts, quoteSection(books))
	}
	if opts.IncludeTakeaways {
		enabled = append(enabled, SectionTakeaways)
		parts = append(parts, takeawaySection(books))
	}
	if opts.IncludeSimilar {
		enabled = append(enabled, SectionSimilar)
		parts = append(parts, similarSection(similar))
	}
	return paragraphs(parts...), enabled
}

func quoteSection(books []domcat.Book) string {
	for i := range books {
		if s := text.FirstSentence(books[i].Description); s != "" {
			return fmt.Sprintf(`Quote from "%s": "%s"`, books[i].Title, text.TruncateWords(s, quoteWords))
		}
	}
	return ""
}

func takeawaySection(books []domcat.Book) string {
	lines := []string{"Key takeaways:"}
	for i := range books {
		if len(lines) > maxTakeaways {
			break
		}
		s := text.FirstSentence(books[i].Description)
		if s == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", books[i].Title, text.TruncateWords(s, quoteWords)))
	}
	if len(lines) == 1 {
		return ""
	}
	return strings.Join(lines, "\n")
}

func similarSection(similar []domcat.Book) string {
	if len(similar) == 0 {
		return ""
	}
	titles := make([]string, 0, maxSimilar)
	for i := range similar {
		if i == maxSimilar {
			break
		}
		titles = append(titles, `"`+similar[i].Title+`"`)
	}
	return "You may also like: " + strings.Join(titles, ", ") + "."
}
