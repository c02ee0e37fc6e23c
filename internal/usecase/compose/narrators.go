package compose

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JIG555ERA/llm-api/internal/domain"
	domcat "github.com/JIG555ERA/llm-api/internal/domain/catalog"
	domintent "github.com/JIG555ERA/llm-api/internal/domain/intent"
	"github.com/JIG555ERA/llm-api/internal/domain/text"
)

const (
	descriptionWords = 28
	storyWords       = 40
	maxAuthorProfile = 2
)

const (
	noContextLine = "Quick context: I focused only on your catalog data for this response."
	refineLine    = "I can refine this further if you share your preferred genre, budget, or language."
	closingLine   = "If you want, I can also suggest the best order to read these and a budget-friendly pick."
	noMatchesLine = "I could not find matching books in the catalog for this request."
)

var friendlyOpeners = [...]string{
	`Great choice. I found strong matches for "%s".`,
	`Nice pick. Here are the best matches I found for "%s".`,
	`Got it. Based on your query "%s", these are the most relevant books.`,
}

// narration is everything a narrator may draw on.
type narration struct {
	query       string
	books       []domcat.Book
	authors     []domcat.Author
	context     *domain.Extract
	temperature float64
}

// narrator builds a complete template answer for one mode.
type narrator func(n *narration) string

func narrators() map[domintent.Mode]narrator {
	return map[domintent.Mode]narrator{
		domintent.Greeting:  narrateGreeting,
		domintent.Author:    narrateAuthor,
		domintent.Price:     narratePrice,
		domintent.Character: narrateCharacter,
		domintent.Publisher: narratePublisher,
		domintent.General:   narrateGeneral,
	}
}

func narrateGeneral(n *narration) string {
	lines := make([]string, 0, len(n.books))
	for i := range n.books {
		lines = append(lines, bookLine(i+1, &n.books[i]))
	}

	topPick := refineLine
	if len(n.books) > 0 {
		topPick = fmt.Sprintf(`If you want one recommendation to start with, go with "%s".`, n.books[0].Title)
	}

	return paragraphs(
		fmt.Sprintf(friendlyOpeners[openerIndex(n.temperature)], n.query),
		strings.Join(lines, "\n"),
		contextLine(n.context),
		topPick+" "+closingLine,
	)
}

func narrateGreeting(n *narration) string {
	out := "Hello! Ask me about a topic or an author and I will find matching books from the catalog."
	if len(n.books) > 0 {
		b := &n.books[0]
		out += fmt.Sprintf(` A good place to start is "%s" by %s.`, b.Title, authorText(b))
	}
	return out
}

func narrateAuthor(n *narration) string {
	var parts []string
	for i, a := range n.authors {
		if i == maxAuthorProfile {
			break
		}
		parts = append(parts, authorProfile(&a))
	}

	switch {
	case len(n.books) == 0 && len(parts) == 0:
		return paragraphs(noMatchesLine, refineLine)
	case len(parts) > 0:
		lines := []string{"Books to look at:"}
		for i := range n.books {
			b := &n.books[i]
			lines = append(lines, fmt.Sprintf("%d. %s (%s)", i+1, b.Title, categoryText(b)))
		}
		if len(n.books) > 0 {
			parts = append(parts, strings.Join(lines, "\n"))
		}
	default:
		top := &n.books[0]
		parts = append(parts, fmt.Sprintf(`"%s" is written by %s.`, top.Title, authorText(top)))
		if len(n.books) > 1 {
			lines := []string{"Related titles:"}
			for i := 1; i < len(n.books); i++ {
				b := &n.books[i]
				lines = append(lines, fmt.Sprintf("%d. %s by %s", i, b.Title, authorText(b)))
			}
			parts = append(parts, strings.Join(lines, "\n"))
		}
	}

	if n.context != nil {
		parts = append(parts, contextLine(n.context))
	}
	return paragraphs(parts...)
}

func authorProfile(a *domcat.Author) string {
	out := a.Name
	if a.PenName != "" && !strings.EqualFold(a.PenName, a.Name) {
		out += fmt.Sprintf(" (also known as %s)", a.PenName)
	}
	switch a.BookCount {
	case 0:
		out += " is in the catalog."
	case 1:
		out += " has 1 book in the catalog."
	default:
		out += fmt.Sprintf(" has %d books in the catalog.", a.BookCount)
	}
	if bio := text.FirstSentence(a.Bio); bio != "" {
		out += " " + bio
	}
	return out
}

func narratePrice(n *narration) string {
	if len(n.books) == 0 {
		return paragraphs(noMatchesLine, refineLine)
	}

	lines := []string{fmt.Sprintf(`Here are the prices for the best matches to "%s":`, n.query)}
	cheapest := -1
	var cheapestPrice float64
	for i := range n.books {
		b := &n.books[i]
		p, ok := b.EffectivePrice()
		if !ok {
			lines = append(lines, fmt.Sprintf("%d. %s by %s: price not listed", i+1, b.Title, authorText(b)))
			continue
		}
		lines = append(lines, fmt.Sprintf("%d. %s by %s: Rs. %s", i+1, b.Title, authorText(b), formatPrice(p)))
		if cheapest < 0 || p < cheapestPrice {
			cheapest, cheapestPrice = i, p
		}
	}

	pick := "None of these books has a listed price yet."
	if cheapest >= 0 {
		pick = fmt.Sprintf(`The most budget-friendly pick is "%s" at Rs. %s.`,
			n.books[cheapest].Title, formatPrice(cheapestPrice))
	}
	return paragraphs(strings.Join(lines, "\n"), pick)
}

func narrateCharacter(n *narration) string {
	if len(n.books) == 0 {
		return paragraphs(noMatchesLine, contextLine(n.context))
	}

	top := &n.books[0]
	story := fmt.Sprintf(`The catalog has no story details for "%s" yet.`, top.Title)
	if top.Description != "" {
		story = fmt.Sprintf(`Here is what the catalog says about the story of "%s" by %s: %s`,
			top.Title, authorText(top), text.TruncateWords(top.Description, storyWords))
	}

	parts := []string{story, contextLine(n.context)}
	if len(n.books) > 1 {
		titles := make([]string, 0, len(n.books)-1)
		for _, b := range n.books[1:] {
			titles = append(titles, `"`+b.Title+`"`)
		}
		parts = append(parts, "Other related books: "+strings.Join(titles, ", ")+".")
	}
	parts = append(parts, "Character details come from the book descriptions in the catalog.")
	return paragraphs(parts...)
}

func narratePublisher(n *narration) string {
	if len(n.books) == 0 {
		return paragraphs(noMatchesLine, refineLine)
	}

	lines := []string{fmt.Sprintf(`The catalog does not record publishers, so here are the closest matches for "%s":`, n.query)}
	for i := range n.books {
		b := &n.books[i]
		line := fmt.Sprintf("%d. %s by %s", i+1, b.Title, authorText(b))
		if b.Language != "" {
			line += fmt.Sprintf(" (%s)", b.Language)
		}
		lines = append(lines, line)
	}
	return paragraphs(strings.Join(lines, "\n"), contextLine(n.context))
}

// openerIndex buckets the temperature into one of the friendly openers.
func openerIndex(temperature float64) int {
	t := min(max(temperature, 0), 0.99)
	return min(len(friendlyOpeners)-1, int(t*float64(len(friendlyOpeners))))
}

func bookLine(pos int, b *domcat.Book) string {
	price := "price not listed"
	if b.Price.Selling != nil && *b.Price.Selling != 0 {
		price = "Rs. " + formatPrice(*b.Price.Selling)
	}
	return fmt.Sprintf("%d. %s by %s (%s) - %s Current price: %s.",
		pos, b.Title, authorText(b), categoryText(b),
		text.TruncateWords(b.Description, descriptionWords), price)
}

func contextLine(c *domain.Extract) string {
	if c == nil || c.Text == "" {
		return noContextLine
	}
	return fmt.Sprintf("Quick context: %s - %s", c.Title, c.Text)
}

func authorText(b *domcat.Book) string {
	if len(b.Authors) == 0 {
		return "Unknown author"
	}
	return strings.Join(b.Authors, ", ")
}

func categoryText(b *domcat.Book) string {
	if len(b.Categories) == 0 {
		return "General"
	}
	return strings.Join(b.Categories, ", ")
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// paragraphs joins the non-empty parts with blank lines.
func paragraphs(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
