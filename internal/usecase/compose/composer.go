// Package compose turns ranked books into an intent-shaped answer.
package compose

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JIG555ERA/llm-api/internal/domain"
	domcat "github.com/JIG555ERA/llm-api/internal/domain/catalog"
	domintent "github.com/JIG555ERA/llm-api/internal/domain/intent"
	"github.com/JIG555ERA/llm-api/internal/domain/text"
)

// MinWords is the floor for the answer length cap.
const MinWords = 40

const systemPrompt = "You are a helpful book assistant. Answer only from the catalog data provided. " +
	"Keep the answer friendly and concise and do not include links."

// Options tune a single composition.
type Options struct {
	MaxTokens        int
	Temperature      float64
	IncludeQuotes    bool
	IncludeTakeaways bool
	IncludeSimilar   bool
}

// Input is everything needed to compose one answer.
type Input struct {
	Query    string
	Books    []domcat.Book
	Similar  []domcat.Book
	Authors  []domcat.Author
	Decision domintent.Decision
	Context  *domain.Extract
	Options  Options
}

// Output is the composed answer.
type Output struct {
	Text      string
	Items     []Item
	Display   Display
	Generated bool
}

// Composer dispatches to a per-mode narrator and optionally overlays a generator.
type Composer struct {
	gen       Generator
	timeout   time.Duration
	narrators map[domintent.Mode]narrator
	logger    *zap.Logger
}

// New creates a composer. gen may be nil; timeout <= 0 means no extra deadline.
func New(gen Generator, timeout time.Duration, logger *zap.Logger) *Composer {
	return &Composer{
		gen:       gen,
		timeout:   timeout,
		narrators: narrators(),
		logger:    logger,
	}
}

// Compose never fails: the template answer is always complete on its own.
func (c *Composer) Compose(ctx context.Context, in Input) Output {
	mode := in.Decision.Mode
	narrate, ok := c.narrators[mode]
	if !ok {
		mode = domintent.General
		narrate = c.narrators[mode]
	}

	n := &narration{
		query:       text.StripLinks(in.Query),
		books:       in.Books,
		authors:     in.Authors,
		context:     in.Context,
		temperature: in.Options.Temperature,
	}
	body := narrate(n)

	generated := false
	if out := c.generate(ctx, generationPrompt(n, body), in.Options); out != "" {
		body, generated = out, true
	}

	extra, enabled := sections(in.Options, in.Books, in.Similar)
	body = paragraphs(body, extra)

	return Output{
		Text:  finish(body, in.Options.MaxTokens),
		Items: ShapeItems(mode, in.Books),
		Display: Display{
			Mode:       mode,
			Confidence: in.Decision.Confidence,
			Layout:     layoutFor(mode),
			Sections:   enabled,
		},
		Generated: generated,
	}
}

// SummaryInput describes a single book to summarize.
type SummaryInput struct {
	Title       string
	Authors     []string
	Categories  []string
	Description string
	Context     *domain.Extract
	Options     Options
}

// Summarize writes a short summary of one book, template first, generator overlay second.
func (c *Composer) Summarize(ctx context.Context, in SummaryInput) string {
	b := domcat.Book{Title: in.Title, Authors: in.Authors, Categories: in.Categories, Description: in.Description}

	about := fmt.Sprintf(`The catalog sources list no description for "%s" yet.`, b.Title)
	if b.Description != "" {
		about = text.TruncateWords(b.Description, storyWords*2)
	}
	body := paragraphs(
		fmt.Sprintf(`"%s" by %s (%s).`, b.Title, authorText(&b), categoryText(&b)),
		about,
		contextLine(in.Context),
	)

	prompt := fmt.Sprintf("Summarize the book %q in a few sentences.\n\nSource notes:\n%s", b.Title, body)
	if out := c.generate(ctx, prompt, in.Options); out != "" {
		body = out
	}
	return finish(body, in.Options.MaxTokens)
}

func (c *Composer) generate(ctx context.Context, prompt string, opts Options) string {
	if c.gen == nil {
		return ""
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	out, err := c.gen.Generate(ctx, domain.GenerationRequest{
		System:      systemPrompt,
		Prompt:      prompt,
		MaxTokens:   max(MinWords, opts.MaxTokens),
		Temperature: float32(opts.Temperature),
	})
	if err != nil {
		c.logger.Warn("Generation failed, using template answer", zap.Error(err))
		return ""
	}
	out = strings.TrimSpace(out)
	if out == "" {
		c.logger.Warn("Generation returned empty text, using template answer")
	}
	return out
}

func generationPrompt(n *narration, draft string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Question: %s\n\nCatalog matches:\n", n.query)
	for i := range n.books {
		sb.WriteString(bookLine(i+1, &n.books[i]))
		sb.WriteByte('\n')
	}
	if n.context != nil {
		fmt.Fprintf(&sb, "\n%s\n", contextLine(n.context))
	}
	fmt.Fprintf(&sb, "\nDraft answer:\n%s", draft)
	return sb.String()
}

// finish truncates to max(MinWords, maxTokens) words and strips links.
func finish(body string, maxTokens int) string {
	return text.StripLinks(text.TruncateWords(body, max(MinWords, maxTokens)))
}
