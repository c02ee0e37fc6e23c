package chi

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	domintent "github.com/JIG555ERA/llm-api/internal/domain/intent"
	"github.com/JIG555ERA/llm-api/internal/usecase/compose"
	"github.com/JIG555ERA/llm-api/internal/usecase/constraint"
	"github.com/JIG555ERA/llm-api/internal/usecase/resolve"
)

// DefaultSessionID is used when a generate request carries no session_id.
const DefaultSessionID = "default"

const (
	msgBodyObject       = "request body must be a JSON object."
	msgSessionID        = "session_id must be a string."
	msgAuthorString     = "author must be a string."
	msgIncludeBoolean   = "%s must be a boolean."
	msgNotFound         = "Not Found"
	msgMethodNotAllowed = "Method Not Allowed"
)

type generateRequest struct {
	Prompt           json.RawMessage `json:"prompt"`
	MaxTokens        json.RawMessage `json:"max_tokens"`
	Temperature      json.RawMessage `json:"temperature"`
	SessionID        json.RawMessage `json:"session_id"`
	Limit            json.RawMessage `json:"limit"`
	IncludeQuotes    json.RawMessage `json:"include_quotes"`
	IncludeTakeaways json.RawMessage `json:"include_takeaways"`
	IncludeSimilar   json.RawMessage `json:"include_similar"`
}

type searchRequest struct {
	Query json.RawMessage `json:"query"`
	Limit json.RawMessage `json:"limit"`
}

type summaryRequest struct {
	Title     json.RawMessage `json:"title"`
	Author    json.RawMessage `json:"author"`
	MaxTokens json.RawMessage `json:"max_tokens"`
}

type rootResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
}

type generateResponse struct {
	RequestTimestamp string                  `json:"request_timestamp"`
	Result           string                  `json:"result"`
	TokenUsage       int                     `json:"token_usage"`
	MatchedBooks     []compose.Item          `json:"matched_books"`
	MatchedAuthors   []resolve.MatchedAuthor `json:"matched_authors,omitempty"`
	Display          *compose.Display        `json:"display,omitempty"`
}

type searchResponse struct {
	RequestTimestamp string          `json:"request_timestamp"`
	Query            string          `json:"query"`
	Results          []compose.Item  `json:"results"`
	Intent           intentView      `json:"intent"`
	Constraints      constraintsView `json:"constraints"`
}

type intentView struct {
	Mode       domintent.Mode `json:"mode"`
	Confidence float64        `json:"confidence"`
	Path       domintent.Path `json:"path"`
	Scores     []scoreView    `json:"scores,omitempty"`
}

type scoreView struct {
	Mode  domintent.Mode `json:"mode"`
	Score float64        `json:"score"`
}

type constraintsView struct {
	MaxPrice     *float64 `json:"max_price,omitempty"`
	MaxInclusive bool     `json:"max_inclusive,omitempty"`
	MinPrice     *float64 `json:"min_price,omitempty"`
	Categories   []string `json:"categories,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	Authors      []string `json:"authors,omitempty"`
}

type summaryResponse struct {
	RequestTimestamp string   `json:"request_timestamp"`
	Title            string   `json:"title"`
	Authors          []string `json:"authors"`
	Categories       []string `json:"categories"`
	Source           string   `json:"source"`
	Summary          string   `json:"summary"`
	TokenUsage       int      `json:"token_usage"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type errorResponse struct {
	Detail           any    `json:"detail"`
	RequestTimestamp string `json:"request_timestamp"`
}

func toIntentView(d domintent.Decision) intentView {
	v := intentView{Mode: d.Mode, Confidence: d.Confidence, Path: d.Path}
	for _, s := range d.Scores {
		v.Scores = append(v.Scores, scoreView{Mode: s.Mode, Score: s.Score})
	}
	return v
}

func toConstraintsView(c *constraint.Constraints) constraintsView {
	return constraintsView{
		MaxPrice:     c.MaxPrice,
		MaxInclusive: c.MaxInclusive,
		MinPrice:     c.MinPrice,
		Categories:   c.Categories,
		Genres:       c.GenreHints,
		Authors:      c.Authors,
	}
}

func nonNilItems(items []compose.Item) []compose.Item {
	if items == nil {
		return []compose.Item{}
	}
	return items
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// absent reports a missing or null field.
func absent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// requiredString accepts a JSON string with at least one non-space character.
func requiredString(raw json.RawMessage) (string, bool) {
	s, ok := optionalString(raw)
	if !ok || absent(raw) || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// optionalString accepts a missing field, null or a JSON string.
func optionalString(raw json.RawMessage) (string, bool) {
	if absent(raw) {
		return "", true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// optionalInt accepts a missing field, null or an integral JSON number.
func optionalInt(raw json.RawMessage) (*int, bool) {
	f, ok := optionalNumber(raw)
	if !ok {
		return nil, false
	}
	if f == nil {
		return nil, true
	}
	if *f != math.Trunc(*f) || math.Abs(*f) > math.MaxInt32 {
		return nil, false
	}
	n := int(*f)
	return &n, true
}

// optionalNumber accepts a missing field, null or a JSON number.
func optionalNumber(raw json.RawMessage) (*float64, bool) {
	if absent(raw) {
		return nil, true
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, false
	}
	return &f, true
}

// optionalBool accepts a missing field, null or a JSON boolean.
func optionalBool(raw json.RawMessage) (bool, bool) {
	if absent(raw) {
		return false, true
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}
