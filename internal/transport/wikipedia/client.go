// Package wikipedia looks up a short introductory extract for a query subject.
package wikipedia

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/JIG555ERA/llm-api/internal/domain"
	"github.com/JIG555ERA/llm-api/internal/domain/text"
	"github.com/JIG555ERA/llm-api/internal/transport/httpjson"
)

const (
	// Source name used in errors and metrics.
	Source = "wikipedia"

	DefaultBaseURL = "https://en.wikipedia.org/w/api.php"
	ExtractWords   = 70
)

// Client is a two-step MediaWiki lookup: search for the best page, then fetch its intro.
type Client struct {
	http    *httpjson.Client
	baseURL string
}

// New creates a Wikipedia client.
func New(baseURL string, opts ...httpjson.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: httpjson.New(Source, opts...), baseURL: baseURL}
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type extractResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string `json:"title"`
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

// Lookup returns the intro extract of the best matching page, or nil when
// nothing was found. Citations and links are stripped and the text is capped
// at ExtractWords words.
func (c *Client) Lookup(ctx context.Context, q string) (*domain.Extract, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}

	title, err := c.searchTitle(ctx, q)
	if err != nil || title == "" {
		return nil, err
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts")
	params.Set("explaintext", "1")
	params.Set("exintro", "1")
	params.Set("titles", title)
	params.Set("format", "json")
	params.Set("origin", "*")

	var resp extractResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("fetch extract: %w", err)
	}

	// A single title yields a single page.
	for _, page := range resp.Query.Pages {
		extract := text.StripCitations(page.Extract)
		if extract == "" {
			return nil, nil
		}
		return &domain.Extract{
			Title: text.StripLinks(title),
			Text:  text.TruncateWords(extract, ExtractWords),
		}, nil
	}
	return nil, nil
}

func (c *Client) searchTitle(ctx context.Context, q string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", q)
	params.Set("srlimit", "1")
	params.Set("format", "json")
	params.Set("utf8", "1")
	params.Set("origin", "*")

	var resp searchResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"?"+params.Encode(), &resp); err != nil {
		return "", fmt.Errorf("search pages: %w", err)
	}
	if len(resp.Query.Search) == 0 {
		return "", nil
	}
	return resp.Query.Search[0].Title, nil
}
