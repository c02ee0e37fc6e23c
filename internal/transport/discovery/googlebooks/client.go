// Package googlebooks is a discovery hint source backed by the Google Books volumes API.
package googlebooks

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/JIG555ERA/llm-api/internal/domain/hint"
	"github.com/JIG555ERA/llm-api/internal/domain/text"
	"github.com/JIG555ERA/llm-api/internal/transport/httpjson"
)

const (
	// Source name used in errors, metrics and hint bundles.
	Source = "googlebooks"

	DefaultBaseURL    = "https://www.googleapis.com/books/v1"
	DefaultMaxResults = 5
)

// Client searches Google Books volumes.
type Client struct {
	http       *httpjson.Client
	baseURL    string
	apiKey     string
	maxResults int
}

// New creates a Google Books client. apiKey is optional.
func New(baseURL, apiKey string, maxResults int, opts ...httpjson.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Client{
		http:       httpjson.New(Source, opts...),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		maxResults: maxResults,
	}
}

// Name implements the hint source contract.
func (c *Client) Name() string { return Source }

type volumesResponse struct {
	Items []struct {
		VolumeInfo struct {
			Title       string   `json:"title"`
			Subtitle    string   `json:"subtitle"`
			Authors     []string `json:"authors"`
			Categories  []string `json:"categories"`
			Description string   `json:"description"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Search returns the volumes matching q, best first.
func (c *Client) Search(ctx context.Context, q string) (hint.Partial, error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("maxResults", strconv.Itoa(c.maxResults))
	params.Set("printType", "books")
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	var resp volumesResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/volumes?"+params.Encode(), &resp); err != nil {
		return hint.Partial{}, fmt.Errorf("search volumes: %w", err)
	}

	p := hint.Partial{Source: Source, Hits: make([]hint.Hit, 0, len(resp.Items))}
	for _, it := range resp.Items {
		v := it.VolumeInfo
		title := text.StripLinks(v.Title)
		if title == "" {
			continue
		}
		p.Hits = append(p.Hits, hint.Hit{
			Title:       title,
			Authors:     v.Authors,
			Categories:  v.Categories,
			Description: text.StripLinks(v.Description),
		})
	}
	return p, nil
}
