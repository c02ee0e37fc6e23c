// Package openlibrary is a discovery hint source backed by the Open Library search API.
package openlibrary

import (
	"bytes"
	"context"
	"encoding/json"
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
	Source = "openlibrary"

	DefaultBaseURL = "https://openlibrary.org"
	DefaultLimit   = 5

	maxSubjects = 5
	fields      = "title,author_name,subject,first_sentence"
)

// Client searches Open Library works.
type Client struct {
	http    *httpjson.Client
	baseURL string
	limit   int
}

// New creates an Open Library client.
func New(baseURL string, limit int, opts ...httpjson.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Client{
		http:    httpjson.New(Source, opts...),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		limit:   limit,
	}
}

// Name implements the hint source contract.
func (c *Client) Name() string { return Source }

// sentences accepts a string or a list of strings.
type sentences []string

func (s *sentences) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var one string
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		*s = sentences{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

type searchResponse struct {
	Docs []struct {
		Title         string    `json:"title"`
		AuthorName    []string  `json:"author_name"`
		Subject       []string  `json:"subject"`
		FirstSentence sentences `json:"first_sentence"`
	} `json:"docs"`
}

// Search returns the works matching q, best first.
func (c *Client) Search(ctx context.Context, q string) (hint.Partial, error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("limit", strconv.Itoa(c.limit))
	params.Set("fields", fields)

	var resp searchResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/search.json?"+params.Encode(), &resp); err != nil {
		return hint.Partial{}, fmt.Errorf("search works: %w", err)
	}

	p := hint.Partial{Source: Source, Hits: make([]hint.Hit, 0, len(resp.Docs))}
	for _, d := range resp.Docs {
		title := text.StripLinks(d.Title)
		if title == "" {
			continue
		}
		subjects := d.Subject
		if len(subjects) > maxSubjects {
			subjects = subjects[:maxSubjects]
		}
		p.Hits = append(p.Hits, hint.Hit{
			Title:       title,
			Authors:     d.AuthorName,
			Categories:  subjects,
			Description: text.StripLinks(strings.Join(d.FirstSentence, " ")),
		})
	}
	return p, nil
}
