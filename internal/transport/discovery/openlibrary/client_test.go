package openlibrary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JIG555ERA/llm-api/internal/domain"
	"github.com/JIG555ERA/llm-api/internal/metrics"
	"github.com/JIG555ERA/llm-api/internal/transport/httpjson"
)

func TestMain(m *testing.M) {
	metrics.RegisterPipelineMetrics()
	os.Exit(m.Run())
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "wings of fire", r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		assert.Equal(t, fields, r.URL.Query().Get("fields"))
		_, _ = w.Write([]byte(`{"numFound":2,"docs":[
			{"title":"Wings of Fire","author_name":["A. P. J. Abdul Kalam"],
			 "subject":["Biography","Scientists","India","Space","Missiles","Education"],
			 "first_sentence":["This is the story of a boy."]},
			{"title":"Wings of Fire (Abridged)","first_sentence":"Short version."}
		]}`))
	}))
	defer server.Close()

	c := New(server.URL, 2, httpjson.WithHTTPClient(server.Client()))
	p, err := c.Search(context.Background(), "wings of fire")
	require.NoError(t, err)
	require.Len(t, p.Hits, 2)

	h := p.Hits[0]
	assert.Equal(t, "Wings of Fire", h.Title)
	assert.Equal(t, []string{"A. P. J. Abdul Kalam"}, h.Authors)
	assert.Len(t, h.Categories, maxSubjects)
	assert.Equal(t, "This is the story of a boy.", h.Description)
	assert.Equal(t, "Short version.", p.Hits[1].Description)
}

func TestSearch_ServerErrorIsUpstreamFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(server.URL, 0, httpjson.WithHTTPClient(server.Client()), httpjson.WithRetryAttempts(1))
	_, err := c.Search(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstreamFetch))

	var upErr *domain.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, Source, upErr.Source)
	assert.Equal(t, http.StatusInternalServerError, upErr.Status)
}
