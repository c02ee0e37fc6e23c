package catalog

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/JIG555ERA/llm-api/internal/domain"
	domcat "github.com/JIG555ERA/llm-api/internal/domain/catalog"
	"github.com/JIG555ERA/llm-api/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterPipelineMetrics()
	os.Exit(m.Run())
}

// --- Mocks ---

type mockSource struct {
	mu         sync.Mutex
	books      []domcat.Book
	authors    []domcat.Author
	booksErr   error
	authorsErr error
	calls      atomic.Int32
	delay      time.Duration
}

func (m *mockSource) FetchBooks(_ context.Context) ([]domcat.Book, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.books, m.booksErr
}

func (m *mockSource) FetchAuthors(_ context.Context) ([]domcat.Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authors, m.authorsErr
}

func (m *mockSource) set(books []domcat.Book, booksErr error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books = books
	m.booksErr = booksErr
}

func newSource() *mockSource {
	return &mockSource{
		books:   []domcat.Book{{ID: "b1", Title: "Rich Dad Poor Dad"}},
		authors: []domcat.Author{{ID: "a1", Name: "Robert Kiyosaki"}},
	}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newService(src Source, clock *fakeClock) *Service {
	s := New(src, time.Minute, zap.NewNop())
	s.now = clock.now
	return s
}

// --- Tests ---

func TestGet_FetchesOnFirstCall(t *testing.T) {
	src := newSource()
	s := newService(src, &fakeClock{t: time.Now()})

	books, authors, err := s.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(books) != 1 || len(authors) != 1 {
		t.Errorf("unexpected snapshot: %d books, %d authors", len(books), len(authors))
	}
	if src.calls.Load() != 1 {
		t.Errorf("expected 1 fetch, got %d", src.calls.Load())
	}
}

func TestGet_ServesFreshSnapshotWithoutRefetch(t *testing.T) {
	src := newSource()
	clock := &fakeClock{t: time.Now()}
	s := newService(src, clock)

	for range 3 {
		if _, _, err := s.Get(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		clock.t = clock.t.Add(10 * time.Second)
	}
	if src.calls.Load() != 1 {
		t.Errorf("expected 1 fetch within TTL, got %d", src.calls.Load())
	}
}

func TestGet_RefreshesAfterTTL(t *testing.T) {
	src := newSource()
	clock := &fakeClock{t: time.Now()}
	s := newService(src, clock)

	if _, _, err := s.Get(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	src.set([]domcat.Book{{ID: "b2"}, {ID: "b3"}}, nil)
	clock.t = clock.t.Add(61 * time.Second)

	books, _, err := s.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(books) != 2 {
		t.Errorf("expected refreshed books, got %v", books)
	}
	if src.calls.Load() != 2 {
		t.Errorf("expected 2 fetches, got %d", src.calls.Load())
	}
}

func TestGet_EmptyCollectionIsRefetched(t *testing.T) {
	src := newSource()
	src.authors = nil
	s := newService(src, &fakeClock{t: time.Now()})

	for range 2 {
		if _, _, err := s.Get(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if src.calls.Load() != 2 {
		t.Errorf("snapshot without authors must be refetched, got %d fetches", src.calls.Load())
	}
}

func TestGet_FailureKeepsPreviousSnapshot(t *testing.T) {
	src := newSource()
	clock := &fakeClock{t: time.Now()}
	s := newService(src, clock)

	if _, _, err := s.Get(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prev := s.snap.Load()

	src.set(nil, domain.NewUpstreamStatusError("books", 503))
	clock.t = clock.t.Add(2 * time.Minute)

	_, _, err := s.Get(context.Background())
	if !errors.Is(err, domain.ErrUpstreamFetch) {
		t.Fatalf("expected ErrUpstreamFetch, got %v", err)
	}
	var upErr *domain.UpstreamError
	if !errors.As(err, &upErr) || upErr.Status != 503 {
		t.Errorf("expected upstream status 503, got %v", err)
	}
	if s.snap.Load() != prev {
		t.Error("failed refresh must not replace the snapshot")
	}
}

func TestGet_ConcurrentCallersShareRefresh(t *testing.T) {
	src := newSource()
	src.delay = 50 * time.Millisecond
	s := newService(src, &fakeClock{t: time.Now()})

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := s.Get(context.Background()); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := src.calls.Load(); got != 1 {
		t.Errorf("expected a single shared refresh, got %d", got)
	}
}

func TestGet_CanceledContext(t *testing.T) {
	src := newSource()
	src.delay = 100 * time.Millisecond
	s := newService(src, &fakeClock{t: time.Now()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.Get(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNew_DefaultTTL(t *testing.T) {
	s := New(newSource(), 0, zap.NewNop())
	if s.ttl != DefaultTTL {
		t.Errorf("expected default TTL, got %v", s.ttl)
	}
}
