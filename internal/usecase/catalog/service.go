package catalog

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	domcat "github.com/JIG555ERA/llm-api/internal/domain/catalog"
	"github.com/JIG555ERA/llm-api/internal/metrics"
)

// DefaultTTL is how long a snapshot is served before the next refresh.
const DefaultTTL = 60 * time.Second

// Service keeps an in-process snapshot of the catalog and refreshes it on expiry.
type Service struct {
	source Source
	ttl    time.Duration
	logger *zap.Logger

	snap  atomic.Pointer[domcat.Snapshot]
	group singleflight.Group
	now   func() time.Time
}

// New creates a catalog cache. A non-positive ttl falls back to DefaultTTL.
func New(source Source, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{source: source, ttl: ttl, logger: logger, now: time.Now}
}

// Get returns the current books and authors, refreshing the snapshot when it is
// empty or older than the TTL. A failed refresh leaves the previous snapshot in
// place and is returned to the caller.
func (s *Service) Get(ctx context.Context) ([]domcat.Book, []domcat.Author, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	return snap.Books, snap.Authors, nil
}

// Snapshot is Get returning the whole snapshot, including its fetch time.
func (s *Service) Snapshot(ctx context.Context) (*domcat.Snapshot, error) {
	if cur := s.snap.Load(); cur.Fresh(s.now(), s.ttl) {
		return cur, nil
	}

	ch := s.group.DoChan("refresh", func() (any, error) {
		// Another caller may have refreshed while we were waiting on the group.
		if cur := s.snap.Load(); cur.Fresh(s.now(), s.ttl) {
			return cur, nil
		}
		// Detached from the first caller's cancellation so followers are not failed by it.
		return s.refresh(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("catalog refresh: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domcat.Snapshot), nil
	}
}

func (s *Service) refresh(ctx context.Context) (*domcat.Snapshot, error) {
	var (
		books   []domcat.Book
		authors []domcat.Author
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		books, err = s.source.FetchBooks(gctx)
		if err != nil {
			return fmt.Errorf("fetch books: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		authors, err = s.source.FetchAuthors(gctx)
		if err != nil {
			return fmt.Errorf("fetch authors: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		metrics.CatalogRefreshTotal.WithLabelValues("error").Inc()
		s.logger.Warn("Catalog refresh failed", zap.Error(err))
		return nil, fmt.Errorf("catalog refresh: %w", err)
	}

	snap := &domcat.Snapshot{Books: books, Authors: authors, FetchedAt: s.now()}
	s.snap.Store(snap)

	metrics.CatalogRefreshTotal.WithLabelValues("ok").Inc()
	metrics.CatalogItems.WithLabelValues("books").Set(float64(len(books)))
	metrics.CatalogItems.WithLabelValues("authors").Set(float64(len(authors)))
	s.logger.Debug("Catalog refreshed",
		zap.Int("books", len(books)),
		zap.Int("authors", len(authors)),
	)
	return snap, nil
}

// HealthCheck verifies the catalog can be served, refreshing it if needed.
func (s *Service) HealthCheck(ctx context.Context) error {
	if _, err := s.Snapshot(ctx); err != nil {
		return err
	}
	return nil
}
