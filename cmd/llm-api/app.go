package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/JIG555ERA/llm-api/internal/config"
	"github.com/JIG555ERA/llm-api/internal/db"
	dbBadger "github.com/JIG555ERA/llm-api/internal/db/badger"
	dbRedis "github.com/JIG555ERA/llm-api/internal/db/redis"
	"github.com/JIG555ERA/llm-api/internal/domain"
	"github.com/JIG555ERA/llm-api/internal/metrics"
	"github.com/JIG555ERA/llm-api/internal/ratelimit"
	"github.com/JIG555ERA/llm-api/internal/repository/embcache"
	"github.com/JIG555ERA/llm-api/internal/transport/catalogapi"
	"github.com/JIG555ERA/llm-api/internal/transport/discovery/googlebooks"
	"github.com/JIG555ERA/llm-api/internal/transport/discovery/openlibrary"
	"github.com/JIG555ERA/llm-api/internal/transport/httpjson"
	openaiTransport "github.com/JIG555ERA/llm-api/internal/transport/openai"
	"github.com/JIG555ERA/llm-api/internal/transport/wikipedia"
	"github.com/JIG555ERA/llm-api/internal/usecase/catalog"
	"github.com/JIG555ERA/llm-api/internal/usecase/compose"
	embeddinguc "github.com/JIG555ERA/llm-api/internal/usecase/embedding"
	healthuc "github.com/JIG555ERA/llm-api/internal/usecase/health"
	intentuc "github.com/JIG555ERA/llm-api/internal/usecase/intent"
	"github.com/JIG555ERA/llm-api/internal/usecase/ranking"
	"github.com/JIG555ERA/llm-api/internal/usecase/rerank"
	"github.com/JIG555ERA/llm-api/internal/usecase/resolve"
	"github.com/JIG555ERA/llm-api/internal/usecase/scoring"
	"github.com/JIG555ERA/llm-api/internal/version"
)

// app is the wired object graph shared by every command.
type app struct {
	resolver   *resolve.Service
	classifier *intentuc.Classifier
	health     *healthuc.Service
	closers    []func()
}

// Close releases pools and stores in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()

	a := &app{}

	store, err := openStore(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, err
	}
	if store != nil {
		a.closers = append(a.closers, store.Close)
	}

	hasEmbedding := cfg.Embedding.APIKey != ""
	capability := embeddinguc.NewCapability(hasEmbedding, logger)
	var base *openaiTransport.Embedder
	var embedder domain.Embedder
	if hasEmbedding {
		base = openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Timeout:    cfg.Embedding.Timeout(),
			Logger:     logger,
		})
		embedder = buildEmbedder(base, cfg.Embedding, store, cfg.Cache.TTL(), logger)
	}
	gated := embeddinguc.NewGatedEmbedder(embedder, capability)

	reranker, err := rerank.New(gated, capability, cfg.Embedding.PoolSize, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create reranker: %w", err)
	}
	a.closers = append(a.closers, reranker.Release)

	userAgent := httpjson.WithUserAgent(version.UserAgent())

	catalogSource := catalogapi.New(cfg.Catalog.BooksURL, cfg.Catalog.AuthorsURL,
		httpjson.WithTimeout(cfg.Catalog.Timeout()),
		userAgent,
	)
	catalogSvc := catalog.New(catalogSource, cfg.Catalog.TTL(), logger)

	a.classifier = intentuc.New(gated, capability)

	// Left nil without a key: answers are template-only.
	var generator compose.Generator
	if cfg.Generation.APIKey != "" {
		generator = openaiTransport.NewGenerator(&openaiTransport.Config{
			APIKey:   cfg.Generation.APIKey,
			BaseURL:  cfg.Generation.BaseURL,
			Model:    cfg.Generation.Model,
			Provider: cfg.Embedding.Provider,
			Timeout:  cfg.Generation.Timeout(),
			Logger:   logger,
		})
	}

	var enricher resolve.Enricher
	if !cfg.Enrichment.Disabled {
		enricher = wikipedia.New(cfg.Enrichment.BaseURL,
			httpjson.WithTimeout(cfg.Enrichment.Timeout()),
			httpjson.WithRateLimiter(ratelimit.New(wikipedia.Source, cfg.Enrichment.RPS)),
			userAgent,
		)
	}

	sources := hintSources(cfg.Discovery, userAgent)
	a.resolver = resolve.New(resolve.Deps{
		Catalog:    catalogSvc,
		Sources:    sources,
		Enricher:   enricher,
		Classifier: a.classifier,
		Ranker:     ranking.New(scoring.New(), reranker, cfg.Ranking.RerankWindow),
		Composer:   compose.New(generator, cfg.Generation.Timeout(), logger),
	}, resolve.Config{
		DefaultLimit: cfg.Ranking.DefaultLimit,
		SimilarCount: cfg.Ranking.SimilarCount,
	})

	var cachePinger healthuc.Pinger
	if store != nil {
		cachePinger = store
	}
	var embeddingChecker healthuc.Checker
	if base != nil {
		embeddingChecker = base
	}
	a.health = healthuc.New(catalogSvc, cachePinger, embeddingChecker, capability)

	logger.Info("Application wired",
		zap.String("cache_driver", cfg.Cache.Driver),
		zap.Bool("embedding", hasEmbedding),
		zap.Bool("generation", generator != nil),
		zap.Bool("enrichment", enricher != nil),
		zap.Int("hint_sources", len(sources)),
	)

	return a, nil
}

// buildEmbedder assembles the decorator chain below the capability gate:
// OpenAI -> Cached -> Instrumented -> Instruction.
func buildEmbedder(
	base domain.Embedder,
	cfg config.EmbeddingConfig,
	store db.Store,
	ttl time.Duration,
	logger *zap.Logger,
) domain.Embedder {
	embedder := base
	if store != nil {
		namespace := cfg.Provider + ":" + cfg.Model
		if cfg.Dimensions > 0 {
			namespace += ":" + strconv.Itoa(cfg.Dimensions)
		}
		embedder = embcache.New(base, store, namespace, ttl, metrics.EmbeddingCacheTotal, logger)
	}
	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, cfg.Model, logger)

	// Outermost, so the cache key includes the instruction.
	if cfg.Instruction != "" {
		return domain.NewInstructionEmbedder(embedder, cfg.Instruction)
	}
	return embedder
}

// hintSources builds the enabled discovery sources in priority order.
func hintSources(cfg config.DiscoveryConfig, userAgent httpjson.Option) []resolve.HintSource {
	var sources []resolve.HintSource
	if gb := cfg.GoogleBooks; !gb.Disabled {
		sources = append(sources, googlebooks.New(gb.BaseURL, gb.APIKey, gb.MaxResults,
			httpjson.WithTimeout(gb.Timeout()),
			httpjson.WithRateLimiter(ratelimit.New(googlebooks.Source, gb.RPS)),
			userAgent,
		))
	}
	if ol := cfg.OpenLibrary; !ol.Disabled {
		sources = append(sources, openlibrary.New(ol.BaseURL, ol.Limit,
			httpjson.WithTimeout(ol.Timeout()),
			httpjson.WithRateLimiter(ratelimit.New(openlibrary.Source, ol.RPS)),
			userAgent,
		))
	}
	return sources
}

// openStore opens the embedding cache store. The "none" driver returns nil.
func openStore(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) (db.Store, error) {
	switch cfg.Driver {
	case config.CacheDriverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis store: %w", err)
		}
		logger.Info("Waiting for cache store", zap.Strings("addrs", cfg.Addrs))
		if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
			store.Close()
			return nil, fmt.Errorf("cache store not ready: %w", err)
		}
		return store, nil
	case config.CacheDriverBadger:
		store, err := dbBadger.NewStore(dbBadger.Config{Dir: cfg.Dir}, logger)
		if err != nil {
			return nil, fmt.Errorf("create badger store: %w", err)
		}
		return store, nil
	default:
		return nil, nil
	}
}
