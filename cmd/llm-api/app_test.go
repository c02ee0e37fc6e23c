package main

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/JIG555ERA/llm-api/internal/config"
	"github.com/JIG555ERA/llm-api/internal/transport/discovery/googlebooks"
	"github.com/JIG555ERA/llm-api/internal/transport/discovery/openlibrary"
	"github.com/JIG555ERA/llm-api/internal/transport/httpjson"
)

func TestHintSources_PriorityOrder(t *testing.T) {
	cfg := config.Config{}
	cfg.ApplyDefaults()

	sources := hintSources(cfg.Discovery, httpjson.WithUserAgent("test"))
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].Name() != googlebooks.Source || sources[1].Name() != openlibrary.Source {
		t.Errorf("unexpected order: %s, %s", sources[0].Name(), sources[1].Name())
	}
}

func TestHintSources_Disabled(t *testing.T) {
	cfg := config.Config{}
	cfg.ApplyDefaults()
	cfg.Discovery.GoogleBooks.Disabled = true

	sources := hintSources(cfg.Discovery, httpjson.WithUserAgent("test"))
	if len(sources) != 1 || sources[0].Name() != openlibrary.Source {
		t.Errorf("expected only openlibrary, got %d sources", len(sources))
	}
}

func TestOpenStore(t *testing.T) {
	store, err := openStore(context.Background(), config.CacheConfig{Driver: config.CacheDriverNone}, zap.NewNop())
	if err != nil || store != nil {
		t.Fatalf("none driver: got store=%v err=%v", store, err)
	}

	store, err = openStore(context.Background(), config.CacheConfig{Driver: config.CacheDriverBadger}, zap.NewNop())
	if err != nil {
		t.Fatalf("badger driver: %v", err)
	}
	if store == nil {
		t.Fatal("expected in-memory badger store")
	}
	store.Close()
}

func TestNewApp_WithoutKeys(t *testing.T) {
	cfg := config.Config{Cache: config.CacheConfig{Driver: config.CacheDriverNone}}
	cfg.ApplyDefaults()

	a, err := newApp(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.Close()

	if a.resolver == nil || a.classifier == nil || a.health == nil {
		t.Fatal("expected wired services")
	}

	// No embedding key: classification runs on keywords only.
	d := a.classifier.Classify(context.Background(), "books by Morgan Housel")
	if d.Path != "keyword" {
		t.Errorf("expected keyword path, got %q", d.Path)
	}
}
