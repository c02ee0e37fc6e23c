package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Cache drivers.
const (
	CacheDriverBadger = "badger"
	CacheDriverRedis  = "redis"
	CacheDriverNone   = "none"
)

// DefaultModelID is reported by GET / when generation.model_id is unset.
const DefaultModelID = "database-grounded-generator-v1"

// Config holds the llm-api configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Discovery  DiscoveryConfig  `yaml:"discovery"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Cache      CacheConfig      `yaml:"cache"`
	Ranking    RankingConfig    `yaml:"ranking"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CatalogConfig holds the catalog source settings.
type CatalogConfig struct {
	BooksURL   string `yaml:"books_url"`
	AuthorsURL string `yaml:"authors_url"`
	TTLSec     int    `yaml:"ttl_sec"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

// DiscoveryConfig holds the remote hint sources.
type DiscoveryConfig struct {
	GoogleBooks GoogleBooksConfig `yaml:"google_books"`
	OpenLibrary OpenLibraryConfig `yaml:"open_library"`
}

// GoogleBooksConfig holds Google Books settings.
type GoogleBooksConfig struct {
	Disabled   bool    `yaml:"disabled"`
	BaseURL    string  `yaml:"base_url"`
	APIKey     string  `yaml:"api_key"`
	MaxResults int     `yaml:"max_results"`
	TimeoutMs  int     `yaml:"timeout_ms"`
	RPS        float64 `yaml:"rps"` // 0 = unlimited
}

// OpenLibraryConfig holds Open Library settings.
type OpenLibraryConfig struct {
	Disabled  bool    `yaml:"disabled"`
	BaseURL   string  `yaml:"base_url"`
	Limit     int     `yaml:"limit"`
	TimeoutMs int     `yaml:"timeout_ms"`
	RPS       float64 `yaml:"rps"` // 0 = unlimited
}

// EnrichmentConfig holds the encyclopedia context source.
type EnrichmentConfig struct {
	Disabled  bool    `yaml:"disabled"`
	BaseURL   string  `yaml:"base_url"`
	TimeoutMs int     `yaml:"timeout_ms"`
	RPS       float64 `yaml:"rps"` // 0 = unlimited
}

// EmbeddingConfig holds the embedding provider. An empty APIKey disables embeddings.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"`
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	PoolSize    int    `yaml:"pool_size"`
	Instruction string `yaml:"instruction"` // prepended to every embedded text (e5-style models)
}

// GenerationConfig holds the long-form generator. An empty APIKey disables generation.
type GenerationConfig struct {
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	ModelID   string `yaml:"model_id"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// CacheConfig holds the embedding cache store.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // badger, redis, none (default: badger)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	Dir              string   `yaml:"dir"` // badger only; empty keeps the cache in memory
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// RankingConfig holds ranking settings.
type RankingConfig struct {
	RerankWindow int `yaml:"rerank_window"`
	DefaultLimit int `yaml:"default_limit"`
	SimilarCount int `yaml:"similar_count"`
}

// Timeout returns the per-request catalog deadline.
func (c CatalogConfig) Timeout() time.Duration { return millis(c.TimeoutMs) }

// TTL returns how long a catalog snapshot stays fresh.
func (c CatalogConfig) TTL() time.Duration { return time.Duration(c.TTLSec) * time.Second }

// Timeout returns the per-request deadline.
func (c GoogleBooksConfig) Timeout() time.Duration { return millis(c.TimeoutMs) }

// Timeout returns the per-request deadline.
func (c OpenLibraryConfig) Timeout() time.Duration { return millis(c.TimeoutMs) }

// Timeout returns the per-request deadline.
func (c EnrichmentConfig) Timeout() time.Duration { return millis(c.TimeoutMs) }

// Timeout returns the per-request deadline.
func (c EmbeddingConfig) Timeout() time.Duration { return millis(c.TimeoutMs) }

// Timeout returns the generation deadline.
func (c GenerationConfig) Timeout() time.Duration { return millis(c.TimeoutMs) }

// TTL returns the cache entry lifetime; zero keeps entries forever.
func (c CacheConfig) TTL() time.Duration { return time.Duration(c.TTLSec) * time.Second }

func millis(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML config data, expanding env variables and applying defaults.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadDotEnv loads variables from the given .env files (default ".env") into the
// process environment. Missing files are skipped; set variables are never overridden.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	if c.Catalog.BooksURL == "" {
		c.Catalog.BooksURL = "https://admin.ylw.co.in/api/v1/books/all"
	}
	if c.Catalog.AuthorsURL == "" {
		c.Catalog.AuthorsURL = "https://admin.ylw.co.in/api/v1/authors/all"
	}
	if c.Catalog.TTLSec <= 0 {
		c.Catalog.TTLSec = 60
	}
	if c.Catalog.TimeoutMs <= 0 {
		c.Catalog.TimeoutMs = 10000
	}

	gb := &c.Discovery.GoogleBooks
	if gb.BaseURL == "" {
		gb.BaseURL = "https://www.googleapis.com/books/v1"
	}
	if gb.MaxResults <= 0 {
		gb.MaxResults = 5
	}
	if gb.TimeoutMs <= 0 {
		gb.TimeoutMs = 5000
	}
	ol := &c.Discovery.OpenLibrary
	if ol.BaseURL == "" {
		ol.BaseURL = "https://openlibrary.org"
	}
	if ol.Limit <= 0 {
		ol.Limit = 5
	}
	if ol.TimeoutMs <= 0 {
		ol.TimeoutMs = 5000
	}

	if c.Enrichment.BaseURL == "" {
		c.Enrichment.BaseURL = "https://en.wikipedia.org/w/api.php"
	}
	if c.Enrichment.TimeoutMs <= 0 {
		c.Enrichment.TimeoutMs = 5000
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.TimeoutMs <= 0 {
		c.Embedding.TimeoutMs = 5000
	}
	if c.Embedding.PoolSize <= 0 {
		c.Embedding.PoolSize = 8
	}

	if c.Generation.Model == "" {
		c.Generation.Model = "gpt-4o-mini"
	}
	if c.Generation.ModelID == "" {
		c.Generation.ModelID = DefaultModelID
	}
	if c.Generation.TimeoutMs <= 0 {
		c.Generation.TimeoutMs = 5000
	}

	if c.Cache.Driver == "" {
		c.Cache.Driver = CacheDriverBadger
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}

	if c.Ranking.RerankWindow <= 0 {
		c.Ranking.RerankWindow = 15
	}
	if c.Ranking.DefaultLimit <= 0 {
		c.Ranking.DefaultLimit = 5
	}
	if c.Ranking.SimilarCount <= 0 {
		c.Ranking.SimilarCount = 3
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Catalog.BooksURL == "" {
		return fmt.Errorf("catalog.books_url is required")
	}
	switch c.Cache.Driver {
	case CacheDriverBadger, CacheDriverNone:
		// ok
	case CacheDriverRedis:
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf(
			"cache.driver must be %q, %q or %q, got %q",
			CacheDriverBadger, CacheDriverRedis, CacheDriverNone, c.Cache.Driver,
		)
	}
	if c.Ranking.DefaultLimit > 50 {
		return fmt.Errorf("ranking.default_limit must be between 1 and 50, got %d", c.Ranking.DefaultLimit)
	}
	if c.Cache.TTLSec < 0 {
		return fmt.Errorf("cache.ttl_sec must not be negative, got %d", c.Cache.TTLSec)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
