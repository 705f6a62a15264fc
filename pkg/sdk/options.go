package shopsearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	products []Product
	addrs    []string
	password string

	embedder   Embedder
	dimensions int

	categoriesPath     string
	relevanceThreshold float64
	minSemanticScore   *float64
	defaultLimit       int
	cacheTTL           time.Duration
	cacheEntries       int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithProducts serves search from an in-memory product list.
func WithProducts(products []Product) Option {
	return optionFunc(func(c *clientConfig) {
		c.products = products
	})
}

// WithRedis reads products from a redis catalog instead of memory.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithEmbedder sets the text embedding provider. Product and query vectors
// must come from the same model.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithDimensions sets the expected vector length. Embeddings of another
// length fail the startup check. Zero disables the check.
func WithDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dimensions = dim
	})
}

// WithCategories loads the category dictionary from a YAML file instead of
// the built-in one.
func WithCategories(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.categoriesPath = path
	})
}

// WithRelevance sets the low relevance threshold and the minimum semantic
// score a candidate needs to be returned.
func WithRelevance(threshold, minScore float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.relevanceThreshold = threshold
		c.minSemanticScore = &minScore
	})
}

// WithDefaultLimit sets the result count used when a search passes no Limit.
func WithDefaultLimit(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultLimit = n
	})
}

// WithResultCache sizes the search result cache. Defaults: 5 minutes, 1000 entries.
func WithResultCache(ttl time.Duration, maxEntries int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
		c.cacheEntries = maxEntries
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
