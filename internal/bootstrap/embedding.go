// Package bootstrap assembles the embedding chain and the catalog from config.
// It is shared by the API server and the seed tool.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/config"
	"github.com/kailas-cloud/shopsearch/internal/db"
	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/embedding/hashing"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
	"github.com/kailas-cloud/shopsearch/internal/repository/embcache"
	openaiEmb "github.com/kailas-cloud/shopsearch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/shopsearch/internal/usecase/embedding"
)

// ModelName is the name the embedding chain reports in metrics and cache keys.
func ModelName(cfg config.EmbeddingConfig) string {
	if cfg.Model != "" {
		return cfg.Model
	}
	if cfg.Provider == config.ProviderHashing {
		dim := cfg.Dimensions
		if dim <= 0 {
			dim = hashing.DefaultDimensions
		}
		return fmt.Sprintf("hashing-%d", dim)
	}
	return cfg.Provider
}

// EmbeddingLoader returns the loader for the model decorator chain:
// model -> cached -> instrumented -> instruction. cache may be nil.
func EmbeddingLoader(
	cfg config.EmbeddingConfig,
	instruction string,
	cache db.KVStore,
	logger *zap.Logger,
) embeddinguc.Loader {
	model := ModelName(cfg)
	return func(ctx context.Context) (domain.Embedder, error) {
		var base domain.Embedder
		switch cfg.Provider {
		case config.ProviderOpenAI:
			m, err := openaiEmb.Loader(&openaiEmb.Config{
				APIKey:     cfg.APIKey,
				BaseURL:    cfg.BaseURL,
				Model:      cfg.Model,
				Dimensions: cfg.Dimensions,
				User:       cfg.User,
				Provider:   cfg.Provider,
				Logger:     logger,
			})(ctx)
			if err != nil {
				return nil, err
			}
			base = m
		case config.ProviderHashing:
			base = hashing.New(cfg.Dimensions)
		default:
			return nil, fmt.Errorf("unknown embedding provider %q: %w", cfg.Provider, domain.ErrEmbeddingProviderError)
		}

		embedder := base
		if cache != nil {
			embedder = embcache.New(embedder, cache, model,
				time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.EmbeddingCacheTotal, logger)
		}

		embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, model, logger)

		// outermost: the cache key includes the instruction
		if instruction != "" {
			embedder = domain.NewInstructionEmbedder(embedder, instruction)
		}
		return embedder, nil
	}
}

// NewProvider builds a lazily loading provider around the embedding chain.
func NewProvider(cfg config.EmbeddingConfig, instruction string, cache db.KVStore, logger *zap.Logger) *embeddinguc.Provider {
	return embeddinguc.NewProvider(
		EmbeddingLoader(cfg, instruction, cache, logger),
		embeddinguc.ProviderConfig{
			Dimensions:  cfg.Dimensions,
			LoadTimeout: time.Duration(cfg.LoadTimeoutSec) * time.Second,
			RetryAfter:  time.Duration(cfg.RetryAfterSec) * time.Second,
		},
		logger,
	)
}

// InitProvider loads the model eagerly. A load failure is logged and tolerated:
// search falls back to text matching and the provider retries later. A model
// whose dimension differs from the configured one is a configuration error
// and is returned.
func InitProvider(ctx context.Context, p *embeddinguc.Provider, cfg config.EmbeddingConfig, logger *zap.Logger) error {
	err := p.Init(ctx)
	switch {
	case err == nil:
		logger.Info("Embedding model loaded",
			zap.String("provider", cfg.Provider),
			zap.String("model", ModelName(cfg)),
		)
		return nil
	case errors.Is(err, domain.ErrDimensionMismatch):
		return fmt.Errorf("embedding model %s: %w", ModelName(cfg), err)
	default:
		logger.Warn("Embedding model not ready, starting in text fallback mode", zap.Error(err))
		return nil
	}
}
