package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/config"
	"github.com/kailas-cloud/shopsearch/internal/db"
	"github.com/kailas-cloud/shopsearch/internal/db/postgres"
	"github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/repository/catalog"
)

// Catalog is a product source the search service can ping for health.
type Catalog interface {
	ListCandidates(ctx context.Context, category string) ([]product.Product, error)
	Ping(ctx context.Context) error
}

// VectorSource embeds product text for catalogs that lack embeddings.
type VectorSource interface {
	Vector(ctx context.Context, text string) ([]float32, error)
}

// OpenCatalog opens the configured catalog driver. The returned close func
// is never nil. store is required by the redis driver only; docs is used by
// the file driver when catalog.embed_missing is set.
func OpenCatalog(
	ctx context.Context,
	cfg config.Config,
	store db.Store,
	docs VectorSource,
	logger *zap.Logger,
) (Catalog, func(), error) {
	noop := func() {}

	switch cfg.Catalog.Driver {
	case config.CatalogFile:
		products, err := catalog.ReadSeed(cfg.Catalog.FilePath)
		if err != nil {
			return nil, noop, fmt.Errorf("open file catalog: %w", err)
		}
		if cfg.Catalog.EmbedMissing && docs != nil {
			enriched, n, err := catalog.EmbedMissing(ctx, products, docs.Vector)
			if err != nil {
				// products without vectors stay searchable through text fallback
				logger.Warn("Could not embed catalog products", zap.Error(err))
			} else {
				products = enriched
				logger.Info("Embedded catalog products", zap.Int("computed", n), zap.Int("total", len(products)))
			}
		}
		return catalog.NewStatic(products), noop, nil

	case config.CatalogRedis:
		if store == nil {
			return nil, noop, errors.New("redis catalog requires a database store")
		}
		return catalog.NewRedis(store, logger), noop, nil

	case config.CatalogPostgres:
		pool, err := postgres.Connect(ctx, postgres.Config{
			DSN:            cfg.Postgres.DSN,
			MaxConns:       cfg.Postgres.MaxConns,
			ConnectTimeout: time.Duration(cfg.Postgres.ConnectTimeoutSec) * time.Second,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("open postgres catalog: %w", err)
		}
		return catalog.NewPostgres(pool), pool.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown catalog driver %q", cfg.Catalog.Driver)
	}
}
