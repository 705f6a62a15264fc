package catalog

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/db"
	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/product"
)

// hashStore is the consumer interface for the Redis catalog (ISP).
type hashStore interface {
	Scan(ctx context.Context, pattern string) ([]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Ping(ctx context.Context) error
}

// RedisCatalog stores products as hashes under shopsearch:product:<id>.
type RedisCatalog struct {
	store  hashStore
	logger *zap.Logger
}

// NewRedis creates a Redis-backed catalog.
func NewRedis(s hashStore, logger *zap.Logger) *RedisCatalog {
	return &RedisCatalog{store: s, logger: logger}
}

// ListCandidates returns products in the category ("" = all), ordered by key.
// Malformed hashes are logged and skipped.
func (c *RedisCatalog) ListCandidates(ctx context.Context, category string) ([]product.Product, error) {
	keys, err := c.store.Scan(ctx, productKeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan products: %w: %w", domain.ErrCatalogUnavailable, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	slices.Sort(keys)

	rows, err := c.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load products: %w: %w", domain.ErrCatalogUnavailable, err)
	}

	out := make([]product.Product, 0, len(rows))
	for i, fields := range rows {
		if len(fields) == 0 {
			// Deleted between SCAN and HGETALL.
			continue
		}
		p, err := FromHash(fields)
		if err != nil {
			c.logger.Warn("Skipping malformed product", zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		if p.InCategory(category) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Upsert writes products in a single pipelined round-trip.
func (c *RedisCatalog) Upsert(ctx context.Context, products []product.Product) error {
	items := make([]db.HashSetItem, len(products))
	for i, p := range products {
		items[i] = db.HashSetItem{Key: ProductKey(p.ID()), Fields: ToHash(p)}
	}
	if err := c.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("store products: %w", err)
	}
	return nil
}

// Ping checks the backing store.
func (c *RedisCatalog) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
	}
	return nil
}
