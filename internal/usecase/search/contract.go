package search

import (
	"context"

	"github.com/kailas-cloud/shopsearch/internal/domain/product"
)

// Catalog supplies product candidates. category "" means every category.
type Catalog interface {
	ListCandidates(ctx context.Context, category string) ([]product.Product, error)
}

// Embedder turns normalized query text into a unit vector.
// ok == false means semantic search is unavailable for this query.
type Embedder interface {
	Compute(ctx context.Context, text string) ([]float32, bool)
}

// Extractor maps query text to catalog categories and search keywords.
type Extractor interface {
	Extract(q string) string
	Keywords(q string) []string
	Resolve(category string) string
}
