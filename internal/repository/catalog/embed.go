package catalog

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/shopsearch/internal/domain/product"
)

// VectorFunc embeds one document text.
type VectorFunc func(ctx context.Context, text string) ([]float32, error)

// EmbedMissing returns products with embeddings filled in for those that had
// none, and the number of vectors computed. Existing embeddings are kept.
func EmbedMissing(ctx context.Context, products []product.Product, vector VectorFunc) ([]product.Product, int, error) {
	out := make([]product.Product, 0, len(products))
	computed := 0
	for _, p := range products {
		if p.HasEmbedding() {
			out = append(out, p)
			continue
		}
		vec, err := vector(ctx, p.SearchText())
		if err != nil {
			return nil, computed, fmt.Errorf("embed product %s: %w", p.ID(), err)
		}
		out = append(out, product.Reconstruct(
			p.ID(), p.Name(), p.Description(), p.Price(), p.Category(), p.ImageURL(), vec,
		))
		computed++
	}
	return out, computed, nil
}
