package search

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kailas-cloud/shopsearch/internal/domain/product"
)

func mkProduct(t *testing.T, id, name, cat string, emb []float32) product.Product {
	t.Helper()
	p, err := product.New(id, name, "", 10, cat, "", emb)
	if err != nil {
		t.Fatalf("product.New(%s): %v", id, err)
	}
	return p
}

// testCatalog mimics a catalog that ignores the category argument, so the
// service's own hard filter is what keeps other categories out.
func testCatalog(t *testing.T) []product.Product {
	t.Helper()
	return []product.Product{
		mkProduct(t, "p1", "Sac à main bleu marine", "Accessoires", []float32{1, 0, 0}),
		mkProduct(t, "p2", "Sac cabas en toile", "Accessoires", []float32{0.8, 0.6, 0}),
		mkProduct(t, "p3", "Baskets bleues", "Chaussures", []float32{1, 0, 0}),
		mkProduct(t, "p4", "Pochette sac soirée", "Accessoires", nil),
		mkProduct(t, "p5", "Robe d'été", "Vêtements", []float32{0, 0, 1}),
	}
}

type mockCatalog struct {
	products []product.Product
	err      error

	mu    sync.Mutex
	calls []string
}

func (m *mockCatalog) ListCandidates(_ context.Context, category string) ([]product.Product, error) {
	m.mu.Lock()
	m.calls = append(m.calls, category)
	m.mu.Unlock()
	return m.products, m.err
}

func (m *mockCatalog) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockEmbedder returns vec for every text, or nothing when vec is nil.
type mockEmbedder struct {
	vec   []float32
	calls atomic.Int32
}

func (m *mockEmbedder) Compute(_ context.Context, _ string) ([]float32, bool) {
	m.calls.Add(1)
	if m.vec == nil {
		return nil, false
	}
	return m.vec, true
}
