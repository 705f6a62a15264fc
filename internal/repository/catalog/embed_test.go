package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/shopsearch/internal/domain/product"
)

func TestEmbedMissing(t *testing.T) {
	products := []product.Product{
		product.Reconstruct("p1", "Sac bleu", "Cuir", 10, "Accessoires", "", []float32{1, 0}),
		product.Reconstruct("p2", "Baskets", "", 20, "Chaussures", "", nil),
	}
	var texts []string
	vector := func(_ context.Context, text string) ([]float32, error) {
		texts = append(texts, text)
		return []float32{0, 1}, nil
	}

	out, n, err := EmbedMissing(context.Background(), products, vector)
	if err != nil {
		t.Fatalf("EmbedMissing: %v", err)
	}
	if n != 1 {
		t.Errorf("computed = %d, want 1", n)
	}
	if len(texts) != 1 || texts[0] != "Baskets" {
		t.Errorf("embedded texts = %v", texts)
	}
	if got := out[0].Embedding(); got[0] != 1 {
		t.Errorf("existing embedding replaced: %v", got)
	}
	if got := out[1].Embedding(); len(got) != 2 || got[1] != 1 {
		t.Errorf("missing embedding not filled: %v", got)
	}
	if out[1].Category() != "Chaussures" || out[1].Price() != 20 {
		t.Errorf("fields not preserved: %s %v", out[1].Category(), out[1].Price())
	}
}

func TestEmbedMissing_Error(t *testing.T) {
	products := []product.Product{product.Reconstruct("p1", "Sac", "", 10, "Accessoires", "", nil)}
	boom := errors.New("model down")
	_, _, err := EmbedMissing(context.Background(), products, func(context.Context, string) ([]float32, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
