package outcome

import (
	"testing"

	"github.com/kailas-cloud/shopsearch/internal/domain/product"
)

func TestNewScored_Clamps(t *testing.T) {
	p := product.Reconstruct("p1", "Sac", "", 10, "Accessoires", "", nil)

	tests := []struct {
		in, want float64
	}{
		{-0.2, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{1.0000001, 1},
	}
	for _, tc := range tests {
		r := NewScored(p, tc.in)
		if r.Score() != tc.want {
			t.Errorf("NewScored(%v).Score() = %v, want %v", tc.in, r.Score(), tc.want)
		}
	}
}

func TestEmpty(t *testing.T) {
	o := Empty("Bijoux")
	if !o.IsEmpty() {
		t.Error("expected empty outcome")
	}
	if o.Results == nil {
		t.Error("results must be non-nil so it serializes as []")
	}
	if o.BestScore != nil || o.HasLowRelevance || o.IsTextFallback {
		t.Errorf("unexpected flags on empty outcome: %+v", o)
	}
	if o.Category != "Bijoux" {
		t.Errorf("Category = %q", o.Category)
	}
}

func TestScoredResult_ProductIsReadableInline(t *testing.T) {
	p := product.Reconstruct("p1", "Sac", "Cuir", 10, "Accessoires", "", []float32{1})
	results := []ScoredResult{NewScored(p, 0.9)}

	if id := results[0].Product().ID(); id != "p1" {
		t.Errorf("ID = %q", id)
	}
	if cat := NewScored(p, 0.9).Product().Category(); cat != "Accessoires" {
		t.Errorf("Category = %q", cat)
	}
	if !NewScored(p, 0.9).Product().HasEmbedding() {
		t.Error("embedding lost")
	}
}
