package embedding

import (
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/shopsearch/internal/domain"
)

func almostEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestPool(t *testing.T) {
	tests := []struct {
		name string
		res  domain.EmbeddingResult
		want []float32
	}{
		{
			name: "flat vector normalized",
			res:  domain.EmbeddingResult{Data: []float32{3, 4}},
			want: []float32{0.6, 0.8},
		},
		{
			name: "leading batch of one",
			res:  domain.EmbeddingResult{Data: []float32{0, 2}, Shape: []int{1, 2}},
			want: []float32{0, 1},
		},
		{
			name: "token rows mean pooled",
			res:  domain.EmbeddingResult{Data: []float32{1, 0, 0, 1}, Shape: []int{2, 2}},
			want: []float32{float32(1 / math.Sqrt2), float32(1 / math.Sqrt2)},
		},
		{
			name: "batched token rows",
			res:  domain.EmbeddingResult{Data: []float32{2, 0, 4, 0}, Shape: []int{1, 2, 2}},
			want: []float32{1, 0},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Pool(tc.res)
			if err != nil {
				t.Fatalf("Pool: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if !almostEqual(got[i], tc.want[i]) {
					t.Errorf("got[%d] = %f, want %f", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestPool_Errors(t *testing.T) {
	nan := float32(math.NaN())
	tests := []struct {
		name string
		res  domain.EmbeddingResult
	}{
		{"empty", domain.EmbeddingResult{}},
		{"shape mismatch", domain.EmbeddingResult{Data: []float32{1, 2, 3}, Shape: []int{2, 2}}},
		{"batch of two", domain.EmbeddingResult{Data: []float32{1, 2, 3, 4}, Shape: []int{2, 1, 2}}},
		{"rank four", domain.EmbeddingResult{Data: []float32{1}, Shape: []int{1, 1, 1, 1}}},
		{"nan", domain.EmbeddingResult{Data: []float32{1, nan}}},
		{"zero", domain.EmbeddingResult{Data: []float32{0, 0}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Pool(tc.res)
			if !errors.Is(err, domain.ErrEmbeddingProviderError) {
				t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
			}
		})
	}
}
