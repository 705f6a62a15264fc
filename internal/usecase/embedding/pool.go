package embedding

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/shopsearch/internal/domain"
)

// Pool reduces a model output to one unit-length vector.
//
// Shapes [N] and [1 N] are used as-is; [T N] and [1 T N] are mean-pooled over T.
// A nil shape means [len(Data)].
func Pool(res domain.EmbeddingResult) ([]float32, error) {
	rows, dim, err := layout(res)
	if err != nil {
		return nil, err
	}

	out := make([]float64, dim)
	for t := 0; t < rows; t++ {
		row := res.Data[t*dim : (t+1)*dim]
		for i, v := range row {
			f := float64(v)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, fmt.Errorf("non-finite value at token %d index %d: %w",
					t, i, domain.ErrEmbeddingProviderError)
			}
			out[i] += f
		}
	}

	var norm float64
	for i := range out {
		out[i] /= float64(rows)
		norm += out[i] * out[i]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil, fmt.Errorf("zero vector: %w", domain.ErrEmbeddingProviderError)
	}

	vec := make([]float32, dim)
	for i, v := range out {
		vec[i] = float32(v / norm)
	}
	return vec, nil
}

func layout(res domain.EmbeddingResult) (rows, dim int, err error) {
	shape := res.Shape
	if len(shape) == 0 {
		shape = []int{len(res.Data)}
	}

	switch len(shape) {
	case 1:
		rows, dim = 1, shape[0]
	case 2:
		rows, dim = shape[0], shape[1]
	case 3:
		if shape[0] != 1 {
			return 0, 0, fmt.Errorf("batch size %d, want 1: %w", shape[0], domain.ErrEmbeddingProviderError)
		}
		rows, dim = shape[1], shape[2]
	default:
		return 0, 0, fmt.Errorf("unsupported output rank %d: %w", len(shape), domain.ErrEmbeddingProviderError)
	}

	if rows <= 0 || dim <= 0 || rows*dim != len(res.Data) {
		return 0, 0, fmt.Errorf("shape %v does not match %d values: %w",
			shape, len(res.Data), domain.ErrEmbeddingProviderError)
	}
	return rows, dim, nil
}
