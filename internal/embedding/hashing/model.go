// Package hashing is a local embedding model that needs no network or weights.
//
// Each token becomes a signed feature-hashed vector built from the token itself
// and its character trigrams, so "sacoche" lands close to "sac". The model
// returns one vector per token ([T N]); pooling is the provider's job.
package hashing

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/kailas-cloud/shopsearch/internal/domain"
)

// DefaultDimensions is used when the configured dimension is not positive.
const DefaultDimensions = 256

// Model is a deterministic feature-hashing embedder. Safe for concurrent use.
type Model struct {
	dim int
}

// New creates a hashing model with the given output dimension.
func New(dimensions int) *Model {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Model{dim: dimensions}
}

// Dimensions returns the vector length.
func (m *Model) Dimensions() int { return m.dim }

// Embed implements domain.Embedder.
func (m *Model) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("hashing embed: %w", err)
	}
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return domain.EmbeddingResult{}, fmt.Errorf("hashing embed: no tokens: %w", domain.ErrEmbeddingProviderError)
	}

	data := make([]float32, len(tokens)*m.dim)
	for i, tok := range tokens {
		row := data[i*m.dim : (i+1)*m.dim]
		m.addFeature(row, "w:"+tok, 2)
		padded := "^" + tok + "$"
		runes := []rune(padded)
		for j := 0; j+3 <= len(runes); j++ {
			m.addFeature(row, "g:"+string(runes[j:j+3]), 1)
		}
	}

	return domain.EmbeddingResult{
		Data:         data,
		Shape:        []int{len(tokens), m.dim},
		PromptTokens: len(tokens),
		TotalTokens:  len(tokens),
	}, nil
}

// HealthCheck always succeeds: the model is in-process.
func (m *Model) HealthCheck(_ context.Context) error { return nil }

func (m *Model) addFeature(row []float32, feature string, weight float32) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	idx := int(sum % uint64(m.dim))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	row[idx] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
