package domain

import (
	"context"
	"fmt"
)

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding backend availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries raw model output and token usage through the decorator chain.
//
// Data is row-major. Shape describes it: [N] or [1 N] for a pooled sentence
// vector, [T N] or [1 T N] for per-token vectors that still need pooling.
// A nil Shape means [len(Data)].
type EmbeddingResult struct {
	Data         []float32
	Shape        []int
	PromptTokens int
	TotalTokens  int
}

// Dims returns the effective shape of the result.
func (r EmbeddingResult) Dims() []int {
	if len(r.Shape) == 0 {
		return []int{len(r.Data)}
	}
	return r.Shape
}

// InstructionEmbedder is a domain decorator that prepends instruction text before embedding.
// E5-style models expect a "query: " prefix on search input.
type InstructionEmbedder struct {
	inner       Embedder
	instruction string
}

// NewInstructionEmbedder creates a decorator that prepends instruction text.
func NewInstructionEmbedder(inner Embedder, instruction string) *InstructionEmbedder {
	return &InstructionEmbedder{inner: inner, instruction: instruction}
}

// Embed prepends instruction and delegates to inner embedder.
func (e *InstructionEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	result, err := e.inner.Embed(ctx, e.instruction+text)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("instruction embed: %w", err)
	}
	return result, nil
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (e *InstructionEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := e.inner.(HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}
