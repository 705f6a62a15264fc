package shopsearch

import "context"

// Embedder converts text to a vector embedding.
// Without one, the client falls back to a local hashing model.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
