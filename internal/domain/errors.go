package domain

import "errors"

var (
	// ErrInvalidQuery signals a malformed search request.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrCatalogUnavailable signals that the product catalog could not return candidates.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrEmbeddingUnavailable signals that no query vector could be produced.
	// Search absorbs it and falls back to text matching.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	// ErrEmbeddingProviderError signals an embedding backend failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrModelNotLoaded signals a provider used before its model finished loading.
	ErrModelNotLoaded = errors.New("embedding model not loaded")
	// ErrDimensionMismatch signals vectors of different lengths.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
