package outcome

import "github.com/kailas-cloud/shopsearch/internal/domain/product"

// ScoredResult is a product with its relevance score in [0,1].
type ScoredResult struct {
	product product.Product
	score   float64
}

// NewScored creates a scored result. Scores are clamped to [0,1].
func NewScored(p product.Product, score float64) ScoredResult {
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return ScoredResult{product: p, score: score}
}

// Product returns the matched product.
func (r ScoredResult) Product() product.Product { return r.product }

// Score returns the relevance score; higher is more relevant.
func (r ScoredResult) Score() float64 { return r.score }

// Outcome is what a search returns to its callers.
// Degradations (no embedding, low relevance, nothing found) are reported as
// flags here, never as errors.
type Outcome struct {
	Results         []ScoredResult
	BestScore       *float64
	HasLowRelevance bool
	IsTextFallback  bool
	Category        string
}

// Empty returns the intentional zero-result outcome.
func Empty(category string) Outcome {
	return Outcome{Results: []ScoredResult{}, Category: category}
}

// IsEmpty reports whether the outcome carries no results.
func (o *Outcome) IsEmpty() bool { return len(o.Results) == 0 }
