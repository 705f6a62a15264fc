package search

import (
	"context"
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/outcome"
	"github.com/kailas-cloud/shopsearch/internal/logger"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
)

// FilterByCategory keeps the products of category. It runs before any scoring,
// so a product outside the category can never appear in results.
// An empty category keeps everything.
func FilterByCategory(products []product.Product, category string) []product.Product {
	out := make([]product.Product, 0, len(products))
	for _, p := range products {
		if p.InCategory(category) {
			out = append(out, p)
		}
	}
	return out
}

// Score ranks candidates by cosine similarity to vec.
//
// Candidates without an embedding, with a different dimension or with a NaN or
// infinite component are skipped.
// Scores below minScore are dropped. The result is sorted by score descending
// (ties keep catalog order) and truncated to limit.
func Score(ctx context.Context, vec []float32, candidates []product.Product, limit int, minScore float64) []outcome.ScoredResult {
	log := logger.FromContext(ctx)
	qnorm := norm(vec)
	if qnorm == 0 || !finite(qnorm) {
		return nil
	}

	scored := make([]outcome.ScoredResult, 0, len(candidates))
	for _, p := range candidates {
		emb := p.Embedding()
		if len(emb) == 0 {
			metrics.SkippedCandidatesTotal.WithLabelValues("no_embedding").Inc()
			continue
		}
		if len(emb) != len(vec) {
			metrics.SkippedCandidatesTotal.WithLabelValues("dimension_mismatch").Inc()
			log.Warn("Skipping product with mismatched embedding",
				zap.String("product_id", p.ID()),
				zap.Int("got", len(emb)),
				zap.Int("want", len(vec)),
			)
			continue
		}
		pnorm := norm(emb)
		if pnorm == 0 {
			metrics.SkippedCandidatesTotal.WithLabelValues("no_embedding").Inc()
			continue
		}
		if !finite(pnorm) {
			metrics.SkippedCandidatesTotal.WithLabelValues("non_finite").Inc()
			log.Warn("Skipping product with non-finite embedding", zap.String("product_id", p.ID()))
			continue
		}

		s := dot(vec, emb) / (qnorm * pnorm)
		if s < minScore {
			continue
		}
		scored = append(scored, outcome.NewScored(p, s))
	}

	slices.SortStableFunc(scored, byScoreDesc)
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

func byScoreDesc(a, b outcome.ScoredResult) int {
	switch {
	case a.Score() > b.Score():
		return -1
	case a.Score() < b.Score():
		return 1
	default:
		return 0
	}
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

// norm is NaN or +Inf when any component of v is.
func norm(v []float32) float64 {
	return math.Sqrt(dot(v, v))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
