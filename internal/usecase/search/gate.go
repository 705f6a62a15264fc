package search

import "github.com/kailas-cloud/shopsearch/internal/domain/search/outcome"

// Decide builds the outcome from semantic results, running fallback only when
// there are none. Low relevance is a flag, never a reason to drop results.
// When both are empty the outcome is empty with a nil BestScore.
func Decide(
	semantic []outcome.ScoredResult,
	fallback func() []outcome.ScoredResult,
	threshold float64,
	category string,
) outcome.Outcome {
	results := semantic
	isFallback := false
	if len(results) == 0 && fallback != nil {
		results = fallback()
		isFallback = true
	}
	if len(results) == 0 {
		return outcome.Empty(category)
	}

	best := results[0].Score()
	for _, r := range results[1:] {
		if r.Score() > best {
			best = r.Score()
		}
	}

	return outcome.Outcome{
		Results:         results,
		BestScore:       &best,
		HasLowRelevance: best < threshold,
		IsTextFallback:  isFallback,
		Category:        category,
	}
}
