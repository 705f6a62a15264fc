package search

import (
	"slices"
	"strings"

	"github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/outcome"
)

// TextSearch matches keywords as substrings of each product's name and
// description. The score is the share of keywords found. Products matching
// none are left out. Sorted by score descending, ties in catalog order.
//
// With no keywords the whole text is used as a single keyword.
func TextSearch(text string, keywords []string, candidates []product.Product, limit int) []outcome.ScoredResult {
	terms := keywords
	if len(terms) == 0 {
		t := strings.ToLower(strings.TrimSpace(text))
		if t == "" {
			return nil
		}
		terms = []string{t}
	}

	var out []outcome.ScoredResult
	for _, p := range candidates {
		hay := strings.ToLower(p.SearchText())
		matched := 0
		for _, term := range terms {
			if strings.Contains(hay, term) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		out = append(out, outcome.NewScored(p, float64(matched)/float64(len(terms))))
	}

	slices.SortStableFunc(out, byScoreDesc)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
