package chat

import (
	"context"

	"github.com/kailas-cloud/shopsearch/internal/domain/search/outcome"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
)

// Searcher runs cached product searches.
type Searcher interface {
	SearchCached(ctx context.Context, q query.Query) (outcome.Outcome, error)
	DefaultLimit() int
}

// CategoryDetector finds the catalog category a message names.
type CategoryDetector interface {
	Extract(text string) string
}
