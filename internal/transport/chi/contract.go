package chi

import (
	"context"

	"github.com/kailas-cloud/shopsearch/internal/domain/search/outcome"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
	chatuc "github.com/kailas-cloud/shopsearch/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/shopsearch/internal/usecase/health"
)

// Searcher serves product searches.
type Searcher interface {
	SearchCached(ctx context.Context, q query.Query) (outcome.Outcome, error)
	DefaultLimit() int
}

// Chatter answers shopper messages.
type Chatter interface {
	SendMessage(ctx context.Context, text string, profile chatuc.Profile) (chatuc.Reply, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
