package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/outcome"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
	"github.com/kailas-cloud/shopsearch/internal/logger"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
	"github.com/kailas-cloud/shopsearch/internal/textnorm"
)

// Config tunes ranking.
type Config struct {
	// RelevanceThreshold flags outcomes whose best score is below it.
	RelevanceThreshold float64
	// MinSemanticScore drops semantic candidates below it.
	MinSemanticScore float64
	DefaultLimit     int
}

func (c *Config) applyDefaults() {
	if c.RelevanceThreshold <= 0 {
		c.RelevanceThreshold = domain.DefaultRelevanceThreshold
	}
	if c.MinSemanticScore < 0 {
		c.MinSemanticScore = domain.DefaultMinSemanticScore
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = domain.DefaultLimit
	}
}

// Service turns shopper queries into ranked, category-filtered products.
type Service struct {
	catalog Catalog
	embed   Embedder
	dict    Extractor
	cache   *ResultCache
	cfg     Config
}

// New creates a search service. cache may be nil to disable result caching.
func New(catalog Catalog, embed Embedder, dict Extractor, cache *ResultCache, cfg Config) *Service {
	cfg.applyDefaults()
	return &Service{
		catalog: catalog,
		embed:   embed,
		dict:    dict,
		cache:   cache,
		cfg:     cfg,
	}
}

// DefaultLimit returns the limit used when a request gives none.
func (s *Service) DefaultLimit() int { return s.cfg.DefaultLimit }

// SearchCached serves q from the result cache, computing it on a miss.
func (s *Service) SearchCached(ctx context.Context, q query.Query) (outcome.Outcome, error) {
	key := q.CacheKey()
	ctx = logger.With(ctx, zap.String("cache_key", key))
	if s.cache == nil {
		return s.Search(ctx, q)
	}
	o, err := s.cache.GetOrCompute(ctx, key, func(ctx context.Context) (outcome.Outcome, error) {
		return s.Search(ctx, q)
	})
	if err != nil {
		return outcome.Outcome{}, fmt.Errorf("cached search: %w", err)
	}
	return o, nil
}

// Search runs the pipeline: normalize, pick the category, filter candidates,
// score them semantically and fall back to text matching when nothing scores.
//
// Only a catalog failure is an error. Empty input and zero matches are
// empty outcomes.
func (s *Service) Search(ctx context.Context, q query.Query) (outcome.Outcome, error) {
	start := time.Now()
	supplied := s.dict.Resolve(q.Category())

	text, ok := textnorm.Normalize(q.RawText())
	if !ok {
		s.observe(outcome.Empty(supplied), start)
		return outcome.Empty(supplied), nil
	}

	category := supplied
	if category == "" {
		category = s.dict.Extract(text)
	}

	candidates, err := s.catalog.ListCandidates(ctx, category)
	if err != nil {
		if !errors.Is(err, domain.ErrCatalogUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
		}
		return outcome.Outcome{}, fmt.Errorf("list candidates: %w", err)
	}
	candidates = FilterByCategory(candidates, category)

	var semantic []outcome.ScoredResult
	if vec, ok := s.embed.Compute(ctx, text); ok {
		semantic = Score(ctx, vec, candidates, q.Limit(), s.cfg.MinSemanticScore)
	}

	out := Decide(semantic, func() []outcome.ScoredResult {
		return TextSearch(text, s.dict.Keywords(text), candidates, q.Limit())
	}, s.cfg.RelevanceThreshold, category)

	logger.FromContext(ctx).Debug("Search completed",
		zap.String("category", category),
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(out.Results)),
		zap.Bool("text_fallback", out.IsTextFallback),
		zap.Bool("low_relevance", out.HasLowRelevance),
	)
	s.observe(out, start)
	return out, nil
}

func (s *Service) observe(o outcome.Outcome, start time.Time) {
	path := "semantic"
	switch {
	case o.IsEmpty():
		path = "empty"
	case o.IsTextFallback:
		path = "fallback"
	}
	low := "false"
	if o.HasLowRelevance {
		low = "true"
	}
	metrics.SearchOutcomesTotal.WithLabelValues(path, low).Inc()
	if o.BestScore != nil && !o.IsTextFallback {
		metrics.SearchBestScore.Observe(*o.BestScore)
	}
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
}
