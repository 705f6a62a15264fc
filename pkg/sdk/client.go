package shopsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/db"
	dbRedis "github.com/kailas-cloud/shopsearch/internal/db/redis"
	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/category"
	"github.com/kailas-cloud/shopsearch/internal/domain/product"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/outcome"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
	"github.com/kailas-cloud/shopsearch/internal/embedding/hashing"
	"github.com/kailas-cloud/shopsearch/internal/repository/catalog"
	chatuc "github.com/kailas-cloud/shopsearch/internal/usecase/chat"
	embeddinguc "github.com/kailas-cloud/shopsearch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/shopsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/shopsearch/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, replaced in tests.
type searchUseCase interface {
	SearchCached(ctx context.Context, q query.Query) (outcome.Outcome, error)
	DefaultLimit() int
}

type chatUseCase interface {
	SendMessage(ctx context.Context, text string, profile chatuc.Profile) (chatuc.Reply, error)
}

type catalogSource interface {
	ListCandidates(ctx context.Context, category string) ([]product.Product, error)
	Ping(ctx context.Context) error
}

// Client is the shopsearch entry point.
type Client struct {
	store     db.Store
	provider  *embeddinguc.Provider
	searchSvc searchUseCase
	chatSvc   chatUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client. Products come from WithProducts or WithRedis.
// The provided context bounds model loading and the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 && cfg.products == nil {
		return nil, errors.New("shopsearch: no catalog (use WithProducts or WithRedis)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	dict := category.Default()
	if cfg.categoriesPath != "" {
		dict, err = category.Load(cfg.categoriesPath)
		if err != nil {
			return nil, fmt.Errorf("shopsearch: %w", err)
		}
	}

	provider := newProvider(cfg)
	if err := provider.Init(ctx); err != nil {
		if errors.Is(err, domain.ErrDimensionMismatch) {
			return nil, fmt.Errorf("shopsearch: %w", err)
		}
		// searches fall back to text matching until the model loads
		obs.warn("embedding model not ready", err)
	}

	var store db.Store
	var source catalogSource
	if len(cfg.addrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.addrs,
			Password:   cfg.password,
			ClientName: "shopsearch-client",
		})
		if err != nil {
			provider.Shutdown()
			return nil, fmt.Errorf("shopsearch: create redis store: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			provider.Shutdown()
			return nil, fmt.Errorf("shopsearch: database not ready: %w", err)
		}
		store = s
		source = catalog.NewRedis(s, zap.NewNop())
	} else {
		products, err := toDomainProducts(cfg.products)
		if err != nil {
			provider.Shutdown()
			return nil, err
		}
		if enriched, _, err := catalog.EmbedMissing(ctx, products, provider.Vector); err != nil {
			// products without vectors stay searchable through text fallback
			obs.warn("could not embed products", err)
		} else {
			products = enriched
		}
		source = catalog.NewStatic(products)
	}

	return wireClient(cfg, dict, source, store, provider, obs), nil
}

func newProvider(cfg *clientConfig) *embeddinguc.Provider {
	var model domain.Embedder
	if cfg.embedder != nil {
		model = &embedderAdapter{inner: cfg.embedder}
	} else {
		model = hashing.New(cfg.dimensions)
	}
	load := func(context.Context) (domain.Embedder, error) { return model, nil }
	return embeddinguc.NewProvider(load, embeddinguc.ProviderConfig{Dimensions: cfg.dimensions}, zap.NewNop())
}

func wireClient(
	cfg *clientConfig,
	dict *category.Dictionary,
	source catalogSource,
	store db.Store,
	provider *embeddinguc.Provider,
	obs *observer,
) *Client {
	minScore := domain.DefaultMinSemanticScore
	if cfg.minSemanticScore != nil {
		minScore = *cfg.minSemanticScore
	}
	searchSvc := searchuc.New(source, provider, dict,
		searchuc.NewResultCache(cfg.cacheTTL, cfg.cacheEntries),
		searchuc.Config{
			RelevanceThreshold: cfg.relevanceThreshold,
			MinSemanticScore:   minScore,
			DefaultLimit:       cfg.defaultLimit,
		})

	var cache healthuc.Pinger
	if store != nil {
		cache = store
	}

	return &Client{
		store:     store,
		provider:  provider,
		searchSvc: searchSvc,
		chatSvc:   chatuc.New(searchSvc, dict),
		healthSvc: healthuc.New(source, provider, cache),
		obs:       obs,
	}
}

// Close releases the model and the database connection.
func (c *Client) Close() {
	if c.provider != nil {
		c.provider.Shutdown()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Search finds the products that best match text. Identical searches within
// the cache TTL return the cached result.
func (c *Client) Search(ctx context.Context, text string, opts ...SearchOption) (res SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	var p searchParams
	for _, o := range opts {
		o(&p)
	}
	q, err := query.New(text, p.category, p.limit, c.searchSvc.DefaultLimit())
	if err != nil {
		return SearchResult{}, err //nolint:wrapcheck // sentinel for errors.Is
	}
	o, err := c.searchSvc.SearchCached(ctx, q)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}
	return fromOutcome(&o), nil
}

// Chat answers a shopper message, searching the catalog when the message asks for products.
func (c *Client) Chat(ctx context.Context, message string, profile Profile) (reply ChatReply, err error) {
	start := time.Now()
	defer func() { c.obs.observe("chat", start, err) }()

	r, err := c.chatSvc.SendMessage(ctx, message, chatuc.Profile{
		Name:              profile.Name,
		PreferredCategory: profile.PreferredCategory,
	})
	if err != nil {
		return ChatReply{}, fmt.Errorf("chat: %w", err)
	}

	reply = ChatReply{
		ID:       r.ID.String(),
		Answer:   r.Answer,
		Intent:   string(r.Intent),
		Emotion:  string(r.Emotion),
		Products: fromScored(r.Products),
	}
	if r.Outcome != nil {
		s := fromOutcome(r.Outcome)
		reply.Search = &s
	}
	return reply, nil
}

func toDomainProducts(in []Product) ([]product.Product, error) {
	out := make([]product.Product, 0, len(in))
	for _, p := range in {
		dp, err := product.New(p.ID, p.Name, p.Description, p.Price, p.Category, p.ImageURL, p.Embedding)
		if err != nil {
			return nil, fmt.Errorf("shopsearch: product %q: %w", p.ID, err)
		}
		out = append(out, dp)
	}
	return out, nil
}

func fromOutcome(o *outcome.Outcome) SearchResult {
	return SearchResult{
		Results:         fromScored(o.Results),
		BestScore:       o.BestScore,
		HasLowRelevance: o.HasLowRelevance,
		IsTextFallback:  o.IsTextFallback,
		Category:        o.Category,
	}
}

func fromScored(in []outcome.ScoredResult) []Result {
	out := make([]Result, len(in))
	for i := range in {
		p := in[i].Product()
		out[i] = Result{
			Product: Product{
				ID:          p.ID(),
				Name:        p.Name(),
				Description: p.Description(),
				Price:       p.Price(),
				Category:    p.Category(),
				ImageURL:    p.ImageURL(),
				Embedding:   p.Embedding(),
			},
			Score: in[i].Score(),
		}
	}
	return out
}

// embedderAdapter wraps the public Embedder to satisfy domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return domain.EmbeddingResult{
		Data:         r.Embedding,
		Shape:        []int{1, len(r.Embedding)},
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}
