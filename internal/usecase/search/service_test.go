package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/category"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/query"
)

func newTestService(t *testing.T, cat *mockCatalog, emb *mockEmbedder, cache *ResultCache) *Service {
	t.Helper()
	return New(cat, emb, category.Default(), cache, Config{
		RelevanceThreshold: 0.75,
		MinSemanticScore:   0.35,
		DefaultLimit:       8,
	})
}

func mustQuery(t *testing.T, text, cat string, limit int) query.Query {
	t.Helper()
	q, err := query.New(text, cat, limit, 8)
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}
	return q
}

func TestSearch_SacBleu(t *testing.T) {
	cat := &mockCatalog{products: testCatalog(t)}
	svc := newTestService(t, cat, &mockEmbedder{vec: []float32{1, 0, 0}}, nil)

	o, err := svc.Search(context.Background(), mustQuery(t, "sac bleu", "", 0))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if o.Category != "Accessoires" {
		t.Errorf("category = %q, want Accessoires", o.Category)
	}
	if cat.calls[0] != "Accessoires" {
		t.Errorf("catalog asked for %q", cat.calls[0])
	}
	if o.IsTextFallback || o.HasLowRelevance {
		t.Errorf("flags = fallback:%v low:%v, want both false", o.IsTextFallback, o.HasLowRelevance)
	}
	if len(o.Results) != 2 || o.Results[0].Product().ID() != "p1" || o.Results[1].Product().ID() != "p2" {
		t.Fatalf("unexpected results: %d", len(o.Results))
	}
	if o.BestScore == nil || *o.BestScore != 1 {
		t.Errorf("best = %v, want 1", o.BestScore)
	}
	for _, r := range o.Results {
		if r.Product().Category() != "Accessoires" {
			t.Errorf("hard filter leaked %s (%s)", r.Product().ID(), r.Product().Category())
		}
	}
}

func TestSearch_LowRelevanceIsFlaggedNotDropped(t *testing.T) {
	svc := newTestService(t, &mockCatalog{products: testCatalog(t)}, &mockEmbedder{vec: []float32{0, 0.8, 0.6}}, nil)

	o, err := svc.Search(context.Background(), mustQuery(t, "sac pas cher", "", 0))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !o.HasLowRelevance || o.IsTextFallback {
		t.Errorf("flags = low:%v fallback:%v", o.HasLowRelevance, o.IsTextFallback)
	}
	if len(o.Results) != 1 || o.Results[0].Product().ID() != "p2" {
		t.Fatalf("expected p2 only, got %d results", len(o.Results))
	}
}

func TestSearch_FallbackWhenEmbeddingUnavailable(t *testing.T) {
	emb := &mockEmbedder{}
	svc := newTestService(t, &mockCatalog{products: testCatalog(t)}, emb, nil)

	o, err := svc.Search(context.Background(), mustQuery(t, "Sac bleu", "", 0))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !o.IsTextFallback {
		t.Fatal("expected text fallback")
	}
	if emb.calls.Load() != 1 {
		t.Errorf("embedder calls = %d", emb.calls.Load())
	}
	ids := []string{}
	for _, r := range o.Results {
		ids = append(ids, r.Product().ID())
	}
	if len(ids) != 3 || ids[0] != "p1" {
		t.Fatalf("fallback ids = %v, want p1 first of 3", ids)
	}
	for _, id := range ids {
		if id == "p3" {
			t.Error("fallback ignored the category filter")
		}
	}
}

func TestSearch_NonsenseQueryIsEmpty(t *testing.T) {
	svc := newTestService(t, &mockCatalog{products: testCatalog(t)}, &mockEmbedder{vec: []float32{0, -1, 0}}, nil)

	o, err := svc.Search(context.Background(), mustQuery(t, "je veux une banane", "", 0))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if o.Results == nil || len(o.Results) != 0 {
		t.Fatalf("expected empty non-nil results, got %v", o.Results)
	}
	if o.BestScore != nil {
		t.Errorf("best = %v, want nil", *o.BestScore)
	}
	if o.Category != "" {
		t.Errorf("category = %q, want none", o.Category)
	}
}

func TestSearch_WhitespaceSkipsEmbeddingAndCatalog(t *testing.T) {
	cat := &mockCatalog{products: testCatalog(t)}
	emb := &mockEmbedder{vec: []float32{1, 0, 0}}
	svc := newTestService(t, cat, emb, nil)

	for _, text := range []string{"", "   ", "\t\n"} {
		o, err := svc.Search(context.Background(), mustQuery(t, text, "", 0))
		if err != nil {
			t.Fatalf("Search(%q): %v", text, err)
		}
		if !o.IsEmpty() || o.BestScore != nil {
			t.Errorf("Search(%q) not empty", text)
		}
	}
	if emb.calls.Load() != 0 || cat.callCount() != 0 {
		t.Errorf("embedder calls = %d, catalog calls = %d; want none", emb.calls.Load(), cat.callCount())
	}
}

func TestSearch_SuppliedCategoryWins(t *testing.T) {
	cat := &mockCatalog{products: testCatalog(t)}
	svc := newTestService(t, cat, &mockEmbedder{vec: []float32{1, 0, 0}}, nil)

	o, err := svc.Search(context.Background(), mustQuery(t, "sac bleu", "chaussures", 0))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if o.Category != "Chaussures" {
		t.Errorf("category = %q, want Chaussures", o.Category)
	}
	if len(o.Results) != 1 || o.Results[0].Product().ID() != "p3" {
		t.Fatalf("expected p3 only, got %d", len(o.Results))
	}
}

func TestSearch_Limit(t *testing.T) {
	svc := newTestService(t, &mockCatalog{products: testCatalog(t)}, &mockEmbedder{vec: []float32{1, 0, 0}}, nil)

	o, err := svc.Search(context.Background(), mustQuery(t, "sac", "", 1))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(o.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(o.Results))
	}
}

func TestSearch_CatalogUnavailable(t *testing.T) {
	svc := newTestService(t, &mockCatalog{err: errors.New("connection refused")}, &mockEmbedder{}, nil)

	_, err := svc.Search(context.Background(), mustQuery(t, "sac", "", 0))
	if !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
}

func TestSearchCached_SharesKeyAcrossCaseAndSpaces(t *testing.T) {
	cat := &mockCatalog{products: testCatalog(t)}
	cache := NewResultCache(5*time.Minute, 10)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	svc := newTestService(t, cat, &mockEmbedder{vec: []float32{1, 0, 0}}, cache)

	first, err := svc.SearchCached(context.Background(), mustQuery(t, "Sac ", "", 0))
	if err != nil {
		t.Fatalf("SearchCached: %v", err)
	}
	second, err := svc.SearchCached(context.Background(), mustQuery(t, "sac", "", 0))
	if err != nil {
		t.Fatalf("SearchCached: %v", err)
	}
	if cat.callCount() != 1 {
		t.Errorf("catalog calls = %d, want 1", cat.callCount())
	}
	if len(first.Results) != len(second.Results) {
		t.Error("cached outcome differs")
	}

	now = now.Add(5*time.Minute + time.Second)
	if _, err := svc.SearchCached(context.Background(), mustQuery(t, "sac", "", 0)); err != nil {
		t.Fatalf("SearchCached: %v", err)
	}
	if cat.callCount() != 2 {
		t.Errorf("catalog calls after TTL = %d, want 2", cat.callCount())
	}
}

func TestSearchCached_CategoryKeepsOutcomesApart(t *testing.T) {
	cat := &mockCatalog{products: testCatalog(t)}
	svc := newTestService(t, cat, &mockEmbedder{vec: []float32{1, 0, 0}}, NewResultCache(time.Minute, 10))

	if _, err := svc.SearchCached(context.Background(), mustQuery(t, "bleu", "", 0)); err != nil {
		t.Fatal(err)
	}
	o, err := svc.SearchCached(context.Background(), mustQuery(t, "bleu", "Chaussures", 0))
	if err != nil {
		t.Fatal(err)
	}
	if cat.callCount() != 2 {
		t.Errorf("catalog calls = %d, want 2", cat.callCount())
	}
	if o.Category != "Chaussures" {
		t.Errorf("category = %q", o.Category)
	}
}

func TestSearch_SacBleuSkipsChaiseBleue(t *testing.T) {
	products := append(testCatalog(t), mkProduct(t, "p6", "Chaise bleue", "Mobilier", []float32{1, 0, 0}))
	svc := newTestService(t, &mockCatalog{products: products}, &mockEmbedder{vec: []float32{1, 0, 0}}, nil)

	o, err := svc.Search(context.Background(), mustQuery(t, "sac bleu", "", 0))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(o.Results) == 0 {
		t.Fatal("expected the blue bag")
	}
	if o.Results[0].Product().ID() != "p1" {
		t.Errorf("first result = %s, want p1", o.Results[0].Product().ID())
	}
	for _, r := range o.Results {
		if r.Product().Category() != "Accessoires" {
			t.Errorf("chair scored as well as the bag leaked: %s (%s)", r.Product().ID(), r.Product().Category())
		}
	}
}

func TestSearchCached_TypedSuffixDoesNotHitPinnedCategory(t *testing.T) {
	cat := &mockCatalog{products: testCatalog(t)}
	svc := newTestService(t, cat, &mockEmbedder{vec: []float32{1, 0, 0}}, NewResultCache(time.Minute, 10))

	if _, err := svc.SearchCached(context.Background(), mustQuery(t, "robe|category=accessoires", "", 0)); err != nil {
		t.Fatal(err)
	}
	o, err := svc.SearchCached(context.Background(), mustQuery(t, "robe", "Accessoires", 0))
	if err != nil {
		t.Fatal(err)
	}
	if cat.callCount() != 2 {
		t.Errorf("catalog calls = %d, want 2", cat.callCount())
	}
	if o.Category != "Accessoires" {
		t.Errorf("category = %q, want Accessoires", o.Category)
	}
	for _, r := range o.Results {
		if r.Product().Category() != "Accessoires" {
			t.Errorf("pinned search returned %s from %s", r.Product().ID(), r.Product().Category())
		}
	}
}
