package catalog

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/db"
	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/product"
)

type mockHashStore struct {
	keys    []string
	rows    map[string]map[string]string
	scanErr error
	getErr  error
	pingErr error
	stored  []db.HashSetItem
}

func (m *mockHashStore) Scan(_ context.Context, _ string) ([]string, error) {
	return m.keys, m.scanErr
}

func (m *mockHashStore) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i] = m.rows[k]
	}
	return out, nil
}

func (m *mockHashStore) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	m.stored = append(m.stored, items...)
	return nil
}

func (m *mockHashStore) Ping(_ context.Context) error { return m.pingErr }

func seededStore(t *testing.T) *mockHashStore {
	t.Helper()
	mk := func(id, name, cat string, emb []float32) product.Product {
		p, err := product.New(id, name, "", 10, cat, "", emb)
		if err != nil {
			t.Fatalf("product.New: %v", err)
		}
		return p
	}
	ps := []product.Product{
		mk("p2", "Sac cabas", "Accessoires", []float32{1, 0}),
		mk("p1", "Sac bleu", "Accessoires", []float32{0, 1}),
		mk("p3", "Baskets", "Chaussures", nil),
	}
	m := &mockHashStore{rows: map[string]map[string]string{}}
	for _, p := range ps {
		k := ProductKey(p.ID())
		m.keys = append(m.keys, k)
		m.rows[k] = ToHash(p)
	}
	m.keys = append(m.keys, ProductKey("gone"))
	m.keys = append(m.keys, ProductKey("broken"))
	m.rows[ProductKey("broken")] = map[string]string{"id": "broken", "price": "NaN?"}
	return m
}

func TestRedisCatalog_ListCandidates(t *testing.T) {
	c := NewRedis(seededStore(t), zap.NewNop())

	all, err := c.ListCandidates(context.Background(), "")
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 products, got %d", len(all))
	}
	if all[0].ID() != "p1" || all[1].ID() != "p2" || all[2].ID() != "p3" {
		t.Errorf("products not in key order: %s %s %s", all[0].ID(), all[1].ID(), all[2].ID())
	}

	acc, err := c.ListCandidates(context.Background(), "accessoires")
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	if len(acc) != 2 {
		t.Fatalf("expected 2 accessories, got %d", len(acc))
	}
	for _, p := range acc {
		if p.Category() != "Accessoires" {
			t.Errorf("category filter leaked %q", p.Category())
		}
	}
}

func TestRedisCatalog_Errors(t *testing.T) {
	tests := []struct {
		name  string
		store *mockHashStore
	}{
		{"scan", &mockHashStore{scanErr: errors.New("conn reset")}},
		{"hgetall", &mockHashStore{keys: []string{ProductKey("p1")}, getErr: errors.New("timeout")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRedis(tc.store, zap.NewNop()).ListCandidates(context.Background(), "")
			if !errors.Is(err, domain.ErrCatalogUnavailable) {
				t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
			}
		})
	}
}

func TestRedisCatalog_EmptyStore(t *testing.T) {
	got, err := NewRedis(&mockHashStore{}, zap.NewNop()).ListCandidates(context.Background(), "")
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v, %v; want empty", got, err)
	}
}

func TestRedisCatalog_Upsert(t *testing.T) {
	m := &mockHashStore{}
	p, _ := product.New("p9", "Collier", "", 15, "Bijoux", "", []float32{1})

	if err := NewRedis(m, zap.NewNop()).Upsert(context.Background(), []product.Product{p}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if len(m.stored) != 1 || m.stored[0].Key != "shopsearch:product:p9" {
		t.Fatalf("stored = %+v", m.stored)
	}
}

func TestRedisCatalog_Ping(t *testing.T) {
	c := NewRedis(&mockHashStore{pingErr: errors.New("down")}, zap.NewNop())
	if err := c.Ping(context.Background()); !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
}
