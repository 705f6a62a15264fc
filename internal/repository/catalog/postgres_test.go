package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/product"
)

type productRow struct {
	id, name, description string
	price                 float64
	category, image       string
	embedding             *pgvector.Vector
}

// fakeRows implements pgx.Rows over in-memory rows.
type fakeRows struct {
	rows    []productRow
	pos     int
	err     error
	scanErr error
	closed  bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	if len(dest) != 7 {
		return fmt.Errorf("expected 7 columns, got %d", len(dest))
	}
	row := r.rows[r.pos-1]
	*dest[0].(*string) = row.id
	*dest[1].(*string) = row.name
	*dest[2].(*string) = row.description
	*dest[3].(*float64) = row.price
	*dest[4].(*string) = row.category
	*dest[5].(*string) = row.image
	*dest[6].(**pgvector.Vector) = row.embedding
	return nil
}

type fakeQuerier struct {
	rows     *fakeRows
	queryErr error
	pingErr  error
	args     []any
}

func (q *fakeQuerier) Query(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
	q.args = args
	if q.queryErr != nil {
		return nil, q.queryErr
	}
	return q.rows, nil
}

func (q *fakeQuerier) Ping(_ context.Context) error { return q.pingErr }

func TestPostgresCatalog_ListCandidates(t *testing.T) {
	vec := pgvector.NewVector([]float32{0.6, 0.8})
	rows := &fakeRows{rows: []productRow{
		{id: "p1", name: "Sac bleu", price: 40, category: "Accessoires", embedding: &vec},
		{id: "p2", name: "Pochette", price: 25, category: "Accessoires"},
	}}
	q := &fakeQuerier{rows: rows}

	got, err := NewPostgres(q).ListCandidates(context.Background(), "Accessoires")
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %d", len(got))
	}
	if !got[0].HasEmbedding() || got[0].Embedding()[1] != 0.8 {
		t.Errorf("embedding not decoded: %v", got[0].Embedding())
	}
	if got[1].HasEmbedding() {
		t.Error("NULL embedding must stay empty")
	}
	if len(q.args) != 1 || q.args[0] != "Accessoires" {
		t.Errorf("query args = %v", q.args)
	}
	if !rows.closed {
		t.Error("rows not closed")
	}
}

func TestPostgresCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		q    *fakeQuerier
	}{
		{"query", &fakeQuerier{queryErr: errors.New("conn refused")}},
		{"scan", &fakeQuerier{rows: &fakeRows{rows: []productRow{{id: "p1"}}, scanErr: errors.New("bad type")}}},
		{"iterate", &fakeQuerier{rows: &fakeRows{err: errors.New("conn lost")}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPostgres(tc.q).ListCandidates(context.Background(), "")
			if !errors.Is(err, domain.ErrCatalogUnavailable) {
				t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
			}
		})
	}
}

func TestPostgresCatalog_Ping(t *testing.T) {
	err := NewPostgres(&fakeQuerier{pingErr: errors.New("down")}).Ping(context.Background())
	if !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Fatalf("expected ErrCatalogUnavailable, got %v", err)
	}
}

type fakeExecer struct {
	calls [][]any
	err   error
}

func (e *fakeExecer) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	e.calls = append(e.calls, args)
	return pgconn.CommandTag{}, e.err
}

func TestUpsertPostgres(t *testing.T) {
	products := []product.Product{
		product.Reconstruct("p1", "Sac bleu", "Cuir", 40, "Accessoires", "", []float32{0.6, 0.8}),
		product.Reconstruct("p2", "Pochette", "", 25, "Accessoires", "", nil),
	}
	e := &fakeExecer{}

	if err := UpsertPostgres(context.Background(), e, products); err != nil {
		t.Fatalf("UpsertPostgres: %v", err)
	}
	if len(e.calls) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(e.calls))
	}
	if e.calls[0][0] != "p1" || e.calls[0][3] != 40.0 {
		t.Errorf("unexpected args: %v", e.calls[0])
	}
	emb, ok := e.calls[0][6].(*pgvector.Vector)
	if !ok || emb == nil || emb.Slice()[1] != 0.8 {
		t.Errorf("embedding arg = %#v", e.calls[0][6])
	}
	if emb, _ := e.calls[1][6].(*pgvector.Vector); emb != nil {
		t.Error("missing embedding must be NULL")
	}
}

func TestUpsertPostgres_Error(t *testing.T) {
	e := &fakeExecer{err: errors.New("constraint")}
	products := []product.Product{product.Reconstruct("p1", "Sac", "", 1, "Accessoires", "", nil)}

	err := UpsertPostgres(context.Background(), e, products)
	if err == nil || !strings.Contains(err.Error(), "p1") {
		t.Fatalf("expected error naming the product, got %v", err)
	}
}

func TestCreateTableSQL(t *testing.T) {
	ddl := CreateTableSQL(256)
	if !strings.Contains(ddl, "vector(256)") {
		t.Errorf("dimension missing from DDL: %s", ddl)
	}
}
