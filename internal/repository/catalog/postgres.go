package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/product"
)

const listProductsSQL = `
SELECT id, name, description, price, category, image_url, embedding
FROM products
WHERE $1 = '' OR lower(category) = lower($1)
ORDER BY id`

const upsertProductSQL = `
INSERT INTO products (id, name, description, price, category, image_url, embedding)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	description = EXCLUDED.description,
	price = EXCLUDED.price,
	category = EXCLUDED.category,
	image_url = EXCLUDED.image_url,
	embedding = EXCLUDED.embedding`

// CreateTableSQL returns the DDL of the products table with a vector column of dim.
func CreateTableSQL(dim int) string {
	return fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;
CREATE TABLE IF NOT EXISTS products (
	id          text PRIMARY KEY,
	name        text NOT NULL,
	description text NOT NULL DEFAULT '',
	price       double precision NOT NULL DEFAULT 0,
	category    text NOT NULL DEFAULT '',
	image_url   text NOT NULL DEFAULT '',
	embedding   vector(%d)
)`, dim)
}

// querier is the subset of *pgxpool.Pool the catalog needs.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

// PostgresCatalog reads products from a table with a pgvector embedding column.
type PostgresCatalog struct {
	q querier
}

// NewPostgres creates a Postgres-backed catalog.
func NewPostgres(q querier) *PostgresCatalog {
	return &PostgresCatalog{q: q}
}

// ListCandidates returns products in the category ("" = all), ordered by id.
func (c *PostgresCatalog) ListCandidates(ctx context.Context, category string) ([]product.Product, error) {
	rows, err := c.q.Query(ctx, listProductsSQL, category)
	if err != nil {
		return nil, fmt.Errorf("query products: %w: %w", domain.ErrCatalogUnavailable, err)
	}
	defer rows.Close()

	var out []product.Product
	for rows.Next() {
		var (
			id, name, description, cat, image string
			price                             float64
			emb                               *pgvector.Vector
		)
		if err := rows.Scan(&id, &name, &description, &price, &cat, &image, &emb); err != nil {
			return nil, fmt.Errorf("scan product: %w: %w", domain.ErrCatalogUnavailable, err)
		}
		var vec []float32
		if emb != nil {
			vec = emb.Slice()
		}
		out = append(out, product.Reconstruct(id, name, description, price, cat, image, vec))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w: %w", domain.ErrCatalogUnavailable, err)
	}
	return out, nil
}

// Ping checks the database connection.
func (c *PostgresCatalog) Ping(ctx context.Context) error {
	if err := c.q.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
	}
	return nil
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// UpsertPostgres inserts or replaces products by id. Products without an
// embedding are stored with a NULL vector.
func UpsertPostgres(ctx context.Context, e execer, products []product.Product) error {
	for i := range products {
		p := &products[i]
		var emb *pgvector.Vector
		if p.HasEmbedding() {
			v := pgvector.NewVector(p.Embedding())
			emb = &v
		}
		if _, err := e.Exec(ctx, upsertProductSQL,
			p.ID(), p.Name(), p.Description(), p.Price(), p.Category(), p.ImageURL(), emb,
		); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID(), err)
		}
	}
	return nil
}
