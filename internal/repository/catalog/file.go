package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/product"
)

// SeedProduct is one product in a YAML seed file.
type SeedProduct struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Price       float64   `yaml:"price"`
	Category    string    `yaml:"category"`
	ImageURL    string    `yaml:"image_url"`
	Embedding   []float32 `yaml:"embedding,omitempty"`
}

type seedFile struct {
	Products []SeedProduct `yaml:"products"`
}

// ReadSeed parses a YAML seed file into validated products, in file order.
func ReadSeed(path string) ([]product.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(f.Products))
	out := make([]product.Product, 0, len(f.Products))
	for i, sp := range f.Products {
		p, err := product.New(sp.ID, sp.Name, sp.Description, sp.Price, sp.Category, sp.ImageURL, sp.Embedding)
		if err != nil {
			return nil, fmt.Errorf("seed %s entry %d: %w", path, i, err)
		}
		if _, dup := seen[sp.ID]; dup {
			return nil, fmt.Errorf("seed %s: duplicate product id %q", path, sp.ID)
		}
		seen[sp.ID] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

// FileCatalog serves an in-memory product list loaded from a seed file.
type FileCatalog struct {
	products []product.Product
}

// NewFile loads the seed file once.
func NewFile(path string) (*FileCatalog, error) {
	products, err := ReadSeed(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
	}
	return &FileCatalog{products: products}, nil
}

// NewStatic wraps an already loaded product list.
func NewStatic(products []product.Product) *FileCatalog {
	return &FileCatalog{products: products}
}

// ListCandidates returns products in the category ("" = all), in file order.
func (c *FileCatalog) ListCandidates(ctx context.Context, category string) ([]product.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
	}
	out := make([]product.Product, 0, len(c.products))
	for _, p := range c.products {
		if p.InCategory(category) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Ping always succeeds.
func (c *FileCatalog) Ping(context.Context) error { return nil }
