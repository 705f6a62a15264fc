package product

import (
	"fmt"
	"math"
	"strings"
)

// Product is a catalog item as seen by search (read-only value object).
// The catalog owns it; search never mutates it.
type Product struct {
	id          string
	name        string
	description string
	price       float64
	category    string
	imageURL    string
	embedding   []float32
}

// New validates and creates a Product.
func New(id, name, description string, price float64, category, imageURL string, embedding []float32) (Product, error) {
	if strings.TrimSpace(id) == "" {
		return Product{}, fmt.Errorf("product ID is required")
	}
	if strings.TrimSpace(name) == "" {
		return Product{}, fmt.Errorf("product %s: name is required", id)
	}
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return Product{}, fmt.Errorf("product %s: invalid price %v", id, price)
	}
	return Reconstruct(id, name, description, price, category, imageURL, embedding), nil
}

// Reconstruct creates a Product without validation (storage hydration).
func Reconstruct(id, name, description string, price float64, category, imageURL string, embedding []float32) Product {
	var emb []float32
	if len(embedding) > 0 {
		emb = make([]float32, len(embedding))
		copy(emb, embedding)
	}
	return Product{
		id:          id,
		name:        name,
		description: description,
		price:       price,
		category:    category,
		imageURL:    imageURL,
		embedding:   emb,
	}
}

// ID returns the catalog identifier.
func (p Product) ID() string { return p.id }

// Name returns the display name.
func (p Product) Name() string { return p.name }

// Description returns the free-text description.
func (p Product) Description() string { return p.description }

// Price returns the unit price.
func (p Product) Price() float64 { return p.price }

// Category returns the catalog category label.
func (p Product) Category() string { return p.category }

// ImageURL returns the primary image location.
func (p Product) ImageURL() string { return p.imageURL }

// Embedding returns the precomputed vector, nil when the product was never embedded.
func (p Product) Embedding() []float32 { return p.embedding }

// HasEmbedding reports whether the product can take part in semantic scoring.
func (p Product) HasEmbedding() bool { return len(p.embedding) > 0 }

// InCategory reports whether the product belongs to category (case-insensitive).
// An empty category matches every product.
func (p Product) InCategory(category string) bool {
	category = strings.TrimSpace(category)
	if category == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(p.category), category)
}

// SearchText returns the text used for keyword fallback and for indexing.
func (p Product) SearchText() string {
	if p.description == "" {
		return p.name
	}
	return p.name + " " + p.description
}
