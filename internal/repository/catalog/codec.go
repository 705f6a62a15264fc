// Package catalog reads product candidates from the configured catalog backend.
//
// Three backends share one contract: Redis hashes, a Postgres table with a
// pgvector column, and a YAML file for local runs.
package catalog

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/product"
)

// Hash field names of a stored product.
const (
	fieldID          = "id"
	fieldName        = "name"
	fieldDescription = "description"
	fieldPrice       = "price"
	fieldCategory    = "category"
	fieldImage       = "image_url"
	fieldEmbedding   = "embedding"
)

var productKeyPrefix = domain.KeyPrefix + "product:"

// ProductKey returns the Redis key of a product hash.
func ProductKey(id string) string {
	return productKeyPrefix + id
}

// ToHash flattens a product into hash fields. The embedding is stored as
// little-endian float32 bytes.
func ToHash(p product.Product) map[string]string {
	fields := map[string]string{
		fieldID:          p.ID(),
		fieldName:        p.Name(),
		fieldDescription: p.Description(),
		fieldPrice:       strconv.FormatFloat(p.Price(), 'f', -1, 64),
		fieldCategory:    p.Category(),
		fieldImage:       p.ImageURL(),
	}
	if p.HasEmbedding() {
		fields[fieldEmbedding] = string(EncodeVector(p.Embedding()))
	}
	return fields
}

// FromHash rebuilds a product from hash fields.
func FromHash(fields map[string]string) (product.Product, error) {
	price, err := strconv.ParseFloat(fields[fieldPrice], 64)
	if err != nil {
		return product.Product{}, fmt.Errorf("product %q: price %q: %w", fields[fieldID], fields[fieldPrice], err)
	}

	var emb []float32
	if raw := fields[fieldEmbedding]; raw != "" {
		emb, err = DecodeVector([]byte(raw))
		if err != nil {
			return product.Product{}, fmt.Errorf("product %q: %w", fields[fieldID], err)
		}
	}

	p, err := product.New(
		fields[fieldID], fields[fieldName], fields[fieldDescription], price,
		fields[fieldCategory], fields[fieldImage], emb,
	)
	if err != nil {
		return product.Product{}, fmt.Errorf("product %q: %w", fields[fieldID], err)
	}
	return p, nil
}

// EncodeVector serializes a vector as little-endian float32 bytes.
func EncodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// DecodeVector is the inverse of EncodeVector. NaN and infinite components
// are rejected.
func DecodeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		v := math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("invalid embedding data: component %d is %v", i, v)
		}
		vec[i] = v
	}
	return vec, nil
}
