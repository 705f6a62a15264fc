package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/db"
	"github.com/kailas-cloud/shopsearch/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "emb_cache:"

// maxRank bounds the shape header of a cached entry.
const maxRank = 3

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedEmbedder caches model outputs in a key-value store.
// Keys are scoped by model so switching models never reuses stale vectors.
type CachedEmbedder struct {
	inner      domain.Embedder
	store      store
	model      string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
// A zero ttl keeps entries until evicted by the store.
func New(
	inner domain.Embedder,
	s store,
	model string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEmbedder {
	return &CachedEmbedder{
		inner:      inner,
		store:      s,
		model:      model,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Embed returns a cached output or calls the inner embedder.
// Cache hit: TotalTokens = 0 (no real tokens consumed).
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.cacheKey(text)

	if res, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return res, nil
	}

	c.incCache("miss")

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}

	c.putToCache(ctx, key, result)
	return result, nil
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

func (c *CachedEmbedder) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedEmbedder) cacheKey(text string) string {
	h := sha256.Sum256([]byte(c.model + "\x00" + text))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedEmbedder) getFromCache(ctx context.Context, key string) (domain.EmbeddingResult, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		return domain.EmbeddingResult{}, false
	}
	if len(data) == 0 {
		return domain.EmbeddingResult{}, false
	}

	res, err := decode(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Error(err))
		return domain.EmbeddingResult{}, false
	}
	return res, true
}

func (c *CachedEmbedder) putToCache(ctx context.Context, key string, res domain.EmbeddingResult) {
	data, err := encode(res)
	if err != nil {
		c.logger.Warn("Embedding not cacheable", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}

// encode lays out: rank (u32), dims (u32 each), float32 values. Little-endian.
func encode(res domain.EmbeddingResult) ([]byte, error) {
	shape := res.Dims()
	if len(shape) > maxRank {
		return nil, fmt.Errorf("rank %d exceeds %d", len(shape), maxRank)
	}
	buf := make([]byte, 4+4*len(shape)+4*len(res.Data))
	binary.LittleEndian.PutUint32(buf, uint32(len(shape)))
	off := 4
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("negative dimension %d", d)
		}
		binary.LittleEndian.PutUint32(buf[off:], uint32(d))
		off += 4
	}
	for _, f := range res.Data {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
		off += 4
	}
	return buf, nil
}

func decode(data []byte) (domain.EmbeddingResult, error) {
	if len(data) < 4 || len(data)%4 != 0 {
		return domain.EmbeddingResult{}, fmt.Errorf("invalid embedding cache data: len=%d", len(data))
	}
	rank := int(binary.LittleEndian.Uint32(data))
	if rank == 0 || rank > maxRank || len(data) < 4+4*rank {
		return domain.EmbeddingResult{}, fmt.Errorf("invalid embedding cache header: rank=%d", rank)
	}

	shape := make([]int, rank)
	want := 1
	for i := range shape {
		shape[i] = int(binary.LittleEndian.Uint32(data[4+4*i:]))
		want *= shape[i]
	}

	body := data[4+4*rank:]
	if len(body)/4 != want {
		return domain.EmbeddingResult{}, fmt.Errorf("invalid embedding cache data: shape %v, %d values", shape, len(body)/4)
	}
	vec := make([]float32, want)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(body[i*4:]))
	}
	return domain.EmbeddingResult{Data: vec, Shape: shape}, nil
}
