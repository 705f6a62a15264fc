package search

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/outcome"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
)

// ComputeFunc produces the outcome for a cache miss.
type ComputeFunc func(ctx context.Context) (outcome.Outcome, error)

type cacheEntry struct {
	key      string
	outcome  outcome.Outcome
	storedAt time.Time
}

// ResultCache keeps search outcomes for a fixed TTL, bounded by LRU eviction.
//
// Expired entries are dropped lazily on read. Concurrent misses on one key
// share a single computation. Errors are never cached. Cached outcomes are
// shared between callers and must be treated as read-only.
type ResultCache struct {
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently used

	group singleflight.Group
}

// NewResultCache creates a cache. Non-positive arguments fall back to defaults.
func NewResultCache(ttl time.Duration, maxEntries int) *ResultCache {
	if ttl <= 0 {
		ttl = domain.DefaultResultTTLSec * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = domain.DefaultResultCacheEntries
	}
	return &ResultCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
		entries:    make(map[string]*list.Element),
		order:      list.New(),
	}
}

// GetOrCompute returns the fresh entry for key or computes, stores and returns a new one.
//
// fn runs detached from ctx cancellation, so a computation started for a caller
// that goes away still completes and is cached for the next one.
func (c *ResultCache) GetOrCompute(ctx context.Context, key string, fn ComputeFunc) (outcome.Outcome, error) {
	if o, ok := c.get(key); ok {
		metrics.ResultCacheTotal.WithLabelValues("hit").Inc()
		return o, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		// Another flight may have filled the entry between get and DoChan.
		if o, ok := c.get(key); ok {
			return o, nil
		}
		o, err := fn(detached)
		if err != nil {
			return nil, err
		}
		c.put(key, o)
		return o, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			metrics.ResultCacheTotal.WithLabelValues("shared").Inc()
		} else {
			metrics.ResultCacheTotal.WithLabelValues("miss").Inc()
		}
		if res.Err != nil {
			return outcome.Outcome{}, fmt.Errorf("compute %q: %w", key, res.Err)
		}
		return res.Val.(outcome.Outcome), nil //nolint:forcetypeassert // only outcomes are stored
	case <-ctx.Done():
		return outcome.Outcome{}, fmt.Errorf("wait for search: %w", ctx.Err())
	}
}

// Len returns the number of entries, expired ones included until read.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Purge drops every entry.
func (c *ResultCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
	metrics.ResultCacheEntries.Set(0)
}

func (c *ResultCache) get(key string) (outcome.Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return outcome.Outcome{}, false
	}
	e := el.Value.(*cacheEntry) //nolint:forcetypeassert // list holds only entries
	if c.now().Sub(e.storedAt) >= c.ttl {
		c.removeLocked(el)
		return outcome.Outcome{}, false
	}
	c.order.MoveToFront(el)
	return e.outcome, true
}

func (c *ResultCache) put(key string, o outcome.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		e := el.Value.(*cacheEntry) //nolint:forcetypeassert // list holds only entries
		e.outcome, e.storedAt = o, c.now()
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, outcome: o, storedAt: c.now()})
	for c.order.Len() > c.maxEntries {
		c.removeLocked(c.order.Back())
	}
	metrics.ResultCacheEntries.Set(float64(c.order.Len()))
}

func (c *ResultCache) removeLocked(el *list.Element) {
	e := c.order.Remove(el).(*cacheEntry) //nolint:forcetypeassert // list holds only entries
	delete(c.entries, e.key)
	metrics.ResultCacheEntries.Set(float64(c.order.Len()))
}
