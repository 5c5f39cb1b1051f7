// Package cache provides the bounded facade caches and tracker-guarded lazy values.
package cache

import (
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.trai.ch/facades/internal/core/domain"
)

// Stats counts cache activity.
type Stats struct {
	Hits          uint64 `json:"hits"`
	Misses        uint64 `json:"misses"`
	Evictions     uint64 `json:"evictions"`
	Invalidations uint64 `json:"invalidations"`
	Len           int    `json:"len"`
}

// Option configures an LRU.
type Option[K comparable, V any] func(*LRU[K, V])

// WithValidity drops entries for which valid reports false on lookup.
func WithValidity[K comparable, V any](valid func(V) bool) Option[K, V] {
	return func(c *LRU[K, V]) {
		c.valid = valid
	}
}

// WithEvict registers a callback for entries leaving the cache by eviction,
// invalidation or purge. It runs with the cache lock held.
func WithEvict[K comparable, V any](onEvict func(K, V)) Option[K, V] {
	return func(c *LRU[K, V]) {
		c.onEvict = onEvict
	}
}

// LRU is a bounded least-recently-used cache. One mutex guards the whole
// lookup-or-create, so concurrent misses for a key create the value once.
//
// With a probation segment the cache is segmented: new entries enter probation,
// a hit there promotes the entry to the protected segment, and entries pushed
// out of the protected segment fall back to probation.
type LRU[K comparable, V any] struct {
	mu        sync.Mutex
	protected *simplelru.LRU[K, V]
	probation *simplelru.LRU[K, V]
	sizes     [2]int
	valid     func(V) bool
	onEvict   func(K, V)
	stats     Stats
}

// NewLRU creates a plain LRU holding at most size entries.
func NewLRU[K comparable, V any](size int, opts ...Option[K, V]) (*LRU[K, V], error) {
	return newLRU(size, 0, opts)
}

// NewSegmented creates a segmented LRU.
func NewSegmented[K comparable, V any](protected, probation int, opts ...Option[K, V]) (*LRU[K, V], error) {
	if probation <= 0 {
		return nil, domain.Annotate(domain.ErrInvalidCacheSize, "probation", probation)
	}
	return newLRU(protected, probation, opts)
}

func newLRU[K comparable, V any](protected, probation int, opts []Option[K, V]) (*LRU[K, V], error) {
	if protected <= 0 {
		return nil, domain.Annotate(domain.ErrInvalidCacheSize, "size", protected)
	}
	c := &LRU[K, V]{sizes: [2]int{protected, probation}}
	var err error
	if c.protected, err = simplelru.NewLRU[K, V](protected, nil); err != nil {
		return nil, err
	}
	if probation > 0 {
		if c.probation, err = simplelru.NewLRU[K, V](probation, nil); err != nil {
			return nil, err
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetOrCreate returns the cached value for key or stores the result of create.
// create runs under the cache lock.
func (c *LRU[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.lookup(key); ok {
		c.stats.Hits++
		return v, nil
	}
	c.stats.Misses++

	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	c.insert(key, v)
	return v, nil
}

// Get returns the cached value for key.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.lookup(key)
	if ok {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	return v, ok
}

// Peek returns the cached value without touching recency or statistics.
func (c *LRU[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.protected.Peek(key); ok {
		return v, true
	}
	if c.probation != nil {
		return c.probation.Peek(key)
	}
	var zero V
	return zero, false
}

// Remove drops key from the cache.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drop(key)
}

// Purge drops every entry.
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, seg := range c.segments() {
		for seg.Len() > 0 {
			k, v, _ := seg.RemoveOldest()
			c.evicted(k, v)
		}
	}
}

// Len returns the number of entries across segments.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.length()
}

// keys returns the keys from least to most recently used, probation first.
func (c *LRU[K, V]) keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	var keys []K
	if c.probation != nil {
		keys = append(keys, c.probation.Keys()...)
	}
	return append(keys, c.protected.Keys()...)
}

// Stats returns a copy of the counters.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Len = c.length()
	return s
}

func (c *LRU[K, V]) length() int {
	n := c.protected.Len()
	if c.probation != nil {
		n += c.probation.Len()
	}
	return n
}

func (c *LRU[K, V]) segments() []*simplelru.LRU[K, V] {
	if c.probation == nil {
		return []*simplelru.LRU[K, V]{c.protected}
	}
	return []*simplelru.LRU[K, V]{c.probation, c.protected}
}

// lookup finds key, promoting probation hits and dropping invalid entries.
func (c *LRU[K, V]) lookup(key K) (V, bool) {
	var zero V

	if v, ok := c.protected.Get(key); ok {
		if c.valid != nil && !c.valid(v) {
			c.protected.Remove(key)
			c.stats.Invalidations++
			c.evicted(key, v)
			return zero, false
		}
		return v, true
	}

	if c.probation == nil {
		return zero, false
	}

	v, ok := c.probation.Peek(key)
	if !ok {
		return zero, false
	}
	c.probation.Remove(key)
	if c.valid != nil && !c.valid(v) {
		c.stats.Invalidations++
		c.evicted(key, v)
		return zero, false
	}
	c.promote(key, v)
	return v, true
}

func (c *LRU[K, V]) insert(key K, v V) {
	if c.probation == nil {
		c.addBounded(c.protected, c.sizes[0], key, v)
		return
	}
	c.addBounded(c.probation, c.sizes[1], key, v)
}

func (c *LRU[K, V]) promote(key K, v V) {
	if c.protected.Len() >= c.sizes[0] {
		if k, old, ok := c.protected.RemoveOldest(); ok {
			c.addBounded(c.probation, c.sizes[1], k, old)
		}
	}
	c.protected.Add(key, v)
}

func (c *LRU[K, V]) addBounded(seg *simplelru.LRU[K, V], size int, key K, v V) {
	if !seg.Contains(key) && seg.Len() >= size {
		if k, old, ok := seg.RemoveOldest(); ok {
			c.evicted(k, old)
		}
	}
	seg.Add(key, v)
}

func (c *LRU[K, V]) drop(key K) bool {
	for _, seg := range c.segments() {
		if v, ok := seg.Peek(key); ok {
			seg.Remove(key)
			c.evicted(key, v)
			return true
		}
	}
	return false
}

func (c *LRU[K, V]) evicted(key K, v V) {
	c.stats.Evictions++
	if c.onEvict != nil {
		c.onEvict(key, v)
	}
}
