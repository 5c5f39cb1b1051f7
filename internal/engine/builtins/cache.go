// Package builtins caches loaded built-in declaration bundles for a project.
package builtins

import (
	"sync"

	"go.trai.ch/facades/internal/core/domain"
	"go.trai.ch/facades/internal/core/ports"
	"go.trai.ch/facades/internal/engine/tracker"
)

// Cache maps built-ins keys to loaded bundles. The whole map is recreated, and
// re-seeded with the default bundle, whenever a governing tracker advances.
type Cache struct {
	seed *domain.BuiltIns

	mu       sync.Mutex
	entries  *sync.Map
	snapshot tracker.Snapshot
	resets   uint64
}

// New creates a cache governed by the given trackers. A non-nil seed is stored
// under its key on every reset.
func New(seed *domain.BuiltIns, trackers ...ports.ModificationTracker) *Cache {
	c := &Cache{
		seed:     seed,
		snapshot: tracker.Take(trackers...),
	}
	c.entries = c.fresh()
	return c
}

func (c *Cache) fresh() *sync.Map {
	m := &sync.Map{}
	if c.seed != nil {
		m.Store(c.seed.Key, c.seed)
	}
	return m
}

// current returns the live map, recreating it if the trackers advanced.
func (c *Cache) current() *sync.Map {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.snapshot.UpToDate() {
		c.snapshot = c.snapshot.Retake()
		c.entries = c.fresh()
		c.resets++
	}
	return c.entries
}

// Get returns the bundle stored under key.
func (c *Cache) Get(key domain.BuiltInsKey) (*domain.BuiltIns, bool) {
	v, ok := c.current().Load(key)
	if !ok {
		return nil, false
	}
	return v.(*domain.BuiltIns), true
}

// Set stores a bundle, replacing any previous value.
func (c *Cache) Set(key domain.BuiltInsKey, b *domain.BuiltIns) {
	c.current().Store(key, b)
}

// GetOrPut returns the bundle under key, computing it if absent. Racing callers
// may each run compute, but exactly one result is stored and returned to all.
func (c *Cache) GetOrPut(key domain.BuiltInsKey, compute func() (*domain.BuiltIns, error)) (*domain.BuiltIns, error) {
	m := c.current()
	if v, ok := m.Load(key); ok {
		return v.(*domain.BuiltIns), nil
	}

	b, err := compute()
	if err != nil {
		return nil, err
	}

	actual, _ := m.LoadOrStore(key, b)
	return actual.(*domain.BuiltIns), nil
}

// Len returns the number of stored bundles.
func (c *Cache) Len() int {
	n := 0
	c.current().Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Resets returns how many times the map was recreated.
func (c *Cache) Resets() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resets
}
