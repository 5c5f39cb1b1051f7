// Package suppress answers whether a diagnostic is suppressed at an element.
package suppress

import (
	"strings"
	"sync"

	"go.trai.ch/facades/internal/core/domain"
	"go.trai.ch/facades/internal/core/ports"
	"go.trai.ch/facades/internal/engine/cache"
)

// AllWarnings suppresses every diagnostic of warning severity.
const AllWarnings = "warnings"

// Cache memoizes the normalized suppressions of elements and files. Its contents
// are dropped whenever one of its trackers advances.
type Cache struct {
	entries *cache.Value[*sync.Map]
}

// New creates a cache invalidated by the given trackers.
func New(trackers ...ports.ModificationTracker) *Cache {
	return &Cache{
		entries: cache.NewValue(func() (*sync.Map, error) {
			return &sync.Map{}, nil
		}, trackers...),
	}
}

// IsSuppressed reports whether diag is suppressed at el, by el itself, by an
// enclosing element or by its file.
func (c *Cache) IsSuppressed(el *domain.Element, diag domain.Diagnostic) bool {
	entries, _ := c.entries.Get()
	id := strings.ToLower(diag.ID)

	for cur := el; cur != nil; cur = cur.Parent {
		if matches(suppressions(entries, cur, cur.Suppressions), id, diag.Severity) {
			return true
		}
	}
	if el == nil || el.File == nil {
		return false
	}
	return matches(suppressions(entries, el.File, el.File.Suppressions), id, diag.Severity)
}

// Invalidate drops every memoized suppression.
func (c *Cache) Invalidate() {
	c.entries.Invalidate()
}

func suppressions(entries *sync.Map, owner any, raw []string) map[string]struct{} {
	if v, ok := entries.Load(owner); ok {
		return v.(map[string]struct{})
	}
	set := make(map[string]struct{}, len(raw))
	for _, s := range raw {
		set[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	v, _ := entries.LoadOrStore(owner, set)
	return v.(map[string]struct{})
}

func matches(set map[string]struct{}, id string, severity domain.Severity) bool {
	if _, ok := set[id]; ok {
		return true
	}
	if severity == domain.SeverityWarning {
		_, ok := set[AllWarnings]
		return ok
	}
	return false
}
