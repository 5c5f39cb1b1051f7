// Package globalctx holds shared analysis storage and the exception-tracker chain
// contexts derive from one another.
package globalctx

import (
	"go.trai.ch/facades/internal/core/ports"
	"go.trai.ch/facades/internal/engine/tracker"
)

// Context owns a reference to shared analysis storage plus an ordered chain of
// exception trackers. A derived context shares the storage and appends one tracker.
type Context struct {
	name       string
	storage    *Storage
	parent     *Context
	own        *tracker.Simple
	exceptions ports.ModificationTracker
}

// New creates a root context with fresh storage.
func New(name string) *Context {
	own := tracker.NewSimple()
	return &Context{
		name:       name,
		storage:    NewStorage(),
		own:        own,
		exceptions: own,
	}
}

// Derive returns a child context sharing this context's storage with one more
// exception tracker appended. The child is stale whenever the parent is.
func (c *Context) Derive(name string) *Context {
	own := tracker.NewSimple()
	return &Context{
		name:       name,
		storage:    c.storage,
		parent:     c,
		own:        own,
		exceptions: tracker.Sum(c.exceptions, own),
	}
}

// Name returns the debug name.
func (c *Context) Name() string {
	return c.name
}

// Storage returns the shared analysis storage.
func (c *Context) Storage() *Storage {
	return c.storage
}

// Parent returns the context this one was derived from, or nil.
func (c *Context) Parent() *Context {
	return c.parent
}

// ExceptionTracker advances whenever an exception is reported on this context or
// any ancestor.
func (c *Context) ExceptionTracker() ports.ModificationTracker {
	return c.exceptions
}

// ReportException records a failed computation against this context.
func (c *Context) ReportException(err error) {
	if err == nil {
		return
	}
	c.own.Increment()
}

// Depth returns the number of trackers in the chain.
func (c *Context) Depth() int {
	depth := 0
	for cur := c; cur != nil; cur = cur.parent {
		depth++
	}
	return depth
}

// IsDescendantOf reports whether ancestor lies strictly above c in the derivation chain.
func (c *Context) IsDescendantOf(ancestor *Context) bool {
	if ancestor == nil {
		return false
	}
	for cur := c.parent; cur != nil; cur = cur.parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}
