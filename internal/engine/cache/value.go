package cache

import (
	"sync"

	"go.trai.ch/facades/internal/core/ports"
	"go.trai.ch/facades/internal/engine/tracker"
)

// Value is a lazily computed value recomputed after any of its trackers advance.
// The compute closure is stored with the value; Invalidate forces a recompute.
type Value[T any] struct {
	mu       sync.Mutex
	compute  func() (T, error)
	own      *tracker.Simple
	trackers []ports.ModificationTracker
	snapshot tracker.Snapshot
	value    T
	present  bool
	onDrop   func(T)
	computes uint64
}

// NewValue creates a value depending on the given trackers.
func NewValue[T any](compute func() (T, error), deps ...ports.ModificationTracker) *Value[T] {
	own := tracker.NewSimple()
	return &Value[T]{
		compute:  compute,
		own:      own,
		trackers: append(append([]ports.ModificationTracker{}, deps...), own),
	}
}

// OnDrop registers a callback for values replaced or invalidated.
func (v *Value[T]) OnDrop(fn func(T)) *Value[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onDrop = fn
	return v
}

// Get returns the value, computing it on first use or after a tracker advanced.
func (v *Value[T]) Get() (T, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.present && v.snapshot.UpToDate() {
		return v.value, nil
	}
	v.dropLocked()

	snap := tracker.Take(v.trackers...)
	value, err := v.compute()
	if err != nil {
		var zero T
		return zero, err
	}
	v.value = value
	v.present = true
	v.snapshot = snap
	v.computes++
	return value, nil
}

// Peek returns the current value if it is computed and still valid.
func (v *Value[T]) Peek() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.present && v.snapshot.UpToDate() {
		return v.value, true
	}
	var zero T
	return zero, false
}

// Invalidate advances the value's own tracker.
func (v *Value[T]) Invalidate() {
	v.own.Increment()
}

// Computes returns how many times the value was computed.
func (v *Value[T]) Computes() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.computes
}

func (v *Value[T]) dropLocked() {
	if !v.present {
		return
	}
	if v.onDrop != nil {
		v.onDrop(v.value)
	}
	var zero T
	v.value = zero
	v.present = false
}
