// Package tracker provides modification trackers and snapshots of their values.
package tracker

import (
	"sync/atomic"

	"go.trai.ch/facades/internal/core/ports"
)

var (
	_ ports.ModificationTracker = (*Simple)(nil)
	_ ports.ModificationTracker = Func(nil)
)

// Simple is a counter advanced explicitly by its owner.
type Simple struct {
	count atomic.Int64
}

// NewSimple creates a tracker starting at zero.
func NewSimple() *Simple {
	return &Simple{}
}

// ModificationCount returns the current counter value.
func (s *Simple) ModificationCount() int64 {
	return s.count.Load()
}

// Increment advances the counter and returns the new value.
func (s *Simple) Increment() int64 {
	return s.count.Add(1)
}

// Func adapts a function to ports.ModificationTracker.
// The function must be monotonically non-decreasing.
type Func func() int64

// ModificationCount calls f.
func (f Func) ModificationCount() int64 {
	return f()
}

// Sum combines trackers into one whose count is the sum of its parts.
// The sum advances whenever any part does. Nil trackers are ignored.
func Sum(trackers ...ports.ModificationTracker) ports.ModificationTracker {
	parts := compact(trackers)
	return Func(func() int64 {
		var total int64
		for _, t := range parts {
			total += t.ModificationCount()
		}
		return total
	})
}

// Snapshot records the values of a tracker set at one point in time.
type Snapshot struct {
	trackers []ports.ModificationTracker
	counts   []int64
}

// Take reads the current value of every tracker. Nil trackers are ignored.
func Take(trackers ...ports.ModificationTracker) Snapshot {
	parts := compact(trackers)
	counts := make([]int64, len(parts))
	for i, t := range parts {
		counts[i] = t.ModificationCount()
	}
	return Snapshot{trackers: parts, counts: counts}
}

// UpToDate reports whether no tracker has advanced since the snapshot was taken.
// Values are read at call time.
func (s Snapshot) UpToDate() bool {
	for i, t := range s.trackers {
		if t.ModificationCount() != s.counts[i] {
			return false
		}
	}
	return true
}

// Trackers returns the tracked set.
func (s Snapshot) Trackers() []ports.ModificationTracker {
	return s.trackers
}

// Retake returns a fresh snapshot of the same trackers.
func (s Snapshot) Retake() Snapshot {
	return Take(s.trackers...)
}

func compact(trackers []ports.ModificationTracker) []ports.ModificationTracker {
	parts := make([]ports.ModificationTracker, 0, len(trackers))
	for _, t := range trackers {
		if t != nil {
			parts = append(parts, t)
		}
	}
	return parts
}
