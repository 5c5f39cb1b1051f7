package ports

// ModificationTracker exposes a monotonically non-decreasing version counter.
// Trackers are owned by the project model; the cache layer only polls them.
//
//go:generate mockgen -source=tracker.go -destination=mocks/mock_tracker.go -package=mocks
type ModificationTracker interface {
	// ModificationCount returns the current counter value.
	ModificationCount() int64
}
