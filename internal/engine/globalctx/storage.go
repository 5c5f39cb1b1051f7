package globalctx

import (
	"context"
	"strconv"
	"sync"

	"go.trai.ch/facades/internal/core/domain"
	"golang.org/x/sync/singleflight"
)

// Owner identifies the facade an analysis result belongs to.
type Owner uint64

type entryKey struct {
	owner      Owner
	generation uint64
	module     domain.ModuleInfo
}

// Storage memoizes module analyses for every facade on one derivation chain.
// Concurrent requests for the same entry run the computation once.
type Storage struct {
	mu      sync.RWMutex
	entries map[entryKey]*domain.ModuleAnalysis
	owners  map[Owner]struct{}
	next    Owner
	closed  bool
	group   singleflight.Group
}

// NewStorage creates empty storage.
func NewStorage() *Storage {
	return &Storage{
		entries: make(map[entryKey]*domain.ModuleAnalysis),
		owners:  make(map[Owner]struct{}),
	}
}

// Register allocates an owner id for a facade.
func (s *Storage) Register() Owner {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.owners[s.next] = struct{}{}
	return s.next
}

// Compute returns the memoized analysis for the key, running compute on a miss.
// Results for released owners are returned but not memoized. A shared computation
// outlives the cancellation of any single caller; each caller stops waiting when
// its own context is done.
func (s *Storage) Compute(
	ctx context.Context,
	owner Owner,
	generation uint64,
	module domain.ModuleInfo,
	compute func(context.Context) (*domain.ModuleAnalysis, error),
) (*domain.ModuleAnalysis, error) {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, domain.ErrStorageClosed
	}
	if res, ok := s.Lookup(owner, generation, module); ok {
		return res, nil
	}

	flightKey := strconv.FormatUint(uint64(owner), 10) + "/" +
		strconv.FormatUint(generation, 10) + "/" + module.String()
	detached := context.WithoutCancel(ctx)

	ch := s.group.DoChan(flightKey, func() (any, error) {
		if res, ok := s.Lookup(owner, generation, module); ok {
			return res, nil
		}

		res, err := compute(detached)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if _, live := s.owners[owner]; live && !s.closed {
			s.entries[keyOf(owner, generation, module)] = res
		}
		return res, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*domain.ModuleAnalysis), nil
	}
}

func keyOf(owner Owner, generation uint64, module domain.ModuleInfo) entryKey {
	return entryKey{owner: owner, generation: generation, module: module}
}

// Lookup returns a memoized analysis without computing.
func (s *Storage) Lookup(owner Owner, generation uint64, module domain.ModuleInfo) (*domain.ModuleAnalysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.entries[keyOf(owner, generation, module)]
	return res, ok
}

// Prune drops the owner's entries older than generation.
func (s *Storage) Prune(owner Owner, generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.entries {
		if key.owner == owner && key.generation < generation {
			delete(s.entries, key)
		}
	}
}

// Release drops every entry of the owner and stops memoizing for it.
func (s *Storage) Release(owner Owner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.owners, owner)
	for key := range s.entries {
		if key.owner == owner {
			delete(s.entries, key)
		}
	}
}

// Len returns the number of memoized analyses.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close drops all entries. Later computations fail with domain.ErrStorageClosed.
func (s *Storage) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	clear(s.entries)
	clear(s.owners)
}
