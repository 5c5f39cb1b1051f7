package watcher

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"sync"
	"unique"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/facades/internal/core/ports"
	"go.trai.ch/zerr"
)

// ContentHashes remembers the content digest of watched files, so writes that
// leave a file unchanged can be dropped before they advance any tracker.
type ContentHashes struct {
	mu     sync.Mutex
	hashes map[unique.Handle[string]]uint64
}

// NewContentHashes creates an empty digest cache.
func NewContentHashes() *ContentHashes {
	return &ContentHashes{hashes: make(map[unique.Handle[string]]uint64)}
}

// Seed records the current digests of files without reporting them as changed.
func (c *ContentHashes) Seed(paths []string) {
	for _, p := range paths {
		_, _ = c.changed(p)
	}
}

// Filter drops write events whose file content digest did not change. Other
// operations always pass and forget the recorded digest.
func (c *ContentHashes) Filter(events []ports.WatchEvent) ([]ports.WatchEvent, error) {
	kept := events[:0:0]
	var errs error
	for _, ev := range events {
		if ev.Operation != ports.OpWrite {
			c.forget(ev.Path)
			kept = append(kept, ev)
			continue
		}
		changed, err := c.changed(ev.Path)
		if err != nil {
			errs = errors.Join(errs, err)
			kept = append(kept, ev)
			continue
		}
		if changed {
			kept = append(kept, ev)
		}
	}
	return kept, errs
}

func (c *ContentHashes) changed(path string) (bool, error) {
	sum, err := digest(path)
	if err != nil {
		c.forget(path)
		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}
		return true, zerr.With(zerr.Wrap(err, "failed to hash file"), "path", path)
	}

	key := unique.Make(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	prev, ok := c.hashes[key]
	c.hashes[key] = sum
	return !ok || prev != sum, nil
}

func (c *ContentHashes) forget(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.hashes, unique.Make(path))
}

func digest(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	d := xxhash.New()
	if _, err := io.Copy(d, f); err != nil {
		return 0, err
	}
	return d.Sum64(), nil
}
