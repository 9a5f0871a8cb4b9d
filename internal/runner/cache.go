package runner

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/displayname/internal/version"
)

// Cache remembers the content fingerprint last seen or written per file,
// so unchanged files (and the runner's own writes) are not transformed again
type Cache struct {
	mu     sync.Mutex
	hashes map[string]uint64
	seed   string
}

// NewCache creates a cache keyed on settings: fingerprints taken under
// different settings never match
func NewCache(settings string) *Cache {
	return &Cache{
		hashes: make(map[string]uint64),
		seed:   version.BuildID() + "\x00" + settings + "\x00",
	}
}

// Fingerprint hashes content together with the cache seed
func (c *Cache) Fingerprint(content []byte) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(c.seed)
	_, _ = d.Write(content)
	return d.Sum64()
}

// Unchanged reports whether path was last recorded with this fingerprint
func (c *Cache) Unchanged(path string, fingerprint uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.hashes[path]
	return ok && h == fingerprint
}

// Store records the fingerprint for path
func (c *Cache) Store(path string, fingerprint uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hashes[path] = fingerprint
}

// Forget drops path, e.g. after it was removed
func (c *Cache) Forget(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.hashes, path)
}

// Len returns the number of tracked files
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.hashes)
}
