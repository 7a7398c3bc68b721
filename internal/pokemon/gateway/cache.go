package gateway

import (
	"sort"
	"sync"
)

// NameSet is a set of canonical Pokémon names. Sets handed out by the
// gateway are shared with its cache and must be treated as read-only.
type NameSet map[string]struct{}

// NewNameSet builds a set from names.
func NewNameSet(names ...string) NameSet {
	s := make(NameSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Contains reports whether name is in the set.
func (s NameSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the members in ascending order.
func (s NameSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Cache holds the gateway's process-lifetime lookups: the full name list,
// the version list, and the allowed-name set per version. Entries are never
// evicted. Writes only ever replace a value with an equivalent refetch.
type Cache struct {
	mu          sync.RWMutex
	names       []string
	versions    []string
	versionSets map[string]NameSet
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{versionSets: make(map[string]NameSet)}
}

// Names returns the cached name list, if populated.
func (c *Cache) Names() ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.names) == 0 {
		return nil, false
	}
	return append([]string(nil), c.names...), true
}

// SetNames stores the name list. Empty lists are ignored.
func (c *Cache) SetNames(names []string) {
	if len(names) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = append([]string(nil), names...)
}

// Versions returns the cached version list, if populated.
func (c *Cache) Versions() ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.versions) == 0 {
		return nil, false
	}
	return append([]string(nil), c.versions...), true
}

// SetVersions stores the version list. Empty lists are ignored.
func (c *Cache) SetVersions(versions []string) {
	if len(versions) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions = append([]string(nil), versions...)
}

// VersionSet returns the allowed names for version, if cached.
func (c *Cache) VersionSet(version string) (NameSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.versionSets[version]
	return s, ok
}

// SetVersionSet stores the allowed names for version.
func (c *Cache) SetVersionSet(version string, set NameSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versionSets[version] = set
}
