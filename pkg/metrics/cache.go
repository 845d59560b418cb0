package metrics

import "sync/atomic"

// Cache counts hits and misses of a reuse cache.
type Cache struct {
	name   string
	hits   atomic.Int64
	misses atomic.Int64
}

func newCache(name string) *Cache {
	return &Cache{name: name}
}

// Hit records a reused cell.
func (m *Cache) Hit() {
	if enabled {
		m.hits.Add(1)
	}
}

// Miss records a cell that had to be built.
func (m *Cache) Miss() {
	if enabled {
		m.misses.Add(1)
	}
}

// Hits returns the number of recorded hits.
func (m *Cache) Hits() int64 { return m.hits.Load() }

// Misses returns the number of recorded misses.
func (m *Cache) Misses() int64 { return m.misses.Load() }

// CacheStats is a snapshot of a Cache.
type CacheStats struct {
	Name    string
	Hits    int64
	Misses  int64
	HitRate float64
}

// Stats returns a snapshot of m. HitRate is 0 when nothing was recorded.
func (m *Cache) Stats() CacheStats {
	s := CacheStats{Name: m.name, Hits: m.Hits(), Misses: m.Misses()}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}

// Reset clears the counters.
func (m *Cache) Reset() {
	m.hits.Store(0)
	m.misses.Store(0)
}

var (
	// CellPool tracks recycle pool reuse during layout and scroll passes.
	CellPool = newCache("cell_pool")
	// CellFreeList tracks renderer free list reuse when the provider builds cells.
	CellFreeList = newCache("cell_free_list")
)

var caches = []*Cache{CellPool, CellFreeList}

// CacheSnapshot returns the stats of every cache that has data.
func CacheSnapshot() []CacheStats {
	var out []CacheStats
	for _, m := range caches {
		if s := m.Stats(); s.Hits+s.Misses > 0 {
			out = append(out, s)
		}
	}
	return out
}
