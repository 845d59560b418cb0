package grid

import "sort"

// Pooled is a pool entry returned by TakeAll.
type Pooled[T any] struct {
	Position int
	Item     T
}

// RecyclePool caches materialized cells by position for the duration of a
// layout pass so cells already on screen are reused instead of rebuilt.
//
// A pool is owned by a single LayoutManager and is not safe for concurrent use.
type RecyclePool[T any] struct {
	entries map[int]T
}

// NewRecyclePool returns an empty pool.
func NewRecyclePool[T any]() *RecyclePool[T] {
	return &RecyclePool[T]{entries: make(map[int]T)}
}

// Get removes and returns the entry cached for position.
func (p *RecyclePool[T]) Get(position int) (T, bool) {
	item, ok := p.entries[position]
	if ok {
		delete(p.entries, position)
	}
	return item, ok
}

// Peek returns the entry cached for position without claiming it.
func (p *RecyclePool[T]) Peek(position int) (T, bool) {
	item, ok := p.entries[position]
	return item, ok
}

// Put caches item under position, replacing any previous entry.
func (p *RecyclePool[T]) Put(position int, item T) {
	p.entries[position] = item
}

// Len returns the number of cached entries.
func (p *RecyclePool[T]) Len() int {
	return len(p.entries)
}

// TakeAll empties the pool and returns its entries ordered by position.
func (p *RecyclePool[T]) TakeAll() []Pooled[T] {
	if len(p.entries) == 0 {
		return nil
	}
	out := make([]Pooled[T], 0, len(p.entries))
	for pos, item := range p.entries {
		out = append(out, Pooled[T]{Position: pos, Item: item})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	clear(p.entries)
	return out
}
