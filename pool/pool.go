// Package pool provides a generic free list for reusable objects.
package pool

// Pool is an unbounded free list with explicit ownership transfer: Release
// hands an object to the pool, Acquire hands an arbitrary pooled object back
// to the caller. There is no capacity limit and no eviction.
//
// Pool is confined to a single goroutine at a time. It is deliberately not
// safe for concurrent use; the engine only touches its pools from the
// controller goroutine.
type Pool[T any] struct {
	items []T
}

func New[T any]() *Pool[T] {
	return &Pool[T]{}
}

// Acquire removes and returns an arbitrary pooled object. The second result
// is false when the pool is empty, in which case the caller allocates fresh.
func (p *Pool[T]) Acquire() (T, bool) {
	if len(p.items) == 0 {
		var zero T
		return zero, false
	}
	n := len(p.items) - 1
	item := p.items[n]
	var zero T
	p.items[n] = zero
	p.items = p.items[:n]
	return item, true
}

// Release adds an object to the pool unconditionally.
func (p *Pool[T]) Release(item T) {
	p.items = append(p.items, item)
}

// Len returns the number of pooled objects.
func (p *Pool[T]) Len() int {
	return len(p.items)
}
