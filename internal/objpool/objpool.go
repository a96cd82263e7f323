// Package objpool implements an arena-style collection with stable integer
// handles. Handles survive cloning the pool (Clone) because they never
// point into the clone's backing array - they are just indices.
package objpool

// Handle is a stable reference into a Pool[T], equal to the index Insert
// assigned it - Handle(0) is the first inserted item, not a sentinel.
// Callers get handles only from Pool.Insert.
type Handle[T any] int

// Pool is an append-only arena of T, indexed by Handle.
type Pool[T any] struct {
	items []T
}

// New returns an empty pool.
func New[T any]() *Pool[T] {
	return &Pool[T]{}
}

// Insert appends x to the pool and returns a handle to it.
func (p *Pool[T]) Insert(x T) Handle[T] {
	p.items = append(p.items, x)
	return Handle[T](len(p.items) - 1)
}

// Get returns the value at h. h must have come from this pool (or a pool
// created from it with the same length); it is a programming error to pass
// an out-of-range handle.
func (p *Pool[T]) Get(h Handle[T]) *T {
	return &p.items[h]
}

// Len returns the number of items in the pool.
func (p *Pool[T]) Len() int {
	return len(p.items)
}

// Indices returns every valid handle into the pool, in insertion order.
func (p *Pool[T]) Indices() []Handle[T] {
	out := make([]Handle[T], len(p.items))
	for i := range out {
		out[i] = Handle[T](i)
	}
	return out
}

// Each calls f for every item in the pool, in insertion order.
func (p *Pool[T]) Each(f func(Handle[T], *T)) {
	for i := range p.items {
		f(Handle[T](i), &p.items[i])
	}
}

// Clone returns a deep-enough copy of the pool: a new backing array holding
// copies of each T. If T itself holds pointers/slices that must not be
// shared between the clone and the original, the caller is responsible for
// a deeper copy.
func (p *Pool[T]) Clone() *Pool[T] {
	items := make([]T, len(p.items))
	copy(items, p.items)
	return &Pool[T]{items: items}
}

// Raw returns the underlying handle value. Used only for deterministic
// ordering (sorting violations by handle) and logging.
func (h Handle[T]) Raw() int {
	return int(h)
}
