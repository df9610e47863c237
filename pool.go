package mainthread

import (
	"sync"
	"sync/atomic"
)

// recordPool is a grow-only freelist of command records. Every registered
// operation owns one pool instance; pools are never shared across operation
// kinds, so a record handed out by a pool always has the shape its operation
// expects.
//
// The pool is a pure reuse cache: it grows on demand, never shrinks, and has
// no eviction. Records are zeroed on release, so anything drawn from the
// freelist carries no references from its previous use.
type recordPool[T any] struct {
	mu   sync.Mutex
	free []*T

	// Metrics
	gets   uint64 // atomic: total acquires
	allocs uint64 // atomic: acquires that had to allocate
}

// acquire returns a recycled record, or a freshly allocated zeroed one when
// the freelist is empty.
func (p *recordPool[T]) acquire() *T {
	atomic.AddUint64(&p.gets, 1)

	p.mu.Lock()
	if n := len(p.free); n > 0 {
		rec := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		p.mu.Unlock()
		return rec
	}
	p.mu.Unlock()

	atomic.AddUint64(&p.allocs, 1)
	return new(T)
}

// release zeroes rec and pushes it onto the freelist.
func (p *recordPool[T]) release(rec *T) {
	if rec == nil {
		return
	}
	var zero T
	*rec = zero

	p.mu.Lock()
	p.free = append(p.free, rec)
	p.mu.Unlock()
}

// idle returns the current freelist length.
func (p *recordPool[T]) idle() int {
	p.mu.Lock()
	n := len(p.free)
	p.mu.Unlock()
	return n
}

// allocated returns the number of acquires that allocated a fresh record.
func (p *recordPool[T]) allocated() uint64 {
	return atomic.LoadUint64(&p.allocs)
}

// acquired returns the total number of acquires.
func (p *recordPool[T]) acquired() uint64 {
	return atomic.LoadUint64(&p.gets)
}
