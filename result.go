package mainthread

import (
	"context"
	"sync"
)

// Result is a reusable one-shot completion handshake between a producer
// goroutine and the dispatcher. The producer creates it (the zero value is
// ready to use), passes it along with a command, and blocks on Wait; the
// dispatcher calls Ready exactly once per cycle when the privileged work has
// been performed.
//
// A Result can back any number of successive commands: Reset rearms it for
// the next cycle. Calling Reset while another goroutine is blocked in Wait
// is undefined behavior and must be avoided by the caller.
//
// Example:
//
//	var r mainthread.Result
//	table.PlayAudio(speaker, &r)
//	r.Wait() // blocks until the next drain executes the command
type Result struct {
	mu    sync.Mutex
	done  chan struct{}
	ready bool
}

// Reset clears the ready flag so the Result can back another command.
// It has no effect on waiters still parked from a previous cycle.
func (r *Result) Reset() {
	r.mu.Lock()
	r.ready = false
	r.done = nil
	r.mu.Unlock()
}

// Ready marks the Result complete and releases every waiter. It is intended
// to be called by the dispatcher, on the owning thread, at most once per
// Reset cycle; further calls before the next Reset are no-ops.
func (r *Result) Ready() {
	r.mu.Lock()
	r.complete()
	r.mu.Unlock()
}

// complete marks readiness and releases waiters. Caller must hold mu.
func (r *Result) complete() {
	if r.ready {
		return
	}
	r.ready = true
	if r.done != nil {
		close(r.done)
	}
}

// Wait blocks the calling goroutine until Ready has fired since the last
// Reset. Once ready, repeated calls return immediately without reblocking.
//
// Wait has no timeout: if the associated command is never executed, Wait
// blocks forever. Use WaitContext for a bounded wait.
func (r *Result) Wait() {
	ch, ok := r.waitChan()
	if ok {
		return
	}
	<-ch
}

// WaitContext behaves like Wait but gives up when ctx ends, returning
// ctx.Err(). A nil error means the Result is ready.
func (r *Result) WaitContext(ctx context.Context) error {
	ch, ok := r.waitChan()
	if ok {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// waitChan returns (nil, true) if already ready, otherwise the channel that
// will be closed by Ready for the current cycle.
func (r *Result) waitChan() (chan struct{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ready {
		return nil, true
	}
	if r.done == nil {
		r.done = make(chan struct{})
	}
	return r.done, false
}

// IsReady reports whether Ready has fired since the last Reset. It never
// blocks.
func (r *Result) IsReady() bool {
	r.mu.Lock()
	ready := r.ready
	r.mu.Unlock()
	return ready
}

// ResultOf is a Result that also carries a value of type T from the
// dispatcher back to the producer. The value is stored by Ready and read by
// Get, both under the Result's lock, so the handoff is race-free.
//
// Example:
//
//	var r mainthread.ResultOf[engine.Object]
//	table.Find("Player", &r)
//	obj := r.Get()
type ResultOf[T any] struct {
	Result
	data T
}

// Reset clears the ready flag and the stored value.
func (r *ResultOf[T]) Reset() {
	r.mu.Lock()
	r.ready = false
	r.done = nil
	var zero T
	r.data = zero
	r.mu.Unlock()
}

// Ready stores v and marks the Result complete, releasing every waiter.
// Dispatcher-side, at most once per Reset cycle.
func (r *ResultOf[T]) Ready(v T) {
	r.mu.Lock()
	if !r.ready {
		r.data = v
	}
	r.complete()
	r.mu.Unlock()
}

// Get blocks until the value has been published, then returns it. Repeated
// calls return the same value without reblocking until the next Reset.
func (r *ResultOf[T]) Get() T {
	r.Wait()
	r.mu.Lock()
	v := r.data
	r.mu.Unlock()
	return v
}

// GetContext behaves like Get but gives up when ctx ends. The returned value
// is the zero value of T whenever the error is non-nil.
func (r *ResultOf[T]) GetContext(ctx context.Context) (T, error) {
	if err := r.WaitContext(ctx); err != nil {
		var zero T
		return zero, err
	}
	r.mu.Lock()
	v := r.data
	r.mu.Unlock()
	return v, nil
}
