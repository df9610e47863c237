package mainthread

import "sync"

// commandQueue is an unbounded FIFO of pending commands.
//
// Producers append from any goroutine; the dispatcher pops one record at a
// time, re-acquiring the lock per pop, so producers can keep enqueueing
// while a drain is in progress. Insertion order is execution order, globally
// across all producers: the mutex imposes a single total order.
//
// Storage is a power-of-two ring indexed with a bitmask, doubled in place
// when full. Enqueue therefore always succeeds.
type commandQueue struct {
	mu sync.Mutex

	buffer []command
	mask   uint64

	// head is the consumer index, tail the producer index.
	// Both only ever increment; length is tail-head.
	head uint64
	tail uint64
}

// newCommandQueue creates a queue with the given initial capacity.
// Capacity must be a power of two.
func newCommandQueue(capacity int) *commandQueue {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("mainthread: queue capacity must be a power of two and > 0")
	}
	return &commandQueue{
		buffer: make([]command, capacity),
		mask:   uint64(capacity - 1),
	}
}

// enqueue appends cmd to the tail. It always succeeds, growing the ring
// when full.
func (q *commandQueue) enqueue(cmd command) {
	q.mu.Lock()
	if q.tail-q.head == uint64(len(q.buffer)) {
		q.grow()
	}
	q.buffer[q.tail&q.mask] = cmd
	q.tail++
	q.mu.Unlock()
}

// dequeue removes and returns the head command. The second return value is
// false when the queue is observed empty.
func (q *commandQueue) dequeue() (command, bool) {
	q.mu.Lock()
	if q.head == q.tail {
		q.mu.Unlock()
		return nil, false
	}
	index := q.head & q.mask
	cmd := q.buffer[index]
	q.buffer[index] = nil // drop the reference so pooled records are not retained
	q.head++
	q.mu.Unlock()
	return cmd, true
}

// grow doubles the ring, unwrapping the live region into the new buffer.
// Caller must hold mu.
func (q *commandQueue) grow() {
	next := make([]command, len(q.buffer)*2)
	length := q.tail - q.head
	for i := uint64(0); i < length; i++ {
		next[i] = q.buffer[(q.head+i)&q.mask]
	}
	q.buffer = next
	q.mask = uint64(len(next) - 1)
	q.head = 0
	q.tail = length
}

// size returns the current number of queued commands.
func (q *commandQueue) size() int {
	q.mu.Lock()
	n := int(q.tail - q.head)
	q.mu.Unlock()
	return n
}
