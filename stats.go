package mainthread

import "sync/atomic"

// Stats contains a snapshot of core operation counters. All values are
// collected without locks on the hot counters, so they may be slightly
// inconsistent with each other during concurrent operations.
//
// Example:
//
//	stats := core.Stats()
//	fmt.Printf("executed %d/%d, %d pending\n",
//	    stats.Executed, stats.Enqueued, stats.QueueDepth)
type Stats struct {
	// Enqueued is the total number of commands enqueued since creation,
	// including escalation records.
	Enqueued uint64

	// Executed is the total number of commands executed successfully.
	Executed uint64

	// Raised is the total number of errors scheduled through RaiseError,
	// including escalations produced by producer-side validation.
	Raised uint64

	// Escalated is the number of drain invocations that were aborted by an
	// escalated error.
	Escalated uint64

	// Drains is the total number of Execute invocations, including those
	// that found the queue empty.
	Drains uint64

	// QueueDepth is the number of commands queued at snapshot time.
	QueueDepth int

	// Ops contains per-operation statistics, in registration order.
	Ops []OpStats
}

// OpStats contains statistics for a single registered operation.
type OpStats struct {
	// Name is the operation's registered name.
	Name string

	// Calls is the total number of producer calls that enqueued work.
	Calls uint64

	// PoolIdle is the number of records currently sitting in this
	// operation's freelist.
	PoolIdle int

	// PoolAllocs is the number of records the pool had to allocate fresh,
	// i.e. acquires that found the freelist empty.
	PoolAllocs uint64
}

// Stats returns a snapshot of core statistics, including per-operation
// pool and call counters.
func (c *Core) Stats() Stats {
	stats := Stats{
		Enqueued:   atomic.LoadUint64(&c.metrics.enqueued),
		Executed:   atomic.LoadUint64(&c.metrics.executed),
		Raised:     atomic.LoadUint64(&c.metrics.raised),
		Escalated:  atomic.LoadUint64(&c.metrics.escalated),
		Drains:     atomic.LoadUint64(&c.metrics.drains),
		QueueDepth: c.queue.size(),
	}

	c.regMu.RLock()
	stats.Ops = make([]OpStats, 0, len(c.order))
	for _, name := range c.order {
		stats.Ops = append(stats.Ops, c.ops[name].opStats())
	}
	c.regMu.RUnlock()

	return stats
}
