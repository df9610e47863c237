package mainthread

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// command is the unit of work transferred from producer goroutines to the
// owning thread. Implementations are the typed operation records and the
// escalation record. Executing a command either performs the privileged work
// and publishes its Result, or returns an error that aborts the drain.
//
// The set of implementations is closed within this package; there is no
// operation tag and no runtime dispatch table to fall through.
type command interface {
	execute() error
}

// registeredOp is the core-facing view of a registered operation, used for
// duplicate detection and stats collection.
type registeredOp interface {
	opName() string
	opStats() OpStats
}

// Core owns the command queue and all operation pools for one embedding
// process. It is constructed once by the embedding application and injected
// wherever producers run; there is no ambient global instance.
//
// The single owning thread (the host's main/UI thread) must call Execute on
// a regular cadence, typically once per frame or tick. Any number of other
// goroutines may call into registered operations and RaiseError.
type Core struct {
	config Config
	queue  *commandQueue

	// Registered operations, keyed by name. The slice preserves
	// registration order for stable stats output.
	regMu sync.RWMutex
	ops   map[string]registeredOp
	order []string

	// Escalation records are pooled like any other operation kind.
	raisePool recordPool[raise]

	// draining is 1 while an Execute invocation is running.
	draining uint32 // atomic

	metrics coreMetrics
}

// coreMetrics tracks core-wide statistics.
type coreMetrics struct {
	enqueued  uint64 // atomic
	executed  uint64 // atomic
	raised    uint64 // atomic
	escalated uint64 // atomic
	drains    uint64 // atomic
}

// New creates a Core with the given options. It returns an error if the
// configuration is invalid.
//
// Example:
//
//	core, err := mainthread.New(
//	    mainthread.WithQueueCapacity(256),
//	    mainthread.WithLogger(logger),
//	)
func New(opts ...Option) (*Core, error) {
	cfg := DefaultConfig()

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.QueueCapacity == 0 {
		cfg.QueueCapacity = 64
	}

	return &Core{
		config: cfg,
		queue:  newCommandQueue(cfg.QueueCapacity),
		ops:    make(map[string]registeredOp),
	}, nil
}

// Execute drains the command queue until it is observed empty, performing
// each command's privileged work in global enqueue order. It must be called
// from the single owning thread only and never blocks waiting for work: an
// empty queue returns immediately.
//
// Commands enqueued while a drain is running are picked up by the same
// drain; commands enqueued after the final empty check wait for the next
// invocation.
//
// If a command escalates an error (see RaiseError) or a privileged
// operation fails or panics, Execute stops and returns that error.
// Commands already executed stay executed; commands still queued remain
// queued and are serviced by the next invocation.
func (c *Core) Execute() error {
	if !atomic.CompareAndSwapUint32(&c.draining, 0, 1) {
		return ErrDrainInProgress
	}
	defer atomic.StoreUint32(&c.draining, 0)

	atomic.AddUint64(&c.metrics.drains, 1)

	executed := 0
	for {
		cmd, ok := c.queue.dequeue()
		if !ok {
			break
		}

		if err := cmd.execute(); err != nil {
			atomic.AddUint64(&c.metrics.escalated, 1)
			c.config.Logger.Err().
				Err(err).
				Int("executed", executed).
				Int("deferred", c.queue.size()).
				Log("drain aborted by escalated error")
			return err
		}

		executed++
		atomic.AddUint64(&c.metrics.executed, 1)
	}

	if executed > 0 {
		c.config.Logger.Debug().
			Int("executed", executed).
			Log("drain complete")
	}

	return nil
}

// RaiseError schedules err to be escalated on the owning thread during the
// next drain. It is the channel by which a problem detected on a worker
// goroutine (including producer-side argument validation) surfaces with
// owning-thread semantics: the next Execute stops at this record and
// returns err.
//
// A nil err is ignored.
func (c *Core) RaiseError(err error) {
	if err == nil {
		return
	}

	rec := c.raisePool.acquire()
	rec.core = c
	rec.err = err

	atomic.AddUint64(&c.metrics.raised, 1)
	c.config.Logger.Debug().
		Err(err).
		Log("error escalation enqueued")

	c.enqueue(rec)
}

// Pending returns the number of commands currently queued.
func (c *Core) Pending() int {
	return c.queue.size()
}

// enqueue appends cmd to the command queue.
func (c *Core) enqueue(cmd command) {
	c.queue.enqueue(cmd)
	atomic.AddUint64(&c.metrics.enqueued, 1)
}

// register records op under its name, rejecting duplicates. Every operation
// kind owns exactly one name and one pool.
func (c *Core) register(op registeredOp) error {
	name := op.opName()

	c.regMu.Lock()
	if _, exists := c.ops[name]; exists {
		c.regMu.Unlock()
		return &CoreError{
			msg: fmt.Sprintf("operation %q already registered", name),
			err: ErrDuplicateOperation,
		}
	}
	c.ops[name] = op
	c.order = append(c.order, name)
	c.regMu.Unlock()

	c.config.Logger.Debug().
		Str("operation", name).
		Log("operation registered")

	return nil
}

// raise is the escalation record: it carries a prepared error instead of a
// Result, and executing it aborts the current drain.
type raise struct {
	core *Core
	err  error
}

func (r *raise) execute() error {
	core, err := r.core, r.err
	core.raisePool.release(r)
	return err
}
