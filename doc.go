// Package mainthread marshals operations from worker goroutines onto a
// single privileged thread.
//
// Game engines and similar hosts own their UI and scene state from exactly
// one thread and forbid concurrent access. This package lets any goroutine
// request such an operation and optionally block until it has run: requests
// are validated on the producer side, filled into pooled command records,
// and appended to a thread-safe FIFO; the owning thread drains the queue
// once per tick and publishes outcomes through one-shot, reusable Results.
//
// # Key Features
//
//   - Global FIFO ordering: commands execute in enqueue order across all
//     producers
//   - Object-pooled command records to avoid per-call heap churn
//   - Reusable blocking Results, with context-bounded wait variants
//   - Typed operations: the result channel is typed at the call site, so
//     there is no runtime dispatch on a requested value type
//   - An escalation channel that surfaces worker-side errors on the owning
//     thread
//   - Structured logging via logiface and lock-free Stats snapshots
//
// # Quick Start
//
// Construct one Core per process and register operations against it:
//
//	core, err := mainthread.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	find, err := mainthread.Register(core, "find-object",
//	    func(name string) (*scene.Node, error) {
//	        return scene.Lookup(name)
//	    })
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The owning thread drives the dispatcher, typically once per frame:
//
//	for running {
//	    stepSimulation()
//	    if err := core.Execute(); err != nil {
//	        log.Printf("escalated: %v", err)
//	    }
//	}
//
// Any other goroutine issues requests and waits on the result:
//
//	var r mainthread.ResultOf[*scene.Node]
//	if err := find.Call("Player", &r); err != nil {
//	    // precondition violation; also escalated to the owning thread
//	}
//	node := r.Get() // blocks until the next drain
//
// # Execution Model
//
// There is exactly one consumer: the owning thread, which calls
// Core.Execute on an external cadence. Execute pops one record at a time,
// re-acquiring the queue lock per pop, so producers keep enqueueing while a
// drain is in progress. It never blocks waiting for work; an empty queue
// returns immediately.
//
// Producer calls never block either: they only validate, fill a pooled
// record, and enqueue. The only suspension point exposed to callers is the
// Result's wait.
//
// # Results
//
// Result (and its value-carrying variant ResultOf) is a reusable one-shot
// handshake. The dispatcher calls Ready exactly once per cycle; waiters
// block until then and return immediately afterwards. Reset rearms the same
// instance for a later command.
//
// Wait and Get deliberately have no timeout: a command that is never
// drained leaves its waiter blocked. Callers that need a bound use
// WaitContext or GetContext:
//
//	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
//	defer cancel()
//	node, err := r.GetContext(ctx)
//
// # Error Handling
//
// Errors never travel back to the producer asynchronously; they surface on
// the owning thread. A producer call with an absent argument enqueues
// exactly one escalation instead of the intended work (and returns the same
// error synchronously). When a drain executes an escalation record, or a
// privileged operation fails or panics, Execute stops and returns the
// error; remaining queued commands are deferred to the next drain.
//
//	core.RaiseError(errors.New("asset load failed"))
//	// ... next Execute on the owning thread returns this error
//
// # Pooling
//
// Each registered operation owns a dedicated grow-only freelist of command
// records. Records are zeroed before they re-enter the freelist, and the
// dispatcher recycles each record before performing the privileged call, so
// pool reuse is decoupled from slow operations.
//
// # Monitoring
//
// Attach a logiface logger for structured events and read counters via
// Stats:
//
//	core, _ := mainthread.New(mainthread.WithLogger(logger))
//	stats := core.Stats()
//	for _, op := range stats.Ops {
//	    fmt.Printf("%s: %d calls, %d pooled\n", op.Name, op.Calls, op.PoolIdle)
//	}
//
// # Thread Safety
//
// All producer-facing methods are safe for concurrent use. Core.Execute
// must only be called from the single owning thread; a concurrent call
// returns ErrDrainInProgress. A Result must not be Reset while another
// goroutine is blocked waiting on it.
//
// The concrete operation catalogue for scene-graph engines (find, text and
// property access, instantiate, destroy, reparent, translate, audio) lives
// in the engine subpackage.
package mainthread
