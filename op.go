package mainthread

import "sync/atomic"

// Op is a registered, value-producing operation. The producer side (Call)
// runs on any goroutine and only validates, fills a pooled record, and
// enqueues; the privileged side (run) executes later on the owning thread
// during a drain, and its output of type R is published through the
// caller's ResultOf[R].
//
// Because the result channel is typed at the call site there is no runtime
// dispatch on a requested value type, and no "unimplemented type" failure
// mode: an operation that cannot produce an R does not type-check.
type Op[P, R any] struct {
	core *Core
	name string
	run  func(P) (R, error)
	pool recordPool[callOf[P, R]]

	calls uint64 // atomic
}

// Register registers a value-producing operation on core under a unique
// name. run is the privileged implementation; it is only ever invoked on
// the owning thread, inside Core.Execute.
//
// Example:
//
//	find, err := mainthread.Register(core, "find-object",
//	    func(name string) (Object, error) {
//	        return scene.Lookup(name)
//	    })
func Register[P, R any](core *Core, name string, run func(P) (R, error)) (*Op[P, R], error) {
	if core == nil {
		return nil, &CoreError{msg: "register: core is nil"}
	}
	if name == "" {
		return nil, &CoreError{msg: "register: operation name is empty"}
	}
	if run == nil {
		return nil, ErrNilOperation
	}

	op := &Op[P, R]{
		core: core,
		name: name,
		run:  run,
	}
	if err := core.register(op); err != nil {
		return nil, err
	}
	return op, nil
}

// Call validates the request, acquires a pooled record, and enqueues it.
// It never blocks and never performs the privileged work itself; the caller
// obtains the outcome by waiting on result.
//
// A nil result is a precondition violation: no work is enqueued, exactly
// one escalation is enqueued instead (surfacing on the owning thread at the
// next drain), and the same error is returned here for producers that want
// to observe it synchronously.
func (o *Op[P, R]) Call(params P, result *ResultOf[R]) error {
	if result == nil {
		err := &CoreError{msg: "operation " + o.name + ": call without result", err: ErrNilResult}
		o.core.config.Logger.Warning().
			Str("operation", o.name).
			Err(err).
			Log("producer call rejected")
		o.core.RaiseError(err)
		return err
	}

	result.Reset()

	rec := o.pool.acquire()
	rec.op = o
	rec.params = params
	rec.result = result

	atomic.AddUint64(&o.calls, 1)
	o.core.enqueue(rec)
	return nil
}

// Name returns the operation's registered name.
func (o *Op[P, R]) Name() string { return o.name }

func (o *Op[P, R]) opName() string { return o.name }

func (o *Op[P, R]) opStats() OpStats {
	return OpStats{
		Name:       o.name,
		Calls:      atomic.LoadUint64(&o.calls),
		PoolIdle:   o.pool.idle(),
		PoolAllocs: o.pool.allocated(),
	}
}

// callOf is the command record for a value-producing operation.
type callOf[P, R any] struct {
	op     *Op[P, R]
	params P
	result *ResultOf[R]
}

func (rec *callOf[P, R]) execute() (err error) {
	// Detach the record's fields and recycle it before the privileged call,
	// so pool reuse is not coupled to a slow operation and the pooled
	// record retains no references.
	op, params, result := rec.op, rec.params, rec.result
	op.pool.release(rec)

	defer func() {
		if recovered := recover(); recovered != nil {
			if op.core.config.PanicHandler != nil {
				op.core.config.PanicHandler(recovered)
			}
			err = errPanic(op.name, recovered)
		}
	}()

	out, runErr := op.run(params)
	if runErr != nil {
		return errOperation(op.name, runErr)
	}

	result.Ready(out)
	return nil
}

// VoidOp is a registered operation that produces no value. Completion is
// signalled through the caller's Result.
type VoidOp[P any] struct {
	core *Core
	name string
	run  func(P) error
	pool recordPool[voidCallOf[P]]

	calls uint64 // atomic
}

// RegisterVoid registers an operation with no output value on core under a
// unique name.
//
// Example:
//
//	destroy, err := mainthread.RegisterVoid(core, "destroy-object",
//	    func(obj Object) error {
//	        return scene.Remove(obj)
//	    })
func RegisterVoid[P any](core *Core, name string, run func(P) error) (*VoidOp[P], error) {
	if core == nil {
		return nil, &CoreError{msg: "register: core is nil"}
	}
	if name == "" {
		return nil, &CoreError{msg: "register: operation name is empty"}
	}
	if run == nil {
		return nil, ErrNilOperation
	}

	op := &VoidOp[P]{
		core: core,
		name: name,
		run:  run,
	}
	if err := core.register(op); err != nil {
		return nil, err
	}
	return op, nil
}

// Call enqueues the operation. Semantics match Op.Call.
func (o *VoidOp[P]) Call(params P, result *Result) error {
	if result == nil {
		err := &CoreError{msg: "operation " + o.name + ": call without result", err: ErrNilResult}
		o.core.config.Logger.Warning().
			Str("operation", o.name).
			Err(err).
			Log("producer call rejected")
		o.core.RaiseError(err)
		return err
	}

	result.Reset()

	rec := o.pool.acquire()
	rec.op = o
	rec.params = params
	rec.result = result

	atomic.AddUint64(&o.calls, 1)
	o.core.enqueue(rec)
	return nil
}

// Name returns the operation's registered name.
func (o *VoidOp[P]) Name() string { return o.name }

func (o *VoidOp[P]) opName() string { return o.name }

func (o *VoidOp[P]) opStats() OpStats {
	return OpStats{
		Name:       o.name,
		Calls:      atomic.LoadUint64(&o.calls),
		PoolIdle:   o.pool.idle(),
		PoolAllocs: o.pool.allocated(),
	}
}

// voidCallOf is the command record for a void operation.
type voidCallOf[P any] struct {
	op     *VoidOp[P]
	params P
	result *Result
}

func (rec *voidCallOf[P]) execute() (err error) {
	op, params, result := rec.op, rec.params, rec.result
	op.pool.release(rec)

	defer func() {
		if recovered := recover(); recovered != nil {
			if op.core.config.PanicHandler != nil {
				op.core.config.PanicHandler(recovered)
			}
			err = errPanic(op.name, recovered)
		}
	}()

	if runErr := op.run(params); runErr != nil {
		return errOperation(op.name, runErr)
	}

	result.Ready()
	return nil
}
