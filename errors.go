package mainthread

import "fmt"

// Common errors returned by the core.
var (
	// ErrNilResult is returned (and escalated) when a producer call is made
	// without a Result to publish into.
	//
	// Example:
	//  err := op.Call(params, nil)
	//  if errors.Is(err, mainthread.ErrNilResult) {
	//      log.Println("caller forgot the result")
	//  }
	ErrNilResult = &CoreError{msg: "result is nil"}

	// ErrNilOperation is returned by Register when the operation function
	// is nil.
	ErrNilOperation = &CoreError{msg: "operation function is nil"}

	// ErrDuplicateOperation is returned by Register when an operation with
	// the same name is already registered on the core. Every operation kind
	// must use exactly one name and own exactly one pool.
	ErrDuplicateOperation = &CoreError{msg: "operation already registered"}

	// ErrDrainInProgress is returned by Execute when another drain is still
	// running. Execute must only ever be called from the single owning
	// thread; this error surfaces the misuse instead of corrupting state.
	ErrDrainInProgress = &CoreError{msg: "drain already in progress"}

	// ErrPrecondition marks producer-side argument validation failures.
	// Errors escalated for absent or invalid arguments unwrap to it.
	//
	// Example:
	//  if errors.Is(err, mainthread.ErrPrecondition) {
	//      // a required argument was missing
	//  }
	ErrPrecondition = &CoreError{msg: "precondition violation"}
)

// CoreError represents an error raised by the marshalling core. It wraps
// underlying errors and supports unwrapping via errors.Is and errors.As.
type CoreError struct {
	msg string // Human-readable error message
	err error  // Underlying error (if any)
}

// Error returns a formatted error message. If an underlying error exists,
// it is included in the output.
func (e *CoreError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("mainthread: %s: %v", e.msg, e.err)
	}
	return fmt.Sprintf("mainthread: %s", e.msg)
}

// Unwrap returns the underlying error.
func (e *CoreError) Unwrap() error {
	return e.err
}

// errInvalidConfig creates an error for invalid core configuration.
func errInvalidConfig(msg string) error {
	return &CoreError{msg: "invalid config: " + msg}
}

// errPrecondition creates a precondition-violation error for a producer call
// of the named operation. The result unwraps to ErrPrecondition.
func errPrecondition(op, msg string) error {
	return &CoreError{
		msg: fmt.Sprintf("operation %q: %s", op, msg),
		err: ErrPrecondition,
	}
}

// errOperation wraps an error reported by the privileged implementation of
// the named operation.
func errOperation(op string, err error) error {
	return &CoreError{
		msg: fmt.Sprintf("operation %q failed", op),
		err: err,
	}
}

// errPanic converts a recovered panic value from a privileged operation into
// an error that aborts the current drain.
func errPanic(op string, recovered any) error {
	return &CoreError{
		msg: fmt.Sprintf("operation %q panicked: %v", op, recovered),
	}
}
