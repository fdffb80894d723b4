// Package errors provides structured error handling for the notify library.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindDisposed indicates a notifier was used after Dispose.
	KindDisposed
	// KindLocked indicates a structural mutation was attempted while locked.
	KindLocked
	// KindCycle indicates a self-attachment or direct two-node cycle.
	KindCycle
	// KindArity indicates an unsupported listener shape.
	KindArity
	// KindDuplicate indicates a listener was already registered.
	KindDuplicate
	// KindListener indicates a listener failed during invocation.
	KindListener
	// KindAtomicity indicates an atomic bulk operation failed validation.
	KindAtomicity
	// KindHTTP indicates an HTTP driver failure.
	KindHTTP
	// KindConfig indicates an invalid configuration file.
	KindConfig
)

func (k ErrorKind) String() string {
	switch k {
	case KindDisposed:
		return "disposed"
	case KindLocked:
		return "locked"
	case KindCycle:
		return "cycle"
	case KindArity:
		return "arity"
	case KindDuplicate:
		return "duplicate"
	case KindListener:
		return "listener"
	case KindAtomicity:
		return "atomicity"
	case KindHTTP:
		return "http"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// NotifyError represents a structured error in the notify library.
type NotifyError struct {
	// Op is the operation that failed (e.g., "notify.AddListener").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Msg is a human-readable detail message.
	Msg string
	// Err is the underlying error, if any.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *NotifyError) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s [%s] %s: %v", e.Op, e.Kind, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s [%s]: %s", e.Op, e.Kind, e.Msg)
	}
}

func (e *NotifyError) Unwrap() error {
	return e.Err
}

// ListenerError represents a failure inside a registered listener,
// either a recovered panic or an error returned by the listener.
type ListenerError struct {
	// Op is the broadcast operation that invoked the listener.
	Op string
	// Handle identifies the failing listener within its notifier.
	Handle string
	// Recovered is the value passed to panic(), nil if the listener
	// returned an error instead.
	Recovered any
	// Err is the error returned by the listener (nil for panics).
	Err error
	// StackTrace contains the call stack for recovered panics.
	StackTrace string
	// Timestamp is when the failure occurred.
	Timestamp time.Time
}

func (e *ListenerError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("%s: panic in listener %s: %v", e.Op, e.Handle, e.Recovered)
	}
	return fmt.Sprintf("%s: listener %s failed: %v", e.Op, e.Handle, e.Err)
}

func (e *ListenerError) Unwrap() error {
	return e.Err
}

// Disposed returns a used-after-dispose error for op.
func Disposed(op string) *NotifyError {
	return &NotifyError{Op: op, Kind: KindDisposed, Msg: "notifier used after dispose"}
}

// Locked returns a locked-mutation error for op.
func Locked(op string) *NotifyError {
	return &NotifyError{Op: op, Kind: KindLocked, Msg: "listeners are locked"}
}

// Cycle returns a cycle error for op with the given detail.
func Cycle(op, msg string) *NotifyError {
	return &NotifyError{Op: op, Kind: KindCycle, Msg: msg}
}

// Arity returns an unsupported-listener-shape error for op.
// got is the offending value (nil for a nil listener).
func Arity(op string, got any) *NotifyError {
	if got == nil {
		return &NotifyError{Op: op, Kind: KindArity, Msg: "nil listener"}
	}
	return &NotifyError{Op: op, Kind: KindArity, Msg: fmt.Sprintf("unsupported listener shape %T", got)}
}

// Duplicate returns an already-registered error for op.
func Duplicate(op string) *NotifyError {
	return &NotifyError{Op: op, Kind: KindDuplicate, Msg: "listener already registered"}
}

// Atomicity returns an atomicity-violation error for op wrapping the
// per-member validation failures.
func Atomicity(op string, err error) *NotifyError {
	return &NotifyError{Op: op, Kind: KindAtomicity, Msg: "atomic operation failed validation", Err: err}
}

// KindOf returns the kind of err, unwrapping as needed.
// Listener failures report KindListener; anything else reports KindUnknown.
func KindOf(err error) ErrorKind {
	var ne *NotifyError
	if stderrors.As(err, &ne) {
		return ne.Kind
	}
	var le *ListenerError
	if stderrors.As(err, &le) {
		return KindListener
	}
	return KindUnknown
}

// IsDisposed reports whether err is a used-after-dispose error.
func IsDisposed(err error) bool { return KindOf(err) == KindDisposed }

// IsLocked reports whether err is a locked-mutation error.
func IsLocked(err error) bool { return KindOf(err) == KindLocked }

// IsCycle reports whether err is a cycle error.
func IsCycle(err error) bool { return KindOf(err) == KindCycle }

// IsAtomicity reports whether err is an atomicity-violation error.
func IsAtomicity(err error) bool { return KindOf(err) == KindAtomicity }
