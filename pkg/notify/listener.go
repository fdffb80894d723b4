package notify

import (
	"reflect"

	"github.com/oklog/ulid/v2"

	"github.com/go-drift/notify/pkg/errors"
)

// Handle is an opaque token identifying a registered listener.
// Handles let callers target a specific listener later (removal,
// targeted notification) without retaining the callback itself.
type Handle string

func newHandle() Handle {
	return Handle(ulid.Make().String())
}

// listenerKind tags the accepted callback shapes.
type listenerKind int

const (
	// noArg listeners ignore the broadcast value.
	noArg listenerKind = iota
	// oneArg listeners receive the broadcast value (nil when none).
	oneArg
)

// entry is one slot in a notifier's listener sequence. It is either a
// plain callback (ptr identifies the registered function) or the
// notify entrypoint of another notifier (target non-nil, an attachment).
type entry struct {
	handle Handle
	kind   listenerKind
	ptr    uintptr
	target *Notifier
	call0  func() error
	call1  func(any) error
}

// newEntry validates fn's shape and builds an entry for it.
// Accepted shapes: func(), func() error, func(any), func(any) error.
func newEntry(op string, fn any) (entry, error) {
	if fn == nil {
		return entry{}, errors.Arity(op, nil)
	}
	e := entry{handle: newHandle()}
	switch f := fn.(type) {
	case func():
		e.kind = noArg
		e.call0 = func() error { f(); return nil }
	case func() error:
		e.kind = noArg
		e.call0 = f
	case func(any):
		e.kind = oneArg
		e.call1 = func(v any) error { f(v); return nil }
	case func(any) error:
		e.kind = oneArg
		e.call1 = f
	default:
		return entry{}, errors.Arity(op, fn)
	}
	e.ptr = reflect.ValueOf(fn).Pointer()
	return e, nil
}

// invoke runs the listener with the broadcast value. Panics are
// recovered and returned as ListenerError; listener-returned errors
// are wrapped the same way so the error policy sees the handle.
func (e *entry) invoke(op string, value any, hasValue bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &errors.ListenerError{
				Op:         op,
				Handle:     string(e.handle),
				Recovered:  r,
				StackTrace: errors.Stack(),
			}
		}
	}()
	switch {
	case e.target != nil:
		if hasValue {
			err = e.target.NotifyValue(value)
		} else {
			err = e.target.Notify()
		}
	case e.kind == noArg:
		err = e.call0()
	default:
		err = e.call1(value)
	}
	if err != nil {
		if _, ok := err.(*errors.ListenerError); !ok {
			err = &errors.ListenerError{Op: op, Handle: string(e.handle), Err: err}
		}
	}
	return err
}

// ptrOf returns the code pointer identifying fn, or 0 if fn is not a
// function value.
func ptrOf(fn any) uintptr {
	if fn == nil {
		return 0
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return 0
	}
	return v.Pointer()
}
