package notify

import (
	"context"
	"fmt"
)

// ValNotifier is a Notifier that buffers the last value it broadcast.
// Calling it with no value replays the buffer, so late listeners can
// be brought up to date with a single argument-less Call.
type ValNotifier[T any] struct {
	*Notifier
	buffered T
	hasVal   bool
}

// NewVal creates a value notifier with an empty buffer.
func NewVal[T any](opts *Options) (*ValNotifier[T], error) {
	n, err := New(opts)
	if err != nil {
		return nil, err
	}
	return &ValNotifier[T]{Notifier: n}, nil
}

// NewValWith creates a value notifier whose buffer starts at initial.
// The initial value is buffered, not broadcast.
func NewValWith[T any](initial T, opts *Options) (*ValNotifier[T], error) {
	v, err := NewVal[T](opts)
	if err != nil {
		return nil, err
	}
	v.buffered = initial
	v.hasVal = true
	return v, nil
}

// Val returns the buffered value and whether one is present.
// A disposed notifier reports no value.
func (v *ValNotifier[T]) Val() (T, bool) {
	if v.disposed || !v.hasVal {
		var zero T
		return zero, false
	}
	return v.buffered, true
}

// Call broadcasts the buffered value. With an empty buffer it
// broadcasts no value, like Notify.
func (v *ValNotifier[T]) Call() error {
	if v.hasVal {
		return v.NotifyValue(v.buffered)
	}
	return v.Notify()
}

// CallWith broadcasts value and saves it as the buffered value. The
// buffer is written after the broadcast completes; a halting listener
// failure leaves the old buffer in place.
func (v *ValNotifier[T]) CallWith(value T) error {
	if err := v.NotifyValue(value); err != nil {
		return err
	}
	v.buffered = value
	v.hasVal = true
	return nil
}

// CallTransient broadcasts value without touching the buffer.
func (v *ValNotifier[T]) CallTransient(value T) error {
	return v.NotifyValue(value)
}

// NullNotify broadcasts an explicit nil value and empties the buffer.
// Distinct from Call, which replays the existing buffer.
func (v *ValNotifier[T]) NullNotify() error {
	if err := v.NotifyValue(nil); err != nil {
		return err
	}
	var zero T
	v.buffered = zero
	v.hasVal = false
	return nil
}

// AddValueListener registers a typed listener. It receives the
// broadcast value, or the zero value when a broadcast carries none.
// A broadcast value of the wrong type is a listener failure, routed
// through the error policy like any other.
func (v *ValNotifier[T]) AddValueListener(fn func(T)) (Handle, error) {
	const op = "notify.AddValueListener"
	return v.addWrapped(op, fn, func(raw any) error {
		var val T
		if raw != nil {
			cast, ok := raw.(T)
			if !ok {
				return fmt.Errorf("%s: value %T is not %T", op, raw, val)
			}
			val = cast
		}
		fn(val)
		return nil
	})
}

// Load awaits produce and broadcasts the produced value via CallWith,
// returning it. On failure the error is routed to onError (if
// non-nil) and returned; nothing is broadcast.
func (v *ValNotifier[T]) Load(ctx context.Context, produce func(context.Context) (T, error), onError func(error)) (T, error) {
	val, err := produce(ctx)
	if err != nil {
		if onError != nil {
			onError(err)
		}
		var zero T
		return zero, err
	}
	if err := v.CallWith(val); err != nil {
		return val, err
	}
	return val, nil
}

// Dispose destroys the listener sequence and the buffered value.
func (v *ValNotifier[T]) Dispose() bool {
	if !v.Notifier.Dispose() {
		return false
	}
	var zero T
	v.buffered = zero
	v.hasVal = false
	return true
}

// Init resets a disposed value notifier to a fresh active state with
// an empty buffer.
func (v *ValNotifier[T]) Init(opts *Options) (bool, error) {
	ok, err := v.Notifier.Init(opts)
	if ok {
		var zero T
		v.buffered = zero
		v.hasVal = false
	}
	return ok, err
}
