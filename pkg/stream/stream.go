// Package stream provides a multi-subscriber broadcast source and the
// glue that connects it to notifiers in either direction.
package stream

import (
	"fmt"

	"github.com/go-drift/notify/pkg/errors"
	"github.com/go-drift/notify/pkg/notify"
)

// Handler receives events from a stream.
type Handler[T any] struct {
	// OnData is called for each value added to the stream.
	OnData func(T)
	// OnError is called for each failure pushed into the stream.
	OnError func(error)
	// OnDone is called once when the stream closes.
	OnDone func()
}

// Stream is a push-based broadcast source. Unlike a raw channel,
// multiple subscribers each receive every event independently.
// Use Listen to subscribe and the returned function to unsubscribe.
type Stream[T any] struct {
	subs   map[int]Handler[T]
	nextID int
	closed bool
}

// New creates an open stream with no subscribers.
func New[T any]() *Stream[T] {
	return &Stream[T]{subs: make(map[int]Handler[T])}
}

// Listen subscribes h to the stream and returns an unsubscribe
// function. Subscribing to a closed stream calls OnDone immediately.
func (s *Stream[T]) Listen(h Handler[T]) (unsubscribe func()) {
	if s.closed {
		if h.OnDone != nil {
			h.OnDone()
		}
		return func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = h
	return func() {
		delete(s.subs, id)
	}
}

// ListenFunc subscribes a data-only handler.
func (s *Stream[T]) ListenFunc(fn func(T)) (unsubscribe func()) {
	return s.Listen(Handler[T]{OnData: fn})
}

// Add pushes a value to every subscriber. Values added after Close
// are dropped.
func (s *Stream[T]) Add(v T) {
	if s.closed {
		return
	}
	for _, h := range s.subs {
		if h.OnData != nil {
			h.OnData(v)
		}
	}
}

// Fail pushes a failure to every subscriber.
func (s *Stream[T]) Fail(err error) {
	if s.closed || err == nil {
		return
	}
	for _, h := range s.subs {
		if h.OnError != nil {
			h.OnError(err)
		}
	}
}

// Close ends the stream, notifying subscribers via OnDone and
// dropping them. Closing twice is a no-op.
func (s *Stream[T]) Close() {
	if s.closed {
		return
	}
	s.closed = true
	for _, h := range s.subs {
		if h.OnDone != nil {
			h.OnDone()
		}
	}
	s.subs = nil
}

// NumSubscribers returns the current subscriber count.
func (s *Stream[T]) NumSubscribers() int {
	return len(s.subs)
}

// Attach installs the stream's Add as a listener of n: every value n
// broadcasts flows into the stream. A broadcast with no value pushes
// the zero value; a value of the wrong type is a listener failure
// routed through n's error policy. Detach with the returned handle.
func Attach[T any](n *notify.Notifier, s *Stream[T]) (notify.Handle, error) {
	return n.AddSink(func(raw any) error {
		if raw == nil {
			var zero T
			s.Add(zero)
			return nil
		}
		v, ok := raw.(T)
		if !ok {
			return fmt.Errorf("stream.Attach: value %T is not the stream's element type", raw)
		}
		s.Add(v)
		return nil
	})
}

// ListenTo subscribes n to the stream: each event notifies n with the
// value. Stream failures and failed deliveries are reported to the
// diagnostics handler. Cancel with the returned function; disposing n
// makes subsequent deliveries fail (and be reported) instead.
func ListenTo[T any](n *notify.Notifier, s *Stream[T]) (cancel func(), err error) {
	const op = "stream.ListenTo"
	if n == nil {
		return nil, &errors.NotifyError{Op: op, Kind: errors.KindUnknown, Msg: "nil notifier"}
	}
	if n.IsDisposed() {
		return nil, errors.Disposed(op)
	}
	return s.Listen(Handler[T]{
		OnData: func(v T) {
			if err := n.NotifyValue(v); err != nil {
				errors.Report(&errors.NotifyError{
					Op:   op,
					Kind: errors.KindOf(err),
					Msg:  "dropped stream event",
					Err:  err,
				})
			}
		},
		OnError: func(streamErr error) {
			errors.Report(&errors.NotifyError{
				Op:   op,
				Kind: errors.KindUnknown,
				Msg:  "stream reported failure",
				Err:  streamErr,
			})
		},
	}), nil
}
