// Package notify provides an ordered, dynamically mutable set of
// callback listeners (Notifier) with broadcast dispatch, attachment
// graphs between notifiers, value-buffering notifiers, and bulk
// operations over collections of notifiers.
//
// Notifiers are single-threaded by design: all mutation and dispatch
// are assumed to happen on one logical thread of control, such as a
// GUI event loop. Notify is synchronous and intentionally re-entrant
// unsafe; a listener that mutates the notifier mid-broadcast is
// observed by the running iteration.
package notify

import (
	"sync/atomic"

	"github.com/go-drift/notify/pkg/errors"
)

var lastNotifierID atomic.Uint64

// Notifier owns an ordered sequence of listeners and broadcasts to
// them. The zero value is not usable; construct with New.
type Notifier struct {
	id          uint64
	entries     []entry
	attachments map[uint64]Handle
	locked      bool
	disposed    bool
	policy      ErrorPolicy
}

// New creates a notifier and applies opts (which may be nil).
func New(opts *Options) (*Notifier, error) {
	n := &Notifier{
		id:          lastNotifierID.Add(1),
		entries:     []entry{},
		attachments: make(map[uint64]Handle),
	}
	if err := n.applyOptions(opts); err != nil {
		return nil, err
	}
	return n, nil
}

// AddListener registers fn and returns its handle. fn must be one of
// func(), func() error, func(any), func(any) error; 1-arg shapes
// receive the broadcast value (nil when the broadcast carries none).
//
// Fails if the notifier is disposed or locked, fn is nil or of an
// unsupported shape, or fn is already registered. Listener identity is
// the function's code pointer: two closures built from the same
// function literal count as the same listener. Register distinct
// literals, or use the returned handles, when that matters.
func (n *Notifier) AddListener(fn any) (Handle, error) {
	const op = "notify.AddListener"
	if n.disposed {
		return "", errors.Disposed(op)
	}
	if n.locked {
		return "", errors.Locked(op)
	}
	e, err := newEntry(op, fn)
	if err != nil {
		return "", err
	}
	if n.indexOfPtr(e.ptr) >= 0 {
		return "", errors.Duplicate(op)
	}
	n.entries = append(n.entries, e)
	return e.handle, nil
}

// addWrapped registers a pre-built invoker under the identity of the
// original callback. Used by typed listener sugar (ValNotifier).
func (n *Notifier) addWrapped(op string, identity any, invoke func(any) error) (Handle, error) {
	if n.disposed {
		return "", errors.Disposed(op)
	}
	if n.locked {
		return "", errors.Locked(op)
	}
	ptr := ptrOf(identity)
	if ptr == 0 {
		return "", errors.Arity(op, identity)
	}
	if n.indexOfPtr(ptr) >= 0 {
		return "", errors.Duplicate(op)
	}
	e := entry{handle: newHandle(), kind: oneArg, ptr: ptr, call1: invoke}
	n.entries = append(n.entries, e)
	return e.handle, nil
}

// AddSink registers invoke as a 1-arg listener without duplicate
// detection; every call installs a fresh entry, identified only by
// the returned handle. Driver glue (stream sinks) uses this because
// its wrapper closures would otherwise share code-pointer identity.
func (n *Notifier) AddSink(invoke func(any) error) (Handle, error) {
	const op = "notify.AddSink"
	if n.disposed {
		return "", errors.Disposed(op)
	}
	if n.locked {
		return "", errors.Locked(op)
	}
	if invoke == nil {
		return "", errors.Arity(op, nil)
	}
	e := entry{handle: newHandle(), kind: oneArg, call1: invoke}
	n.entries = append(n.entries, e)
	return e.handle, nil
}

// RemoveListener removes fn from the listener sequence. It reports
// whether fn was present. Fails if the notifier is disposed or locked.
func (n *Notifier) RemoveListener(fn any) (bool, error) {
	const op = "notify.RemoveListener"
	if n.disposed {
		return false, errors.Disposed(op)
	}
	if n.locked {
		return false, errors.Locked(op)
	}
	idx := n.indexOfPtr(ptrOf(fn))
	if idx < 0 {
		return false, nil
	}
	n.removeAt(idx)
	return true, nil
}

// RemoveListenerByHandle removes the listener identified by h. It
// reports whether a listener matched. Fails if the notifier is
// disposed or locked.
func (n *Notifier) RemoveListenerByHandle(h Handle) (bool, error) {
	const op = "notify.RemoveListenerByHandle"
	if n.disposed {
		return false, errors.Disposed(op)
	}
	if n.locked {
		return false, errors.Locked(op)
	}
	idx := n.indexOfHandle(h)
	if idx < 0 {
		return false, nil
	}
	n.removeAt(idx)
	return true, nil
}

// HasListener reports whether fn is registered. Fails if disposed.
func (n *Notifier) HasListener(fn any) (bool, error) {
	const op = "notify.HasListener"
	if n.disposed {
		return false, errors.Disposed(op)
	}
	return n.indexOfPtr(ptrOf(fn)) >= 0, nil
}

// HasAnyListener reports whether at least one of fns is registered.
func (n *Notifier) HasAnyListener(fns ...any) (bool, error) {
	const op = "notify.HasAnyListener"
	if n.disposed {
		return false, errors.Disposed(op)
	}
	for _, fn := range fns {
		if n.indexOfPtr(ptrOf(fn)) >= 0 {
			return true, nil
		}
	}
	return false, nil
}

// HasAllListeners reports whether every one of fns is registered.
func (n *Notifier) HasAllListeners(fns ...any) (bool, error) {
	const op = "notify.HasAllListeners"
	if n.disposed {
		return false, errors.Disposed(op)
	}
	for _, fn := range fns {
		if n.indexOfPtr(ptrOf(fn)) < 0 {
			return false, nil
		}
	}
	return true, nil
}

// NumListeners returns the listener count. Fails if disposed.
func (n *Notifier) NumListeners() (int, error) {
	if n.disposed {
		return 0, errors.Disposed("notify.NumListeners")
	}
	return len(n.entries), nil
}

// Handles returns the handles of all listeners in notification order.
func (n *Notifier) Handles() ([]Handle, error) {
	if n.disposed {
		return nil, errors.Disposed("notify.Handles")
	}
	hs := make([]Handle, len(n.entries))
	for i, e := range n.entries {
		hs[i] = e.handle
	}
	return hs, nil
}

// ClearListeners removes all listeners without disposing. It reports
// whether the notifier is still usable (not disposed); clearing a
// locked notifier fails with a locked error.
func (n *Notifier) ClearListeners() (bool, error) {
	if n.disposed {
		return false, nil
	}
	if n.locked {
		return false, errors.Locked("notify.ClearListeners")
	}
	n.entries = n.entries[:0]
	n.attachments = make(map[uint64]Handle)
	return true, nil
}

// Notify broadcasts with no value. Listeners run in insertion order;
// 1-arg listeners receive nil. See NotifyValue for error handling.
func (n *Notifier) Notify() error {
	return n.broadcast("notify.Notify", nil, false)
}

// NotifyValue broadcasts value to all listeners in insertion order.
// 0-arg listeners are invoked without it.
//
// When a listener fails (returns an error or panics) and no error
// policy is set, the broadcast halts and the failure is returned.
// With a policy, ActionRemove drops the failing listener in place
// (remaining listeners are neither skipped nor re-run), ActionRethrow
// halts with the failure, and ActionIgnore continues.
func (n *Notifier) NotifyValue(value any) error {
	return n.broadcast("notify.NotifyValue", value, true)
}

func (n *Notifier) broadcast(op string, value any, hasValue bool) error {
	if n.disposed {
		return errors.Disposed(op)
	}
	// Index-based on purpose: listeners may mutate the sequence
	// mid-broadcast and the iteration must observe it.
	for i := 0; i < len(n.entries); i++ {
		e := n.entries[i]
		err := e.invoke(op, value, hasValue)
		if err == nil {
			continue
		}
		if n.policy == nil {
			return err
		}
		switch n.policy(e.handle, err) {
		case ActionRemove:
			if n.locked {
				return errors.Locked(op)
			}
			if idx := n.indexOfHandle(e.handle); idx >= 0 {
				n.removeAt(idx)
				if idx <= i {
					i--
				}
			}
		case ActionRethrow:
			return err
		default:
			// Swallowed; iteration continues.
		}
	}
	return nil
}

// NotifyByHandle invokes only the listener identified by h, with no
// value. It reports whether a listener matched. Failures are reported
// to the diagnostics handler and returned; the error policy does not
// apply to handle-targeted notification.
func (n *Notifier) NotifyByHandle(h Handle) (bool, error) {
	const op = "notify.NotifyByHandle"
	if n.disposed {
		return false, errors.Disposed(op)
	}
	idx := n.indexOfHandle(h)
	if idx < 0 {
		return false, nil
	}
	e := n.entries[idx]
	if err := e.invoke(op, nil, false); err != nil {
		if le, ok := err.(*errors.ListenerError); ok {
			errors.ReportListener(le)
		}
		return true, err
	}
	return true, nil
}

// ReverseListeningOrder reverses the notification order in place.
// Fails if the notifier is disposed or locked.
func (n *Notifier) ReverseListeningOrder() error {
	const op = "notify.ReverseListeningOrder"
	if n.disposed {
		return errors.Disposed(op)
	}
	if n.locked {
		return errors.Locked(op)
	}
	for i, j := 0, len(n.entries)-1; i < j; i, j = i+1, j-1 {
		n.entries[i], n.entries[j] = n.entries[j], n.entries[i]
	}
	return nil
}

// LockListeners prevents structural mutation (add/remove) until
// UnlockListeners. The backing sequence is probed with a no-op
// insert+remove first; the lock flag only mirrors that verified
// state. Reports success; false if disposed or the probe fails.
func (n *Notifier) LockListeners() bool {
	if n.disposed || !n.probeMutable() {
		return false
	}
	n.locked = true
	return true
}

// UnlockListeners re-enables structural mutation. Reports success;
// false if disposed or the probe fails.
func (n *Notifier) UnlockListeners() bool {
	if n.disposed {
		return false
	}
	n.locked = false
	return n.probeMutable()
}

// probeMutable verifies the backing sequence accepts mutation by
// appending and removing a sentinel entry, catching any panic.
func (n *Notifier) probeMutable() (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	n.entries = append(n.entries, entry{})
	n.entries = n.entries[:len(n.entries)-1]
	return true
}

// IsLocked reports whether structural mutation is locked.
// Fails if disposed.
func (n *Notifier) IsLocked() (bool, error) {
	if n.disposed {
		return false, errors.Disposed("notify.IsLocked")
	}
	return n.locked, nil
}

// IsDisposed reports whether the notifier has been disposed.
func (n *Notifier) IsDisposed() bool {
	return n.disposed
}

// Dispose destroys the listener sequence. Disposed notifiers fail all
// listener and attachment operations until re-initialized with Init.
// Returns false if already disposed.
func (n *Notifier) Dispose() bool {
	if n.disposed {
		return false
	}
	n.disposed = true
	n.locked = false
	n.entries = nil
	n.attachments = nil
	return true
}

// Init resets a disposed notifier to a fresh active state and applies
// opts (which may be nil). Returns false if the notifier is not
// disposed. When option application fails the notifier is still
// re-initialized; the error describes the option that failed.
func (n *Notifier) Init(opts *Options) (bool, error) {
	if !n.disposed {
		return false, nil
	}
	n.disposed = false
	n.locked = false
	n.policy = nil
	n.entries = []entry{}
	n.attachments = make(map[uint64]Handle)
	if err := n.applyOptions(opts); err != nil {
		return true, err
	}
	return true, nil
}

func (n *Notifier) removeAt(i int) {
	e := n.entries[i]
	if e.target != nil {
		delete(n.attachments, e.target.id)
	}
	n.entries = append(n.entries[:i], n.entries[i+1:]...)
}

func (n *Notifier) indexOfHandle(h Handle) int {
	for i, e := range n.entries {
		if e.handle == h {
			return i
		}
	}
	return -1
}

func (n *Notifier) indexOfPtr(ptr uintptr) int {
	if ptr == 0 {
		return -1
	}
	for i, e := range n.entries {
		if e.ptr == ptr {
			return i
		}
	}
	return -1
}
