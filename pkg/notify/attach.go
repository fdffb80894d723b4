package notify

import (
	"github.com/go-drift/notify/pkg/errors"
)

// Attachments install another notifier's broadcast entrypoint as a
// listener, forming directed notification graphs. Edges are tracked
// as explicit records keyed by notifier ID, not by comparing
// entrypoint closures.
//
// Attach rejects self-attachment and direct two-node cycles at call
// time. Longer cycles (A→B→C→A) are not detected and recurse without
// bound at broadcast time; callers building deep graphs are
// responsible for keeping them acyclic.

// Attach installs other as a listener of n: broadcasts on n are
// forwarded to other (with the value when one is carried). It reports
// whether a new attachment was made; false means other was already
// attached. Fails if either notifier is disposed, n is locked, other
// is nil or n itself, or other already has n attached (a two-node
// cycle).
func (n *Notifier) Attach(other *Notifier) (bool, error) {
	const op = "notify.Attach"
	if n.disposed {
		return false, errors.Disposed(op)
	}
	if other == nil {
		return false, &errors.NotifyError{Op: op, Kind: errors.KindUnknown, Msg: "nil notifier"}
	}
	if other == n {
		return false, errors.Cycle(op, "cannot attach a notifier to itself")
	}
	if other.disposed {
		return false, errors.Disposed(op)
	}
	if _, reverse := other.attachments[n.id]; reverse {
		return false, errors.Cycle(op, "attachment would form a two-node notification cycle")
	}
	if _, ok := n.attachments[other.id]; ok {
		return false, nil
	}
	if n.locked {
		return false, errors.Locked(op)
	}
	e := entry{handle: newHandle(), kind: oneArg, target: other}
	n.entries = append(n.entries, e)
	n.attachments[other.id] = e.handle
	return true, nil
}

// Detach removes other from n's listeners. It reports whether other
// was attached. Fails if n is disposed or locked.
func (n *Notifier) Detach(other *Notifier) (bool, error) {
	const op = "notify.Detach"
	if n.disposed {
		return false, errors.Disposed(op)
	}
	if n.locked {
		return false, errors.Locked(op)
	}
	if other == nil {
		return false, nil
	}
	h, ok := n.attachments[other.id]
	if !ok {
		return false, nil
	}
	if idx := n.indexOfHandle(h); idx >= 0 {
		n.removeAt(idx)
	}
	return true, nil
}

// HasAttached reports whether other is installed as a listener of n.
// Fails if n is disposed.
func (n *Notifier) HasAttached(other *Notifier) (bool, error) {
	if n.disposed {
		return false, errors.Disposed("notify.HasAttached")
	}
	if other == nil {
		return false, nil
	}
	_, ok := n.attachments[other.id]
	return ok, nil
}

// IsListeningTo reports whether n is installed as a listener of
// other; it is HasAttached seen from the opposite node. Fails if
// either notifier is disposed.
func (n *Notifier) IsListeningTo(other *Notifier) (bool, error) {
	const op = "notify.IsListeningTo"
	if n.disposed {
		return false, errors.Disposed(op)
	}
	if other == nil {
		return false, nil
	}
	if other.disposed {
		return false, errors.Disposed(op)
	}
	_, ok := other.attachments[n.id]
	return ok, nil
}

// StartListeningTo makes n a listener of other; sugar for
// other.Attach(n).
func (n *Notifier) StartListeningTo(other *Notifier) (bool, error) {
	if other == nil {
		return false, &errors.NotifyError{Op: "notify.StartListeningTo", Kind: errors.KindUnknown, Msg: "nil notifier"}
	}
	return other.Attach(n)
}

// StopListeningTo removes n from other's listeners; sugar for
// other.Detach(n).
func (n *Notifier) StopListeningTo(other *Notifier) (bool, error) {
	if other == nil {
		return false, nil
	}
	return other.Detach(n)
}
