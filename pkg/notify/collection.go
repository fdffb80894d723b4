package notify

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/go-drift/notify/pkg/errors"
)

// Bulk operations apply a pairwise attachment operation across a
// collection of notifiers. The plain variants mutate element-wise and
// stop at the first failure, leaving earlier mutations in place. The
// Atomic variants validate the whole collection first (no nil, no
// disposed member) and perform zero mutations when validation fails;
// there is no rollback after validation passes.
//
// Query-style bulk helpers never mutate and treat a disposed member
// as "not listening" instead of failing.

// validateMembers pre-validates an atomic operation's input
// collection, aggregating every offending member.
func validateMembers(op string, members []*Notifier) error {
	var merr *multierror.Error
	for i, m := range members {
		if m == nil {
			merr = multierror.Append(merr, fmt.Errorf("member %d is nil", i))
			continue
		}
		if m.disposed {
			merr = multierror.Append(merr, fmt.Errorf("member %d is disposed", i))
		}
	}
	if err := merr.ErrorOrNil(); err != nil {
		return errors.Atomicity(op, err)
	}
	return nil
}

// AttachAll attaches every notifier in others to n, element-wise.
// Returns the number of new attachments made before any failure.
func (n *Notifier) AttachAll(others ...*Notifier) (int, error) {
	count := 0
	for _, other := range others {
		ok, err := n.Attach(other)
		if err != nil {
			return count, err
		}
		if ok {
			count++
		}
	}
	return count, nil
}

// AttachAllAtomic is AttachAll with up-front validation of the whole
// collection; no attachment is made if any member is nil or disposed.
func (n *Notifier) AttachAllAtomic(others ...*Notifier) (int, error) {
	const op = "notify.AttachAllAtomic"
	if n.disposed {
		return 0, errors.Disposed(op)
	}
	if err := validateMembers(op, others); err != nil {
		return 0, err
	}
	return n.AttachAll(others...)
}

// DetachAll detaches every notifier in others from n, element-wise.
// Returns the number of attachments removed before any failure.
func (n *Notifier) DetachAll(others ...*Notifier) (int, error) {
	count := 0
	for _, other := range others {
		ok, err := n.Detach(other)
		if err != nil {
			return count, err
		}
		if ok {
			count++
		}
	}
	return count, nil
}

// DetachAllAtomic is DetachAll with up-front validation of the whole
// collection.
func (n *Notifier) DetachAllAtomic(others ...*Notifier) (int, error) {
	const op = "notify.DetachAllAtomic"
	if n.disposed {
		return 0, errors.Disposed(op)
	}
	if err := validateMembers(op, others); err != nil {
		return 0, err
	}
	return n.DetachAll(others...)
}

// StartListeningToAll subscribes n to every notifier in sources,
// element-wise.
func (n *Notifier) StartListeningToAll(sources ...*Notifier) (int, error) {
	count := 0
	for _, src := range sources {
		ok, err := n.StartListeningTo(src)
		if err != nil {
			return count, err
		}
		if ok {
			count++
		}
	}
	return count, nil
}

// StartListeningToAllAtomic is StartListeningToAll with up-front
// validation of the whole collection.
func (n *Notifier) StartListeningToAllAtomic(sources ...*Notifier) (int, error) {
	const op = "notify.StartListeningToAllAtomic"
	if n.disposed {
		return 0, errors.Disposed(op)
	}
	if err := validateMembers(op, sources); err != nil {
		return 0, err
	}
	return n.StartListeningToAll(sources...)
}

// StopListeningToAll unsubscribes n from every notifier in sources,
// element-wise.
func (n *Notifier) StopListeningToAll(sources ...*Notifier) (int, error) {
	count := 0
	for _, src := range sources {
		ok, err := n.StopListeningTo(src)
		if err != nil {
			return count, err
		}
		if ok {
			count++
		}
	}
	return count, nil
}

// StopListeningToAllAtomic is StopListeningToAll with up-front
// validation of the whole collection.
func (n *Notifier) StopListeningToAllAtomic(sources ...*Notifier) (int, error) {
	const op = "notify.StopListeningToAllAtomic"
	if n.disposed {
		return 0, errors.Disposed(op)
	}
	if err := validateMembers(op, sources); err != nil {
		return 0, err
	}
	return n.StopListeningToAll(sources...)
}

// IsListeningToAll reports whether n is a listener of every source.
// Disposed or nil members count as not listening.
func (n *Notifier) IsListeningToAll(sources ...*Notifier) bool {
	if n.disposed {
		return false
	}
	for _, src := range sources {
		if src == nil || src.disposed {
			return false
		}
		if _, ok := src.attachments[n.id]; !ok {
			return false
		}
	}
	return true
}

// IsListeningToAny reports whether n is a listener of at least one
// source. Disposed or nil members count as not listening.
func (n *Notifier) IsListeningToAny(sources ...*Notifier) bool {
	if n.disposed {
		return false
	}
	for _, src := range sources {
		if src == nil || src.disposed {
			continue
		}
		if _, ok := src.attachments[n.id]; ok {
			return true
		}
	}
	return false
}

// HasAttachedAll reports whether every member of others is attached
// to n. Disposed or nil members count as not attached.
func (n *Notifier) HasAttachedAll(others ...*Notifier) bool {
	if n.disposed {
		return false
	}
	for _, other := range others {
		if other == nil || other.disposed {
			return false
		}
		if _, ok := n.attachments[other.id]; !ok {
			return false
		}
	}
	return true
}

// HasAttachedAny reports whether at least one member of others is
// attached to n. Disposed or nil members count as not attached.
func (n *Notifier) HasAttachedAny(others ...*Notifier) bool {
	if n.disposed {
		return false
	}
	for _, other := range others {
		if other == nil || other.disposed {
			continue
		}
		if _, ok := n.attachments[other.id]; ok {
			return true
		}
	}
	return false
}

// Merge builds a new notifier whose listener sequence is the
// concatenation of the sources' sequences — a snapshot copy, not a
// live view. Duplicate listeners keep their first occurrence. Fails
// if any source is nil or disposed.
func Merge(sources ...*Notifier) (*Notifier, error) {
	const op = "notify.Merge"
	for _, src := range sources {
		if src == nil {
			return nil, &errors.NotifyError{Op: op, Kind: errors.KindUnknown, Msg: "nil notifier"}
		}
		if src.disposed {
			return nil, errors.Disposed(op)
		}
	}
	merged, err := New(nil)
	if err != nil {
		return nil, err
	}
	for _, src := range sources {
		if err := merged.copyEntriesFrom(op, src); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// Clone builds a new notifier with a copy of src's listener sequence
// and the same error policy. Fails if src is nil or disposed; a
// disposed notifier's listeners are already gone.
func Clone(src *Notifier) (*Notifier, error) {
	const op = "notify.Clone"
	if src == nil {
		return nil, &errors.NotifyError{Op: op, Kind: errors.KindUnknown, Msg: "nil notifier"}
	}
	if src.disposed {
		return nil, errors.Disposed(op)
	}
	cloned, err := New(nil)
	if err != nil {
		return nil, err
	}
	if err := cloned.copyEntriesFrom(op, src); err != nil {
		return nil, err
	}
	cloned.policy = src.policy
	return cloned, nil
}
