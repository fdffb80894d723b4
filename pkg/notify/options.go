package notify

import (
	"github.com/go-drift/notify/pkg/errors"
)

// ErrorAction is an error policy's verdict on a failed listener.
type ErrorAction int

const (
	// ActionRethrow halts the broadcast and returns the failure.
	ActionRethrow ErrorAction = iota
	// ActionIgnore swallows the failure and continues the broadcast.
	ActionIgnore
	// ActionRemove drops the failing listener and continues.
	ActionRemove
)

// ErrorPolicy decides what to do with a listener failure during a
// broadcast. h identifies the failing listener.
type ErrorPolicy func(h Handle, err error) ErrorAction

// Options configures a notifier at construction or re-initialization.
// All fields are optional.
type Options struct {
	// Listeners are registered in order via AddListener.
	Listeners []any

	// Attach installs each notifier as a listener of the new one
	// (the new notifier will notify them).
	Attach []*Notifier

	// ListenTo makes the new notifier a listener of each source.
	ListenTo []*Notifier

	// MergeFrom copies each source's listener sequence into the new
	// notifier. Sources must not be disposed.
	MergeFrom []*Notifier

	// Locked locks the listener sequence after setup.
	Locked bool

	// Policy handles listener failures during broadcasts.
	Policy ErrorPolicy
}

func (n *Notifier) applyOptions(opts *Options) error {
	const op = "notify.Options"
	if opts == nil {
		return nil
	}
	n.policy = opts.Policy
	for _, src := range opts.MergeFrom {
		if err := n.copyEntriesFrom(op, src); err != nil {
			return err
		}
	}
	for _, fn := range opts.Listeners {
		if _, err := n.AddListener(fn); err != nil {
			return err
		}
	}
	for _, other := range opts.Attach {
		if _, err := n.Attach(other); err != nil {
			return err
		}
	}
	for _, src := range opts.ListenTo {
		if _, err := n.StartListeningTo(src); err != nil {
			return err
		}
	}
	if opts.Locked {
		n.LockListeners()
	}
	return nil
}

// copyEntriesFrom appends a snapshot of src's listener sequence,
// keeping handles and skipping listeners already present.
func (n *Notifier) copyEntriesFrom(op string, src *Notifier) error {
	if src == nil {
		return &errors.NotifyError{Op: op, Kind: errors.KindUnknown, Msg: "nil notifier"}
	}
	if src.disposed {
		return errors.Disposed(op)
	}
	for _, e := range src.entries {
		if e.ptr != 0 && n.indexOfPtr(e.ptr) >= 0 {
			continue
		}
		if e.target != nil {
			if e.target == n {
				continue
			}
			if _, dup := n.attachments[e.target.id]; dup {
				continue
			}
			n.attachments[e.target.id] = e.handle
		}
		n.entries = append(n.entries, e)
	}
	return nil
}
