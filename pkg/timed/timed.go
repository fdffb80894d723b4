package timed

import (
	"time"

	"github.com/go-drift/notify/pkg/errors"
	"github.com/go-drift/notify/pkg/notify"
)

// TimedNotifier broadcasts a growing tick count at a fixed interval.
// Each time another interval elapses it calls the underlying value
// notifier with the new count, so listeners observe 1, 2, 3, ...
//
// The driver owns its ticker handle; callers stop delivery by calling
// Stop (or by disposing the notifier, which makes the next delivery
// attempt fail and stops the ticker).
type TimedNotifier struct {
	*notify.ValNotifier[int]
	ticker   *Ticker
	interval time.Duration
	ticks    int
}

// NewTimed creates a timed notifier firing every interval. The driver
// starts stopped; call Start to begin ticking.
func NewTimed(interval time.Duration, opts *notify.Options) (*TimedNotifier, error) {
	const op = "timed.NewTimed"
	if interval <= 0 {
		return nil, &errors.NotifyError{Op: op, Kind: errors.KindUnknown, Msg: "interval must be positive"}
	}
	v, err := notify.NewVal[int](opts)
	if err != nil {
		return nil, err
	}
	return &TimedNotifier{ValNotifier: v, interval: interval}, nil
}

// Interval returns the tick interval.
func (t *TimedNotifier) Interval() time.Duration {
	return t.interval
}

// Ticks returns the number of ticks broadcast since the last Reset.
func (t *TimedNotifier) Ticks() int {
	return t.ticks
}

// IsRunning reports whether the driver is ticking.
func (t *TimedNotifier) IsRunning() bool {
	return t.ticker != nil && t.ticker.IsActive()
}

// Start begins ticking. Starting a running driver is a no-op.
func (t *TimedNotifier) Start() {
	if t.IsRunning() {
		return
	}
	t.ticker = NewTicker(t.onTick)
	t.ticker.Start()
}

// Stop halts ticking at the current count.
func (t *TimedNotifier) Stop() {
	if t.ticker != nil {
		t.ticker.Stop()
		t.ticker = nil
	}
}

// Reset zeroes the tick count. A running driver keeps running with a
// fresh epoch.
func (t *TimedNotifier) Reset() {
	running := t.IsRunning()
	t.Stop()
	t.ticks = 0
	if running {
		t.Start()
	}
}

func (t *TimedNotifier) onTick(elapsed time.Duration) {
	due := int(elapsed / t.interval)
	for t.ticks < due {
		t.ticks++
		if err := t.CallWith(t.ticks); err != nil {
			// Delivery failed (notifier disposed, or a halting
			// listener error): stop ticking and report.
			t.Stop()
			errors.Report(&errors.NotifyError{
				Op:   "timed.TimedNotifier",
				Kind: errors.KindOf(err),
				Msg:  "stopping after failed broadcast",
				Err:  err,
			})
			return
		}
	}
}
