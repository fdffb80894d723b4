package timed

import (
	"time"

	"github.com/go-drift/notify/pkg/errors"
	"github.com/go-drift/notify/pkg/notify"
)

// Stopwatch broadcasts its accumulated elapsed time on every step
// while running. Stop pauses accumulation; Start resumes it.
type Stopwatch struct {
	*notify.ValNotifier[time.Duration]
	ticker      *Ticker
	accumulated time.Duration
}

// NewStopwatch creates a stopped stopwatch at zero.
func NewStopwatch(opts *notify.Options) (*Stopwatch, error) {
	v, err := notify.NewValWith[time.Duration](0, opts)
	if err != nil {
		return nil, err
	}
	return &Stopwatch{ValNotifier: v}, nil
}

// IsRunning reports whether the stopwatch is accumulating time.
func (s *Stopwatch) IsRunning() bool {
	return s.ticker != nil && s.ticker.IsActive()
}

// Elapsed returns the total accumulated time.
func (s *Stopwatch) Elapsed() time.Duration {
	if s.IsRunning() {
		return s.accumulated + s.ticker.Elapsed()
	}
	return s.accumulated
}

// Start begins (or resumes) accumulation. Starting a running
// stopwatch is a no-op.
func (s *Stopwatch) Start() {
	if s.IsRunning() {
		return
	}
	s.ticker = NewTicker(s.onTick)
	s.ticker.Start()
}

// Stop pauses accumulation at the current elapsed time.
func (s *Stopwatch) Stop() {
	if !s.IsRunning() {
		return
	}
	s.accumulated += s.ticker.Elapsed()
	s.ticker.Stop()
	s.ticker = nil
}

// Reset stops the stopwatch and zeroes the elapsed time.
func (s *Stopwatch) Reset() {
	s.Stop()
	s.accumulated = 0
}

// Lap broadcasts and returns the current elapsed time without
// stopping the stopwatch.
func (s *Stopwatch) Lap() (time.Duration, error) {
	elapsed := s.Elapsed()
	if err := s.CallWith(elapsed); err != nil {
		return elapsed, err
	}
	return elapsed, nil
}

func (s *Stopwatch) onTick(time.Duration) {
	if err := s.CallWith(s.Elapsed()); err != nil {
		s.Stop()
		errors.Report(&errors.NotifyError{
			Op:   "timed.Stopwatch",
			Kind: errors.KindOf(err),
			Msg:  "stopping after failed broadcast",
			Err:  err,
		})
	}
}
