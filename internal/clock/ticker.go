// Package clock provides tick sources for exam countdowns.
package clock

import "time"

// Ticker delivers ticks on C until Stop is called.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Factory creates a ticker firing every d.
type Factory func(d time.Duration) Ticker

// NewTicker wraps time.NewTicker.
func NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time {
	return r.t.C
}

func (r *realTicker) Stop() {
	r.t.Stop()
}

// Manual is a Ticker driven by hand. Tests use it to step countdowns.
type Manual struct {
	ch      chan time.Time
	stopped chan struct{}
}

func NewManual() *Manual {
	return &Manual{
		ch:      make(chan time.Time),
		stopped: make(chan struct{}),
	}
}

func (m *Manual) C() <-chan time.Time {
	return m.ch
}

// Stop is safe to call more than once.
func (m *Manual) Stop() {
	select {
	case <-m.stopped:
	default:
		close(m.stopped)
	}
}

// Stopped reports whether Stop was called.
func (m *Manual) Stopped() bool {
	select {
	case <-m.stopped:
		return true
	default:
		return false
	}
}

// Tick delivers one tick and blocks until it is received. It returns false if
// the ticker was stopped first.
func (m *Manual) Tick() bool {
	select {
	case m.ch <- time.Now():
		return true
	case <-m.stopped:
		return false
	}
}
