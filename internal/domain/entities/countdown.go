package entities

import "time"

// TickInterval is the step a Countdown moves by on every tick.
const TickInterval = time.Second

// Countdown tracks remaining exam time. It is driven by external ticks and
// never goes below zero.
type Countdown struct {
	remaining time.Duration
}

// NewCountdown creates a countdown starting at total.
func NewCountdown(total time.Duration) *Countdown {
	if total < 0 {
		total = 0
	}
	return &Countdown{remaining: total}
}

// Tick moves the countdown one interval forward and reports whether it has run out.
func (c *Countdown) Tick() bool {
	c.remaining -= TickInterval
	if c.remaining <= 0 {
		c.remaining = 0
		return true
	}
	return false
}

// Remaining returns the time left.
func (c *Countdown) Remaining() time.Duration {
	return c.remaining
}

// Expired reports whether no time is left.
func (c *Countdown) Expired() bool {
	return c.remaining <= 0
}
