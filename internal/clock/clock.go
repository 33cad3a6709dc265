// Package clock is the elapsed-time timer shown next to the puzzle.
package clock

import (
	"fmt"
	"time"
)

// Clock measures play time. Start and Stop may be called any number of times;
// the zero value is a stopped clock reading zero.
type Clock struct {
	now     func() time.Time
	started time.Time
	stopped time.Time
	running bool
}

// New returns a stopped clock. A nil now uses time.Now.
func New(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

func (c *Clock) clock() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

// Start resets the epoch and starts counting.
func (c *Clock) Start() {
	c.started = c.clock()
	c.stopped = time.Time{}
	c.running = true
}

// Stop freezes the elapsed time. Stopping a stopped clock does nothing.
func (c *Clock) Stop() {
	if !c.running {
		return
	}
	c.stopped = c.clock()
	c.running = false
}

// Running reports whether the clock is counting.
func (c *Clock) Running() bool { return c.running }

// Elapsed returns the time since Start, frozen at Stop.
func (c *Clock) Elapsed() time.Duration {
	switch {
	case c.running:
		return c.clock().Sub(c.started)
	case c.started.IsZero():
		return 0
	default:
		return c.stopped.Sub(c.started)
	}
}

// Seconds returns Elapsed in whole seconds.
func (c *Clock) Seconds() int {
	return int(c.Elapsed() / time.Second)
}

// FormatTime renders seconds as MM:SS. Minutes keep counting past 99.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
