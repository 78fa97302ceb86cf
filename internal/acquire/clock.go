package acquire

import "time"

// Clock abstracts wall-clock pacing so tests can drive the poll loop
// without real delays.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock returns a Clock backed by the real time package.
func SystemClock() Clock { return systemClock{} }

// FakeClock is a Clock whose time only moves when Sleep is called. It
// records the total virtual time slept.
type FakeClock struct {
	now   time.Time
	slept time.Duration
}

// NewFakeClock returns a FakeClock starting at the given instant.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time { return c.now }

func (c *FakeClock) Sleep(d time.Duration) {
	c.now = c.now.Add(d)
	c.slept += d
}

// Advance moves the clock forward without counting toward Slept. Tests use
// it to model time consumed elsewhere, such as a blocking port read.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// Slept returns the total virtual duration passed to Sleep.
func (c *FakeClock) Slept() time.Duration { return c.slept }
