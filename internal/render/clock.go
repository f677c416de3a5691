package render

import "time"

// Clock reports milliseconds elapsed since some fixed start instant.
type Clock interface {
	Millis() uint64
}

// MonotonicClock measures elapsed time with the runtime's monotonic clock, so wall clock changes do not move it.
type MonotonicClock struct {
	start time.Time
}

// NewClock starts a [MonotonicClock] at the current instant.
func NewClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

func (c *MonotonicClock) Millis() uint64 {
	return uint64(time.Since(c.start).Milliseconds())
}

// ClockFunc adapts a function to [Clock].
type ClockFunc func() uint64

func (f ClockFunc) Millis() uint64 { return f() }
