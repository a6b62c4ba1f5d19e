package clock

import "time"

// Clock abstracts "now" so scheduling logic can be tested against a pinned
// instant instead of the wall clock.
type Clock interface {
	Now() time.Time
}

// System reads the platform clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always returns the same instant. For tests.
type Fixed struct {
	Instant time.Time
}

func (f Fixed) Now() time.Time { return f.Instant }
