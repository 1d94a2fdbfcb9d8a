package clock

import "time"

// Clock supplies the current moment. The calendar engine takes it as an
// injected capability so tests can pin "now" to a deterministic value.
type Clock interface {
	Now() time.Time
}

// System reads the real wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always reports the same moment.
type Fixed struct {
	Time time.Time
}

func (f Fixed) Now() time.Time { return f.Time }
