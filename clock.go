package swcounter

import "time"

// Clock reports the current time
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock returns a Clock backed by time.Now.
// Offsets computed from it use the monotonic clock reading.
func SystemClock() Clock {
	return systemClock{}
}
