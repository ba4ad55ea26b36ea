package swcounter

import "errors"

var (
	// ErrDuplicateTimestamp is returned by Increment when an event was already registered at the same tick
	ErrDuplicateTimestamp = errors.New("an event with that timestamp has already been registered")
	// ErrClockMovedBackwards is returned by Increment when the clock reports a time before the last event
	ErrClockMovedBackwards = errors.New("clock moved backwards")
	// ErrInvalidMaxMemory is returned when the max memory is negative
	ErrInvalidMaxMemory = errors.New("max memory must not be negative")
)
