// Package swcounter counts events registered within sliding time windows.
package swcounter

import "time"

type Counter interface {
	// Increment registers an event for the key
	Increment(key string) error
	// CountLast returns the number of events registered for the key within the last window
	CountLast(key string, window time.Duration) (count int, err error)
}
