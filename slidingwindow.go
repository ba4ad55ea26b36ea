package swcounter

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultMaxMemory is the default retention of a SlidingWindowCounter
	DefaultMaxMemory = time.Hour
	// Resolution is the finest granularity at which two events can be told apart
	Resolution = time.Nanosecond
)

// SlidingWindowCounter counts events registered within a trailing window.
//
// Events are kept as offsets from the creation time in a sorted slice. Expired
// events are purged lazily by the count queries, so Increment never searches
// or trims. All methods are safe for concurrent use.
type SlidingWindowCounter struct {
	clock     Clock
	createdAt time.Time
	// maxMemory is how long events are retained
	maxMemory time.Duration
	logger    *zap.Logger

	mu     sync.Mutex
	events []time.Duration
}

// NewSlidingWindowCounter creates a new SlidingWindowCounter
func NewSlidingWindowCounter(opts ...Option) (*SlidingWindowCounter, error) {
	c := &SlidingWindowCounter{
		clock:     SystemClock(),
		maxMemory: DefaultMaxMemory,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.createdAt = c.clock.Now()
	return c, nil
}

// MaxMemory returns how long events are retained
func (c *SlidingWindowCounter) MaxMemory() time.Duration {
	return c.maxMemory
}

// Increment registers an event at the current time
func (c *SlidingWindowCounter) Increment() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	// read under the lock so concurrent appends stay in clock order
	offset := c.clock.Now().Sub(c.createdAt)
	if offset < 0 {
		return fmt.Errorf("%w: now is %s before creation", ErrClockMovedBackwards, -offset)
	}
	if n := len(c.events); n > 0 {
		last := c.events[n-1]
		switch {
		case last == offset:
			c.logger.Debug("Rejected duplicate event", zap.Duration("offset", offset))
			return fmt.Errorf("%w at offset %s (resolution is %s)", ErrDuplicateTimestamp, offset, Resolution)
		case last > offset:
			return fmt.Errorf("%w: offset %s is before last event at %s", ErrClockMovedBackwards, offset, last)
		}
	}
	c.events = append(c.events, offset)
	return nil
}

// CountLast returns the number of events registered within the last window
func (c *SlidingWindowCounter) CountLast(window time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	offset := c.clock.Now().Sub(c.createdAt)
	c.purge(offset)
	if len(c.events) == 0 {
		return 0
	}
	// an event exactly at the lower bound is outside the window
	return len(c.events) - upperBound(c.events, offset-window)
}

// NumLastSecond returns the number of events registered within the last second
func (c *SlidingWindowCounter) NumLastSecond() int {
	return c.CountLast(time.Second)
}

// NumLastMinute returns the number of events registered within the last minute
func (c *SlidingWindowCounter) NumLastMinute() int {
	return c.CountLast(time.Minute)
}

// NumLastHour returns the number of events registered within the last hour
func (c *SlidingWindowCounter) NumLastHour() int {
	return c.CountLast(time.Hour)
}

// Len returns the number of retained events without purging
func (c *SlidingWindowCounter) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// purge drops events older than maxMemory. c.mu must be held.
func (c *SlidingWindowCounter) purge(offset time.Duration) {
	if len(c.events) == 0 {
		return
	}
	cutoff := offset - c.maxMemory
	// nothing can be expired before the counter has lived maxMemory
	if cutoff <= 0 || c.events[0] >= cutoff {
		return
	}
	i := upperBound(c.events, cutoff)
	// reslicing drops the prefix; the next growing append copies only retained events
	c.events = c.events[i:]
	c.logger.Debug("Purged expired events", zap.Int("purged", i), zap.Int("retained", len(c.events)))
}

// upperBound returns the index of the first event greater than x
func upperBound(events []time.Duration, x time.Duration) int {
	return sort.Search(len(events), func(i int) bool {
		return events[i] > x
	})
}
