package swcounter

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type Option func(*SlidingWindowCounter) error

// WithMaxMemory sets how long events are retained
func WithMaxMemory(d time.Duration) Option {
	return func(c *SlidingWindowCounter) error {
		if d < 0 {
			return fmt.Errorf("%w: %s", ErrInvalidMaxMemory, d)
		}
		c.maxMemory = d
		return nil
	}
}

// WithClock sets the time source
func WithClock(clock Clock) Option {
	return func(c *SlidingWindowCounter) error {
		if clock == nil {
			return errors.New("clock is nil")
		}
		c.clock = clock
		return nil
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *SlidingWindowCounter) error {
		if logger == nil {
			return errors.New("logger is nil")
		}
		c.logger = logger
		return nil
	}
}
