package swcounter

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"
)

var _ Counter = (*MemoryCounter)(nil)

// MemoryCounter keeps one SlidingWindowCounter per key in a TTL cache
type MemoryCounter struct {
	cache *ttlcache.Cache[string, *SlidingWindowCounter]
	// maxMemory is the retention of each key's counter and the TTL of idle keys
	maxMemory time.Duration
	clock     Clock
	logger    *zap.Logger
	// capacity is the maximum number of keys to store in the cache
	capacity uint64
	// disableAutoDeleteExpired disables the automatic deletion of expired keys
	disableAutoDeleteExpired bool
	closeOnce                sync.Once
}

type MemoryCounterOption func(*MemoryCounter) error

// MemoryCounterWithCapacity sets the maximum number of keys to store in the cache.
// The least recently used key is evicted together with its events.
func MemoryCounterWithCapacity(capacity uint64) MemoryCounterOption {
	return func(c *MemoryCounter) error {
		c.capacity = capacity
		return nil
	}
}

// MemoryCounterDisableAutoDeleteExpired disables the automatic deletion of expired keys
func MemoryCounterDisableAutoDeleteExpired() MemoryCounterOption {
	return func(c *MemoryCounter) error {
		c.disableAutoDeleteExpired = true
		return nil
	}
}

// MemoryCounterWithMaxMemory sets how long each key retains its events
func MemoryCounterWithMaxMemory(d time.Duration) MemoryCounterOption {
	return func(c *MemoryCounter) error {
		if d < 0 {
			return ErrInvalidMaxMemory
		}
		c.maxMemory = d
		return nil
	}
}

// MemoryCounterWithClock sets the time source of every key's counter
func MemoryCounterWithClock(clock Clock) MemoryCounterOption {
	return func(c *MemoryCounter) error {
		if clock == nil {
			return errors.New("clock is nil")
		}
		c.clock = clock
		return nil
	}
}

// MemoryCounterWithLogger sets the logger
func MemoryCounterWithLogger(logger *zap.Logger) MemoryCounterOption {
	return func(c *MemoryCounter) error {
		if logger == nil {
			return errors.New("logger is nil")
		}
		c.logger = logger
		return nil
	}
}

// NewMemoryCounter creates a new MemoryCounter.
// Key expiry follows wall time even when a custom Clock is set.
func NewMemoryCounter(opts ...MemoryCounterOption) (*MemoryCounter, error) {
	c := &MemoryCounter{
		maxMemory: DefaultMaxMemory,
		clock:     SystemClock(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	var ttlOpts []ttlcache.Option[string, *SlidingWindowCounter]
	if c.maxMemory > 0 {
		ttlOpts = append(ttlOpts, ttlcache.WithTTL[string, *SlidingWindowCounter](c.maxMemory))
	}
	if c.capacity > 0 {
		ttlOpts = append(ttlOpts, ttlcache.WithCapacity[string, *SlidingWindowCounter](c.capacity))
	}
	cache := ttlcache.New[string, *SlidingWindowCounter](ttlOpts...)
	cache.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, *SlidingWindowCounter]) {
		c.logger.Debug("Evicted counter", zap.String("key", item.Key()), zap.Int("reason", int(reason)))
	})
	c.cache = cache
	if !c.disableAutoDeleteExpired {
		go cache.Start()
	}
	return c, nil
}

// Increment registers an event for the given key
func (c *MemoryCounter) Increment(key string) error {
	for {
		sw, err := c.counter(key)
		if err != nil {
			return err
		}
		if err := sw.Increment(); err != nil {
			return err
		}
		// capacity eviction can drop the counter between lookup and append
		if i := c.cache.Get(key, ttlcache.WithDisableTouchOnHit[string, *SlidingWindowCounter]()); i != nil && i.Value() == sw {
			return nil
		}
		c.logger.Debug("Counter evicted during increment, retrying", zap.String("key", key))
	}
}

// CountLast returns the number of events registered for the given key within the last window.
// Reading does not extend the key's expiry.
func (c *MemoryCounter) CountLast(key string, window time.Duration) (count int, err error) {
	i := c.cache.Get(key, ttlcache.WithDisableTouchOnHit[string, *SlidingWindowCounter]())
	if i == nil {
		return 0, nil
	}
	return i.Value().CountLast(window), nil
}

// Keys returns the keys that have not expired
func (c *MemoryCounter) Keys() []string {
	items := c.cache.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	return keys
}

// DeleteExpired deletes expired keys from the cache
func (c *MemoryCounter) DeleteExpired() {
	c.cache.DeleteExpired()
}

// Close stops the automatic deletion of expired keys
func (c *MemoryCounter) Close() {
	if c.disableAutoDeleteExpired {
		return
	}
	c.closeOnce.Do(c.cache.Stop)
}

func (c *MemoryCounter) counters() map[string]*SlidingWindowCounter {
	items := c.cache.Items()
	counters := make(map[string]*SlidingWindowCounter, len(items))
	for k, i := range items {
		counters[k] = i.Value()
	}
	return counters
}

// counter returns the key's counter, creating it on first use
func (c *MemoryCounter) counter(key string) (*SlidingWindowCounter, error) {
	if i := c.cache.Get(key); i != nil {
		return i.Value(), nil
	}
	sw, err := c.newCounter()
	if err != nil {
		return nil, err
	}
	i, _ := c.cache.GetOrSet(key, sw)
	return i.Value(), nil
}

func (c *MemoryCounter) newCounter() (*SlidingWindowCounter, error) {
	return NewSlidingWindowCounter(
		WithMaxMemory(c.maxMemory),
		WithClock(c.clock),
		WithLogger(c.logger),
	)
}
