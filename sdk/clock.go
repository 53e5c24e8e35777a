package sdk

import (
	"sync"
	"time"
)

// Clock is the monotonic ledger clock, in seconds.
type Clock interface {
	Timestamp() uint64
}

// SystemClock reads wall time.
type SystemClock struct{}

func (SystemClock) Timestamp() uint64 {
	return uint64(time.Now().Unix())
}

// ManualClock only moves when told to. Used by tests and by replays.
type ManualClock struct {
	mu  sync.Mutex
	now uint64
}

func NewManualClock(start uint64) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Timestamp() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set jumps to ts. Going backwards is ignored so the clock stays monotonic.
func (c *ManualClock) Set(ts uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ts > c.now {
		c.now = ts
	}
}

// Advance moves the clock forward by d seconds.
func (c *ManualClock) Advance(d uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
}
