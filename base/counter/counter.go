package counter

import "sync/atomic"

// Counter is a non-negative integer safe for concurrent use. Reads never
// block and never observe a partially applied update.
type Counter struct {
	count atomic.Int64
}

func NewCounter() *Counter {
	return &Counter{}
}

// NewCounterFrom returns a counter starting at val, or at 0 when val is
// negative
func NewCounterFrom(val int) *Counter {
	c := &Counter{}
	c.count.Store(clamp(int64(val)))
	return c
}

// Add returns the value after the update. A negative val stops at 0.
func (c *Counter) Add(val int) int {
	if val >= 0 {
		return int(c.count.Add(int64(val)))
	}
	for {
		cur := c.count.Load()
		next := clamp(cur + int64(val))
		if c.count.CompareAndSwap(cur, next) {
			return int(next)
		}
	}
}

func clamp(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

func (c *Counter) Inc() int {
	return c.Add(1)
}

func (c *Counter) Count() int {
	return int(c.count.Load())
}

func (c *Counter) Reset() {
	c.count.Store(0)
}
