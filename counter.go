package appmetrics

import "sync"

// Counter is a signed integer accumulator.
type Counter struct {
	mu    sync.Mutex
	value int64
}

// NewCounter creates a Counter starting at zero.
func NewCounter() *Counter {
	return &Counter{}
}

// Observe adds int64(v) to the counter.
func (c *Counter) Observe(v float64) {
	c.mu.Lock()
	c.value += int64(v)
	c.mu.Unlock()
}

// Inc increments the counter by delta, a convenience for callers that
// already have an integer in hand.
func (c *Counter) Inc(delta int64) {
	c.mu.Lock()
	c.value += delta
	c.mu.Unlock()
}

// Reset sets the counter to an absolute value, for callers (such as
// runtime-statistics collectors) that track a cumulative total themselves
// rather than accumulating deltas through Observe/Inc.
func (c *Counter) Reset(v int64) {
	c.mu.Lock()
	c.value = v
	c.mu.Unlock()
}

// Snapshot returns the counter's current value.
func (c *Counter) Snapshot() CounterSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CounterSnapshot{Kind: "counter", Value: c.value}
}
