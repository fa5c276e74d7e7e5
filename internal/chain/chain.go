// Package chain supplies the block-height counter the registries compare
// deadlines against. Heights come from the environment, not from any clock:
// expiry is evaluated lazily when a dependent operation runs, nothing sweeps
// in the background.
package chain

import "sync"

// Source reports the current block height.
type Source interface {
	Height() uint64
}

// Counter is an in-process height source. It only moves forward.
type Counter struct {
	mu     sync.RWMutex
	height uint64
}

func NewCounter() *Counter {
	return &Counter{}
}

func (c *Counter) Height() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.height
}

// Advance moves the counter forward by n blocks.
func (c *Counter) Advance(n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.height += n
}

// SetHeight fast-forwards to the given height. Heights never go backwards;
// a lower value is ignored.
func (c *Counter) SetHeight(h uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h > c.height {
		c.height = h
	}
}
