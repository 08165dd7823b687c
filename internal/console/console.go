// Package console holds the process's current output sink. Everything the runner
// prints goes through a Console so that suite execution can swap the sink for a
// discard writer and have it restored on every exit path.
package console

import (
	"io"
	"sync"
)

// Console is an io.Writer that forwards to a swappable sink.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// New returns a Console writing to w.
func New(w io.Writer) *Console {
	return &Console{out: w}
}

// Write forwards p to the current sink.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	out := c.out
	c.mu.Unlock()
	return out.Write(p)
}

// Suppress redirects output to io.Discard until the returned restore func is
// called. Restores nest: each one reinstates the sink that was current when its
// Suppress was called.
func (c *Console) Suppress() (restore func()) {
	c.mu.Lock()
	prev := c.out
	c.out = io.Discard
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			c.out = prev
			c.mu.Unlock()
		})
	}
}

// Suppressed runs fn with output suppressed. The sink is restored even if fn
// panics.
func (c *Console) Suppressed(fn func() error) error {
	restore := c.Suppress()
	defer restore()
	return fn()
}
