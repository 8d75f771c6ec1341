package storage

import (
	"sync"

	"github.com/san-kum/ringball/internal/sim"
)

// Collector is a sim.Observer that keeps every Nth frame as a Sample.
type Collector struct {
	mu      sync.Mutex
	every   int
	samples []Sample
}

func NewCollector(every int) *Collector {
	if every < 1 {
		every = 1
	}
	return &Collector{every: every}
}

func (c *Collector) OnStep(s sim.Snapshot) {
	if s.Frame%c.every != 0 {
		return
	}
	c.mu.Lock()
	c.samples = append(c.samples, SampleOf(s))
	c.mu.Unlock()
}

// Samples returns a copy of what has been collected.
func (c *Collector) Samples() []Sample {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sample(nil), c.samples...)
}

func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.samples)
}
