package metrics

import (
	"github.com/san-kum/ringball/internal/sim"
)

type Collisions struct {
	name  string
	count int
}

func NewCollisions() *Collisions {
	return &Collisions{name: "collisions"}
}

func (c *Collisions) Name() string { return c.name }

func (c *Collisions) Observe(s sim.Snapshot) { c.count = s.Collisions }

func (c *Collisions) Value() float64 { return float64(c.count) }
func (c *Collisions) Reset()         { c.count = 0 }

// CollisionRate is collisions per second of elapsed simulation time.
type CollisionRate struct {
	name    string
	count   int
	elapsed float64
}

func NewCollisionRate() *CollisionRate {
	return &CollisionRate{name: "collision_rate"}
}

func (c *CollisionRate) Name() string { return c.name }

func (c *CollisionRate) Observe(s sim.Snapshot) {
	c.count = s.Collisions
	c.elapsed = s.Elapsed.Seconds()
}

func (c *CollisionRate) Value() float64 {
	if c.elapsed <= 0 {
		return 0
	}
	return float64(c.count) / c.elapsed
}

func (c *CollisionRate) Reset() {
	c.count = 0
	c.elapsed = 0
}
