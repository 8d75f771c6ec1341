package metrics

import (
	"github.com/san-kum/ringball/internal/dynamo"
	"github.com/san-kum/ringball/internal/sim"
)

// Containment is the fraction of frames with the ball fully inside the
// boundary. Anything below 1 means the resolver let the ball escape.
type Containment struct {
	name       string
	boundary   dynamo.Boundary
	tolerance  float64
	violations int
	samples    int
}

func NewContainment(layout sim.Layout, tolerance float64) *Containment {
	return &Containment{
		name:      "containment",
		boundary:  layout.Boundary(),
		tolerance: tolerance,
	}
}

func (c *Containment) Name() string { return c.name }

func (c *Containment) Observe(s sim.Snapshot) {
	c.samples++
	d := s.Ball.Center.Dist(c.boundary.Center)
	if d+s.Ball.Radius > c.boundary.Radius+c.tolerance || !s.Ball.Center.IsValid() {
		c.violations++
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1
	}
	return 1 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}
