package sim

import "time"

// Clock tracks elapsed wall time across pauses. While stopped the elapsed
// value is frozen; Resume rebases the start so the frozen value carries on.
type Clock struct {
	start   time.Time
	elapsed time.Duration
	running bool
}

// Restart zeroes the elapsed time and anchors the start at now.
func (c *Clock) Restart(now time.Time) {
	c.start = now
	c.elapsed = 0
}

// Resume marks the clock running, with start = now - elapsed.
func (c *Clock) Resume(now time.Time) {
	c.start = now.Add(-c.elapsed)
	c.running = true
}

func (c *Clock) Pause() { c.running = false }

// Tick recomputes elapsed from the start. It is a no-op while paused and
// never lets elapsed go backwards.
func (c *Clock) Tick(now time.Time) time.Duration {
	if !c.running {
		return c.elapsed
	}
	if d := now.Sub(c.start); d > c.elapsed {
		c.elapsed = d
	}
	return c.elapsed
}

func (c *Clock) Elapsed() time.Duration { return c.elapsed }
func (c *Clock) Running() bool          { return c.running }
func (c *Clock) Start() time.Time       { return c.start }
