package sim

import (
	"testing"
	"time"
)

func TestClock_PauseFreezesElapsed(t *testing.T) {
	t0 := time.Unix(1000, 0)
	var c Clock
	c.Restart(t0)
	c.Resume(t0)

	if got := c.Tick(t0.Add(2 * time.Second)); got != 2*time.Second {
		t.Fatalf("elapsed = %v, want 2s", got)
	}

	c.Pause()
	if got := c.Tick(t0.Add(10 * time.Second)); got != 2*time.Second {
		t.Errorf("elapsed advanced while paused: %v", got)
	}

	// resume after a 8s gap; only time after the resume counts
	c.Resume(t0.Add(10 * time.Second))
	if got := c.Tick(t0.Add(11 * time.Second)); got != 3*time.Second {
		t.Errorf("elapsed after resume = %v, want 3s", got)
	}
}

func TestClock_Monotonic(t *testing.T) {
	t0 := time.Unix(0, 0)
	var c Clock
	c.Restart(t0)
	c.Resume(t0)

	c.Tick(t0.Add(5 * time.Second))
	if got := c.Tick(t0.Add(time.Second)); got != 5*time.Second {
		t.Errorf("elapsed went backwards: %v", got)
	}
}

func TestClock_RestartKeepsRunning(t *testing.T) {
	t0 := time.Unix(0, 0)
	var c Clock
	c.Resume(t0)
	c.Tick(t0.Add(time.Minute))

	c.Restart(t0.Add(time.Minute))
	if c.Elapsed() != 0 {
		t.Errorf("elapsed after restart = %v", c.Elapsed())
	}
	if !c.Running() {
		t.Error("restart should not stop a running clock")
	}
	if got := c.Tick(t0.Add(time.Minute + time.Second)); got != time.Second {
		t.Errorf("elapsed = %v, want 1s", got)
	}
}
