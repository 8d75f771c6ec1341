package metrics

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/ringball/internal/dynamo"
	"github.com/san-kum/ringball/internal/sim"
)

func snap(frame int, v dynamo.Vec2, radius float64, hits int) sim.Snapshot {
	return sim.Snapshot{
		Frame:      frame,
		Elapsed:    time.Duration(frame) * time.Second,
		Ball:       dynamo.Ball{Center: dynamo.V(200, 200), Velocity: v, Radius: radius},
		Collisions: hits,
	}
}

func TestSpeedMetrics(t *testing.T) {
	mean, peak := NewMeanSpeed(), NewPeakSpeed()
	set := Set{mean, peak}
	set.OnStep(snap(1, dynamo.V(3, 4), 5, 0))
	set.OnStep(snap(2, dynamo.V(0, 1), 5, 0))

	if math.Abs(mean.Value()-3) > 1e-12 {
		t.Errorf("mean speed = %v, want 3", mean.Value())
	}
	if peak.Value() != 5 {
		t.Errorf("peak speed = %v, want 5", peak.Value())
	}

	set.Reset()
	if mean.Value() != 0 || peak.Value() != 0 {
		t.Error("reset did not clear")
	}
}

func TestCollisionMetrics(t *testing.T) {
	set := Set{NewCollisions(), NewCollisionRate(), NewFinalRadius()}
	set.OnStep(snap(2, dynamo.Vec2{}, 6, 1))
	set.OnStep(snap(4, dynamo.Vec2{}, 7, 6))

	v := set.Values()
	if v["collisions"] != 6 {
		t.Errorf("collisions = %v", v["collisions"])
	}
	if v["collision_rate"] != 1.5 {
		t.Errorf("rate = %v, want 1.5", v["collision_rate"])
	}
	if v["final_radius"] != 7 {
		t.Errorf("final radius = %v", v["final_radius"])
	}
	if NewCollisionRate().Value() != 0 {
		t.Error("rate with no time should be 0")
	}
}

func TestContainment(t *testing.T) {
	layout := sim.Layout{Width: 400, Height: 400, BoundaryRadius: 100, Margin: 4}
	c := NewContainment(layout, 1e-6)
	if c.Value() != 1 {
		t.Errorf("empty containment = %v, want 1", c.Value())
	}

	in := snap(1, dynamo.Vec2{}, 5, 0)
	in.Ball.Center = dynamo.V(295, 200)
	out := snap(2, dynamo.Vec2{}, 5, 0)
	out.Ball.Center = dynamo.V(296, 200)

	c.Observe(in)
	c.Observe(out)
	if c.Value() != 0.5 {
		t.Errorf("containment = %v, want 0.5", c.Value())
	}
}

func TestContainment_RealRun(t *testing.T) {
	layout := sim.DefaultLayout(400, 400)
	w := sim.NewWorld(layout, nil, time.Unix(0, 0))
	set := Standard(layout)
	for i := 0; i < 3000; i++ {
		w.Step()
		set.OnStep(w.Snapshot())
	}
	if v := set.Values()["containment"]; v != 1 {
		t.Errorf("containment = %v, want 1", v)
	}
	if set.Values()["collisions"] == 0 {
		t.Error("expected collisions in 3000 frames")
	}
}

func TestSeries_Thins(t *testing.T) {
	s := NewSeries(8)
	for i := 0; i < 100; i++ {
		s.OnStep(snap(i, dynamo.V(float64(i), 0), float64(i), 0))
	}
	if s.Len() >= 8 || s.Len() == 0 {
		t.Errorf("len = %d, want 1..7", s.Len())
	}
	for i := 1; i < s.Len(); i++ {
		if s.Radius[i] <= s.Radius[i-1] {
			t.Fatalf("series out of order: %v", s.Radius)
		}
	}
}

func TestPlot(t *testing.T) {
	if got := Plot(nil, 40, 5, "radius"); !strings.Contains(got, "no data") {
		t.Errorf("empty plot = %q", got)
	}
	got := Plot([]float64{1, 2, 3, 2, 1}, 40, 5, "radius")
	if !strings.Contains(got, "radius") {
		t.Errorf("caption missing: %q", got)
	}
}
