package sim

import (
	"errors"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/san-kum/ringball/internal/dynamo"
)

type fixedColor color.RGBA

func (f fixedColor) Next() color.RGBA { return color.RGBA(f) }

var red = fixedColor{R: 255, A: 255}

func testLayout() Layout {
	return Layout{
		Width:          1080,
		Height:         1920,
		BoundaryRadius: 432,
		Margin:         4,
		InitialRadius:  20,
		TrailLength:    5,
		MarkerCap:      16,
	}
}

func TestWorld_ResetDeterminism(t *testing.T) {
	now := time.Unix(100, 0)
	w := NewWorld(testLayout(), red, now)

	for i := 0; i < 500; i++ {
		w.Step()
	}
	w.Reset(now.Add(time.Minute))

	b := w.Ball()
	if b.Center != dynamo.V(540, 1920/2.7) {
		t.Errorf("center = %v, want (540, %.3f)", b.Center, 1920/2.7)
	}
	if b.Velocity != dynamo.V(0.8, 0.8) {
		t.Errorf("velocity = %v, want (0.8, 0.8)", b.Velocity)
	}
	if b.Radius != 20 {
		t.Errorf("radius = %v, want 20", b.Radius)
	}
	if w.Trail().Len() != 0 || w.Markers().Len() != 0 {
		t.Errorf("trail/markers not cleared: %d/%d", w.Trail().Len(), w.Markers().Len())
	}
	if w.Clock().Elapsed() != 0 {
		t.Errorf("elapsed = %v, want 0", w.Clock().Elapsed())
	}
	if w.Color() != color.RGBA(red) {
		t.Errorf("color = %v", w.Color())
	}
}

func TestWorld_Invariants(t *testing.T) {
	w := NewWorld(testLayout(), red, time.Unix(0, 0))
	bound := w.Boundary()
	prevRadius := w.Ball().Radius

	for i := 0; i < 5000; i++ {
		_, hit := w.Step()
		b := w.Ball()

		if i >= 5 && w.Trail().Len() != 5 {
			t.Fatalf("frame %d: trail len %d, want 5", i, w.Trail().Len())
		}
		if w.Trail().Len() > 5 {
			t.Fatalf("frame %d: trail len %d exceeds 5", i, w.Trail().Len())
		}
		if b.Radius < prevRadius {
			t.Fatalf("frame %d: radius shrank %v -> %v", i, prevRadius, b.Radius)
		}
		if b.Radius <= 0 || b.Radius > bound.MaxBallRadius {
			t.Fatalf("frame %d: radius %v out of (0, %v]", i, b.Radius, bound.MaxBallRadius)
		}
		if hit {
			d := b.Center.Dist(bound.Center)
			if math.Abs(d-(bound.Radius-b.Radius)) > 1e-6 {
				t.Fatalf("frame %d: not tangent, d=%v want %v", i, d, bound.Radius-b.Radius)
			}
			if b.Speed() < 1-1e-9 {
				t.Fatalf("frame %d: post-collision speed %v < 1", i, b.Speed())
			}
		}
		prevRadius = b.Radius
	}

	if w.Markers().Len() > 16 {
		t.Errorf("markers %d exceed cap 16", w.Markers().Len())
	}
	if w.Collisions() == 0 {
		t.Error("expected at least one collision in 5000 frames")
	}
}

func TestWorld_Scenario(t *testing.T) {
	layout := Layout{Width: 400, Height: 400, BoundaryRadius: 100, Margin: 4, InitialRadius: 5, MarkerCap: 0}

	var notified []dynamo.Collision
	w := NewWorld(layout, red, time.Unix(0, 0),
		WithParams(dynamo.Params{Gravity: 0, VelocityIncrease: 1.02, VelocityDecay: 1, GrowthRate: 1.015}),
		WithNotifier(dynamo.CollisionFunc(func(c dynamo.Collision) { notified = append(notified, c) })),
	)
	w.ball = dynamo.Ball{Center: dynamo.V(296, 200), Velocity: dynamo.V(2, 0), Radius: 5}

	hit, ok := w.Step()
	if !ok {
		t.Fatal("expected collision on first tick")
	}

	b := w.Ball()
	if b.Velocity.X >= 0 {
		t.Errorf("vx should reverse, got %v", b.Velocity.X)
	}
	if math.Abs(b.Velocity.X-(-2*0.9*1.02)) > 1e-9 {
		t.Errorf("vx = %v, want %v", b.Velocity.X, -2*0.9*1.02)
	}
	if math.Abs(b.Radius-5.075) > 1e-9 {
		t.Errorf("radius = %v, want 5.075", b.Radius)
	}
	markers := w.Markers().items()
	if len(markers) != 1 || markers[0].Point.Dist(dynamo.V(300, 200)) > 1e-9 {
		t.Errorf("markers = %v, want one at (300, 200)", markers)
	}
	if len(notified) != 1 || notified[0].Index != 1 || notified[0] != hit {
		t.Errorf("notifier saw %v, want exactly %v", notified, hit)
	}
	trail := w.Trail().items()
	if len(trail) != 1 || trail[0] != dynamo.V(296, 200) {
		t.Errorf("trail = %v, want the pre-step centre", trail)
	}
}

func TestWorld_PlaceStopsBall(t *testing.T) {
	w := NewWorld(testLayout(), red, time.Unix(0, 0))
	w.Place(dynamo.V(500, 900))

	b := w.Ball()
	if b.Center != dynamo.V(500, 900) || b.Velocity != (dynamo.Vec2{}) {
		t.Errorf("ball after place = %+v", b)
	}
}

func TestWorld_UpdateParams(t *testing.T) {
	w := NewWorld(testLayout(), red, time.Unix(0, 0))
	before := w.Params()

	w.UpdateParams(func(p *dynamo.Params) { p.Gravity = 3 })

	after := w.Params()
	if after.Gravity != 3 {
		t.Errorf("gravity = %v, want 3", after.Gravity)
	}
	if after.GrowthRate != before.GrowthRate || after.VelocityDecay != before.VelocityDecay {
		t.Error("unrelated params changed")
	}
}

func TestDefaultLayout(t *testing.T) {
	l := DefaultLayout(1080, 1920)
	if l.BoundaryRadius != 432 || l.InitialRadius != 20 || l.Margin != 4 {
		t.Errorf("layout = %+v", l)
	}
	if b := l.Boundary(); b.Center != dynamo.V(540, 960) || b.MaxBallRadius != 428 {
		t.Errorf("boundary = %+v", b)
	}
}

// poisonAfter integrates normally, then returns a NaN ball from call n on.
type poisonAfter struct {
	n, calls int
}

func (p *poisonAfter) Step(b dynamo.Ball, _ dynamo.Params) dynamo.Ball {
	p.calls++
	if p.calls >= p.n {
		b.Center.X = math.NaN()
		return b
	}
	b.Center = b.Center.Add(b.Velocity)
	return b
}

func TestWorld_InvalidStateStopsStepping(t *testing.T) {
	now := time.Unix(0, 0)
	w := NewWorld(testLayout(), red, now, WithIntegrator(&poisonAfter{n: 4}))

	for i := 0; i < 10; i++ {
		w.Step()
	}

	err := w.Err()
	if !errors.Is(err, dynamo.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
	var se *dynamo.SimError
	if !errors.As(err, &se) || se.Frame != 4 {
		t.Fatalf("err = %#v, want SimError at frame 4", err)
	}
	if w.Frame() != 4 {
		t.Errorf("frame = %d, want stepping to stop at 4", w.Frame())
	}
	if !w.Ball().IsValid() {
		t.Errorf("ball = %+v, want the last finite state", w.Ball())
	}
	if want := dynamo.V(540, 1920/2.7).Add(InitialVelocity.Scale(3)); w.Ball().Center.Dist(want) > 1e-9 {
		t.Errorf("ball at %v, want %v", w.Ball().Center, want)
	}
	if w.Snapshot().Err != err {
		t.Error("snapshot does not carry the error")
	}

	w.Reset(now)
	if w.Err() != nil {
		t.Errorf("reset kept err %v", w.Err())
	}
}

func TestWorld_RunawayParamsNeverProduceNaNMarkers(t *testing.T) {
	p := dynamo.DefaultParams()
	p.VelocityDecay = 2
	var hits []dynamo.Collision
	w := NewWorld(testLayout(), red, time.Unix(0, 0),
		WithParams(p),
		WithNotifier(dynamo.CollisionFunc(func(c dynamo.Collision) { hits = append(hits, c) })))

	for i := 0; i < 20000 && w.Err() == nil; i++ {
		w.Step()
	}
	if !errors.Is(w.Err(), dynamo.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", w.Err())
	}
	for _, h := range hits {
		if math.IsNaN(h.Angle) || !h.Point.IsValid() {
			t.Fatalf("collision %d is not finite: %+v", h.Index, h)
		}
	}
	w.Markers().Each(func(i int, m dynamo.Marker) {
		if !m.Point.IsValid() {
			t.Errorf("marker %d = %v", i, m.Point)
		}
	})
	if !w.Ball().IsValid() {
		t.Errorf("ball = %+v", w.Ball())
	}

	n := len(hits)
	for i := 0; i < 100; i++ {
		w.Step()
	}
	if len(hits) != n {
		t.Errorf("%d collisions after the world stopped", len(hits)-n)
	}
}
