package physics

import (
	"math"
	"testing"

	"github.com/san-kum/ringball/internal/dynamo"
)

const tol = 1e-9

func scenarioResolver() *Resolver {
	return NewResolver(dynamo.NewBoundary(dynamo.V(200, 200), 100, 4))
}

func flatParams() dynamo.Params {
	return dynamo.Params{Gravity: 0, VelocityIncrease: 1.02, VelocityDecay: 1, GrowthRate: 1.015}
}

func TestResolve_Scenario(t *testing.T) {
	res := scenarioResolver()
	// one frame after starting at +96 with v=(2,0)
	ball := dynamo.Ball{Center: dynamo.V(298, 200), Velocity: dynamo.V(2, 0), Radius: 5}

	got, hit, ok := res.Resolve(ball, flatParams())
	if !ok {
		t.Fatal("expected a collision")
	}

	wantVX := -2 * Restitution * 1.02
	if math.Abs(got.Velocity.X-wantVX) > tol || math.Abs(got.Velocity.Y) > tol {
		t.Errorf("velocity = %v, want (%.4f, 0)", got.Velocity, wantVX)
	}
	if math.Abs(got.Radius-5*1.015) > tol {
		t.Errorf("radius = %v, want %v", got.Radius, 5*1.015)
	}
	if hit.Point.Dist(dynamo.V(300, 200)) > tol {
		t.Errorf("contact = %v, want (300, 200)", hit.Point)
	}
	if math.Abs(hit.Angle) > tol {
		t.Errorf("angle = %v, want 0", hit.Angle)
	}
	if hit.Radius != got.Radius || math.Abs(hit.Speed-got.Speed()) > tol {
		t.Errorf("collision record out of sync with ball: %+v vs %+v", hit, got)
	}
}

func TestResolve_NoContact(t *testing.T) {
	res := scenarioResolver()
	ball := dynamo.Ball{Center: dynamo.V(250, 200), Velocity: dynamo.V(2, 0), Radius: 5}

	got, _, ok := res.Resolve(ball, flatParams())
	if ok {
		t.Fatal("unexpected collision")
	}
	if got != ball {
		t.Errorf("ball changed without contact: %+v", got)
	}
}

func TestResolve_Tangency(t *testing.T) {
	res := scenarioResolver()
	for i := 0; i < 36; i++ {
		angle := float64(i) * math.Pi / 18
		ball := dynamo.Ball{
			Center:   res.Boundary().Center.Add(dynamo.Polar(97+float64(i%5), angle)),
			Velocity: dynamo.Polar(3, angle+0.3),
			Radius:   4 + float64(i),
		}
		got, _, ok := res.Resolve(ball, flatParams())
		if !ok {
			t.Fatalf("angle %d: expected collision", i)
		}
		d := got.Center.Dist(res.Boundary().Center)
		if math.Abs(d-(100-got.Radius)) > 1e-6 {
			t.Errorf("angle %d: distance %v, want %v", i, d, 100-got.Radius)
		}
	}
}

func TestResolve_RadiusCap(t *testing.T) {
	tests := []struct {
		name   string
		radius float64
		want   float64
	}{
		{"grows", 10, 10.15},
		{"clamped", 95.9, 96},
		{"already max", 96, 96},
	}

	res := scenarioResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ball := dynamo.Ball{Center: dynamo.V(300, 200), Velocity: dynamo.V(3, 0), Radius: tt.radius}
			got, _, ok := res.Resolve(ball, flatParams())
			if !ok {
				t.Fatal("expected collision")
			}
			if math.Abs(got.Radius-tt.want) > tol {
				t.Errorf("radius = %v, want %v", got.Radius, tt.want)
			}
			if got.Radius > res.Boundary().MaxBallRadius {
				t.Errorf("radius %v exceeds max %v", got.Radius, res.Boundary().MaxBallRadius)
			}
		})
	}
}

func TestResolve_MinimumSpeed(t *testing.T) {
	tests := []struct {
		name string
		vel  dynamo.Vec2
		want dynamo.Vec2
	}{
		{"slow is rescaled", dynamo.V(0.1, 0), dynamo.V(-1, 0)},
		{"zero goes inward", dynamo.V(0, 0), dynamo.V(-1, 0)},
		{"tangential keeps direction", dynamo.V(0, 0.2), dynamo.V(0, 1)},
	}

	res := scenarioResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ball := dynamo.Ball{Center: dynamo.V(296, 200), Velocity: tt.vel, Radius: 5}
			got, _, ok := res.Resolve(ball, flatParams())
			if !ok {
				t.Fatal("expected collision")
			}
			if math.Abs(got.Speed()-MinimumVelocity) > tol {
				t.Errorf("speed = %v, want %v", got.Speed(), MinimumVelocity)
			}
			if got.Velocity.Dist(tt.want) > 1e-9 {
				t.Errorf("velocity = %v, want %v", got.Velocity, tt.want)
			}
		})
	}
}

func TestResolve_ZeroDistanceSkipped(t *testing.T) {
	// Degenerate boundary where a centred ball already "touches" the wall.
	res := NewResolver(dynamo.NewBoundary(dynamo.V(0, 0), 5, 0))
	ball := dynamo.Ball{Center: dynamo.V(0, 0), Velocity: dynamo.V(1, 1), Radius: 5}

	if !res.Touching(ball) {
		t.Fatal("setup should touch")
	}
	got, _, ok := res.Resolve(ball, flatParams())
	if ok {
		t.Error("zero-distance contact should be skipped")
	}
	if got != ball {
		t.Errorf("ball changed on skipped tick: %+v", got)
	}
}

func TestResolve_OddParamsDoNotPanic(t *testing.T) {
	res := scenarioResolver()
	p := dynamo.Params{Gravity: -3, VelocityIncrease: -1, VelocityDecay: 2, GrowthRate: 0.5}
	ball := dynamo.Ball{Center: dynamo.V(299, 200), Velocity: dynamo.V(5, 1), Radius: 5}

	got, _, ok := res.Resolve(ball, p)
	if !ok {
		t.Fatal("expected collision")
	}
	if got.Radius != 2.5 {
		t.Errorf("shrinking growth rate should still apply, got %v", got.Radius)
	}
	if got.Speed() < MinimumVelocity-tol {
		t.Errorf("speed %v below minimum", got.Speed())
	}
}

func TestResolve_NonFiniteSkipped(t *testing.T) {
	nan, inf := math.NaN(), math.Inf(1)
	tests := []struct {
		name string
		ball dynamo.Ball
	}{
		{"nan centre", dynamo.Ball{Center: dynamo.V(nan, nan), Velocity: dynamo.V(nan, nan), Radius: 5}},
		{"nan x only", dynamo.Ball{Center: dynamo.V(nan, 200), Velocity: dynamo.V(1, 1), Radius: 5}},
		{"inf centre", dynamo.Ball{Center: dynamo.V(inf, 200), Velocity: dynamo.V(inf, 0), Radius: 5}},
		{"nan radius", dynamo.Ball{Center: dynamo.V(299, 200), Velocity: dynamo.V(1, 0), Radius: nan}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, hit, ok := scenarioResolver().Resolve(tt.ball, flatParams())
			if ok {
				t.Errorf("non-finite ball reported a hit at angle %v", hit.Angle)
			}
		})
	}
}
