package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/ringball/internal/dynamo"
)

func TestEuler_Step(t *testing.T) {
	tests := []struct {
		name   string
		ball   dynamo.Ball
		params dynamo.Params
		center dynamo.Vec2
		vel    dynamo.Vec2
	}{
		{
			name:   "free drift",
			ball:   dynamo.Ball{Center: dynamo.V(0, 0), Velocity: dynamo.V(1, 2), Radius: 5},
			params: dynamo.Params{VelocityDecay: 1},
			center: dynamo.V(1, 2),
			vel:    dynamo.V(1, 2),
		},
		{
			name:   "gravity before move",
			ball:   dynamo.Ball{Center: dynamo.V(10, 10), Velocity: dynamo.V(0, 0), Radius: 5},
			params: dynamo.Params{Gravity: 0.5, VelocityDecay: 1},
			center: dynamo.V(10, 10.5),
			vel:    dynamo.V(0, 0.5),
		},
		{
			name:   "decay after gravity",
			ball:   dynamo.Ball{Center: dynamo.V(0, 0), Velocity: dynamo.V(2, 1), Radius: 5},
			params: dynamo.Params{Gravity: 1, VelocityDecay: 0.5},
			center: dynamo.V(1, 1),
			vel:    dynamo.V(1, 1),
		},
	}

	e := NewEuler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Step(tt.ball, tt.params)
			if got.Center.Dist(tt.center) > 1e-12 {
				t.Errorf("center = %v, want %v", got.Center, tt.center)
			}
			if got.Velocity.Dist(tt.vel) > 1e-12 {
				t.Errorf("velocity = %v, want %v", got.Velocity, tt.vel)
			}
			if got.Radius != tt.ball.Radius {
				t.Errorf("radius changed: %v -> %v", tt.ball.Radius, got.Radius)
			}
		})
	}
}

func TestEuler_FreeFall(t *testing.T) {
	e := NewEuler()
	b := dynamo.Ball{Radius: 1}
	p := dynamo.Params{Gravity: 1, VelocityDecay: 1}

	for i := 0; i < 10; i++ {
		b = e.Step(b, p)
	}

	// sum of 1..10
	if math.Abs(b.Center.Y-55) > 1e-9 {
		t.Errorf("expected y=55 after 10 frames, got %.4f", b.Center.Y)
	}
}
