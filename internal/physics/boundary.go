package physics

import (
	"math"

	"github.com/san-kum/ringball/internal/dynamo"
)

const (
	// Restitution scales the reflected velocity on every wall impact.
	Restitution = 0.9
	// MinimumVelocity is the lowest speed a ball may leave a wall with.
	MinimumVelocity = 1.0
)

// Resolver detects and resolves contact between the ball and the inside of
// the boundary circle.
type Resolver struct {
	boundary dynamo.Boundary
}

func NewResolver(b dynamo.Boundary) *Resolver {
	return &Resolver{boundary: b}
}

func (r *Resolver) Boundary() dynamo.Boundary { return r.boundary }

// Touching reports whether the ball reaches or crosses the wall.
func (r *Resolver) Touching(b dynamo.Ball) bool {
	return b.Center.Dist(r.boundary.Center) >= r.boundary.Radius-b.Radius
}

// Resolve reflects, grows, speeds up and re-seats a ball that touches the
// wall. The returned Collision is only meaningful when ok is true.
//
// A ball sitting exactly on the boundary centre has no contact normal, and a
// ball whose state went NaN or Inf has no position at all; either tick is
// skipped and the ball is returned unchanged.
func (r *Resolver) Resolve(b dynamo.Ball, p dynamo.Params) (dynamo.Ball, dynamo.Collision, bool) {
	offset := b.Center.Sub(r.boundary.Center)
	dist := offset.Len()
	if dist < r.boundary.Radius-b.Radius {
		return b, dynamo.Collision{}, false
	}
	if dist == 0 || math.IsNaN(dist) || math.IsInf(dist, 0) || math.IsNaN(b.Radius) {
		return b, dynamo.Collision{}, false
	}

	n := offset.Scale(1 / dist)
	v := b.Velocity.Sub(n.Scale(2 * b.Velocity.Dot(n))).Scale(Restitution)

	if b.Radius < r.boundary.MaxBallRadius {
		b.Radius = math.Min(b.Radius*p.GrowthRate, r.boundary.MaxBallRadius)
	}

	v = v.Scale(p.VelocityIncrease)
	v = enforceMinimum(v, n)

	angle := offset.Angle()
	contact := r.boundary.Center.Add(dynamo.Polar(r.boundary.Radius, angle))

	b.Velocity = v
	b.Center = r.boundary.Center.Add(dynamo.Polar(r.boundary.Radius-b.Radius, angle))

	return b, dynamo.Collision{
		Point:  contact,
		Angle:  angle,
		Speed:  v.Len(),
		Radius: b.Radius,
	}, true
}

// enforceMinimum rescales v to MinimumVelocity keeping its direction. A zero
// vector has no direction, so it is sent back inward along -n.
func enforceMinimum(v, n dynamo.Vec2) dynamo.Vec2 {
	speed := v.Len()
	if speed >= MinimumVelocity {
		return v
	}
	if speed == 0 {
		return n.Scale(-MinimumVelocity)
	}
	return v.Scale(MinimumVelocity / speed)
}
