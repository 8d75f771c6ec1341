package integrators

import "github.com/san-kum/ringball/internal/dynamo"

// Euler is the frame-coupled integrator: exactly one step per scheduled
// frame, no variable dt. Gravity is applied to vy, then decay to both
// components, then the position moves by the new velocity.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(b dynamo.Ball, p dynamo.Params) dynamo.Ball {
	b.Velocity.Y += p.Gravity
	b.Velocity = b.Velocity.Scale(p.VelocityDecay)
	b.Center = b.Center.Add(b.Velocity)
	return b
}
