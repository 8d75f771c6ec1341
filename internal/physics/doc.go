// Package physics resolves contact between the ball and its boundary.
//
// On impact the [Resolver] reflects the velocity about the contact normal,
// damps it by [Restitution], grows the ball by the growth rate (capped at the
// boundary's maximum ball radius), amplifies the velocity, enforces
// [MinimumVelocity], and places the ball exactly tangent to the wall.
//
//	res := physics.NewResolver(boundary)
//	if b, hit, ok := res.Resolve(ball, params); ok {
//	    markers.Push(dynamo.Marker{Point: hit.Point})
//	    ball = b
//	}
package physics
