package sim

import (
	"image/color"
	"sync/atomic"
	"time"

	"github.com/san-kum/ringball/internal/dynamo"
	"github.com/san-kum/ringball/internal/integrators"
	"github.com/san-kum/ringball/internal/physics"
)

// World owns every piece of mutable simulation state: the ball, its trail,
// the collision markers, the clock and the current colour. It is not safe
// for concurrent use; params are the one exception and may be swapped from
// any goroutine.
type World struct {
	layout     Layout
	ball       dynamo.Ball
	trail      *Ring[dynamo.Vec2]
	markers    *Ring[dynamo.Marker]
	clock      Clock
	params     atomic.Pointer[dynamo.Params]
	color      color.RGBA
	colors     dynamo.ColorSource
	integrator Integrator
	resolver   *physics.Resolver
	notifier   dynamo.CollisionNotifier
	collisions int
	frame      int
	err        error
}

type WorldOption func(*World)

func WithIntegrator(i Integrator) WorldOption {
	return func(w *World) { w.integrator = i }
}

func WithNotifier(n dynamo.CollisionNotifier) WorldOption {
	return func(w *World) { w.notifier = n }
}

func WithParams(p dynamo.Params) WorldOption {
	return func(w *World) { w.params.Store(&p) }
}

// NewWorld builds a world and resets it at now.
func NewWorld(layout Layout, colors dynamo.ColorSource, now time.Time, opts ...WorldOption) *World {
	if layout.TrailLength <= 0 {
		layout.TrailLength = DefaultTrailLength
	}
	w := &World{
		layout:     layout,
		trail:      NewRing[dynamo.Vec2](layout.TrailLength),
		markers:    NewRing[dynamo.Marker](layout.MarkerCap),
		colors:     colors,
		integrator: integrators.NewEuler(),
		resolver:   physics.NewResolver(layout.Boundary()),
	}
	p := dynamo.DefaultParams()
	w.params.Store(&p)
	for _, opt := range opts {
		opt(w)
	}
	w.Reset(now)
	return w
}

// Reset recentres the ball, clears trail and markers, picks a new colour and
// restarts the clock at zero. The running flag of the clock is kept.
func (w *World) Reset(now time.Time) {
	w.ball = dynamo.Ball{
		Center:   w.layout.StartCenter(),
		Velocity: InitialVelocity,
		Radius:   w.layout.InitialRadius,
	}
	w.trail.Clear()
	w.markers.Clear()
	w.collisions = 0
	w.frame = 0
	w.err = nil
	if w.colors != nil {
		w.color = w.colors.Next()
	}
	w.clock.Restart(now)
}

// Step runs one frame of physics: trail push, integrate, then collide.
//
// If the parameters drive the ball to NaN or Inf, the world keeps the last
// finite ball, records a *dynamo.SimError wrapping dynamo.ErrInvalidState
// and ignores further steps until Reset.
func (w *World) Step() (dynamo.Collision, bool) {
	if w.err != nil {
		return dynamo.Collision{}, false
	}
	p := w.Params()
	w.frame++

	prev := w.ball
	w.trail.Push(w.ball.Center)
	w.ball = w.integrator.Step(w.ball, p)
	if !w.ball.IsValid() {
		w.fail(prev)
		return dynamo.Collision{}, false
	}

	next, hit, ok := w.resolver.Resolve(w.ball, p)
	if !ok {
		return dynamo.Collision{}, false
	}
	if !next.IsValid() {
		w.fail(prev)
		return dynamo.Collision{}, false
	}
	w.ball = next
	w.collisions++
	hit.Index = w.collisions
	w.markers.Push(dynamo.Marker{Point: hit.Point})
	if w.notifier != nil {
		w.notifier.OnCollision(hit)
	}
	return hit, true
}

func (w *World) fail(last dynamo.Ball) {
	w.ball = last
	w.err = &dynamo.SimError{Frame: w.frame, Wrapped: dynamo.ErrInvalidState}
}

// Err reports why the world stopped stepping, or nil.
func (w *World) Err() error { return w.err }

// Place moves the ball to p and stops it dead.
func (w *World) Place(p dynamo.Vec2) {
	w.ball.Center = p
	w.ball.Velocity = dynamo.Vec2{}
}

func (w *World) Params() dynamo.Params { return *w.params.Load() }

// SetParams replaces the whole parameter set.
func (w *World) SetParams(p dynamo.Params) { w.params.Store(&p) }

// UpdateParams copies the current params, applies fn and swaps the copy in.
func (w *World) UpdateParams(fn func(p *dynamo.Params)) {
	for {
		old := w.params.Load()
		p := *old
		fn(&p)
		if w.params.CompareAndSwap(old, &p) {
			return
		}
	}
}

func (w *World) Ball() dynamo.Ball                      { return w.ball }
func (w *World) Boundary() dynamo.Boundary              { return w.resolver.Boundary() }
func (w *World) Layout() Layout                         { return w.layout }
func (w *World) Trail() *Ring[dynamo.Vec2]              { return w.trail }
func (w *World) Markers() *Ring[dynamo.Marker]          { return w.markers }
func (w *World) Clock() *Clock                          { return &w.clock }
func (w *World) Color() color.RGBA                      { return w.color }
func (w *World) Collisions() int                        { return w.collisions }
func (w *World) Frame() int                             { return w.frame }
func (w *World) SetNotifier(n dynamo.CollisionNotifier) { w.notifier = n }

func (w *World) Snapshot() Snapshot {
	return Snapshot{
		Frame:      w.frame,
		Elapsed:    w.clock.Elapsed(),
		Ball:       w.ball,
		Collisions: w.collisions,
		Markers:    w.markers.Len(),
		Color:      w.color,
		Params:     w.Params(),
		Err:        w.err,
	}
}
