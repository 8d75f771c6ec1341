package sim

import (
	"image/color"
	"time"

	"github.com/san-kum/ringball/internal/dynamo"
)

// Layout fixes the geometry of a world. It does not change after
// construction.
type Layout struct {
	Width          float64
	Height         float64
	BoundaryRadius float64
	Margin         float64
	InitialRadius  float64
	TrailLength    int
	MarkerCap      int
}

const (
	// StartHeightDivisor places the ball at height/2.7 on reset.
	StartHeightDivisor = 2.7
	DefaultTrailLength = 5
	DefaultMarkerCap   = 512
)

// DefaultLayout scales the stock geometry to a width x height surface. On a
// 1080x1920 surface that is a 432 px boundary and a 20 px ball.
func DefaultLayout(width, height int) Layout {
	short := float64(min(width, height))
	return Layout{
		Width:          float64(width),
		Height:         float64(height),
		BoundaryRadius: short * 2 / 5,
		Margin:         4,
		InitialRadius:  short / 54,
		TrailLength:    DefaultTrailLength,
		MarkerCap:      DefaultMarkerCap,
	}
}

// InitialVelocity is the velocity every reset starts from.
var InitialVelocity = dynamo.V(0.8, 0.8)

func (l Layout) BoundaryCenter() dynamo.Vec2 { return dynamo.V(l.Width/2, l.Height/2) }
func (l Layout) StartCenter() dynamo.Vec2 {
	return dynamo.V(l.Width/2, l.Height/StartHeightDivisor)
}

func (l Layout) Boundary() dynamo.Boundary {
	return dynamo.NewBoundary(l.BoundaryCenter(), l.BoundaryRadius, l.Margin)
}

// Integrator advances the ball by one frame.
type Integrator interface {
	Step(b dynamo.Ball, p dynamo.Params) dynamo.Ball
}

// Snapshot is a copy of the world after a frame.
type Snapshot struct {
	Frame      int
	Elapsed    time.Duration
	Ball       dynamo.Ball
	Collisions int
	Markers    int
	Color      color.RGBA
	Params     dynamo.Params
	// Err is set once the ball state went non-finite.
	Err error
}

// Observer is told about every completed frame.
type Observer interface {
	OnStep(s Snapshot)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(s Snapshot)

func (f ObserverFunc) OnStep(s Snapshot) { f(s) }
