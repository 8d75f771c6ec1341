package dynamo

import (
	"fmt"
	"image/color"
	"math"
)

// Vec2 is a point or displacement in canvas pixels. Y grows downward.
type Vec2 struct {
	X, Y float64
}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64  { return v.Sub(o).Len() }
func (v Vec2) Angle() float64       { return math.Atan2(v.Y, v.X) }
func (v Vec2) String() string       { return fmt.Sprintf("(%.3f, %.3f)", v.X, v.Y) }
func (v Vec2) IsValid() bool        { return !bad(v.X) && !bad(v.Y) }
func Polar(r, angle float64) Vec2   { return Vec2{r * math.Cos(angle), r * math.Sin(angle)} }
func bad(f float64) bool            { return math.IsNaN(f) || math.IsInf(f, 0) }

// Ball is the single moving body.
type Ball struct {
	Center   Vec2
	Velocity Vec2
	Radius   float64
}

func (b Ball) Speed() float64 { return b.Velocity.Len() }

// IsValid reports whether no field went NaN or Inf.
func (b Ball) IsValid() bool {
	return b.Center.IsValid() && b.Velocity.IsValid() && !bad(b.Radius)
}

// Contains reports whether p lies on or inside the ball.
func (b Ball) Contains(p Vec2) bool { return b.Center.Dist(p) <= b.Radius }

// Boundary is the static circle the ball lives in. MaxBallRadius is
// Radius minus a fixed margin.
type Boundary struct {
	Center        Vec2
	Radius        float64
	MaxBallRadius float64
}

func NewBoundary(center Vec2, radius, margin float64) Boundary {
	return Boundary{Center: center, Radius: radius, MaxBallRadius: radius - margin}
}

// Params holds the tunable scalars read once per tick. Values are never
// bounds-checked; odd values just make the toy behave oddly.
//
// VelocityIncrease and GrowthRate are multiplicative factors (1+v of
// whatever the setter received).
type Params struct {
	Gravity          float64
	VelocityIncrease float64
	VelocityDecay    float64
	GrowthRate       float64
}

func DefaultParams() Params {
	return Params{
		Gravity:          0.2,
		VelocityIncrease: 1.02,
		VelocityDecay:    0.999,
		GrowthRate:       1.015,
	}
}

// Marker is a recorded boundary contact point.
type Marker struct {
	Point Vec2
}

// Collision describes one resolved wall impact.
type Collision struct {
	Index  int
	Point  Vec2
	Angle  float64
	Speed  float64
	Radius float64
}

// CollisionNotifier is told about every resolved collision. It must not block.
type CollisionNotifier interface {
	OnCollision(c Collision)
}

// CollisionFunc adapts a plain function to CollisionNotifier.
type CollisionFunc func(c Collision)

func (f CollisionFunc) OnCollision(c Collision) { f(c) }

// Notifiers fans a collision out to several notifiers in order.
type Notifiers []CollisionNotifier

func (ns Notifiers) OnCollision(c Collision) {
	for _, n := range ns {
		if n != nil {
			n.OnCollision(c)
		}
	}
}

// TextOverlay is caller-owned text drawn verbatim every frame.
type TextOverlay struct {
	Text  string  `yaml:"text" json:"text"`
	X     float64 `yaml:"x" json:"x"`
	Y     float64 `yaml:"y" json:"y"`
	Size  float64 `yaml:"size" json:"size"`
	Font  string  `yaml:"font" json:"font"`
	Color string  `yaml:"color" json:"color"`
}

// RecordingSink receives the finished recording, or the error that ended it.
type RecordingSink interface {
	RecordingComplete(blob []byte, err error)
}

// RecordingFunc adapts a plain function to RecordingSink.
type RecordingFunc func(blob []byte, err error)

func (f RecordingFunc) RecordingComplete(blob []byte, err error) { f(blob, err) }

// ColorSource picks the simulation colour on every reset.
type ColorSource interface {
	Next() color.RGBA
}
