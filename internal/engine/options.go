package engine

import (
	"time"

	"github.com/san-kum/ringball/internal/dynamo"
	"github.com/san-kum/ringball/internal/palette"
	"github.com/san-kum/ringball/internal/recorder"
	"github.com/san-kum/ringball/internal/render"
	"github.com/san-kum/ringball/internal/scheduler"
	"github.com/san-kum/ringball/internal/sim"
)

type settings struct {
	layout     *sim.Layout
	params     dynamo.Params
	style      render.Style
	colors     dynamo.ColorSource
	notifiers  dynamo.Notifiers
	recorder   recorder.Recorder
	frames     scheduler.FrameSource
	now        func() time.Time
	integrator sim.Integrator
	tapBuffer  int
}

func defaults() settings {
	return settings{
		params:    dynamo.DefaultParams(),
		style:     render.DefaultStyle(),
		colors:    palette.NewRandomSource(time.Now().UnixNano()),
		now:       time.Now,
		tapBuffer: 16,
	}
}

type Option func(*settings)

// WithLayout overrides the geometry derived from the surface size.
func WithLayout(l sim.Layout) Option {
	return func(s *settings) { s.layout = &l }
}

func WithParams(p dynamo.Params) Option {
	return func(s *settings) { s.params = p }
}

func WithStyle(st render.Style) Option {
	return func(s *settings) { s.style = st }
}

// WithColors sets the colour source consulted on every reset.
func WithColors(c dynamo.ColorSource) Option {
	return func(s *settings) { s.colors = c }
}

// WithNotifier adds a collision notifier. It may be given more than once.
func WithNotifier(n dynamo.CollisionNotifier) Option {
	return func(s *settings) { s.notifiers = append(s.notifiers, n) }
}

func WithRecorder(r recorder.Recorder) Option {
	return func(s *settings) { s.recorder = r }
}

// WithFrameSource replaces the internal frame queue. Advance does nothing
// when an external source is used.
func WithFrameSource(f scheduler.FrameSource) Option {
	return func(s *settings) { s.frames = f }
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

func WithIntegrator(i sim.Integrator) Option {
	return func(s *settings) { s.integrator = i }
}

// WithTapBuffer sizes the frame buffer between render and recorder.
func WithTapBuffer(n int) Option {
	return func(s *settings) { s.tapBuffer = n }
}
