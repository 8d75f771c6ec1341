// Package engine wires the simulation, renderer, scheduler and input
// handling into the single object frontends drive.
//
// An Engine is owned by one goroutine. Frontends call Advance once per
// display frame (or drive their own FrameSource) and forward pointer events
// between frames.
package engine

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/san-kum/ringball/internal/control"
	"github.com/san-kum/ringball/internal/dynamo"
	"github.com/san-kum/ringball/internal/recorder"
	"github.com/san-kum/ringball/internal/render"
	"github.com/san-kum/ringball/internal/scheduler"
	"github.com/san-kum/ringball/internal/sim"
)

// Param names accepted by SetParam.
const (
	ParamGravity          = "gravity"
	ParamVelocityIncrease = "velocity_increase"
	ParamVelocityDecay    = "velocity_decay"
	ParamGrowthRate       = "growth_rate"
)

type Engine struct {
	surface   render.Surface
	world     *sim.World
	renderer  *render.Renderer
	sched     *scheduler.Scheduler
	queue     *scheduler.Queue
	drag      *control.Drag
	rec       recorder.Recorder
	tap       *recorder.Tap
	tapBuffer int
	recording bool
	observers []sim.Observer
	now       func() time.Time
}

// New builds an engine on surface, resets it and draws the first frame.
// The engine starts stopped. If the surface cannot provide a canvas, New
// returns nil and an error wrapping dynamo.ErrNoContext.
func New(surface render.Surface, overlays []dynamo.TextOverlay, opts ...Option) (*Engine, error) {
	if surface == nil {
		return nil, fmt.Errorf("engine: nil surface: %w", dynamo.ErrNoContext)
	}
	canvas, err := surface.Context()
	if err != nil {
		if !errors.Is(err, dynamo.ErrNoContext) {
			err = fmt.Errorf("%w: %v", dynamo.ErrNoContext, err)
		}
		return nil, fmt.Errorf("engine: %w", err)
	}
	if canvas == nil {
		return nil, fmt.Errorf("engine: %w", dynamo.ErrNoContext)
	}

	s := defaults()
	for _, opt := range opts {
		opt(&s)
	}

	layout := sim.DefaultLayout(surface.Size())
	if s.layout != nil {
		layout = *s.layout
	}

	e := &Engine{
		surface:   surface,
		renderer:  render.NewRenderer(canvas, s.style),
		rec:       s.recorder,
		tapBuffer: s.tapBuffer,
		now:       s.now,
	}

	wopts := []sim.WorldOption{sim.WithParams(s.params)}
	if s.integrator != nil {
		wopts = append(wopts, sim.WithIntegrator(s.integrator))
	}
	if len(s.notifiers) > 0 {
		wopts = append(wopts, sim.WithNotifier(s.notifiers))
	}
	e.world = sim.NewWorld(layout, s.colors, e.now(), wopts...)

	frames := s.frames
	if frames == nil {
		e.queue = scheduler.NewQueue()
		frames = e.queue
	}
	e.sched = scheduler.New(frames, e.world.Clock(), e.tick, scheduler.WithNow(e.now))
	e.drag = control.NewDrag(e.world, e.sched, e.Render)

	e.renderer.SetOverlays(overlays)
	e.Render()
	return e, nil
}

func (e *Engine) tick(time.Time) {
	failed := e.world.Err() != nil
	e.world.Step()
	if err := e.world.Err(); err != nil {
		if !failed {
			log.Printf("[SIM] %v; reset to continue", err)
		}
		e.sched.Stop()
	}
	e.Render()
	if len(e.observers) == 0 {
		return
	}
	snap := e.world.Snapshot()
	for _, o := range e.observers {
		o.OnStep(snap)
	}
}

// Render draws the current state immediately, outside the scheduler, and
// feeds the frame to an active recording.
func (e *Engine) Render() {
	e.renderer.Draw(e.world)
	if e.tap == nil {
		return
	}
	if snap, ok := e.surface.(render.Snapshotter); ok {
		e.tap.Publish(snap.Snapshot())
	}
}

// Repaint draws the current state without feeding the recorder. Frontends
// that clear their screen every frame use it while no frame ran.
func (e *Engine) Repaint() { e.renderer.Draw(e.world) }

// Advance flushes the internal frame queue at now and reports how many
// frame callbacks ran.
func (e *Engine) Advance(now time.Time) int {
	if e.queue == nil {
		return 0
	}
	return e.queue.Flush(now)
}

// Reset puts the world back to its initial state with a new colour and
// redraws. A running engine keeps running from zero elapsed time.
func (e *Engine) Reset() {
	e.world.Reset(e.now())
	e.Render()
}

func (e *Engine) Start()                 { e.sched.Start() }
func (e *Engine) Stop()                  { e.sched.Stop() }
func (e *Engine) IsRunning() bool        { return e.sched.IsRunning() }
func (e *Engine) State() scheduler.State { return e.sched.State() }

// UpdateTextElements replaces the overlays drawn from the next frame on.
func (e *Engine) UpdateTextElements(overlays []dynamo.TextOverlay) {
	e.renderer.SetOverlays(overlays)
}

func (e *Engine) TextElements() []dynamo.TextOverlay { return e.renderer.Overlays() }

func (e *Engine) SetGravity(v float64) {
	e.world.UpdateParams(func(p *dynamo.Params) { p.Gravity = v })
}

// SetVelocityIncrease stores 1+v as the per-collision speed factor.
func (e *Engine) SetVelocityIncrease(v float64) {
	e.world.UpdateParams(func(p *dynamo.Params) { p.VelocityIncrease = 1 + v })
}

func (e *Engine) SetVelocityDecay(v float64) {
	e.world.UpdateParams(func(p *dynamo.Params) { p.VelocityDecay = v })
}

// SetBallGrowthRate stores 1+v as the per-collision radius factor.
func (e *Engine) SetBallGrowthRate(v float64) {
	e.world.UpdateParams(func(p *dynamo.Params) { p.GrowthRate = 1 + v })
}

// SetParam dispatches to the setter for name.
func (e *Engine) SetParam(name string, v float64) error {
	switch name {
	case ParamGravity:
		e.SetGravity(v)
	case ParamVelocityIncrease:
		e.SetVelocityIncrease(v)
	case ParamVelocityDecay:
		e.SetVelocityDecay(v)
	case ParamGrowthRate:
		e.SetBallGrowthRate(v)
	default:
		return fmt.Errorf("engine: %q: %w", name, dynamo.ErrUnknownParam)
	}
	return nil
}

func (e *Engine) Params() dynamo.Params { return e.world.Params() }

func (e *Engine) HandleMouseDown(x, y float64) bool { return e.drag.Down(dynamo.V(x, y)) }
func (e *Engine) HandleMouseMove(x, y float64) bool { return e.drag.Move(dynamo.V(x, y)) }
func (e *Engine) HandleMouseUp() bool               { return e.drag.Up() }
func (e *Engine) Dragging() bool                    { return e.drag.Dragging() }

// StartRecording hands sink and stream to the recorder. A nil stream
// records this engine's own frames.
func (e *Engine) StartRecording(sink dynamo.RecordingSink, stream recorder.Stream) error {
	if e.rec == nil {
		e.rec = recorder.NewGIF(recorder.DefaultGIFOptions())
	}
	var tap *recorder.Tap
	if stream == nil {
		tap = recorder.NewTap(e.tapBuffer)
		stream = tap
	}
	if err := e.rec.Start(sink, stream); err != nil {
		if tap != nil {
			tap.Close()
		}
		return err
	}
	e.tap = tap
	e.recording = true
	return nil
}

func (e *Engine) StopRecording() error {
	if e.rec == nil {
		return dynamo.ErrNotRecording
	}
	err := e.rec.Stop()
	e.recording = false
	if e.tap != nil {
		e.tap.Close()
		e.tap = nil
	}
	return err
}

func (e *Engine) Recording() bool { return e.recording }

func (e *Engine) AddObserver(o sim.Observer) { e.observers = append(e.observers, o) }

// Err is the *dynamo.SimError that stopped the engine, or nil. Reset clears
// it.
func (e *Engine) Err() error { return e.world.Err() }

func (e *Engine) Snapshot() sim.Snapshot  { return e.world.Snapshot() }
func (e *Engine) World() *sim.World       { return e.world }
func (e *Engine) Surface() render.Surface { return e.surface }
