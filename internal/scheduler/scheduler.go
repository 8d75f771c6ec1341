package scheduler

import (
	"time"

	"github.com/san-kum/ringball/internal/sim"
)

type State int

const (
	Stopped State = iota
	Running
	// Paused is a stop entered through Pause, i.e. by a drag.
	Paused
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// Token is checked at the top of every scheduled frame. Once cancelled, the
// frames minted under it do nothing.
type Token struct {
	cancelled bool
}

func (t *Token) Cancel()         { t.cancelled = true }
func (t *Token) Cancelled() bool { return t == nil || t.cancelled }

// TickFunc is the per-frame work run while the scheduler is running.
type TickFunc func(now time.Time)

// Scheduler drives TickFunc once per display frame, preserving the clock's
// elapsed time across stop/start. It is single-threaded: every method must
// be called from the goroutine that drives the FrameSource.
type Scheduler struct {
	frames  FrameSource
	clock   *sim.Clock
	tick    TickFunc
	now     func() time.Time
	token   *Token
	pending FrameID
	waiting bool
	state   State
}

type Option func(*Scheduler)

// WithNow overrides the wall clock used by Start.
func WithNow(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func New(frames FrameSource, clock *sim.Clock, tick TickFunc, opts ...Option) *Scheduler {
	s := &Scheduler{
		frames: frames,
		clock:  clock,
		tick:   tick,
		now:    time.Now,
		state:  Stopped,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start resumes the clock from its preserved elapsed time and schedules the
// next frame. Calling Start while running does nothing.
func (s *Scheduler) Start() {
	if s.state == Running {
		return
	}
	s.clock.Resume(s.now())
	s.token = &Token{}
	s.state = Running
	s.request(s.token)
}

// Stop cancels the current token and the pending frame. Idempotent.
func (s *Scheduler) Stop() {
	s.halt()
	s.state = Stopped
}

// Pause is Stop, remembered as a drag pause.
func (s *Scheduler) Pause() {
	s.halt()
	s.state = Paused
}

// Resume ends a drag pause. Like the pointer-up it models, it starts the
// scheduler whatever state it was in before the drag.
func (s *Scheduler) Resume() {
	s.Start()
}

func (s *Scheduler) State() State    { return s.state }
func (s *Scheduler) IsRunning() bool { return s.state == Running }

func (s *Scheduler) halt() {
	if s.token != nil {
		s.token.Cancel()
		s.token = nil
	}
	if s.waiting {
		s.frames.CancelFrame(s.pending)
		s.waiting = false
	}
	s.clock.Pause()
}

func (s *Scheduler) request(tok *Token) {
	s.pending = s.frames.RequestFrame(func(now time.Time) { s.frame(tok, now) })
	s.waiting = true
}

func (s *Scheduler) frame(tok *Token, now time.Time) {
	if tok.Cancelled() {
		return
	}
	s.waiting = false
	s.clock.Tick(now)
	s.tick(now)
	if tok.Cancelled() {
		return
	}
	s.request(tok)
}
