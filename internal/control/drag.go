package control

import "github.com/san-kum/ringball/internal/dynamo"

// Target is the thing being dragged.
type Target interface {
	Ball() dynamo.Ball
	Place(p dynamo.Vec2)
}

// Pauser is the part of the scheduler a drag needs.
type Pauser interface {
	Pause()
	Resume()
}

// Drag is a pointer-driven override of the ball position. While a drag is
// active the ball sits under the pointer with zero velocity and physics is
// paused.
type Drag struct {
	target   Target
	sched    Pauser
	redraw   func()
	dragging bool
}

func NewDrag(target Target, sched Pauser, redraw func()) *Drag {
	if redraw == nil {
		redraw = func() {}
	}
	return &Drag{target: target, sched: sched, redraw: redraw}
}

// Down starts a drag if p lies inside the ball.
func (d *Drag) Down(p dynamo.Vec2) bool {
	if !d.target.Ball().Contains(p) {
		return false
	}
	d.dragging = true
	d.sched.Pause()
	return true
}

// Move pins the ball to p and redraws immediately.
func (d *Drag) Move(p dynamo.Vec2) bool {
	if !d.dragging {
		return false
	}
	d.target.Place(p)
	d.redraw()
	return true
}

// Up releases the ball and restarts the scheduler.
func (d *Drag) Up() bool {
	if !d.dragging {
		return false
	}
	d.dragging = false
	d.sched.Resume()
	return true
}

func (d *Drag) Dragging() bool { return d.dragging }
