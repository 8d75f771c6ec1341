package scheduler

import "time"

// FrameID identifies a requested frame callback.
type FrameID uint64

// FrameSource delivers one callback per display frame, the way a browser's
// animation-frame API does. Callbacks run on the source owner's goroutine.
type FrameSource interface {
	RequestFrame(fn func(now time.Time)) FrameID
	CancelFrame(id FrameID)
}

type pendingFrame struct {
	id FrameID
	fn func(now time.Time)
}

// Queue is a FrameSource driven by an external loop calling Flush once per
// display frame. Callbacks requested during a Flush wait for the next one.
// Queue is not safe for concurrent use.
type Queue struct {
	next    FrameID
	pending []pendingFrame
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) RequestFrame(fn func(now time.Time)) FrameID {
	q.next++
	q.pending = append(q.pending, pendingFrame{id: q.next, fn: fn})
	return q.next
}

func (q *Queue) CancelFrame(id FrameID) {
	for i, p := range q.pending {
		if p.id == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

// Flush runs every callback that was pending when it was called and reports
// how many ran.
func (q *Queue) Flush(now time.Time) int {
	batch := q.pending
	q.pending = nil
	ran := 0
	for _, p := range batch {
		p.fn(now)
		ran++
	}
	return ran
}

func (q *Queue) Pending() int { return len(q.pending) }
