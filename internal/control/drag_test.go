package control

import (
	"testing"

	"github.com/san-kum/ringball/internal/dynamo"
)

type fakeTarget struct {
	ball dynamo.Ball
}

func (f *fakeTarget) Ball() dynamo.Ball { return f.ball }
func (f *fakeTarget) Place(p dynamo.Vec2) {
	f.ball.Center = p
	f.ball.Velocity = dynamo.Vec2{}
}

type fakeSched struct {
	pauses, resumes int
}

func (f *fakeSched) Pause()  { f.pauses++ }
func (f *fakeSched) Resume() { f.resumes++ }

func newFixture() (*Drag, *fakeTarget, *fakeSched, *int) {
	tgt := &fakeTarget{ball: dynamo.Ball{Center: dynamo.V(100, 100), Velocity: dynamo.V(3, 4), Radius: 10}}
	s := &fakeSched{}
	redraws := 0
	return NewDrag(tgt, s, func() { redraws++ }), tgt, s, &redraws
}

func TestDrag_FullGesture(t *testing.T) {
	d, tgt, s, redraws := newFixture()

	if !d.Down(dynamo.V(105, 100)) {
		t.Fatal("down inside ball should start a drag")
	}
	if s.pauses != 1 || !d.Dragging() {
		t.Fatalf("pauses = %d, dragging = %v", s.pauses, d.Dragging())
	}

	d.Move(dynamo.V(40, 50))
	d.Move(dynamo.V(42, 55))
	if tgt.ball.Center != dynamo.V(42, 55) || tgt.ball.Velocity != (dynamo.Vec2{}) {
		t.Errorf("ball = %+v, want pinned at (42,55) with zero velocity", tgt.ball)
	}
	if *redraws != 2 {
		t.Errorf("redraws = %d, want 2", *redraws)
	}

	if !d.Up() {
		t.Fatal("up should end the drag")
	}
	if s.resumes != 1 || d.Dragging() {
		t.Errorf("resumes = %d, dragging = %v", s.resumes, d.Dragging())
	}
}

func TestDrag_IgnoredInput(t *testing.T) {
	tests := []struct {
		name string
		run  func(d *Drag) bool
	}{
		{"down outside", func(d *Drag) bool { return d.Down(dynamo.V(200, 200)) }},
		{"move without drag", func(d *Drag) bool { return d.Move(dynamo.V(1, 1)) }},
		{"up without drag", func(d *Drag) bool { return d.Up() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, tgt, s, redraws := newFixture()
			before := tgt.ball
			if tt.run(d) {
				t.Error("input should be ignored")
			}
			if tgt.ball != before || s.pauses != 0 || s.resumes != 0 || *redraws != 0 {
				t.Errorf("side effects: ball %+v, sched %+v, redraws %d", tgt.ball, *s, *redraws)
			}
		})
	}
}

func TestDrag_EdgeOfBallCounts(t *testing.T) {
	d, _, _, _ := newFixture()
	if !d.Down(dynamo.V(110, 100)) {
		t.Error("a point exactly on the rim should start a drag")
	}
}
