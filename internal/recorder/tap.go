package recorder

import (
	"image"
	"image/draw"
	"sync"
)

// Stream is a source of rendered frames.
type Stream interface {
	Frames() <-chan image.Image
}

// Tap copies rendered frames into a bounded channel. Publish never blocks:
// when the consumer falls behind, frames are dropped.
type Tap struct {
	mu      sync.Mutex
	ch      chan image.Image
	dropped int
	closed  bool
}

func NewTap(buffer int) *Tap {
	if buffer < 1 {
		buffer = 1
	}
	return &Tap{ch: make(chan image.Image, buffer)}
}

func (t *Tap) Frames() <-chan image.Image { return t.ch }

// Publish offers a copy of img to the consumer. It reports whether the
// frame was queued.
func (t *Tap) Publish(img image.Image) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || img == nil {
		return false
	}
	if len(t.ch) == cap(t.ch) {
		t.dropped++
		return false
	}
	t.ch <- clone(img)
	return true
}

// Close ends the stream. Frames already queued remain readable.
func (t *Tap) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.closed = true
		close(t.ch)
	}
}

func (t *Tap) Dropped() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}

func clone(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
