package recorder

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"testing"

	"github.com/san-kum/ringball/internal/dynamo"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

type result struct {
	blob []byte
	err  error
}

func TestGIF_RecordsQueuedFrames(t *testing.T) {
	tap := NewTap(8)
	rec := NewGIF(GIFOptions{Delay: 4, Scale: 2})
	got := make(chan result, 1)

	if err := rec.Start(dynamo.RecordingFunc(func(b []byte, err error) { got <- result{b, err} }), tap); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		tap.Publish(solid(20, 10, color.RGBA{uint8(80 * i), 0, 0, 255}))
	}
	tap.Close()
	if err := rec.Stop(); err != nil {
		t.Fatal(err)
	}
	rec.wait()

	r := <-got
	if r.err != nil {
		t.Fatalf("recording failed: %v", r.err)
	}
	anim, err := gif.DecodeAll(bytes.NewReader(r.blob))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(anim.Image) != 3 {
		t.Errorf("frames = %d, want 3", len(anim.Image))
	}
	if b := anim.Image[0].Bounds(); b.Dx() != 10 || b.Dy() != 5 {
		t.Errorf("frame size = %v, want 10x5", b)
	}
	if anim.Delay[0] != 4 {
		t.Errorf("delay = %d, want 4", anim.Delay[0])
	}
}

func TestGIF_SecondStartFails(t *testing.T) {
	rec := NewGIF(DefaultGIFOptions())
	tap := NewTap(1)
	if err := rec.Start(nil, tap); err != nil {
		t.Fatal(err)
	}
	if err := rec.Start(nil, tap); !errors.Is(err, dynamo.ErrRecording) {
		t.Errorf("second Start = %v, want ErrRecording", err)
	}
	rec.Stop()
	rec.wait()
	if err := rec.Stop(); !errors.Is(err, dynamo.ErrNotRecording) {
		t.Errorf("Stop when idle = %v, want ErrNotRecording", err)
	}
}

func TestGIF_EmptyRecordingReportsError(t *testing.T) {
	rec := NewGIF(DefaultGIFOptions())
	got := make(chan result, 1)
	rec.Start(dynamo.RecordingFunc(func(b []byte, err error) { got <- result{b, err} }), NewTap(1))
	rec.Stop()
	rec.wait()
	if r := <-got; r.err == nil || r.blob != nil {
		t.Errorf("empty recording = %+v, want error", r)
	}
}

func TestTap_DropsWhenFull(t *testing.T) {
	tap := NewTap(2)
	img := solid(2, 2, color.White)
	for i := 0; i < 5; i++ {
		tap.Publish(img)
	}
	if tap.Dropped() != 3 {
		t.Errorf("dropped = %d, want 3", tap.Dropped())
	}

	frame := <-tap.Frames()
	img.Set(0, 0, color.Black)
	if frame.At(0, 0) == img.At(0, 0) {
		t.Error("published frame shares pixels with the source")
	}

	tap.Close()
	tap.Close()
	if tap.Publish(img) {
		t.Error("publish after close should fail")
	}
}
