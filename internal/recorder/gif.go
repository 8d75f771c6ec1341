// Package recorder captures rendered frames and encodes them off the render
// goroutine.
package recorder

import (
	"bytes"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"log"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/san-kum/ringball/internal/dynamo"
)

// Recorder is the recording collaborator the engine drives.
type Recorder interface {
	Start(sink dynamo.RecordingSink, stream Stream) error
	Stop() error
}

// GIFOptions tunes the encoder.
type GIFOptions struct {
	// Delay between frames in hundredths of a second.
	Delay int
	// MaxFrames caps memory use; later frames are discarded. <= 0 means no cap.
	MaxFrames int
	// Scale shrinks frames by an integer factor before quantising.
	Scale int
}

func DefaultGIFOptions() GIFOptions {
	return GIFOptions{Delay: 2, MaxFrames: 600, Scale: 2}
}

// GIF collects frames from a Stream on its own goroutine and, once stopped,
// hands the encoded animation to the sink.
type GIF struct {
	opts GIFOptions

	mu     sync.Mutex
	active bool
	stop   chan struct{}
	done   chan struct{}
}

func NewGIF(opts GIFOptions) *GIF {
	if opts.Delay <= 0 {
		opts.Delay = 2
	}
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	return &GIF{opts: opts}
}

// Start begins consuming stream. It fails with dynamo.ErrRecording while a
// recording is in progress.
func (g *GIF) Start(sink dynamo.RecordingSink, stream Stream) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active {
		return dynamo.ErrRecording
	}
	if stream == nil {
		return fmt.Errorf("recorder: nil stream")
	}
	g.active = true
	g.stop = make(chan struct{})
	g.done = make(chan struct{})
	go g.run(sink, stream.Frames(), g.stop, g.done)
	log.Printf("[REC] recording started")
	return nil
}

// Stop asks the encoder to finish. The sink is called asynchronously.
func (g *GIF) Stop() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.active {
		return dynamo.ErrNotRecording
	}
	g.active = false
	close(g.stop)
	return nil
}

// wait blocks until the last recording has been delivered.
func (g *GIF) wait() {
	g.mu.Lock()
	done := g.done
	g.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (g *GIF) Recording() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

func (g *GIF) run(sink dynamo.RecordingSink, frames <-chan image.Image, stop, done chan struct{}) {
	defer close(done)

	anim := &gif.GIF{LoopCount: 0}
	add := func(img image.Image) {
		if g.opts.MaxFrames > 0 && len(anim.Image) >= g.opts.MaxFrames {
			return
		}
		anim.Image = append(anim.Image, quantise(img, g.opts.Scale))
		anim.Delay = append(anim.Delay, g.opts.Delay)
	}

loop:
	for {
		select {
		case img, ok := <-frames:
			if !ok {
				break loop
			}
			add(img)
		case <-stop:
			// take whatever is already queued, then finish
			for {
				select {
				case img, ok := <-frames:
					if !ok {
						break loop
					}
					add(img)
				default:
					break loop
				}
			}
		}
	}

	blob, err := Encode(anim)
	if err != nil {
		log.Printf("[REC] encode failed: %v", err)
	} else {
		log.Printf("[REC] recording finished: %d frames, %d bytes", len(anim.Image), len(blob))
	}
	if sink != nil {
		sink.RecordingComplete(blob, err)
	}
}

// Encode writes anim as a GIF and returns the bytes.
func Encode(anim *gif.GIF) ([]byte, error) {
	if len(anim.Image) == 0 {
		return nil, fmt.Errorf("recorder: no frames captured")
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return nil, fmt.Errorf("recorder: encode gif: %w", err)
	}
	return buf.Bytes(), nil
}

func quantise(img image.Image, scale int) *image.Paletted {
	b := img.Bounds()
	w, h := b.Dx()/scale, b.Dy()/scale
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewPaletted(image.Rect(0, 0, w, h), palette.Plan9)
	if scale == 1 {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}
	small := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(small, small.Bounds(), img, b, xdraw.Src, nil)
	draw.Draw(dst, dst.Bounds(), small, image.Point{}, draw.Src)
	return dst
}
