package engine_test

import (
	"errors"
	"image/color"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ringball/internal/dynamo"
	"github.com/san-kum/ringball/internal/engine"
	"github.com/san-kum/ringball/internal/palette"
	"github.com/san-kum/ringball/internal/recorder"
	"github.com/san-kum/ringball/internal/render"
	"github.com/san-kum/ringball/internal/scheduler"
	"github.com/san-kum/ringball/internal/sim"
)

// countingCanvas counts frames by their background fill.
type countingCanvas struct{ frames int }

func (c *countingCanvas) Fill(color.Color)                                        { c.frames++ }
func (c *countingCanvas) StrokeCircle(dynamo.Vec2, float64, float64, color.Color) {}
func (c *countingCanvas) FillCircle(dynamo.Vec2, float64, color.Color)            {}
func (c *countingCanvas) Line(dynamo.Vec2, dynamo.Vec2, float64, color.Color)     {}
func (c *countingCanvas) Text(string, dynamo.Vec2, render.TextStyle)              {}

type fakeSurface struct {
	w, h   int
	canvas *countingCanvas
	err    error
}

func (s *fakeSurface) Size() (int, int) { return s.w, s.h }
func (s *fakeSurface) Context() (render.Canvas, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.canvas, nil
}

var teal = palette.FixedSource(color.RGBA{0, 128, 128, 255})

// refusingRecorder keeps the stream it was offered and fails to start.
type refusingRecorder struct{ stream recorder.Stream }

func (r *refusingRecorder) Start(_ dynamo.RecordingSink, s recorder.Stream) error {
	r.stream = s
	return dynamo.ErrRecording
}

func (r *refusingRecorder) Stop() error { return dynamo.ErrNotRecording }

var _ = Describe("Engine", func() {
	var (
		surface *fakeSurface
		now     time.Time
		e       *engine.Engine
	)

	layout := sim.Layout{
		Width:          400,
		Height:         400,
		BoundaryRadius: 100,
		Margin:         4,
		InitialRadius:  5,
		TrailLength:    5,
		MarkerCap:      32,
	}

	clock := func() time.Time { return now }
	advance := func(d time.Duration) int {
		now = now.Add(d)
		return e.Advance(now)
	}

	BeforeEach(func() {
		surface = &fakeSurface{w: 400, h: 400, canvas: &countingCanvas{}}
		now = time.Unix(1_700_000_000, 0)
		var err error
		e, err = engine.New(surface, nil,
			engine.WithLayout(layout),
			engine.WithColors(teal),
			engine.WithClock(clock))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("construction", func() {
		It("fails with ErrNoContext when the surface has no canvas", func() {
			bad := &fakeSurface{w: 10, h: 10, err: errors.New("no gpu")}
			got, err := engine.New(bad, nil)
			Expect(got).To(BeNil())
			Expect(err).To(MatchError(dynamo.ErrNoContext))
		})

		It("fails with ErrNoContext for an empty raster", func() {
			got, err := engine.New(render.NewRasterSurface(0, 0), nil)
			Expect(got).To(BeNil())
			Expect(errors.Is(err, dynamo.ErrNoContext)).To(BeTrue())
		})

		It("starts stopped with one frame drawn", func() {
			Expect(e.IsRunning()).To(BeFalse())
			Expect(e.State()).To(Equal(scheduler.Stopped))
			Expect(surface.canvas.frames).To(Equal(1))
		})

		It("derives the layout from the surface by default", func() {
			big := &fakeSurface{w: 1080, h: 1920, canvas: &countingCanvas{}}
			got, err := engine.New(big, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.World().Boundary().Radius).To(Equal(432.0))
			Expect(got.World().Ball().Radius).To(Equal(20.0))
		})
	})

	Describe("running", func() {
		It("steps and renders once per frame", func() {
			e.Start()
			for i := 0; i < 10; i++ {
				advance(16 * time.Millisecond)
			}
			Expect(e.Snapshot().Frame).To(Equal(10))
			Expect(surface.canvas.frames).To(Equal(11))
			Expect(e.Snapshot().Elapsed).To(Equal(160 * time.Millisecond))
		})

		It("repaints without stepping", func() {
			e.Repaint()
			e.Repaint()
			Expect(surface.canvas.frames).To(Equal(3))
			Expect(e.Snapshot().Frame).To(Equal(0))
		})

		It("keeps elapsed time across stop and start", func() {
			e.Start()
			advance(time.Second)
			e.Stop()
			Expect(e.IsRunning()).To(BeFalse())

			advance(10 * time.Second)
			Expect(e.Snapshot().Elapsed).To(Equal(time.Second))

			e.Start()
			advance(250 * time.Millisecond)
			Expect(e.Snapshot().Elapsed).To(Equal(1250 * time.Millisecond))
		})

		It("feeds every frame to observers", func() {
			var frames []int
			e.AddObserver(sim.ObserverFunc(func(s sim.Snapshot) { frames = append(frames, s.Frame) }))
			e.Start()
			advance(time.Millisecond)
			advance(time.Millisecond)
			advance(time.Millisecond)
			Expect(frames).To(Equal([]int{1, 2, 3}))
		})

		It("notifies collisions", func() {
			var hits []dynamo.Collision
			var err error
			e, err = engine.New(surface, nil,
				engine.WithLayout(layout),
				engine.WithColors(teal),
				engine.WithClock(clock),
				engine.WithNotifier(dynamo.CollisionFunc(func(c dynamo.Collision) { hits = append(hits, c) })))
			Expect(err).NotTo(HaveOccurred())

			e.Start()
			for i := 0; i < 500 && len(hits) == 0; i++ {
				advance(16 * time.Millisecond)
			}
			Expect(hits).NotTo(BeEmpty())
			Expect(hits[0].Index).To(Equal(1))
			Expect(e.World().Markers().Len()).To(Equal(len(hits)))
		})
	})

	Describe("reset", func() {
		It("restores the initial state and keeps running", func() {
			e.Start()
			for i := 0; i < 300; i++ {
				advance(16 * time.Millisecond)
			}
			e.Reset()

			b := e.World().Ball()
			Expect(b.Center).To(Equal(dynamo.V(200, 400/2.7)))
			Expect(b.Velocity).To(Equal(dynamo.V(0.8, 0.8)))
			Expect(b.Radius).To(Equal(5.0))
			Expect(e.World().Trail().Len()).To(BeZero())
			Expect(e.World().Markers().Len()).To(BeZero())
			Expect(e.Snapshot().Elapsed).To(BeZero())
			Expect(e.IsRunning()).To(BeTrue())

			advance(100 * time.Millisecond)
			Expect(e.Snapshot().Elapsed).To(Equal(100 * time.Millisecond))
		})
	})

	Describe("dragging", func() {
		It("pins the ball under the pointer and pauses physics", func() {
			e.Start()
			advance(16 * time.Millisecond)
			c := e.World().Ball().Center

			Expect(e.HandleMouseDown(c.X, c.Y)).To(BeTrue())
			Expect(e.State()).To(Equal(scheduler.Paused))

			before := surface.canvas.frames
			Expect(e.HandleMouseMove(150, 210)).To(BeTrue())
			Expect(surface.canvas.frames).To(Equal(before + 1))

			b := e.World().Ball()
			Expect(b.Center).To(Equal(dynamo.V(150, 210)))
			Expect(b.Velocity).To(Equal(dynamo.Vec2{}))

			frame := e.Snapshot().Frame
			advance(time.Second)
			Expect(e.Snapshot().Frame).To(Equal(frame))
			Expect(e.World().Ball().Center).To(Equal(dynamo.V(150, 210)))

			Expect(e.HandleMouseUp()).To(BeTrue())
			Expect(e.IsRunning()).To(BeTrue())
			Expect(e.World().Ball().Velocity).To(Equal(dynamo.Vec2{}))
			Expect(e.Snapshot().Elapsed).To(Equal(16 * time.Millisecond))
		})

		It("ignores a press outside the ball", func() {
			e.Start()
			Expect(e.HandleMouseDown(0, 0)).To(BeFalse())
			Expect(e.IsRunning()).To(BeTrue())
			Expect(e.HandleMouseMove(10, 10)).To(BeFalse())
			Expect(e.HandleMouseUp()).To(BeFalse())
		})
	})

	Describe("parameters", func() {
		It("stores increase and growth as 1+v", func() {
			e.SetGravity(-0.5)
			e.SetVelocityIncrease(0.05)
			e.SetVelocityDecay(0.98)
			e.SetBallGrowthRate(0.02)
			Expect(e.Params()).To(Equal(dynamo.Params{
				Gravity:          -0.5,
				VelocityIncrease: 1.05,
				VelocityDecay:    0.98,
				GrowthRate:       1.02,
			}))
		})

		DescribeTable("SetParam",
			func(name string, v float64, check func(dynamo.Params) float64, want float64) {
				Expect(e.SetParam(name, v)).To(Succeed())
				Expect(check(e.Params())).To(BeNumerically("~", want, 1e-12))
			},
			Entry("gravity", engine.ParamGravity, 0.4, func(p dynamo.Params) float64 { return p.Gravity }, 0.4),
			Entry("increase", engine.ParamVelocityIncrease, 0.1, func(p dynamo.Params) float64 { return p.VelocityIncrease }, 1.1),
			Entry("decay", engine.ParamVelocityDecay, 0.5, func(p dynamo.Params) float64 { return p.VelocityDecay }, 0.5),
			Entry("growth", engine.ParamGrowthRate, 0.3, func(p dynamo.Params) float64 { return p.GrowthRate }, 1.3),
		)

		It("rejects unknown names", func() {
			Expect(e.SetParam("spin", 1)).To(MatchError(dynamo.ErrUnknownParam))
		})

		It("replaces the overlays", func() {
			e.UpdateTextElements([]dynamo.TextOverlay{{Text: "hi"}})
			Expect(e.TextElements()).To(HaveLen(1))
		})
	})

	Describe("runaway parameters", func() {
		It("stops with a SimError and recovers on reset", func() {
			p := dynamo.DefaultParams()
			p.VelocityDecay = 2
			var err error
			e, err = engine.New(surface, nil,
				engine.WithLayout(layout),
				engine.WithColors(teal),
				engine.WithClock(clock),
				engine.WithParams(p))
			Expect(err).NotTo(HaveOccurred())

			e.Start()
			for i := 0; i < 20000 && e.IsRunning(); i++ {
				advance(16 * time.Millisecond)
			}
			Expect(e.IsRunning()).To(BeFalse())
			Expect(e.Err()).To(MatchError(dynamo.ErrInvalidState))
			var se *dynamo.SimError
			Expect(errors.As(e.Err(), &se)).To(BeTrue())
			Expect(se.Frame).To(Equal(e.Snapshot().Frame))
			Expect(e.World().Ball().IsValid()).To(BeTrue())

			e.SetVelocityDecay(0.99)
			e.Reset()
			Expect(e.Err()).NotTo(HaveOccurred())
			e.Start()
			advance(16 * time.Millisecond)
			Expect(e.Snapshot().Frame).To(Equal(1))
		})
	})

	Describe("recording", func() {
		It("reports stop without a recording", func() {
			Expect(e.StopRecording()).To(MatchError(dynamo.ErrNotRecording))
		})

		It("closes its frame tap when the recorder refuses to start", func() {
			rec := &refusingRecorder{}
			var err error
			e, err = engine.New(surface, nil,
				engine.WithLayout(layout),
				engine.WithColors(teal),
				engine.WithClock(clock),
				engine.WithRecorder(rec))
			Expect(err).NotTo(HaveOccurred())

			sink := dynamo.RecordingFunc(func([]byte, error) {})
			Expect(e.StartRecording(sink, nil)).To(MatchError(dynamo.ErrRecording))
			Expect(e.Recording()).To(BeFalse())
			Expect(rec.stream).NotTo(BeNil())
			Expect(rec.stream.Frames()).To(BeClosed())
		})

		It("records its own frames into a GIF", func() {
			raster := render.NewRasterSurface(64, 64)
			gifRec := recorder.NewGIF(recorder.GIFOptions{Delay: 2, Scale: 1})
			var err error
			e, err = engine.New(raster, nil,
				engine.WithColors(teal),
				engine.WithClock(clock),
				engine.WithRecorder(gifRec),
				engine.WithTapBuffer(64))
			Expect(err).NotTo(HaveOccurred())

			done := make(chan []byte, 1)
			failed := make(chan error, 1)
			sink := dynamo.RecordingFunc(func(blob []byte, err error) {
				if err != nil {
					failed <- err
					return
				}
				done <- blob
			})
			Expect(e.StartRecording(sink, nil)).To(Succeed())
			Expect(e.StartRecording(sink, nil)).To(MatchError(dynamo.ErrRecording))
			Expect(e.Recording()).To(BeTrue())

			e.Start()
			for i := 0; i < 5; i++ {
				advance(16 * time.Millisecond)
			}
			Expect(e.StopRecording()).To(Succeed())
			Expect(e.Recording()).To(BeFalse())
			Eventually(done).Should(Receive(Not(BeEmpty())))
			Expect(failed).NotTo(Receive())
		})
	})
})
