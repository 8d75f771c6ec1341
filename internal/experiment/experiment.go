// Package experiment runs the engine headless on an offscreen raster with a
// synthetic clock, so a run with a given seed is reproducible frame for
// frame.
package experiment

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"log"
	"time"

	"github.com/san-kum/ringball/internal/config"
	"github.com/san-kum/ringball/internal/dynamo"
	"github.com/san-kum/ringball/internal/engine"
	"github.com/san-kum/ringball/internal/export"
	"github.com/san-kum/ringball/internal/metrics"
	"github.com/san-kum/ringball/internal/palette"
	"github.com/san-kum/ringball/internal/recorder"
	"github.com/san-kum/ringball/internal/render"
	"github.com/san-kum/ringball/internal/sim"
	"github.com/san-kum/ringball/internal/storage"
)

const (
	DefaultFrames      = 600
	DefaultSampleEvery = 1
	DefaultRecordEvery = 2
	seriesLimit        = 512
)

type Config struct {
	Preset string
	Frames int
	Seed   int64
	// Params overrides physics by engine param name, in setter units.
	Params      map[string]float64
	SampleEvery int
	Record      bool
	RecordEvery int
	GIF         recorder.GIFOptions
	// SVG also draws the final frame as SVG.
	SVG bool
}

// Result is everything a headless run produced.
type Result struct {
	Seed      int64
	Preset    string
	Frames    int
	Elapsed   time.Duration
	Params    dynamo.Params
	Layout    sim.Layout
	Metrics   map[string]float64
	Samples   []storage.Sample
	Series    *metrics.Series
	Final     sim.Snapshot
	Frame     *image.RGBA
	SVG       []byte
	Recording []byte
}

// Metadata describes the result for storage.
func (r *Result) Metadata() storage.RunMetadata {
	return storage.RunMetadata{
		Seed:    r.Seed,
		Preset:  r.Preset,
		Frames:  r.Frames,
		Elapsed: r.Elapsed.Seconds(),
		Params:  r.Params,
		Layout:  r.Layout,
		Metrics: r.Metrics,
	}
}

type Experiment struct {
	cfg       Config
	base      *config.Config
	opts      []engine.Option
	observers []sim.Observer
}

// New prepares a run of base with cfg layered on top. A named preset
// replaces the physics of base; Params then override single values.
func New(base *config.Config, cfg Config, opts ...engine.Option) *Experiment {
	if cfg.Frames <= 0 {
		cfg.Frames = DefaultFrames
	}
	if cfg.SampleEvery <= 0 {
		cfg.SampleEvery = DefaultSampleEvery
	}
	if cfg.RecordEvery <= 0 {
		cfg.RecordEvery = DefaultRecordEvery
	}
	if cfg.GIF == (recorder.GIFOptions{}) {
		cfg.GIF = recorder.DefaultGIFOptions()
	}
	return &Experiment{cfg: cfg, base: base, opts: opts}
}

// AddObserver registers o for every frame of the next Run.
func (x *Experiment) AddObserver(o sim.Observer) { x.observers = append(x.observers, o) }

func (x *Experiment) Config() Config { return x.cfg }

// feed is a recording stream that applies backpressure instead of dropping.
type feed chan image.Image

func (f feed) Frames() <-chan image.Image { return f }

func (x *Experiment) resolve() (*config.Config, error) {
	if x.base == nil {
		return nil, fmt.Errorf("experiment: no base config")
	}
	cfg := *x.base
	if x.cfg.Preset != "" {
		p, ok := config.Presets[x.cfg.Preset]
		if !ok {
			return nil, fmt.Errorf("experiment: unknown preset %q", x.cfg.Preset)
		}
		cfg.Physics = p
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("experiment: %w", err)
	}
	return &cfg, nil
}

func (x *Experiment) Run(ctx context.Context) (*Result, error) {
	cfg, err := x.resolve()
	if err != nil {
		return nil, err
	}

	now := time.Unix(0, 0)
	step := time.Second / time.Duration(cfg.FPS)
	surface := render.NewRasterSurface(cfg.Canvas.Width, cfg.Canvas.Height)

	var gifRec *recorder.GIF
	opts := []engine.Option{
		engine.WithLayout(cfg.Layout()),
		engine.WithParams(cfg.Params()),
		engine.WithStyle(cfg.Style()),
		engine.WithColors(palette.NewRandomSource(x.cfg.Seed)),
		engine.WithClock(func() time.Time { return now }),
	}
	if x.cfg.Record {
		gifRec = recorder.NewGIF(x.cfg.GIF)
		opts = append(opts, engine.WithRecorder(gifRec))
	}
	eng, err := engine.New(surface, cfg.Overlays, append(opts, x.opts...)...)
	if err != nil {
		return nil, fmt.Errorf("experiment: %w", err)
	}
	for name, v := range x.cfg.Params {
		if err := eng.SetParam(name, v); err != nil {
			return nil, fmt.Errorf("experiment: %w", err)
		}
	}

	stats := metrics.Standard(cfg.Layout())
	series := metrics.NewSeries(seriesLimit)
	collector := storage.NewCollector(x.cfg.SampleEvery)
	eng.AddObserver(stats)
	eng.AddObserver(series)
	eng.AddObserver(collector)
	for _, o := range x.observers {
		eng.AddObserver(o)
	}

	var (
		frames  feed
		blobs   chan recordingResult
		aborted bool
	)
	if gifRec != nil {
		frames = make(feed, 4)
		blobs = make(chan recordingResult, 1)
		sink := dynamo.RecordingFunc(func(blob []byte, err error) {
			blobs <- recordingResult{blob, err}
		})
		if err := eng.StartRecording(sink, frames); err != nil {
			return nil, fmt.Errorf("experiment: %w", err)
		}
		eng.AddObserver(sim.ObserverFunc(func(s sim.Snapshot) {
			if aborted || s.Frame%x.cfg.RecordEvery != 0 {
				return
			}
			select {
			case frames <- clone(surface.Image()):
			case <-ctx.Done():
				aborted = true
			}
		}))
	}

	eng.Start()
	for i := 0; i < x.cfg.Frames; i++ {
		if i%64 == 0 && ctx.Err() != nil {
			break
		}
		now = now.Add(step)
		eng.Advance(now)
		if err := eng.Err(); err != nil {
			log.Printf("[EXP] %s seed %d: %v", x.cfg.Preset, x.cfg.Seed, err)
			break
		}
	}
	eng.Stop()

	res := &Result{
		Seed:    x.cfg.Seed,
		Preset:  x.cfg.Preset,
		Frames:  eng.Snapshot().Frame,
		Elapsed: eng.Snapshot().Elapsed,
		Params:  eng.Params(),
		Layout:  cfg.Layout(),
		Metrics: stats.Values(),
		Samples: collector.Samples(),
		Series:  series,
		Final:   eng.Snapshot(),
		Frame:   clone(surface.Image()),
	}
	if x.cfg.SVG {
		res.SVG = drawSVG(eng, cfg)
	}

	if gifRec != nil {
		close(frames)
		eng.StopRecording()
		select {
		case r := <-blobs:
			if r.err != nil {
				return res, fmt.Errorf("experiment: recording: %w", r.err)
			}
			res.Recording = r.blob
		case <-ctx.Done():
			return res, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

func drawSVG(eng *engine.Engine, cfg *config.Config) []byte {
	doc := export.NewSVG(cfg.Canvas.Width, cfg.Canvas.Height)
	canvas, _ := doc.Context()
	r := render.NewRenderer(canvas, cfg.Style())
	r.SetOverlays(eng.TextElements())
	r.Draw(eng.World())
	return doc.Bytes()
}

type recordingResult struct {
	blob []byte
	err  error
}

func clone(img *image.RGBA) *image.RGBA {
	if img == nil {
		return nil
	}
	dst := image.NewRGBA(img.Bounds())
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	return dst
}

// Save stores the run and returns its id.
func (r *Result) Save(store *storage.Store) (string, error) {
	if store == nil {
		return "", fmt.Errorf("experiment: no store")
	}
	if err := store.Init(); err != nil {
		return "", err
	}
	return store.Save(r.Metadata(), r.Samples, r.Recording)
}
