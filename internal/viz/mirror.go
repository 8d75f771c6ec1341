package viz

import (
	"github.com/san-kum/ringball/internal/engine"
	"github.com/san-kum/ringball/internal/recorder"
	"github.com/san-kum/ringball/internal/render"
	"github.com/san-kum/ringball/internal/sim"
)

// mirror repaints each frame onto an offscreen raster while a recording is
// running. Braille cells cannot be captured, so the GIF comes from here.
type mirror struct {
	eng      *engine.Engine
	style    render.Style
	surface  *render.RasterSurface
	renderer *render.Renderer
	tap      *recorder.Tap
}

func newMirror(eng *engine.Engine, style render.Style) *mirror {
	return &mirror{eng: eng, style: style}
}

// attach starts feeding a fresh tap and returns it as the recorder's
// stream. The raster is allocated on first use.
func (mr *mirror) attach(buffer int) (*recorder.Tap, error) {
	if mr.surface == nil {
		w, h := mr.eng.Surface().Size()
		surface := render.NewRasterSurface(w, h)
		canvas, err := surface.Context()
		if err != nil {
			return nil, err
		}
		mr.surface, mr.renderer = surface, render.NewRenderer(canvas, mr.style)
	}
	mr.tap = recorder.NewTap(buffer)
	return mr.tap, nil
}

func (mr *mirror) detach() {
	if mr.tap != nil {
		mr.tap.Close()
		mr.tap = nil
	}
}

func (mr *mirror) OnStep(sim.Snapshot) {
	if mr.tap == nil {
		return
	}
	mr.renderer.SetOverlays(mr.eng.TextElements())
	mr.renderer.Draw(mr.eng.World())
	mr.tap.Publish(mr.surface.Image())
}
