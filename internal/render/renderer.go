package render

import (
	"fmt"
	"image/color"
	"time"

	"github.com/san-kum/ringball/internal/dynamo"
	"github.com/san-kum/ringball/internal/palette"
	"github.com/san-kum/ringball/internal/sim"
)

// Style holds the fixed look of a frame.
type Style struct {
	Background  color.RGBA
	RingWidth   float64
	MarkerWidth float64
	ClockSize   float64
	ClockFont   string
	ClockColor  color.RGBA
	ClockOffset float64
}

func DefaultStyle() Style {
	return Style{
		Background:  color.RGBA{0, 0, 0, 255},
		RingWidth:   8,
		MarkerWidth: 2,
		ClockSize:   48,
		ClockFont:   "sans-serif",
		ClockColor:  color.RGBA{255, 255, 255, 255},
		ClockOffset: 72,
	}
}

// Renderer paints a world onto a canvas in a fixed order: background,
// boundary ring, marker lines, overlays, elapsed label, trail, ball.
type Renderer struct {
	canvas   Canvas
	style    Style
	overlays []dynamo.TextOverlay
	segs     []Segment
}

func NewRenderer(c Canvas, style Style) *Renderer {
	return &Renderer{canvas: c, style: style}
}

// SetOverlays replaces the overlay list. The slice is copied.
func (r *Renderer) SetOverlays(overlays []dynamo.TextOverlay) {
	r.overlays = append([]dynamo.TextOverlay(nil), overlays...)
}

func (r *Renderer) Overlays() []dynamo.TextOverlay { return r.overlays }

func (r *Renderer) Draw(w *sim.World) {
	c := r.canvas
	bound := w.Boundary()
	ball := w.Ball()
	tint := w.Color()

	c.Fill(r.style.Background)

	// inner edge of the stroke sits on the physical boundary
	c.StrokeCircle(bound.Center, bound.Radius+r.style.RingWidth/2, r.style.RingWidth, tint)

	if lb, ok := c.(LineBatcher); ok {
		r.segs = r.segs[:0]
		w.Markers().Each(func(_ int, m dynamo.Marker) {
			r.segs = append(r.segs, Segment{m.Point, ball.Center})
		})
		if len(r.segs) > 0 {
			lb.Lines(r.segs, r.style.MarkerWidth, tint)
		}
	} else {
		w.Markers().Each(func(_ int, m dynamo.Marker) {
			c.Line(m.Point, ball.Center, r.style.MarkerWidth, tint)
		})
	}

	for _, o := range r.overlays {
		c.Text(o.Text, dynamo.V(o.X, o.Y), TextStyle{
			Size:  o.Size,
			Font:  o.Font,
			Color: palette.ParseOr(o.Color, r.style.ClockColor),
			Align: AlignCenter,
		})
	}

	label := dynamo.V(bound.Center.X, bound.Center.Y+bound.Radius+r.style.RingWidth+r.style.ClockOffset)
	c.Text(FormatElapsed(w.Clock().Elapsed()), label, TextStyle{
		Size:  r.style.ClockSize,
		Font:  r.style.ClockFont,
		Color: r.style.ClockColor,
		Align: AlignCenter,
	})

	trail := w.Trail()
	n := float64(trail.Cap())
	trail.Each(func(i int, p dynamo.Vec2) {
		c.FillCircle(p, ball.Radius, palette.WithAlpha(tint, float64(i+1)/n))
	})

	c.FillCircle(ball.Center, ball.Radius, tint)
}

// FormatElapsed renders d as seconds with two decimals.
func FormatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.2f", d.Seconds())
}
