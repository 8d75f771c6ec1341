package viz

import (
	"fmt"
	"image/color"
	"math"
	"unicode/utf8"

	"github.com/san-kum/ringball/internal/dynamo"
	"github.com/san-kum/ringball/internal/render"
)

// Surface maps a world of fixed pixel size onto a braille Canvas, keeping
// the aspect ratio and centring the picture.
type Surface struct {
	canvas        *Canvas
	width, height int
	scale         float64
	offX, offY    float64
}

func NewSurface(worldW, worldH, cols, rows int) *Surface {
	s := &Surface{canvas: NewCanvas(cols, rows), width: worldW, height: worldH}
	s.fit()
	return s
}

// Resize changes the canvas to cols x rows cells.
func (s *Surface) Resize(cols, rows int) {
	s.canvas.Resize(cols, rows)
	s.fit()
}

func (s *Surface) fit() {
	sw, sh := s.canvas.SubSize()
	if s.width <= 0 || s.height <= 0 || sw == 0 || sh == 0 {
		s.scale = 0
		return
	}
	s.scale = math.Min(float64(sw)/float64(s.width), float64(sh)/float64(s.height))
	s.offX = (float64(sw) - float64(s.width)*s.scale) / 2
	s.offY = (float64(sh) - float64(s.height)*s.scale) / 2
}

func (s *Surface) Size() (int, int) { return s.width, s.height }

func (s *Surface) Context() (render.Canvas, error) {
	if s.width <= 0 || s.height <= 0 || s.canvas.Width <= 0 || s.canvas.Height <= 0 {
		return nil, fmt.Errorf("viz: %dx%d world on %dx%d cells: %w",
			s.width, s.height, s.canvas.Width, s.canvas.Height, dynamo.ErrNoContext)
	}
	return brailleCanvas{s}, nil
}

func (s *Surface) Canvas() *Canvas { return s.canvas }

// ToDots converts a world point to dot coordinates.
func (s *Surface) ToDots(p dynamo.Vec2) (int, int) {
	return int(math.Round(p.X*s.scale + s.offX)), int(math.Round(p.Y*s.scale + s.offY))
}

// FromCell converts a terminal cell to the world point at its centre.
func (s *Surface) FromCell(col, row int) dynamo.Vec2 {
	if s.scale == 0 {
		return dynamo.Vec2{}
	}
	x := float64(col*2) + 1
	y := float64(row*4) + 2
	return dynamo.V((x-s.offX)/s.scale, (y-s.offY)/s.scale)
}

func (s *Surface) dots(r float64) int { return int(math.Round(r * s.scale)) }

// brailleCanvas draws through a Surface. Translucent discs, which the
// renderer uses for the trail, become outlines.
type brailleCanvas struct {
	s *Surface
}

func rgba(c color.Color) color.RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return color.RGBA{R: n.R, G: n.G, B: n.B, A: 255}
}

func alpha(c color.Color) uint8 {
	return color.NRGBAModel.Convert(c).(color.NRGBA).A
}

func (b brailleCanvas) Fill(color.Color) { b.s.canvas.Clear() }

func (b brailleCanvas) StrokeCircle(center dynamo.Vec2, radius, _ float64, c color.Color) {
	b.s.canvas.Pen = rgba(c)
	x, y := b.s.ToDots(center)
	b.s.canvas.DrawCircle(x, y, b.s.dots(radius))
}

func (b brailleCanvas) FillCircle(center dynamo.Vec2, radius float64, c color.Color) {
	a := alpha(c)
	if a == 0 {
		return
	}
	b.s.canvas.Pen = rgba(c)
	x, y := b.s.ToDots(center)
	if a < 128 {
		b.s.canvas.DrawCircle(x, y, b.s.dots(radius))
		return
	}
	b.s.canvas.FillCircle(x, y, b.s.dots(radius))
}

func (b brailleCanvas) Line(from, to dynamo.Vec2, _ float64, c color.Color) {
	b.s.canvas.Pen = rgba(c)
	x0, y0 := b.s.ToDots(from)
	x1, y1 := b.s.ToDots(to)
	b.s.canvas.DrawLine(x0, y0, x1, y1)
}

func (b brailleCanvas) Text(text string, at dynamo.Vec2, style render.TextStyle) {
	if style.Color != nil {
		b.s.canvas.Pen = rgba(style.Color)
	}
	x, y := b.s.ToDots(at)
	col, row := x/2, y/4
	n := utf8.RuneCountInString(text)
	switch style.Align {
	case render.AlignCenter:
		col -= n / 2
	case render.AlignRight:
		col -= n
	}
	b.s.canvas.PutText(col, row, text)
}
