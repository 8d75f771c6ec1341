package gui

import (
	"fmt"
	"image"
	"image/color"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/ringball/internal/dynamo"
	"github.com/san-kum/ringball/internal/render"
)

// Window is the part of the raylib window the engine draws on. World
// coordinates are scaled by Scale and shifted by Origin.
type Window struct {
	width, height int
	Scale         float64
	Origin        dynamo.Vec2
}

// NewWindow fits a width x height world into a viewport of the given pixel
// height.
func NewWindow(width, height int, viewportHeight float64) *Window {
	w := &Window{width: width, height: height}
	if height > 0 {
		w.Scale = viewportHeight / float64(height)
	}
	return w
}

func (w *Window) Size() (int, int) { return w.width, w.height }

// Viewport is the on-screen size of the world in pixels.
func (w *Window) Viewport() (int32, int32) {
	return int32(math.Round(float64(w.width) * w.Scale)), int32(math.Round(float64(w.height) * w.Scale))
}

func (w *Window) Context() (render.Canvas, error) {
	if w.width <= 0 || w.height <= 0 || w.Scale <= 0 {
		return nil, fmt.Errorf("gui: %dx%d world at scale %.3f: %w", w.width, w.height, w.Scale, dynamo.ErrNoContext)
	}
	return windowCanvas{w}, nil
}

// ToScreen maps a world point to window pixels.
func (w *Window) ToScreen(p dynamo.Vec2) rl.Vector2 {
	return rl.NewVector2(float32(p.X*w.Scale+w.Origin.X), float32(p.Y*w.Scale+w.Origin.Y))
}

// ToWorld maps window pixels back to the world.
func (w *Window) ToWorld(v rl.Vector2) dynamo.Vec2 {
	if w.Scale == 0 {
		return dynamo.Vec2{}
	}
	return dynamo.V((float64(v.X)-w.Origin.X)/w.Scale, (float64(v.Y)-w.Origin.Y)/w.Scale)
}

// Snapshot reads the viewport back from the framebuffer. It must be called
// between BeginDrawing and EndDrawing.
func (w *Window) Snapshot() image.Image {
	rl.DrawRenderBatchActive()
	shot := rl.LoadImageFromScreen()
	defer rl.UnloadImage(shot)
	cols := rl.LoadImageColors(shot)
	defer rl.UnloadImageColors(cols)

	vw, vh := w.Viewport()
	ox, oy := int(w.Origin.X), int(w.Origin.Y)
	img := image.NewRGBA(image.Rect(0, 0, int(vw), int(vh)))
	sw, sh := int(shot.Width), int(shot.Height)
	for y := 0; y < int(vh); y++ {
		sy := y + oy
		if sy < 0 || sy >= sh {
			continue
		}
		for x := 0; x < int(vw); x++ {
			sx := x + ox
			if sx < 0 || sx >= sw {
				continue
			}
			img.SetRGBA(x, y, cols[sy*sw+sx])
		}
	}
	return img
}

// rgba converts to the straight-alpha colour raylib expects.
func rgba(c color.Color) rl.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return rl.NewColor(n.R, n.G, n.B, n.A)
}

type windowCanvas struct {
	w *Window
}

func (c windowCanvas) segments(radius float64) int32 {
	return int32(min(max(radius*c.w.Scale/2, 24), 360))
}

func (c windowCanvas) Fill(col color.Color) {
	vw, vh := c.w.Viewport()
	rl.DrawRectangle(int32(c.w.Origin.X), int32(c.w.Origin.Y), vw, vh, rgba(col))
}

func (c windowCanvas) StrokeCircle(center dynamo.Vec2, radius, width float64, col color.Color) {
	s := c.w.Scale
	inner := float32((radius - width/2) * s)
	outer := float32((radius + width/2) * s)
	rl.DrawRing(c.w.ToScreen(center), max(inner, 0), outer, 0, 360, c.segments(radius), rgba(col))
}

func (c windowCanvas) FillCircle(center dynamo.Vec2, radius float64, col color.Color) {
	rl.DrawCircleV(c.w.ToScreen(center), float32(radius*c.w.Scale), rgba(col))
}

func (c windowCanvas) Line(from, to dynamo.Vec2, width float64, col color.Color) {
	rl.DrawLineEx(c.w.ToScreen(from), c.w.ToScreen(to), float32(max(width*c.w.Scale, 1)), rgba(col))
}

func (c windowCanvas) Text(s string, at dynamo.Vec2, style render.TextStyle) {
	size := int32(math.Max(math.Round(style.Size*c.w.Scale), 8))
	col := rl.White
	if style.Color != nil {
		col = rgba(style.Color)
	}
	p := c.w.ToScreen(at)
	x := int32(p.X)
	switch style.Align {
	case render.AlignCenter:
		x -= rl.MeasureText(s, size) / 2
	case render.AlignRight:
		x -= rl.MeasureText(s, size)
	}
	// raylib positions text by its top edge, the renderer by its baseline
	rl.DrawText(s, x, int32(p.Y)-size, size, col)
}
