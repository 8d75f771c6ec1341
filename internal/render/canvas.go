package render

import (
	"image"
	"image/color"

	"github.com/san-kum/ringball/internal/dynamo"
)

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// TextStyle describes how a string is drawn. Font is a hint; canvases that
// cannot honour it fall back to their own face.
type TextStyle struct {
	Size  float64
	Font  string
	Color color.Color
	Align Align
}

// Canvas is the 2D drawing context the renderer paints on. Coordinates are
// in surface pixels.
type Canvas interface {
	Fill(c color.Color)
	StrokeCircle(center dynamo.Vec2, radius, width float64, c color.Color)
	FillCircle(center dynamo.Vec2, radius float64, c color.Color)
	Line(from, to dynamo.Vec2, width float64, c color.Color)
	Text(s string, at dynamo.Vec2, style TextStyle)
}

// Segment is one straight line from From to To.
type Segment struct {
	From, To dynamo.Vec2
}

// LineBatcher is implemented by canvases that draw many lines of one colour
// and width in a single pass. The renderer prefers it for collision markers.
type LineBatcher interface {
	Lines(segs []Segment, width float64, c color.Color)
}

// Surface hands out a Canvas of a fixed size. Context fails when no 2D
// context can be acquired.
type Surface interface {
	Size() (width, height int)
	Context() (Canvas, error)
}

// Snapshotter is implemented by surfaces whose pixels can be read back, e.g.
// for recording.
type Snapshotter interface {
	Snapshot() image.Image
}
