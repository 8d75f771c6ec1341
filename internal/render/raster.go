package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/san-kum/ringball/internal/dynamo"
)

var (
	goRegular     *opentype.Font
	goRegularErr  error
	goRegularOnce sync.Once
)

func loadGoRegular() (*opentype.Font, error) {
	goRegularOnce.Do(func() {
		goRegular, goRegularErr = opentype.Parse(goregular.TTF)
	})
	return goRegular, goRegularErr
}

// Raster is an anti-aliased software Canvas backed by an *image.RGBA.
//
// Each shape is rasterized only inside its bounding box, so a frame costs
// what it covers rather than a full canvas per shape.
type Raster struct {
	img   *image.RGBA
	rast  *vector.Rasterizer
	faces map[float64]font.Face
	// clip is the pixel rect the current path is rasterized in. Vertices
	// are shifted by -clip.Min.
	clip image.Rectangle
	ring ringMask
}

// ringMask caches the coverage of the last stroked circle. The boundary
// ring is the same every frame and is the largest shape drawn.
type ringMask struct {
	center        dynamo.Vec2
	radius, width float64
	mask          *image.Alpha
}

func NewRaster(width, height int) *Raster {
	return &Raster{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		rast:  vector.NewRasterizer(width, height),
		faces: make(map[float64]font.Face),
	}
}

func (r *Raster) Image() *image.RGBA { return r.img }

func (r *Raster) Fill(c color.Color) {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

func (r *Raster) FillCircle(center dynamo.Vec2, radius float64, c color.Color) {
	if radius <= 0 || !r.begin(circleBounds(center, radius)) {
		return
	}
	r.circle(center, radius, false)
	r.paint(c)
}

// StrokeCircle strokes a ring of the given width centred on radius.
func (r *Raster) StrokeCircle(center dynamo.Vec2, radius, width float64, c color.Color) {
	outer := radius + width/2
	if outer <= 0 {
		return
	}
	m := &r.ring
	if m.mask == nil || m.center != center || m.radius != radius || m.width != width {
		m.center, m.radius, m.width, m.mask = center, radius, width, nil
		if !r.begin(circleBounds(center, outer)) {
			return
		}
		r.circle(center, outer, false)
		if inner := radius - width/2; inner > 0 {
			r.circle(center, inner, true)
		}
		m.mask = image.NewAlpha(r.clip)
		r.rast.Draw(m.mask, r.clip, image.Opaque, image.Point{})
	}
	b := m.mask.Bounds()
	draw.DrawMask(r.img, b, image.NewUniform(c), image.Point{}, m.mask, b.Min, draw.Over)
}

func (r *Raster) Line(from, to dynamo.Vec2, width float64, c color.Color) {
	r.Lines([]Segment{{from, to}}, width, c)
}

// Lines draws every segment as one path, so overlapping lines cost a single
// pass over their joint bounding box.
func (r *Raster) Lines(segs []Segment, width float64, c color.Color) {
	if width <= 0 || len(segs) == 0 {
		return
	}
	lo := dynamo.V(math.Inf(1), math.Inf(1))
	hi := dynamo.V(math.Inf(-1), math.Inf(-1))
	for _, sg := range segs {
		if !drawable(sg) {
			continue
		}
		lo = dynamo.V(math.Min(lo.X, math.Min(sg.From.X, sg.To.X)), math.Min(lo.Y, math.Min(sg.From.Y, sg.To.Y)))
		hi = dynamo.V(math.Max(hi.X, math.Max(sg.From.X, sg.To.X)), math.Max(hi.Y, math.Max(sg.From.Y, sg.To.Y)))
	}
	pad := dynamo.V(width, width)
	if !r.begin(lo.Sub(pad), hi.Add(pad)) {
		return
	}
	for _, sg := range segs {
		if !drawable(sg) {
			continue
		}
		d := sg.To.Sub(sg.From)
		n := dynamo.V(-d.Y, d.X).Scale(width / 2 / d.Len())
		r.moveTo(sg.From.Add(n))
		r.lineTo(sg.To.Add(n))
		r.lineTo(sg.To.Sub(n))
		r.lineTo(sg.From.Sub(n))
		r.rast.ClosePath()
	}
	r.paint(c)
}

func drawable(sg Segment) bool {
	return sg.From.IsValid() && sg.To.IsValid() && sg.From != sg.To
}

func (r *Raster) Text(s string, at dynamo.Vec2, style TextStyle) {
	if s == "" || !at.IsValid() {
		return
	}
	face := r.face(style.Size)
	x := at.X
	switch style.Align {
	case AlignCenter:
		x -= float64(font.MeasureString(face, s)) / 64 / 2
	case AlignRight:
		x -= float64(font.MeasureString(face, s)) / 64
	}
	col := style.Color
	if col == nil {
		col = color.White
	}
	d := font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(at.Y * 64)},
	}
	d.DrawString(s)
}

func (r *Raster) face(size float64) font.Face {
	if size <= 0 {
		size = 16
	}
	if f, ok := r.faces[size]; ok {
		return f
	}
	var face font.Face = basicfont.Face7x13
	if f, err := loadGoRegular(); err == nil {
		if nf, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull}); err == nil {
			face = nf
		}
	}
	r.faces[size] = face
	return face
}

func circleBounds(center dynamo.Vec2, radius float64) (dynamo.Vec2, dynamo.Vec2) {
	d := dynamo.V(radius, radius)
	return center.Sub(d), center.Add(d)
}

// begin sizes the rasterizer to the pixel rect covering lo..hi, clipped to
// the image. It reports false when nothing of the shape is visible.
func (r *Raster) begin(lo, hi dynamo.Vec2) bool {
	if !lo.IsValid() || !hi.IsValid() {
		return false
	}
	b := r.img.Bounds()
	if lo.X >= float64(b.Max.X) || lo.Y >= float64(b.Max.Y) || hi.X < float64(b.Min.X) || hi.Y < float64(b.Min.Y) {
		return false
	}
	rect := image.Rect(
		int(math.Floor(math.Max(lo.X, float64(b.Min.X)))),
		int(math.Floor(math.Max(lo.Y, float64(b.Min.Y)))),
		int(math.Ceil(math.Min(hi.X, float64(b.Max.X))))+1,
		int(math.Ceil(math.Min(hi.Y, float64(b.Max.Y))))+1,
	).Intersect(b)
	if rect.Empty() {
		return false
	}
	r.clip = rect
	r.rast.Reset(rect.Dx(), rect.Dy())
	return true
}

func (r *Raster) paint(c color.Color) {
	r.rast.Draw(r.img, r.clip, image.NewUniform(c), image.Point{})
}

// circle adds a closed polygon approximating the circle. Reversed winding
// punches a hole when combined with an outer circle.
func (r *Raster) circle(center dynamo.Vec2, radius float64, reverse bool) {
	segs := int(2 * math.Pi * radius / 2)
	if segs < 24 {
		segs = 24
	}
	if segs > 720 {
		segs = 720
	}
	step := 2 * math.Pi / float64(segs)
	if reverse {
		step = -step
	}
	r.moveTo(center.Add(dynamo.V(radius, 0)))
	for i := 1; i < segs; i++ {
		r.lineTo(center.Add(dynamo.Polar(radius, float64(i)*step)))
	}
	r.rast.ClosePath()
}

// Vertices are moved into clip space and clamped to it so the rasterizer
// never indexes outside its coverage buffer.
func (r *Raster) clamp(p dynamo.Vec2) (float32, float32) {
	x := math.Max(0, math.Min(float64(r.clip.Dx()), p.X-float64(r.clip.Min.X)))
	y := math.Max(0, math.Min(float64(r.clip.Dy()), p.Y-float64(r.clip.Min.Y)))
	return float32(x), float32(y)
}

func (r *Raster) moveTo(p dynamo.Vec2) { r.rast.MoveTo(r.clamp(p)) }
func (r *Raster) lineTo(p dynamo.Vec2) { r.rast.LineTo(r.clamp(p)) }

// RasterSurface is an offscreen Surface. Its pixels can be read back for
// PNG export and recording.
type RasterSurface struct {
	width, height int
	raster        *Raster
}

func NewRasterSurface(width, height int) *RasterSurface {
	return &RasterSurface{width: width, height: height}
}

func (s *RasterSurface) Size() (int, int) { return s.width, s.height }

func (s *RasterSurface) Context() (Canvas, error) {
	if s.width <= 0 || s.height <= 0 {
		return nil, fmt.Errorf("render: raster %dx%d: %w", s.width, s.height, dynamo.ErrNoContext)
	}
	if s.raster == nil {
		s.raster = NewRaster(s.width, s.height)
	}
	return s.raster, nil
}

// Snapshot returns the live backing image. Callers that keep it past the
// next frame must copy it.
func (s *RasterSurface) Snapshot() image.Image {
	if s.raster == nil {
		return nil
	}
	return s.raster.img
}

func (s *RasterSurface) Image() *image.RGBA {
	if s.raster == nil {
		return nil
	}
	return s.raster.img
}
