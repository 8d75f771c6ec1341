// Package export writes rendered frames in vector form.
package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image/color"
	"strings"

	"github.com/san-kum/ringball/internal/dynamo"
	"github.com/san-kum/ringball/internal/render"
)

// SVG is a render.Surface and render.Canvas that records each frame as an
// SVG document. Fill starts a new frame.
type SVG struct {
	width, height int
	body          strings.Builder
}

func NewSVG(width, height int) *SVG {
	return &SVG{width: width, height: height}
}

func (s *SVG) Size() (int, int) { return s.width, s.height }

func (s *SVG) Context() (render.Canvas, error) {
	if s.width <= 0 || s.height <= 0 {
		return nil, fmt.Errorf("export: svg %dx%d: %w", s.width, s.height, dynamo.ErrNoContext)
	}
	return s, nil
}

func (s *SVG) Fill(c color.Color) {
	s.body.Reset()
	fmt.Fprintf(&s.body, `<rect width="100%%" height="100%%" %s/>`+"\n", paint("fill", c))
}

func (s *SVG) StrokeCircle(center dynamo.Vec2, radius, width float64, c color.Color) {
	fmt.Fprintf(&s.body, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="none" stroke-width="%.2f" %s/>`+"\n",
		center.X, center.Y, radius, width, paint("stroke", c))
}

func (s *SVG) FillCircle(center dynamo.Vec2, radius float64, c color.Color) {
	fmt.Fprintf(&s.body, `<circle cx="%.2f" cy="%.2f" r="%.2f" %s/>`+"\n",
		center.X, center.Y, radius, paint("fill", c))
}

func (s *SVG) Line(from, to dynamo.Vec2, width float64, c color.Color) {
	fmt.Fprintf(&s.body, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="%.2f" %s/>`+"\n",
		from.X, from.Y, to.X, to.Y, width, paint("stroke", c))
}

func (s *SVG) Text(text string, at dynamo.Vec2, style render.TextStyle) {
	anchor := "start"
	switch style.Align {
	case render.AlignCenter:
		anchor = "middle"
	case render.AlignRight:
		anchor = "end"
	}
	font := style.Font
	if font == "" {
		font = "sans-serif"
	}
	col := style.Color
	if col == nil {
		col = color.White
	}
	fmt.Fprintf(&s.body, `<text x="%.2f" y="%.2f" font-size="%.1f" font-family="%s" text-anchor="%s" %s>%s</text>`+"\n",
		at.X, at.Y, style.Size, escape(font), anchor, paint("fill", col), escape(text))
}

// String returns the last frame as a complete SVG document.
func (s *SVG) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
`, s.width, s.height, s.width, s.height)
	sb.WriteString(s.body.String())
	sb.WriteString("</svg>\n")
	return sb.String()
}

func (s *SVG) Bytes() []byte { return []byte(s.String()) }

// TrajectoryToSVG draws a ball path in surface coordinates over a dark
// background.
func TrajectoryToSVG(points []dynamo.Vec2, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, escape(strokeColor))

	for i, p := range points {
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", p.X, p.Y)
	}
	sb.WriteString(`"/>
</svg>
`)
	return sb.String()
}

func paint(attr string, c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	s := fmt.Sprintf(`%s="#%02x%02x%02x"`, attr, n.R, n.G, n.B)
	if n.A != 255 {
		s += fmt.Sprintf(` %s-opacity="%.3f"`, attr, float64(n.A)/255)
	}
	return s
}

func escape(s string) string {
	var b bytes.Buffer
	xml.EscapeText(&b, []byte(s))
	return b.String()
}
