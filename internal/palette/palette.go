// Package palette picks and parses the colours the renderer uses.
package palette

import (
	"fmt"
	"image/color"
	"math/rand"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RandomSource picks a fully saturated, mid-lightness colour of random hue.
type RandomSource struct {
	rng *rand.Rand
}

func NewRandomSource(seed int64) *RandomSource {
	return &RandomSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *RandomSource) Next() color.RGBA {
	c := colorful.Hsl(s.rng.Float64()*360, 1, 0.5)
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// FixedSource always returns the same colour.
type FixedSource color.RGBA

func (f FixedSource) Next() color.RGBA { return color.RGBA(f) }

// Sequence cycles through a fixed list of colours.
type Sequence struct {
	colors []color.RGBA
	i      int
}

func NewSequence(colors ...color.RGBA) *Sequence {
	return &Sequence{colors: colors}
}

func (s *Sequence) Next() color.RGBA {
	if len(s.colors) == 0 {
		return color.RGBA{A: 255}
	}
	c := s.colors[s.i%len(s.colors)]
	s.i++
	return c
}

var named = map[string]color.RGBA{
	"white": {255, 255, 255, 255},
	"black": {0, 0, 0, 255},
	"red":   {255, 0, 0, 255},
	"green": {0, 128, 0, 255},
	"blue":  {0, 0, 255, 255},
	"gray":  {128, 128, 128, 255},
	"grey":  {128, 128, 128, 255},
}

// Parse understands "#rgb", "#rrggbb" and a handful of colour names.
func Parse(s string) (color.RGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if c, ok := named[s]; ok {
		return c, nil
	}
	if len(s) == 4 && s[0] == '#' {
		s = "#" + string([]byte{s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("palette: parse %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// ParseOr is Parse with a fallback colour instead of an error.
func ParseOr(s string, fallback color.RGBA) color.RGBA {
	c, err := Parse(s)
	if err != nil {
		return fallback
	}
	return c
}

// WithAlpha returns c with its alpha scaled by a in [0,1], as non-premultiplied.
func WithAlpha(c color.RGBA, a float64) color.NRGBA {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(float64(c.A)*a + 0.5)}
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}
