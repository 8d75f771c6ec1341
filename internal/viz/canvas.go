package viz

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/ringball/internal/palette"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a grid of braille cells. Each cell carries the colour of the
// last dot drawn into it, and may be replaced by a text rune.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Colors        [][]color.RGBA
	Text          [][]rune
	Pen           color.RGBA
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Pen: color.RGBA{255, 255, 255, 255}}
	c.Resize(w, h)
	return c
}

// Resize reallocates the grid and clears it.
func (c *Canvas) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c.Width, c.Height = w, h
	c.Grid = make([][]rune, h)
	c.Colors = make([][]color.RGBA, h)
	c.Text = make([][]rune, h)
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Colors[i] = make([]color.RGBA, w)
		c.Text[i] = make([]rune, w)
	}
	c.Clear()
}

// SubSize is the canvas size in dots.
func (c *Canvas) SubSize() (int, int) { return c.Width * 2, c.Height * 4 }

// Set lights the dot at (x, y) in sub-pixel coordinates with the pen colour.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	c.Colors[row][col] = c.Pen
}

// Unset clears a dot.
func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] &= ^rune(pixelMap[y%4][x%2])
	if c.Grid[row][col] < blank {
		c.Grid[row][col] = blank
	}
}

// Lit reports whether the dot at (x, y) is set.
func (c *Canvas) Lit(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Text[i][j] = 0
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawCircle draws an outline with the midpoint algorithm.
func (c *Canvas) DrawCircle(cx, cy, r int) {
	if r <= 0 {
		c.Set(cx, cy)
		return
	}
	x, y, d := r, 0, 1-r
	for x >= y {
		for _, p := range [8][2]int{{x, y}, {y, x}, {-y, x}, {-x, y}, {-x, -y}, {-y, -x}, {y, -x}, {x, -y}} {
			c.Set(cx+p[0], cy+p[1])
		}
		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
}

func (c *Canvas) FillCircle(cx, cy, r int) {
	if r <= 0 {
		c.Set(cx, cy)
		return
	}
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				c.Set(cx+dx, cy+dy)
			}
		}
	}
}

// PutText writes s into whole cells starting at (col, row), clipped to the
// canvas.
func (c *Canvas) PutText(col, row int, s string) {
	if row < 0 || row >= c.Height {
		return
	}
	for _, r := range s {
		if col >= 0 && col < c.Width {
			c.Text[row][col] = r
			c.Colors[row][col] = c.Pen
		}
		col++
	}
}

func (c *Canvas) cell(row, col int) rune {
	if t := c.Text[row][col]; t != 0 {
		return t
	}
	return c.Grid[row][col]
}

// String renders the canvas without colour.
func (c *Canvas) String() string {
	var b strings.Builder
	for row := range c.Grid {
		for col := range c.Grid[row] {
			b.WriteRune(c.cell(row, col))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Render renders the canvas with each run of same-coloured cells wrapped in
// a lipgloss style.
func (c *Canvas) Render() string {
	var b strings.Builder
	var run strings.Builder
	for row := range c.Grid {
		var cur color.RGBA
		flush := func() {
			if run.Len() == 0 {
				return
			}
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Hex(cur))).Render(run.String()))
			run.Reset()
		}
		for col := range c.Grid[row] {
			r := c.cell(row, col)
			if r == blank {
				flush()
				b.WriteRune(r)
				continue
			}
			if fg := c.Colors[row][col]; fg != cur {
				flush()
				cur = fg
			}
			run.WriteRune(r)
		}
		flush()
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
