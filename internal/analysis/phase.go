package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/ringball/internal/dynamo"
	"github.com/san-kum/ringball/internal/storage"
)

type Point struct{ X, Y float64 }

// Axes are the sample fields a portrait can plot.
var Axes = map[string]func(storage.Sample) float64{
	"time":   func(s storage.Sample) float64 { return s.Time },
	"x":      func(s storage.Sample) float64 { return s.X },
	"y":      func(s storage.Sample) float64 { return s.Y },
	"vx":     func(s storage.Sample) float64 { return s.VX },
	"vy":     func(s storage.Sample) float64 { return s.VY },
	"speed":  storage.Sample.Speed,
	"radius": func(s storage.Sample) float64 { return s.Radius },
}

func AxisNames() []string {
	names := make([]string, 0, len(Axes))
	for name := range Axes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	XAxis, YAxis string
	Points       []Point
}

// GeneratePhasePortrait plots one sample field against another.
func GeneratePhasePortrait(samples []storage.Sample, xAxis, yAxis string) (*PhasePortrait2D, error) {
	fx, ok := Axes[xAxis]
	if !ok {
		return nil, fmt.Errorf("analysis: unknown axis %q", xAxis)
	}
	fy, ok := Axes[yAxis]
	if !ok {
		return nil, fmt.Errorf("analysis: unknown axis %q", yAxis)
	}

	portrait := &PhasePortrait2D{
		XAxis:  xAxis,
		YAxis:  yAxis,
		Points: make([]Point, 0, len(samples)),
	}
	for _, s := range samples {
		portrait.Points = append(portrait.Points, Point{X: fx(s), Y: fy(s)})
	}
	return portrait, nil
}

// ImpactAngles returns the angle around center at which each collision in
// samples happened. Samples must be consecutive frames.
func ImpactAngles(samples []storage.Sample, center dynamo.Vec2) []float64 {
	var angles []float64
	for i := 1; i < len(samples); i++ {
		if samples[i].Collisions <= samples[i-1].Collisions {
			continue
		}
		angles = append(angles, dynamo.V(samples[i].X, samples[i].Y).Sub(center).Angle())
	}
	return angles
}

// ReturnMap pairs each impact angle with the next one. Fixed points of the
// map are orbits that keep hitting the same spot.
func ReturnMap(angles []float64) *PhasePortrait2D {
	portrait := &PhasePortrait2D{XAxis: "angle[n]", YAxis: "angle[n+1]"}
	for i := 1; i < len(angles); i++ {
		portrait.Points = append(portrait.Points, Point{X: angles[i-1], Y: angles[i]})
	}
	return portrait
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y

	for _, p := range portrait.Points {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	// 10% padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// axes, where they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	fmt.Fprintf(&sb, "x: %s [%.3g, %.3g]  y: %s [%.3g, %.3g]\n",
		portrait.XAxis, minX, maxX, portrait.YAxis, minY, maxY)
	return sb.String()
}
