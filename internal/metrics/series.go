package metrics

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ringball/internal/sim"
)

// Series keeps the radius and speed of every frame, thinned to at most
// limit points by dropping every other sample when full.
type Series struct {
	limit  int
	stride int
	seen   int
	Radius []float64
	Speed  []float64
}

func NewSeries(limit int) *Series {
	if limit < 2 {
		limit = 2
	}
	return &Series{limit: limit, stride: 1}
}

func (s *Series) OnStep(snap sim.Snapshot) {
	s.seen++
	if s.seen%s.stride != 0 {
		return
	}
	s.Radius = append(s.Radius, snap.Ball.Radius)
	s.Speed = append(s.Speed, snap.Ball.Speed())
	if len(s.Radius) >= s.limit {
		s.Radius = halve(s.Radius)
		s.Speed = halve(s.Speed)
		s.stride *= 2
	}
}

func halve(xs []float64) []float64 {
	out := xs[:0]
	for i := 0; i < len(xs); i += 2 {
		out = append(out, xs[i])
	}
	return out
}

func (s *Series) Len() int { return len(s.Radius) }

// Plot renders one series as an ASCII chart.
func Plot(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return fmt.Sprintf("%s: no data", caption)
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
