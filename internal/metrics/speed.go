package metrics

import (
	"math"

	"github.com/san-kum/ringball/internal/sim"
)

type MeanSpeed struct {
	name    string
	total   float64
	samples int
}

func NewMeanSpeed() *MeanSpeed {
	return &MeanSpeed{name: "mean_speed"}
}

func (m *MeanSpeed) Name() string { return m.name }

func (m *MeanSpeed) Observe(s sim.Snapshot) {
	m.total += s.Ball.Speed()
	m.samples++
}

func (m *MeanSpeed) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanSpeed) Reset() {
	m.total = 0
	m.samples = 0
}

type PeakSpeed struct {
	name string
	peak float64
}

func NewPeakSpeed() *PeakSpeed {
	return &PeakSpeed{name: "peak_speed"}
}

func (p *PeakSpeed) Name() string { return p.name }

func (p *PeakSpeed) Observe(s sim.Snapshot) {
	p.peak = math.Max(p.peak, s.Ball.Speed())
}

func (p *PeakSpeed) Value() float64 { return p.peak }
func (p *PeakSpeed) Reset()         { p.peak = 0 }

// FinalRadius reports the radius at the last observed frame.
type FinalRadius struct {
	name   string
	radius float64
}

func NewFinalRadius() *FinalRadius {
	return &FinalRadius{name: "final_radius"}
}

func (f *FinalRadius) Name() string           { return f.name }
func (f *FinalRadius) Observe(s sim.Snapshot) { f.radius = s.Ball.Radius }
func (f *FinalRadius) Value() float64         { return f.radius }
func (f *FinalRadius) Reset()                 { f.radius = 0 }
