// Package metrics summarises a run frame by frame.
package metrics

import "github.com/san-kum/ringball/internal/sim"

type Metric interface {
	Name() string
	Observe(s sim.Snapshot)
	Value() float64
	Reset()
}

// Set fans snapshots out to several metrics. It is a sim.Observer.
type Set []Metric

func (ms Set) OnStep(s sim.Snapshot) {
	for _, m := range ms {
		m.Observe(s)
	}
}

func (ms Set) Values() map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

func (ms Set) Reset() {
	for _, m := range ms {
		m.Reset()
	}
}

// Standard is the set the CLI reports.
func Standard(layout sim.Layout) Set {
	return Set{
		NewCollisions(),
		NewCollisionRate(),
		NewMeanSpeed(),
		NewPeakSpeed(),
		NewFinalRadius(),
		NewContainment(layout, 1e-6),
	}
}
