package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/ringball/internal/config"
	"github.com/san-kum/ringball/internal/experiment"
	"github.com/san-kum/ringball/internal/storage"
)

// DivergenceRate fits the exponential growth rate, per second, of the
// distance between two trajectories. Only frames where the distance lies
// in (floor, saturation) count: before that the runs agree to rounding,
// after it the distance is bounded by the boundary.
func DivergenceRate(a, b []storage.Sample, floor, saturation float64) float64 {
	n := min(len(a), len(b))
	var sx, sy, sxx, sxy float64
	var count int
	for i := 0; i < n; i++ {
		d := math.Hypot(a[i].X-b[i].X, a[i].Y-b[i].Y)
		if d <= floor {
			continue
		}
		if d >= saturation {
			break
		}
		t, y := a[i].Time, math.Log(d)
		sx += t
		sy += y
		sxx += t * t
		sxy += t * y
		count++
	}
	if count < 2 {
		return 0
	}
	den := float64(count)*sxx - sx*sx
	if den == 0 {
		return 0
	}
	return (float64(count)*sxy - sx*sy) / den
}

// Sensitivity runs cfg twice, the second time with param nudged by eps,
// and returns the divergence rate of the two ball paths. A positive value
// means small tuning changes grow exponentially.
func Sensitivity(ctx context.Context, base *config.Config, cfg experiment.Config, param string, eps float64) (float64, error) {
	if eps == 0 {
		return 0, fmt.Errorf("analysis: perturbation must be non-zero")
	}
	cfg.SampleEvery = 1
	cfg.Record = false

	a, err := experiment.New(base, cfg).Run(ctx)
	if err != nil {
		return 0, err
	}
	v, ok := cfg.Params[param]
	if !ok {
		v = setterValue(a, param)
	}
	nudged := make(map[string]float64, len(cfg.Params)+1)
	for k, x := range cfg.Params {
		nudged[k] = x
	}
	nudged[param] = v + eps
	cfg.Params = nudged

	b, err := experiment.New(base, cfg).Run(ctx)
	if err != nil {
		return 0, err
	}
	return DivergenceRate(a.Samples, b.Samples, 1e-9, a.Layout.BoundaryRadius/10), nil
}

// setterValue reads param back from a run in the units SetParam takes.
func setterValue(r *experiment.Result, param string) float64 {
	switch param {
	case "gravity":
		return r.Params.Gravity
	case "velocity_increase":
		return r.Params.VelocityIncrease - 1
	case "velocity_decay":
		return r.Params.VelocityDecay
	case "growth_rate":
		return r.Params.GrowthRate - 1
	}
	return 0
}
