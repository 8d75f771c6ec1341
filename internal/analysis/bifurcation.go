package analysis

import (
	"context"

	"github.com/san-kum/ringball/internal/config"
	"github.com/san-kum/ringball/internal/experiment"
)

// BifurcationPoint is the set of impact angles one param value settles on.
type BifurcationPoint struct {
	Param  float64
	Angles []float64
}

// BifurcationDiagram runs cfg once per value of param and keeps the impact
// angles after the first transient collisions.
func BifurcationDiagram(ctx context.Context, base *config.Config, cfg experiment.Config, param string, values []float64, transient int) ([]BifurcationPoint, error) {
	cfg.SampleEvery = 1
	cfg.Record = false
	points := make([]BifurcationPoint, 0, len(values))

	for _, v := range values {
		params := make(map[string]float64, len(cfg.Params)+1)
		for k, x := range cfg.Params {
			params[k] = x
		}
		params[param] = v
		run := cfg
		run.Params = params

		res, err := experiment.New(base, run).Run(ctx)
		if err != nil {
			return points, err
		}
		angles := ImpactAngles(res.Samples, res.Layout.BoundaryCenter())
		if transient < len(angles) {
			angles = angles[transient:]
		} else {
			angles = nil
		}
		points = append(points, BifurcationPoint{Param: v, Angles: angles})
	}
	return points, nil
}

// Portrait flattens a diagram for PhasePortraitToASCII.
func Portrait(points []BifurcationPoint, param string) *PhasePortrait2D {
	portrait := &PhasePortrait2D{XAxis: param, YAxis: "impact angle"}
	for _, p := range points {
		for _, a := range p.Angles {
			portrait.Points = append(portrait.Points, Point{X: p.Param, Y: a})
		}
	}
	return portrait
}
