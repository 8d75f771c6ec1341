// Package optim tunes physics params by exhaustive search over headless
// runs.
package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/ringball/internal/experiment"
)

type Goal int

const (
	Minimize Goal = iota
	Maximize
)

// BuildFunc returns the run to score for one grid point.
type BuildFunc func(params map[string]float64) (*experiment.Experiment, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	goal       Goal
}

func NewGridSearch(params []string, ranges [][]float64, goal Goal) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, goal: goal}
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// Search scores every combination of the ranges with metricName and
// returns the best params and score. Points whose run fails are skipped;
// Search fails only if none succeeded or ctx ended.
func (g *GridSearch) Search(ctx context.Context, build BuildFunc, metricName string) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("optim: %d params but %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	if g.goal == Maximize {
		best = math.Inf(-1)
	}
	var bestParams map[string]float64

	g.searchRecursive(ctx, 0, make(map[string]float64), build, metricName, &best, &bestParams)

	if err := ctx.Err(); err != nil {
		return bestParams, best, err
	}
	if bestParams == nil {
		return nil, best, fmt.Errorf("optim: no grid point produced %q", metricName)
	}
	return bestParams, best, nil
}

func (g *GridSearch) better(val, best float64) bool {
	if g.goal == Maximize {
		return val > best
	}
	return val < best
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build BuildFunc,
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) {
	if ctx.Err() != nil {
		return
	}
	if depth == len(g.paramNames) {
		exp, err := build(current)
		if err != nil {
			return
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return
		}

		val, ok := result.Metrics[metricName]
		if !ok || math.IsNaN(val) {
			return
		}
		if *bestParams == nil || g.better(val, *best) {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(ctx, depth+1, newParams, build, metricName, best, bestParams)
	}
}
