// Package automation runs scripted batches of headless runs described in
// YAML.
package automation

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ringball/internal/config"
	"github.com/san-kum/ringball/internal/experiment"
	"github.com/san-kum/ringball/internal/storage"
)

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run in a scenario. Params are in setter units,
// keyed by engine param name.
type ScenarioStep struct {
	Preset string             `yaml:"preset"`
	Frames int                `yaml:"frames"`
	Seed   int64              `yaml:"seed"`
	Params map[string]float64 `yaml:"params"`
	Record bool               `yaml:"record"`
	SaveAs string             `yaml:"save_as"`
}

// StepResult pairs a step with what it produced. RunID is empty unless
// the step was saved.
type StepResult struct {
	Step   ScenarioStep
	RunID  string
	Result *experiment.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("automation: %w", err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("automation: scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// RunScenario executes every step against base in order and saves the
// steps that name a save_as id. It stops at the first failing step.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, store *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		log.Printf("step %d/%d: preset=%q frames=%d", i+1, len(scenario.Steps), step.Preset, step.Frames)

		exp := experiment.New(base, experiment.Config{
			Preset: step.Preset,
			Frames: step.Frames,
			Seed:   step.Seed,
			Params: step.Params,
			Record: step.Record,
		})
		res, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		out := StepResult{Step: step, Result: res}
		if step.SaveAs != "" {
			if store == nil {
				return results, fmt.Errorf("step %d: save_as %q without a store", i+1, step.SaveAs)
			}
			meta := res.Metadata()
			meta.ID = step.SaveAs
			if err := store.Init(); err != nil {
				return results, err
			}
			id, err := store.Save(meta, res.Samples, res.Recording)
			if err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
			out.RunID = id
		}
		results = append(results, out)
	}

	return results, nil
}

// ParameterSweep varies one param across an evenly spaced range.
type ParameterSweep struct {
	Preset    string
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Frames    int
	Seed      int64
}

// SweepResult summarises one sweep point.
type SweepResult struct {
	ParamValue  float64
	Collisions  float64
	PeakSpeed   float64
	FinalRadius float64
	Containment float64
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, base *config.Config) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("automation: sweep needs at least one step")
	}
	results := make([]SweepResult, 0, sweep.NumSteps)

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		exp := experiment.New(base, experiment.Config{
			Preset: sweep.Preset,
			Frames: sweep.Frames,
			Seed:   sweep.Seed,
			Params: map[string]float64{sweep.ParamName: paramVal},
		})
		res, err := exp.Run(ctx)
		if err != nil {
			return results, err
		}

		results = append(results, SweepResult{
			ParamValue:  paramVal,
			Collisions:  res.Metrics["collisions"],
			PeakSpeed:   res.Metrics["peak_speed"],
			FinalRadius: res.Metrics["final_radius"],
			Containment: res.Metrics["containment"],
		})
	}

	return results, nil
}

// MonteCarloConfig repeats a run with every param in Params jittered by up
// to ±Perturbation of its value.
type MonteCarloConfig struct {
	Preset       string
	Params       map[string]float64
	Perturbation float64
	NumTrials    int
	Frames       int
	Seed         int64
}

type MonteCarloResult struct {
	TrialID int
	Params  map[string]float64
	Metrics map[string]float64
	// Contained is false when the ball ever left the boundary.
	Contained bool
}

func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, base *config.Config) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	names := make([]string, 0, len(cfg.Params))
	for name := range cfg.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	for trial := 0; trial < cfg.NumTrials; trial++ {
		params := make(map[string]float64, len(names))
		for _, name := range names {
			v := cfg.Params[name]
			params[name] = v + (rng.Float64()-0.5)*2*cfg.Perturbation*v
		}

		exp := experiment.New(base, experiment.Config{
			Preset: cfg.Preset,
			Frames: cfg.Frames,
			Seed:   cfg.Seed + int64(trial),
			Params: params,
		})
		res, err := exp.Run(ctx)
		if err != nil {
			return results, err
		}

		results = append(results, MonteCarloResult{
			TrialID:   trial,
			Params:    params,
			Metrics:   res.Metrics,
			Contained: res.Metrics["containment"] == 1,
		})

		if (trial+1)%10 == 0 {
			log.Printf("monte carlo: %d/%d trials complete", trial+1, cfg.NumTrials)
		}
	}

	return results, nil
}

// MonteCarloStats counts contained and escaped trials.
func MonteCarloStats(results []MonteCarloResult) (contained int, escaped int) {
	for _, r := range results {
		if r.Contained {
			contained++
		} else {
			escaped++
		}
	}
	return
}
