package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/ringball/internal/config"
	"github.com/san-kum/ringball/internal/storage"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Canvas = config.CanvasConfig{Width: 200, Height: 200}
	cfg.Boundary.Radius = 80
	cfg.Ball.InitialRadius = 10
	cfg.Overlays = nil
	return cfg
}

const scenarioYAML = `
name: growth
description: compare two tunings
steps:
  - preset: classic
    frames: 40
    seed: 1
  - preset: balloon
    frames: 40
    seed: 1
    params:
      gravity: 0.1
    save_as: run_balloon
`

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	if err := os.WriteFile(path, []byte(scenarioYAML), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Name != "growth" || len(s.Steps) != 2 {
		t.Fatalf("scenario = %+v", s)
	}
	if s.Steps[1].Params["gravity"] != 0.1 || s.Steps[1].SaveAs != "run_balloon" {
		t.Errorf("step 2 = %+v", s.Steps[1])
	}

	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}
	if _, err := ParseScenario([]byte("name: empty\n")); err == nil {
		t.Error("scenario without steps accepted")
	}
	if _, err := ParseScenario([]byte("steps: [")); err == nil {
		t.Error("bad yaml accepted")
	}
}

func TestRunScenario(t *testing.T) {
	s, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	store := storage.New(t.TempDir())
	results, err := RunScenario(context.Background(), s, testConfig(), store)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].RunID != "" {
		t.Errorf("unsaved step got id %q", results[0].RunID)
	}
	if results[1].RunID != "run_balloon" {
		t.Errorf("saved id = %q", results[1].RunID)
	}
	if got := results[1].Result.Params.Gravity; got != 0.1 {
		t.Errorf("gravity override = %v", got)
	}

	meta, err := store.Load("run_balloon")
	if err != nil {
		t.Fatal(err)
	}
	if meta.Preset != "balloon" || meta.Frames != 40 {
		t.Errorf("metadata = %+v", meta)
	}
}

func TestRunScenario_Errors(t *testing.T) {
	bad := &Scenario{Steps: []ScenarioStep{{Frames: 5}, {Preset: "nope"}}}
	results, err := RunScenario(context.Background(), bad, testConfig(), nil)
	if err == nil {
		t.Fatal("unknown preset accepted")
	}
	if len(results) != 1 {
		t.Errorf("results before failure = %d, want 1", len(results))
	}

	unsaved := &Scenario{Steps: []ScenarioStep{{Frames: 5, SaveAs: "run_x"}}}
	if _, err := RunScenario(context.Background(), unsaved, testConfig(), nil); err == nil {
		t.Error("save_as without store accepted")
	}
}

func TestRunSweep(t *testing.T) {
	sweep := &ParameterSweep{
		ParamName: "growth_rate",
		ParamMin:  0,
		ParamMax:  0.1,
		NumSteps:  3,
		Frames:    200,
		Seed:      1,
	}
	results, err := RunSweep(context.Background(), sweep, testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	if results[0].FinalRadius != 10 {
		t.Errorf("no growth gave radius %v, want 10", results[0].FinalRadius)
	}
	if results[2].FinalRadius <= results[0].FinalRadius {
		t.Errorf("growth did not increase radius: %v", results)
	}
	for _, r := range results {
		if r.Containment != 1 {
			t.Errorf("%v escaped: containment %v", r.ParamValue, r.Containment)
		}
	}

	if _, err := RunSweep(context.Background(), &ParameterSweep{}, testConfig()); err == nil {
		t.Error("empty sweep accepted")
	}
}

func TestRunMonteCarlo(t *testing.T) {
	cfg := &MonteCarloConfig{
		Params:       map[string]float64{"gravity": 0.2, "growth_rate": 0.02},
		Perturbation: 0.5,
		NumTrials:    4,
		Frames:       100,
		Seed:         9,
	}
	results, err := RunMonteCarlo(context.Background(), cfg, testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("results = %d", len(results))
	}
	for _, r := range results {
		g := r.Params["gravity"]
		if g < 0.1 || g > 0.3 {
			t.Errorf("trial %d gravity %v outside ±50%%", r.TrialID, g)
		}
	}
	contained, escaped := MonteCarloStats(results)
	if contained+escaped != 4 {
		t.Errorf("stats = %d+%d", contained, escaped)
	}
}
