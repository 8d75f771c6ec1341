package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/ringball/internal/analysis"
	"github.com/san-kum/ringball/internal/automation"
	"github.com/san-kum/ringball/internal/config"
	"github.com/san-kum/ringball/internal/engine"
	"github.com/san-kum/ringball/internal/experiment"
	"github.com/san-kum/ringball/internal/gui"
	"github.com/san-kum/ringball/internal/metrics"
	"github.com/san-kum/ringball/internal/optim"
	"github.com/san-kum/ringball/internal/storage"
	"github.com/san-kum/ringball/internal/web"
)

func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts, release := engineOptions(cfg)
	defer release()
	if menu {
		return gui.RunInteractive(cfg, openStore(cfg), opts...)
	}
	return gui.Run(cfg, preset, openStore(cfg), opts...)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Listen = listenAddr
	}
	opts, release := engineOptions(cfg)
	defer release()

	srv, err := web.NewServer(cfg, preset, openStore(cfg), opts...)
	if err != nil {
		return err
	}
	ctx, stop := interruptContext()
	defer stop()

	fmt.Printf("serving on http://%s\n", displayAddr(cfg.Listen))
	err = srv.ListenAndServe(ctx, cfg.Listen)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}

// headless runs frames of cfg with the --set overrides.
func headless(ctx context.Context, cfg *config.Config, x experiment.Config) (*experiment.Result, error) {
	params, err := parseAssignments(setParams)
	if err != nil {
		return nil, err
	}
	x.Preset = preset
	x.Frames = frames
	x.Seed = cfg.Seed
	x.Params = params
	return experiment.New(cfg, x).Run(ctx)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(outFile))
	kind := format
	if kind == "" {
		kind = strings.TrimPrefix(ext, ".")
	}
	if kind != "png" && kind != "svg" {
		return fmt.Errorf("unsupported format %q (png or svg)", kind)
	}

	ctx, stop := interruptContext()
	defer stop()

	start := time.Now()
	res, err := headless(ctx, cfg, experiment.Config{Record: recordGIF, SVG: kind == "svg"})
	if err != nil {
		return err
	}

	switch kind {
	case "svg":
		err = os.WriteFile(outFile, res.SVG, 0644)
	default:
		err = writePNG(outFile, res)
	}
	if err != nil {
		return err
	}
	fmt.Printf("rendered %d frames in %v -> %s\n", res.Frames, time.Since(start).Round(time.Millisecond), outFile)

	if recordGIF {
		gifPath := strings.TrimSuffix(outFile, ext) + ".gif"
		if err := os.WriteFile(gifPath, res.Recording, 0644); err != nil {
			return err
		}
		fmt.Printf("recording: %s (%d bytes)\n", gifPath, len(res.Recording))
	}

	if saveRun {
		id, err := res.Save(openStore(cfg))
		if err != nil {
			return err
		}
		fmt.Printf("saved run: %s\n", id)
	}
	return nil
}

func writePNG(path string, res *experiment.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, res.Frame)
}

func printMetrics(values map[string]float64) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%.4f\n", name, values[name])
	}
	return w.Flush()
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var radius, speed []float64
	var values map[string]float64
	if len(args) == 1 {
		st := openStore(cfg)
		meta, err := st.Load(args[0])
		if err != nil {
			return err
		}
		samples, err := st.LoadSamples(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("run: %s (%d frames, %.2fs)\n\n", meta.ID, meta.Frames, meta.Elapsed)
		values = meta.Metrics
		for _, s := range samples {
			radius = append(radius, s.Radius)
			speed = append(speed, s.Speed())
		}
	} else {
		ctx, stop := interruptContext()
		defer stop()
		res, err := headless(ctx, cfg, experiment.Config{})
		if err != nil {
			return err
		}
		fmt.Printf("headless run: %d frames, %.2fs\n\n", res.Frames, res.Elapsed.Seconds())
		values = res.Metrics
		radius, speed = res.Series.Radius, res.Series.Speed
	}

	if err := printMetrics(values); err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(metrics.Plot(radius, 80, 10, "radius"))
	fmt.Println()
	fmt.Println(metrics.Plot(speed, 80, 10, "speed"))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := openStore(cfg)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d\n\n", len(samples))

	series := []struct {
		caption string
		value   func(storage.Sample) float64
	}{
		{"radius", func(s storage.Sample) float64 { return s.Radius }},
		{"speed", storage.Sample.Speed},
		{"collisions", func(s storage.Sample) float64 { return float64(s.Collisions) }},
	}
	for _, sr := range series {
		data := make([]float64, len(samples))
		for i, s := range samples {
			data[i] = sr.value(s)
		}
		fmt.Println(metrics.Plot(data, 80, 10, sr.caption))
		fmt.Println()
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	runs, err := openStore(cfg).List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tFRAMES\tELAPSED\tCOLLISIONS\tGIF")

	for _, run := range runs {
		gif := ""
		if run.HasRecording {
			gif = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2fs\t%.0f\t%s\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Elapsed,
			run.Metrics["collisions"],
			gif,
		)
	}

	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := openStore(cfg)
	runID := args[0]

	switch exportFormat {
	case "json":
		meta, err := st.Load(runID)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	case "csv":
		samples, err := st.LoadSamples(runID)
		if err != nil {
			return err
		}
		w := csv.NewWriter(os.Stdout)
		defer w.Flush()
		if err := w.Write([]string{"frame", "time", "x", "y", "vx", "vy", "radius", "speed", "collisions"}); err != nil {
			return err
		}
		ff := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
		for _, s := range samples {
			row := []string{
				strconv.Itoa(s.Frame), ff(s.Time),
				ff(s.X), ff(s.Y), ff(s.VX), ff(s.VY),
				ff(s.Radius), ff(s.Speed()),
				strconv.Itoa(s.Collisions),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unsupported format %q (json or csv)", exportFormat)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tGRAVITY\tVELOCITY_INCREASE\tVELOCITY_DECAY\tGROWTH_RATE")
	for _, name := range config.ListPresets() {
		p := config.Presets[name]
		fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%.4f\t%.3f\n", name, p.Gravity, p.VelocityIncrease, p.VelocityDecay, p.GrowthRate)
	}
	return w.Flush()
}

func configInit(cmd *cobra.Command, args []string) error {
	path := "ringball.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := openStore(cfg)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("analysis: %s\n\n", meta.ID)

	speed := make([]float64, len(samples))
	for i, s := range samples {
		speed[i] = s.Speed()
	}
	rate := 0.0
	if dt := samples[1].Time - samples[0].Time; dt > 0 {
		rate = 1 / dt
	}

	ps := analysis.PowerSpectrum(speed)
	if plotData := ps[1 : len(ps)/4+1]; len(plotData) > 1 {
		fmt.Println(asciigraph.Plot(plotData,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum (speed)"),
		))
		fmt.Println()
	}
	if period := analysis.DominantPeriod(speed, rate); period > 0 {
		fmt.Printf("dominant period: %.3f s (%.3f hz)\n\n", period, 1/period)
	}

	angles := analysis.ImpactAngles(samples, meta.Layout.BoundaryCenter())
	fmt.Printf("impacts: %d\n", len(angles))
	if out := analysis.PhasePortraitToASCII(analysis.ReturnMap(angles), 60, 16); out != "" {
		fmt.Println("impact return map:")
		fmt.Println(out)
	}

	portrait, err := analysis.GeneratePhasePortrait(samples, xAxis, yAxis)
	if err != nil {
		return fmt.Errorf("%w (axes: %v)", err, analysis.AxisNames())
	}
	fmt.Printf("%s vs %s:\n", yAxis, xAxis)
	fmt.Println(analysis.PhasePortraitToASCII(portrait, 60, 20))
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	ctx, stop := interruptContext()
	defer stop()

	fmt.Printf("scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Printf("%s\n", scenario.Description)
	}
	results, err := automation.RunScenario(ctx, scenario, cfg, openStore(cfg))
	printSteps(results)
	return err
}

func printSteps(results []automation.StepResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tPRESET\tFRAMES\tCOLLISIONS\tPEAK_SPEED\tFINAL_RADIUS\tRUN")
	for i, r := range results {
		m := r.Result.Metrics
		fmt.Fprintf(w, "%d\t%s\t%d\t%.0f\t%.2f\t%.2f\t%s\n",
			i+1, r.Step.Preset, r.Result.Frames, m["collisions"], m["peak_speed"], m["final_radius"], r.RunID)
	}
	w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applySet(cfg); err != nil {
		return err
	}
	ctx, stop := interruptContext()
	defer stop()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		ParamName: args[0],
		ParamMin:  paramMin,
		ParamMax:  paramMax,
		NumSteps:  numSteps,
		Frames:    frames,
		Seed:      cfg.Seed,
	}, cfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tCOLLISIONS\tPEAK_SPEED\tFINAL_RADIUS\tCONTAINMENT\n", strings.ToUpper(args[0]))
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%.0f\t%.2f\t%.2f\t%.3f\n", r.ParamValue, r.Collisions, r.PeakSpeed, r.FinalRadius, r.Containment)
	}
	return w.Flush()
}

// applySet folds the --set overrides into the config physics.
func applySet(cfg *config.Config) error {
	params, err := parseAssignments(setParams)
	if err != nil {
		return err
	}
	for name, v := range params {
		switch name {
		case engine.ParamGravity:
			cfg.Physics.Gravity = v
		case engine.ParamVelocityIncrease:
			cfg.Physics.VelocityIncrease = v
		case engine.ParamVelocityDecay:
			cfg.Physics.VelocityDecay = v
		case engine.ParamGrowthRate:
			cfg.Physics.GrowthRate = v
		default:
			return fmt.Errorf("unknown param %q", name)
		}
	}
	return nil
}

func physicsParams(p config.PhysicsConfig) map[string]float64 {
	return map[string]float64{
		engine.ParamGravity:          p.Gravity,
		engine.ParamVelocityIncrease: p.VelocityIncrease,
		engine.ParamVelocityDecay:    p.VelocityDecay,
		engine.ParamGrowthRate:       p.GrowthRate,
	}
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applySet(cfg); err != nil {
		return err
	}
	ctx, stop := interruptContext()
	defer stop()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Params:       physicsParams(cfg.Physics),
		Perturbation: perturb,
		NumTrials:    numTrials,
		Frames:       frames,
		Seed:         cfg.Seed,
	}, cfg)
	if err != nil {
		return err
	}

	contained, escaped := automation.MonteCarloStats(results)
	fmt.Printf("trials: %d  contained: %d  escaped: %d\n", len(results), contained, escaped)
	collisions := make([]float64, len(results))
	for i, r := range results {
		collisions[i] = r.Metrics["collisions"]
	}
	fmt.Println(metrics.Plot(collisions, 60, 8, "collisions per trial"))
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(gridParams) == 0 {
		return fmt.Errorf("at least one --grid name=lo:hi:n is required")
	}
	base, err := parseAssignments(setParams)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(gridParams))
	ranges := make([][]float64, 0, len(gridParams))
	for _, g := range gridParams {
		name, lo, hi, n, err := parseGrid(g)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, optim.Linspace(lo, hi, n))
	}

	goal := optim.Minimize
	if maximize {
		goal = optim.Maximize
	}
	search := optim.NewGridSearch(names, ranges, goal)

	ctx, stop := interruptContext()
	defer stop()

	build := func(p map[string]float64) (*experiment.Experiment, error) {
		params := make(map[string]float64, len(base)+len(p))
		for k, v := range base {
			params[k] = v
		}
		for k, v := range p {
			params[k] = v
		}
		return experiment.New(cfg, experiment.Config{
			Preset: preset,
			Frames: frames,
			Seed:   cfg.Seed,
			Params: params,
		}), nil
	}
	best, score, err := search.Search(ctx, build, metricName)
	if err != nil {
		return err
	}

	fmt.Printf("best %s: %.4f\n", metricName, score)
	for _, name := range names {
		fmt.Printf("  %s = %.4f\n", name, best[name])
	}
	return nil
}

func runSensitivity(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	params, err := parseAssignments(setParams)
	if err != nil {
		return err
	}
	ctx, stop := interruptContext()
	defer stop()

	rate, err := analysis.Sensitivity(ctx, cfg, experiment.Config{
		Preset: preset,
		Frames: frames,
		Seed:   cfg.Seed,
		Params: params,
	}, args[0], epsilon)
	if err != nil {
		return err
	}

	fmt.Printf("divergence rate (%s ± %g): %.4f /s\n", args[0], epsilon, rate)
	if rate > 0 {
		fmt.Println("small changes grow: the motion is sensitive to this param")
	} else {
		fmt.Println("no exponential divergence detected")
	}
	return nil
}

func runBifurcation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	params, err := parseAssignments(setParams)
	if err != nil {
		return err
	}
	ctx, stop := interruptContext()
	defer stop()

	points, err := analysis.BifurcationDiagram(ctx, cfg, experiment.Config{
		Preset: preset,
		Frames: frames,
		Seed:   cfg.Seed,
		Params: params,
	}, args[0], optim.Linspace(paramMin, paramMax, numSteps), transient)
	if err != nil {
		return err
	}

	out := analysis.PhasePortraitToASCII(analysis.Portrait(points, args[0]), 70, 20)
	if out == "" {
		fmt.Println("no impacts after the transient; try more --frames")
		return nil
	}
	fmt.Println(out)
	return nil
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %dx%d canvas\n\n", cfg.Canvas.Width, cfg.Canvas.Height)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FRAMES\tRECORD\tTIME\tFRAMES/SEC")

	for _, n := range []int{60, 300, 1200} {
		for _, rec := range []bool{false, true} {
			start := time.Now()
			res, err := experiment.New(cfg, experiment.Config{Frames: n, Seed: 42, Record: rec}).Run(context.Background())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)
			fmt.Fprintf(w, "%d\t%v\t%v\t%.0f\n",
				res.Frames, rec, elapsed.Round(time.Millisecond), float64(res.Frames)/elapsed.Seconds())
		}
	}

	return w.Flush()
}
