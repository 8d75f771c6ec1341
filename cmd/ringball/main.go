package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/ringball/internal/audio"
	"github.com/san-kum/ringball/internal/config"
	"github.com/san-kum/ringball/internal/engine"
	"github.com/san-kum/ringball/internal/storage"
	"github.com/san-kum/ringball/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	seed       int64
	withAudio  bool
	// headless runs
	frames       int
	outFile      string
	format       string
	exportFormat string
	recordGIF    bool
	saveRun      bool
	setParams    []string
	// analysis
	xAxis string
	yAxis string
	// sweeps and search
	paramMin   float64
	paramMax   float64
	numSteps   int
	perturb    float64
	epsilon    float64
	transient  int
	metricName string
	maximize   bool
	gridParams []string
	numTrials  int
	// frontends
	listenAddr string
	menu       bool
)

// main registers the commands and runs the terminal UI when none is given.
func main() {
	rootCmd := &cobra.Command{
		Use:          "ringball",
		Short:        "a ball that grows every time it hits the wall",
		SilenceUsage: true,
		RunE:         runTUIMenu,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default from config)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "physics preset")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "colour seed (0: config or clock)")
	rootCmd.PersistentFlags().BoolVar(&withAudio, "audio", false, "play a note on every collision")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "run the simulation in the terminal",
		RunE:  runTUI,
	}

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run the simulation in a window",
		RunE:  runGUI,
	}
	guiCmd.Flags().BoolVar(&menu, "menu", false, "start at the preset menu")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the simulation over http and websocket",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (default from config)")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "run headless and write the final frame",
		RunE:  runRender,
	}
	addRunFlags(renderCmd)
	renderCmd.Flags().StringVarP(&outFile, "out", "o", "frame.png", "output file")
	renderCmd.Flags().StringVar(&format, "format", "", "png or svg (default from --out)")
	renderCmd.Flags().BoolVar(&recordGIF, "gif", false, "also record a GIF")
	renderCmd.Flags().BoolVar(&saveRun, "save", false, "save samples and recording to the data dir")

	statsCmd := &cobra.Command{
		Use:   "stats [run_id]",
		Short: "summarise a saved run, or a fresh headless one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runStats,
	}
	addRunFlags(statsCmd)

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot radius, speed and collisions of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata (json) or samples (csv)",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "json or csv")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list physics presets",
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage config files",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the default config",
		Args:  cobra.MaximumNArgs(1),
		RunE:  configInit,
	}
	configCmd.AddCommand(configInitCmd)

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spectrum, impact return map and phase portrait of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&xAxis, "x-axis", "x", "portrait x axis")
	analyzeCmd.Flags().StringVar(&yAxis, "y-axis", "y", "portrait y axis")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "sweep one physics param",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	addRangeFlags(sweepCmd)

	montecarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "repeat a run with jittered params",
		RunE:  runMonteCarlo,
	}
	addRunFlags(montecarloCmd)
	montecarloCmd.Flags().IntVar(&numTrials, "trials", 20, "number of trials")
	montecarloCmd.Flags().Float64Var(&perturb, "perturb", 0.1, "relative jitter per param")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search physics params on a metric",
		RunE:  runTune,
	}
	addRunFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&gridParams, "grid", nil, "name=lo:hi:n, repeatable")
	tuneCmd.Flags().StringVar(&metricName, "metric", "collisions", "metric to optimise")
	tuneCmd.Flags().BoolVar(&maximize, "max", false, "maximise instead of minimise")

	sensitivityCmd := &cobra.Command{
		Use:   "sensitivity [param]",
		Short: "divergence rate of two runs with a nudged param",
		Args:  cobra.ExactArgs(1),
		RunE:  runSensitivity,
	}
	addRunFlags(sensitivityCmd)
	sensitivityCmd.Flags().Float64Var(&epsilon, "eps", 1e-6, "nudge")

	bifurcationCmd := &cobra.Command{
		Use:   "bifurcation [param]",
		Short: "impact angles across a param sweep",
		Args:  cobra.ExactArgs(1),
		RunE:  runBifurcation,
	}
	addRunFlags(bifurcationCmd)
	addRangeFlags(bifurcationCmd)
	bifurcationCmd.Flags().IntVar(&transient, "transient", 5, "collisions to skip")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark headless frames",
		RunE:  runBench,
	}

	rootCmd.AddCommand(tuiCmd, guiCmd, serveCmd, renderCmd, statsCmd, plotCmd, listCmd, exportCmd,
		presetsCmd, configCmd, analyzeCmd, scenarioCmd, sweepCmd, montecarloCmd, tuneCmd,
		sensitivityCmd, bifurcationCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&frames, "frames", 600, "frames to simulate")
	cmd.Flags().StringArrayVar(&setParams, "set", nil, "param override name=value, repeatable")
}

func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&paramMin, "min", 0, "first value")
	cmd.Flags().Float64Var(&paramMax, "max", 0.1, "last value")
	cmd.Flags().IntVar(&numSteps, "steps", 5, "number of values")
}

// loadConfig builds the effective config: file or defaults, then .env and
// environment, then the preset and command line flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	config.ApplyEnv(cfg)

	if preset != "" {
		p, ok := config.Presets[preset]
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg.Physics = p
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if withAudio {
		cfg.Audio = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseAssignments reads name=value pairs.
func parseAssignments(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("bad assignment %q, want name=value", pair)
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("bad value in %q: %w", pair, err)
		}
		out[name] = v
	}
	return out, nil
}

// parseGrid reads name=lo:hi:n.
func parseGrid(arg string) (string, float64, float64, int, error) {
	name, rest, ok := strings.Cut(arg, "=")
	if !ok || name == "" {
		return "", 0, 0, 0, fmt.Errorf("bad grid %q, want name=lo:hi:n", arg)
	}
	parts := strings.Split(rest, ":")
	if len(parts) != 3 {
		return "", 0, 0, 0, fmt.Errorf("bad grid %q, want name=lo:hi:n", arg)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", 0, 0, 0, fmt.Errorf("bad grid %q: %w", arg, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", 0, 0, 0, fmt.Errorf("bad grid %q: %w", arg, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", 0, 0, 0, fmt.Errorf("bad grid %q: count must be a positive integer", arg)
	}
	return name, lo, hi, n, nil
}

// engineOptions starts audio when asked. The returned func releases it.
func engineOptions(cfg *config.Config) ([]engine.Option, func()) {
	if !cfg.Audio {
		return nil, func() {}
	}
	pluck := audio.NewPluck()
	if err := pluck.Start(); err != nil {
		log.Printf("[AUDIO] disabled: %v", err)
		return nil, func() {}
	}
	return []engine.Option{engine.WithNotifier(pluck)}, pluck.Stop
}

func openStore(cfg *config.Config) *storage.Store {
	return storage.New(cfg.DataDir)
}

func runTUIMenu(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts, release := engineOptions(cfg)
	defer release()
	return viz.RunInteractive(cfg, openStore(cfg), opts...)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts, release := engineOptions(cfg)
	defer release()
	return viz.Run(cfg, preset, openStore(cfg), opts...)
}
