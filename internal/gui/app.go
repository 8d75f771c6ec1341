package gui

import (
	"fmt"
	"log"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/ringball/internal/config"
	"github.com/san-kum/ringball/internal/dynamo"
	"github.com/san-kum/ringball/internal/engine"
	"github.com/san-kum/ringball/internal/metrics"
	"github.com/san-kum/ringball/internal/palette"
	"github.com/san-kum/ringball/internal/storage"
)

// Theme Colors (Monochrome Hyper-Minimalist)
var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColRec     = rl.NewColor(230, 60, 60, 255)
)

const (
	viewportHeight = 900
	panelWidth     = 340
	margin         = 30
)

type recording struct {
	blob []byte
	err  error
}

// App is the desktop front end: a preset menu, a parameter screen and the
// live simulation with a side panel.
type App struct {
	Base     *config.Config
	Cfg      *config.Config
	Store    *storage.Store
	Opts     []engine.Option
	Presets  []string
	Selected string
	Cursor   int
	ParamSel int
	InMenu   bool
	InConfig bool

	Eng       *engine.Engine
	Win       *Window
	Series    *metrics.Series
	Stats     metrics.Set
	Collector *storage.Collector
	Status    string

	recDone   chan recording
	recording bool
}

var paramKeys = []string{
	engine.ParamGravity, engine.ParamVelocityIncrease, engine.ParamVelocityDecay, engine.ParamGrowthRate,
}

var paramSteps = []float64{0.05, 0.01, 0.0005, 0.005}

// initWindow opens a window sized for the viewport plus the side panel.
func initWindow(win *Window) {
	vw, _ := win.Viewport()
	rl.InitWindow(vw+panelWidth+2*margin, viewportHeight+2*margin, "ringball")
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

// NewApp creates an App. With interactive false it goes straight to the
// simulation using base as is once Start is called.
func NewApp(base *config.Config, preset string, interactive bool, store *storage.Store, opts ...engine.Option) *App {
	a := &App{
		Base:     base,
		Cfg:      base,
		Store:    store,
		Opts:     opts,
		Presets:  config.ListPresets(),
		Selected: preset,
		InMenu:   interactive,
		recDone:  make(chan recording, 1),
	}
	a.Win = NewWindow(base.Canvas.Width, base.Canvas.Height, viewportHeight)
	a.Win.Origin = dynamo.V(margin, margin)
	return a
}

// Start opens the window and, outside the menu, builds the engine. The
// engine draws on construction, so the window has to exist first.
func (a *App) Start() error {
	initWindow(a.Win)
	if a.InMenu {
		return nil
	}
	if err := a.load(); err != nil {
		rl.CloseWindow()
		return err
	}
	return nil
}

// load builds a fresh engine for Cfg and starts it.
func (a *App) load() error {
	seed := a.Cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	opts := append([]engine.Option{
		engine.WithLayout(a.Cfg.Layout()),
		engine.WithParams(a.Cfg.Params()),
		engine.WithStyle(a.Cfg.Style()),
		engine.WithColors(palette.NewRandomSource(seed)),
	}, a.Opts...)
	eng, err := engine.New(a.Win, a.Cfg.Overlays, opts...)
	if err != nil {
		return err
	}
	a.Eng = eng
	a.Series = metrics.NewSeries(400)
	a.Stats = metrics.Standard(a.Cfg.Layout())
	a.Collector = storage.NewCollector(1)
	eng.AddObserver(a.Series)
	eng.AddObserver(a.Stats)
	eng.AddObserver(a.Collector)
	eng.Start()
	return nil
}

// RunInteractive opens the window on the preset menu and blocks until it is
// closed.
func RunInteractive(base *config.Config, store *storage.Store, opts ...engine.Option) error {
	a := NewApp(base, "", true, store, opts...)
	if err := a.Start(); err != nil {
		return err
	}
	defer rl.CloseWindow()
	a.RunLoop()
	return nil
}

// Run opens the window straight on the simulation.
func Run(cfg *config.Config, preset string, store *storage.Store, opts ...engine.Option) error {
	a := NewApp(cfg, preset, false, store, opts...)
	if err := a.Start(); err != nil {
		return err
	}
	defer rl.CloseWindow()
	a.RunLoop()
	return nil
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if a.Update() {
			break
		}
	}
	if a.recording {
		a.Eng.StopRecording()
		// let the encoder hand its result over before the window goes
		a.pollRecordingWait(5 * time.Second)
	}
}

// Update handles one frame of input and drawing. It reports whether the
// user asked to quit.
func (a *App) Update() bool {
	if rl.IsKeyPressed(rl.KeyQ) {
		return true
	}
	switch {
	case a.InMenu:
		a.updateMenu()
	case a.InConfig:
		a.updateConfig()
	}

	rl.BeginDrawing()
	rl.ClearBackground(ColBg)
	switch {
	case a.InMenu:
		a.drawMenu()
	case a.InConfig:
		a.drawConfig()
	default:
		a.updateSim()
		a.DrawHUD()
	}
	rl.EndDrawing()
	return false
}

func (a *App) updateMenu() {
	if rl.IsKeyPressed(rl.KeyDown) || rl.IsKeyPressed(rl.KeyJ) {
		a.Cursor = min(a.Cursor+1, len(a.Presets)-1)
	}
	if rl.IsKeyPressed(rl.KeyUp) || rl.IsKeyPressed(rl.KeyK) {
		a.Cursor = max(a.Cursor-1, 0)
	}
	if rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeySpace) {
		a.Selected = a.Presets[a.Cursor]
		cfg := *a.Base
		cfg.Physics = config.Presets[a.Selected]
		a.Cfg = &cfg
		a.InMenu, a.InConfig, a.ParamSel = false, true, 0
	}
}

func (a *App) param(i int) *float64 {
	p := &a.Cfg.Physics
	return [...]*float64{&p.Gravity, &p.VelocityIncrease, &p.VelocityDecay, &p.GrowthRate}[i]
}

func (a *App) updateConfig() {
	if rl.IsKeyPressed(rl.KeyEscape) {
		a.InConfig, a.InMenu = false, true
		return
	}
	if rl.IsKeyPressed(rl.KeyEnter) {
		if err := a.load(); err != nil {
			a.Status = err.Error()
			return
		}
		a.InConfig = false
		return
	}
	if rl.IsKeyPressed(rl.KeyDown) || rl.IsKeyPressed(rl.KeyJ) {
		a.ParamSel = min(a.ParamSel+1, len(paramKeys)-1)
	}
	if rl.IsKeyPressed(rl.KeyUp) || rl.IsKeyPressed(rl.KeyK) {
		a.ParamSel = max(a.ParamSel-1, 0)
	}
	step := paramSteps[a.ParamSel]
	if rl.IsKeyDown(rl.KeyLeftShift) {
		step *= 10
	}
	if rl.IsKeyPressed(rl.KeyRight) || rl.IsKeyPressed(rl.KeyL) {
		*a.param(a.ParamSel) += step
	}
	if rl.IsKeyPressed(rl.KeyLeft) || rl.IsKeyPressed(rl.KeyH) {
		*a.param(a.ParamSel) -= step
	}
}

// updateSim feeds input to the engine and draws this frame's picture.
func (a *App) updateSim() {
	eng := a.Eng
	if rl.IsKeyPressed(rl.KeyEscape) {
		if a.recording {
			eng.StopRecording()
			a.recording = false
		}
		eng.Stop()
		a.InMenu = true
		return
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		if eng.IsRunning() {
			eng.Stop()
		} else {
			eng.Start()
		}
	}
	if rl.IsKeyPressed(rl.KeyR) {
		eng.Reset()
		a.Stats.Reset()
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		a.ParamSel = (a.ParamSel + 1) % len(paramKeys)
	}
	if rl.IsKeyPressed(rl.KeyUp) {
		a.nudge(1)
	}
	if rl.IsKeyPressed(rl.KeyDown) {
		a.nudge(-1)
	}
	if rl.IsKeyPressed(rl.KeyG) {
		a.toggleRecording()
	}
	a.pollRecording()

	drawn := false
	mouse := a.Win.ToWorld(rl.GetMousePosition())
	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		eng.HandleMouseDown(mouse.X, mouse.Y)
	}
	if eng.Dragging() && rl.IsMouseButtonDown(rl.MouseLeftButton) {
		drawn = eng.HandleMouseMove(mouse.X, mouse.Y)
	}
	if rl.IsMouseButtonReleased(rl.MouseLeftButton) {
		eng.HandleMouseUp()
	}

	if eng.Advance(time.Now()) > 0 {
		drawn = true
	}
	if !drawn {
		eng.Repaint()
	}
}

func (a *App) nudge(dir float64) {
	p := a.Eng.Params()
	values := []float64{p.Gravity, p.VelocityIncrease - 1, p.VelocityDecay, p.GrowthRate - 1}
	v := values[a.ParamSel] + dir*paramSteps[a.ParamSel]
	if err := a.Eng.SetParam(paramKeys[a.ParamSel], v); err != nil {
		a.Status = err.Error()
	}
}

func (a *App) toggleRecording() {
	if a.recording {
		a.recording = false
		a.Status = "encoding..."
		if err := a.Eng.StopRecording(); err != nil {
			a.Status = err.Error()
		}
		return
	}
	ch := a.recDone
	sink := dynamo.RecordingFunc(func(blob []byte, err error) { ch <- recording{blob, err} })
	if err := a.Eng.StartRecording(sink, nil); err != nil {
		a.Status = err.Error()
		return
	}
	a.recording = true
	a.Status = "recording"
}

// pollRecording saves a finished recording without blocking the frame.
func (a *App) pollRecording() {
	select {
	case r := <-a.recDone:
		a.saveRecording(r)
	default:
	}
}

func (a *App) pollRecordingWait(d time.Duration) {
	select {
	case r := <-a.recDone:
		a.saveRecording(r)
	case <-time.After(d):
		log.Printf("[REC] gave up waiting for the encoder")
	}
}

func (a *App) saveRecording(r recording) {
	if r.err != nil {
		a.Status = "recording failed: " + r.err.Error()
		return
	}
	if a.Store == nil {
		a.Status = fmt.Sprintf("recorded %d bytes", len(r.blob))
		return
	}
	snap := a.Eng.Snapshot()
	id, err := a.Store.Save(storage.RunMetadata{
		Seed:    a.Cfg.Seed,
		Preset:  a.Selected,
		Frames:  snap.Frame,
		Elapsed: snap.Elapsed.Seconds(),
		Params:  snap.Params,
		Layout:  a.Cfg.Layout(),
		Metrics: a.Stats.Values(),
	}, a.Collector.Samples(), r.blob)
	if err != nil {
		log.Printf("[REC] save failed: %v", err)
		a.Status = "save failed"
		return
	}
	a.Status = "saved " + id
}

func (a *App) panelX() int {
	vw, _ := a.Win.Viewport()
	return int(vw) + 2*margin
}

func (a *App) DrawHUD() {
	x := a.panelX()
	drawText("ringball", x, margin, 24, ColSelect)
	if a.Selected != "" {
		drawText(":: "+a.Selected, x+120, margin+4, 16, ColText)
	}

	status, col := "STOPPED", ColTextDim
	switch {
	case a.Eng.Dragging():
		status, col = "DRAGGING", ColAccent
	case a.Eng.IsRunning():
		status, col = "RUNNING", ColSelect
	}
	drawText(status, x, margin+40, 16, col)
	if a.recording {
		drawText("REC", x+120, margin+40, 16, ColRec)
	}

	snap := a.Eng.Snapshot()
	y := margin + 80
	row := func(label, value string) {
		drawText(label, x, y, 14, ColTextDim)
		drawText(value, x+110, y, 14, ColText)
		y += 22
	}
	row("time", fmt.Sprintf("%.2fs", snap.Elapsed.Seconds()))
	row("frame", fmt.Sprintf("%d", snap.Frame))
	row("collisions", fmt.Sprintf("%d", snap.Collisions))
	row("radius", fmt.Sprintf("%.2f", snap.Ball.Radius))
	row("speed", fmt.Sprintf("%.2f", snap.Ball.Speed()))
	if snap.Err != nil {
		drawText(snap.Err.Error(), x, y, 14, ColRec)
		y += 22
	}

	y += 16
	a.DrawTelemetry(x, y, panelWidth-40, 60)
	y += 90

	p := a.Eng.Params()
	values := []float64{p.Gravity, p.VelocityIncrease - 1, p.VelocityDecay, p.GrowthRate - 1}
	for i, key := range paramKeys {
		line := fmt.Sprintf("  %-18s %.4f", key, values[i])
		c := ColText
		if i == a.ParamSel {
			line, c = ">"+line[1:], ColSelect
		}
		drawText(line, x, y, 14, c)
		y += 22
	}

	if a.Status != "" {
		drawText(a.Status, x, y+16, 14, ColAccent)
	}
	_, vh := a.Win.Viewport()
	help := []string{"[SPACE] RUN/STOP  [R] RESET", "[TAB/ARROWS] TUNE  [G] RECORD", "[ESC] MENU  [Q] QUIT  MOUSE: DRAG"}
	for i, h := range help {
		drawText(h, x, int(vh)+margin-60+i*20, 12, ColTextDim)
	}
	drawText(fmt.Sprintf("%d FPS", rl.GetFPS()), x+panelWidth-80, margin, 14, ColTextDim)
}

func drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawText(text, int32(x), int32(y), int32(size), color)
}

// DrawTelemetry plots recent speed as a line strip.
func (a *App) DrawTelemetry(rectX, rectY, width, height int) {
	data := a.Series.Speed
	if len(data) < 2 {
		return
	}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		minVal, maxVal = min(minVal, v), max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(data))
	for i, val := range data {
		px := float32(rectX) + (float32(i)/float32(len(data)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}
	rl.DrawLineStrip(points, ColAccent)
	drawText(fmt.Sprintf("v %.2f", data[len(data)-1]), rectX, rectY+height+6, 12, ColText)
}

func (a *App) drawMenu() {
	drawText("ringball", 50, 50, 40, ColSelect)
	drawText("Select Preset", 50, 100, 16, ColTextDim)

	y := 160
	for i, name := range a.Presets {
		if i == a.Cursor {
			drawText("> "+name, 50, y, 20, ColSelect)
		} else {
			drawText("  "+name, 50, y, 20, ColText)
		}
		y += 28
	}
	drawText("ARROWS: NAVIGATE  ENTER: SELECT  Q: QUIT", 50, viewportHeight, 14, ColTextDim)
}

func (a *App) drawConfig() {
	drawText("ringball", 50, 50, 40, ColTextDim)
	drawText("configure", 240, 65, 20, ColSelect)
	drawText("Preset: "+strings.ToUpper(a.Selected), 50, 110, 16, ColAccent)

	y := 180
	for i, key := range paramKeys {
		val := *a.param(i)
		if i == a.ParamSel {
			drawText(fmt.Sprintf("> %-18s %.4f", key, val), 50, y, 20, ColSelect)
		} else {
			drawText(fmt.Sprintf("  %-18s %.4f", key, val), 50, y, 20, ColText)
		}
		y += 28
	}
	if a.Status != "" {
		drawText(a.Status, 50, y+20, 16, ColRec)
	}
	drawText("ARROWS: ADJUST  SHIFT: x10  ENTER: RUN  ESC: BACK", 50, viewportHeight, 14, ColTextDim)
}
