package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/ringball/internal/config"
	"github.com/san-kum/ringball/internal/dynamo"
	"github.com/san-kum/ringball/internal/engine"
	"github.com/san-kum/ringball/internal/metrics"
	"github.com/san-kum/ringball/internal/palette"
	"github.com/san-kum/ringball/internal/storage"
)

const (
	defaultCols = 60
	defaultRows = 26
)

type TickMsg time.Time

type recordingMsg struct {
	blob []byte
	err  error
}

// tunable is one parameter the panel can adjust, in setter units.
type tunable struct {
	name string
	step float64
	get  func(m *Model) float64
}

var tunables = []tunable{
	{engine.ParamGravity, 0.05, func(m *Model) float64 { return m.eng.Params().Gravity }},
	{engine.ParamVelocityIncrease, 0.01, func(m *Model) float64 { return m.eng.Params().VelocityIncrease - 1 }},
	{engine.ParamVelocityDecay, 0.0005, func(m *Model) float64 { return m.eng.Params().VelocityDecay }},
	{engine.ParamGrowthRate, 0.005, func(m *Model) float64 { return m.eng.Params().GrowthRate - 1 }},
}

// Model is the bubbletea front end: a braille view of the engine plus a
// stats panel. Every engine call happens inside Update, so the engine is
// only ever touched from the program goroutine.
type Model struct {
	eng       *engine.Engine
	surface   *Surface
	cfg       *config.Config
	preset    string
	store     *storage.Store
	series    *metrics.Series
	stats     metrics.Set
	collector *storage.Collector
	mirror    *mirror
	recDone   chan recordingMsg
	recording bool
	status    string
	theme     Theme
	selected  int
	showHelp  bool
	interval  time.Duration
}

// NewModel builds an engine for cfg on a braille surface and starts it.
func NewModel(cfg *config.Config, preset string, store *storage.Store, opts ...engine.Option) (*Model, error) {
	surface := NewSurface(cfg.Canvas.Width, cfg.Canvas.Height, defaultCols, defaultRows)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	base := []engine.Option{
		engine.WithLayout(cfg.Layout()),
		engine.WithParams(cfg.Params()),
		engine.WithStyle(cfg.Style()),
		engine.WithColors(palette.NewRandomSource(seed)),
	}
	eng, err := engine.New(surface, cfg.Overlays, append(base, opts...)...)
	if err != nil {
		return nil, err
	}

	m := &Model{
		eng:       eng,
		surface:   surface,
		cfg:       cfg,
		preset:    preset,
		store:     store,
		series:    metrics.NewSeries(240),
		stats:     metrics.Standard(cfg.Layout()),
		collector: storage.NewCollector(1),
		recDone:   make(chan recordingMsg, 1),
		theme:     ThemeCyberpunk,
		interval:  time.Second / time.Duration(max(cfg.FPS, 1)),
	}
	eng.AddObserver(m.series)
	eng.AddObserver(m.stats)
	eng.AddObserver(m.collector)
	m.mirror = newMirror(eng, cfg.Style())
	eng.AddObserver(m.mirror)
	eng.Start()
	return m, nil
}

func (m *Model) Engine() *engine.Engine { return m.eng }

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Model) waitRecording() tea.Cmd {
	ch := m.recDone
	return func() tea.Msg { return <-ch }
}

func (m *Model) Init() tea.Cmd { return m.tick() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		cols := msg.Width - statsWidth - 2*canvasPadX - 4
		rows := msg.Height - 2*canvasPadY
		m.surface.Resize(max(cols, 10), max(rows, 5))
		m.eng.Render()
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case TickMsg:
		m.eng.Advance(time.Time(msg))
		return m, m.tick()
	case recordingMsg:
		m.saveRecording(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.recording {
			m.eng.StopRecording()
			m.mirror.detach()
		}
		m.eng.Stop()
		return tea.Quit
	case " ":
		if m.eng.IsRunning() {
			m.eng.Stop()
		} else {
			m.eng.Start()
		}
	case "r":
		m.eng.Reset()
		m.stats.Reset()
	case "tab":
		m.selected = (m.selected + 1) % len(tunables)
	case "up", "k":
		m.adjust(1)
	case "down", "j":
		m.adjust(-1)
	case "g":
		return m.toggleRecording()
	case "t":
		m.theme = NextTheme(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	}
	return nil
}

func (m *Model) adjust(dir float64) {
	t := tunables[m.selected]
	if err := m.eng.SetParam(t.name, t.get(m)+dir*t.step); err != nil {
		m.status = err.Error()
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	col, row := msg.X-canvasPadX, msg.Y-canvasPadY
	p := m.surface.FromCell(col, row)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.eng.HandleMouseDown(p.X, p.Y)
		}
	case tea.MouseActionMotion:
		m.eng.HandleMouseMove(p.X, p.Y)
	case tea.MouseActionRelease:
		m.eng.HandleMouseUp()
	}
}

func (m *Model) toggleRecording() tea.Cmd {
	if m.recording {
		m.recording = false
		m.status = "encoding…"
		if err := m.eng.StopRecording(); err != nil {
			m.status = err.Error()
		}
		m.mirror.detach()
		return nil
	}
	ch := m.recDone
	sink := func(blob []byte, err error) { ch <- recordingMsg{blob, err} }
	tap, err := m.mirror.attach(16)
	if err != nil {
		m.status = err.Error()
		return nil
	}
	if err := m.eng.StartRecording(dynamo.RecordingFunc(sink), tap); err != nil {
		m.mirror.detach()
		m.status = err.Error()
		return nil
	}
	m.recording = true
	m.status = "recording"
	return m.waitRecording()
}

func (m *Model) saveRecording(msg recordingMsg) {
	if msg.err != nil {
		m.status = "recording failed: " + msg.err.Error()
		return
	}
	if m.store == nil {
		m.status = fmt.Sprintf("recorded %d bytes", len(msg.blob))
		return
	}
	snap := m.eng.Snapshot()
	meta := storage.RunMetadata{
		Seed:    m.cfg.Seed,
		Preset:  m.preset,
		Frames:  snap.Frame,
		Elapsed: snap.Elapsed.Seconds(),
		Params:  snap.Params,
		Layout:  m.cfg.Layout(),
		Metrics: m.stats.Values(),
	}
	id, err := m.store.Save(meta, m.collector.Samples(), msg.blob)
	if err != nil {
		m.status = "save failed: " + err.Error()
		return
	}
	m.status = "saved " + id
}

func (m *Model) state() string {
	switch {
	case m.eng.Dragging():
		return "DRAGGING"
	case m.eng.IsRunning():
		return "RUNNING"
	default:
		return "STOPPED"
	}
}

func (m *Model) View() string {
	th := m.theme
	canvasView := canvasStyle.Render(m.surface.Canvas().Render())

	var s strings.Builder
	title := "RINGBALL"
	if m.preset != "" {
		title += " · " + strings.ToUpper(m.preset)
	}
	s.WriteString(th.header().Render(title) + "\n")
	s.WriteString(th.status(m.state()))
	if m.recording {
		s.WriteString("  " + th.rec())
	}
	s.WriteString("\n\n")

	snap := m.eng.Snapshot()
	row := func(label, value string) {
		s.WriteString(th.label().Render(label) + th.value().Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", snap.Elapsed.Seconds()))
	row("Frame", fmt.Sprintf("%d", snap.Frame))
	row("Collisions", fmt.Sprintf("%d", snap.Collisions))
	row("Radius", fmt.Sprintf("%.2f / %.0f", snap.Ball.Radius, m.eng.World().Boundary().MaxBallRadius))
	row("Speed", fmt.Sprintf("%.2f", snap.Ball.Speed()))
	row("Peak", fmt.Sprintf("%.2f", m.stats.Values()["peak_speed"]))
	if snap.Err != nil {
		s.WriteString(th.fault().Render(snap.Err.Error()+", R to reset") + "\n")
	}

	if m.series.Len() > 1 {
		s.WriteString(graphStyle.Render(metrics.Plot(m.series.Speed, 30, 4, "speed")) + "\n")
		s.WriteString(th.label().Render("Radius") + SparklineChart(m.series.Radius, 26) + "\n")
	}

	s.WriteString("\nPARAMETERS\n")
	for i, t := range tunables {
		v := t.get(m)
		line := fmt.Sprintf("%-17s %s %.4f", t.name, ProgressBar(v/(20*t.step), 8), v)
		if i == m.selected {
			s.WriteString(th.active().Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + th.value().Render(line) + "\n")
		}
	}
	if m.status != "" {
		s.WriteString("\n" + th.value().Render(m.status) + "\n")
	}
	s.WriteString(th.help().Render("─────────────────────\nSP:Run/Stop R:Reset Q:Quit\nG:Record T:Theme ?:Help\nTab/↑↓:Tune  mouse:drag"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Start/stop simulation    ║
║  R        - Reset ball and clock     ║
║  Q        - Quit                     ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter       ║
║  Down/J   - Decrease parameter       ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  Mouse    - Drag the ball            ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// Run starts the terminal UI for cfg.
func Run(cfg *config.Config, preset string, store *storage.Store, opts ...engine.Option) error {
	m, err := NewModel(cfg, preset, store, opts...)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
