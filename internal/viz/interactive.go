package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/ringball/internal/config"
	"github.com/san-kum/ringball/internal/engine"
	"github.com/san-kum/ringball/internal/storage"
)

var presetInfo = map[string]string{
	"classic": "the stock tuning",
	"floaty":  "low gravity, slow growth",
	"frantic": "fast and loud",
	"zero-g":  "no gravity at all",
	"balloon": "grows quickly",
	"sticky":  "loses speed on every hit",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

var (
	menuTitle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuArrow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuSel    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDesc   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuDimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	menuKey    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// App is the preset picker that leads into the live view.
type App struct {
	state, cursor int
	base          *config.Config
	presets       []string
	selected      string
	cfg           *config.Config
	paramNames    []string
	paramCursor   int
	editing       bool
	editBuf       string
	store         *storage.Store
	opts          []engine.Option
	live          *Model
	err           error
	width, height int
}

func NewApp(base *config.Config, store *storage.Store, opts ...engine.Option) *App {
	return &App{
		state:      stateMenu,
		base:       base,
		presets:    config.ListPresets(),
		paramNames: []string{"gravity", "velocity_increase", "velocity_decay", "growth_rate"},
		store:      store,
		opts:       opts,
	}
}

func (a *App) Init() tea.Cmd { return nil }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a, a.handleKey(msg)
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
	}
	if a.state == stateSim {
		_, cmd := a.live.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch a.state {
	case stateMenu:
		return a.menuKey(msg)
	case stateConfig:
		return a.configKey(msg)
	case stateSim:
		_, cmd := a.live.Update(msg)
		return cmd
	}
	return nil
}

func (a *App) menuKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.presets)-1 {
			a.cursor++
		}
	case "enter", " ":
		a.selected = a.presets[a.cursor]
		cfg := *a.base
		cfg.Physics = config.Presets[a.selected]
		a.cfg = &cfg
		a.state, a.paramCursor = stateConfig, 0
	}
	return nil
}

func (a *App) param(name string) *float64 {
	switch name {
	case "gravity":
		return &a.cfg.Physics.Gravity
	case "velocity_increase":
		return &a.cfg.Physics.VelocityIncrease
	case "velocity_decay":
		return &a.cfg.Physics.VelocityDecay
	default:
		return &a.cfg.Physics.GrowthRate
	}
}

func (a *App) configKey(msg tea.KeyMsg) tea.Cmd {
	p := a.param(a.paramNames[a.paramCursor])
	if a.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(a.editBuf, "%f", &val); err == nil {
				*p = val
			}
			a.editing, a.editBuf = false, ""
		case "esc":
			a.editing, a.editBuf = false, ""
		case "backspace":
			if len(a.editBuf) > 0 {
				a.editBuf = a.editBuf[:len(a.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					a.editBuf += string(c)
				}
			}
		}
		return nil
	}
	switch msg.String() {
	case "q", "esc":
		a.state = stateMenu
	case "up", "k":
		if a.paramCursor > 0 {
			a.paramCursor--
		}
	case "down", "j":
		if a.paramCursor < len(a.paramNames)-1 {
			a.paramCursor++
		}
	case "enter", " ":
		a.editing, a.editBuf = true, fmt.Sprintf("%.4f", *p)
	case "left", "h":
		*p -= 0.01
	case "right", "l":
		*p += 0.01
	case "s":
		return a.start()
	}
	return nil
}

func (a *App) start() tea.Cmd {
	live, err := NewModel(a.cfg, a.selected, a.store, a.opts...)
	if err != nil {
		a.err = err
		return nil
	}
	a.live = live
	a.state = stateSim
	cmds := []tea.Cmd{live.Init()}
	if a.width > 0 {
		size := tea.WindowSizeMsg{Width: a.width, Height: a.height}
		cmds = append(cmds, func() tea.Msg { return size })
	}
	return tea.Batch(cmds...)
}

func (a *App) View() string {
	switch a.state {
	case stateConfig:
		return a.viewConfig()
	case stateSim:
		return a.live.View()
	}
	return a.viewMenu()
}

func keyHints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(menuKey.Render(pairs[i]) + menuDim.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (a *App) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("RINGBALL") + "\n    " + menuSub.Render("a ball that outgrows its ring") + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range a.presets {
		desc := presetInfo[name]
		if i == a.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuArrow.Render("▸"), menuSel.Render(fmt.Sprintf("%-12s", name)), menuDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuDim.Render(fmt.Sprintf("  %-12s", name)), menuDimmer.Render(desc)))
		}
	}
	if a.err != nil {
		b.WriteString("\n    " + menuDesc.Render(a.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (a *App) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render(strings.ToUpper(a.selected)) + "\n    " + menuSub.Render(presetInfo[a.selected]) + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range a.paramNames {
		valStr := fmt.Sprintf("%9.4f", *a.param(name))
		if a.editing && i == a.paramCursor {
			valStr = fmt.Sprintf("%9s", a.editBuf+"_")
		}
		if i == a.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", menuArrow.Render("▸"), menuSel.Render(fmt.Sprintf("%-18s", name)), menuDesc.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", menuDim.Render(fmt.Sprintf("  %-18s", name)), menuDimmer.Render(valStr)))
		}
	}
	b.WriteString("\n    " + keyHints("j/k", "select", "h/l", "adjust", "enter", "edit", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunInteractive starts the preset picker.
func RunInteractive(base *config.Config, store *storage.Store, opts ...engine.Option) error {
	_, err := tea.NewProgram(NewApp(base, store, opts...), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
