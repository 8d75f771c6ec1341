package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/ringball/internal/config"
)

func newTestApp() *App {
	base := config.DefaultConfig()
	base.Seed = 3
	return NewApp(base, nil)
}

func TestAppMenuNavigation(t *testing.T) {
	a := newTestApp()
	if !strings.Contains(a.View(), "classic") {
		t.Fatal("menu does not list presets")
	}

	a.Update(tea.KeyMsg{Type: tea.KeyDown})
	a.Update(tea.KeyMsg{Type: tea.KeyUp})
	a.Update(tea.KeyMsg{Type: tea.KeyUp})
	if a.cursor != 0 {
		t.Errorf("cursor = %d, want 0", a.cursor)
	}

	a.Update(tea.KeyMsg{Type: tea.KeyDown})
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if a.state != stateConfig {
		t.Fatalf("state = %d, want config", a.state)
	}
	if a.selected != a.presets[1] {
		t.Errorf("selected %q, want %q", a.selected, a.presets[1])
	}
	if a.cfg.Physics != config.Presets[a.selected] {
		t.Errorf("physics = %+v, want preset values", a.cfg.Physics)
	}
}

func TestAppEditParam(t *testing.T) {
	a := newTestApp()
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})

	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !a.editing {
		t.Fatal("enter did not start editing")
	}
	a.editBuf = ""
	for _, r := range "0.5x" {
		a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if a.editing {
		t.Fatal("enter did not finish editing")
	}
	if a.cfg.Physics.Gravity != 0.5 {
		t.Errorf("gravity = %v, want 0.5", a.cfg.Physics.Gravity)
	}

	a.Update(tea.KeyMsg{Type: tea.KeyDown})
	before := a.cfg.Physics.VelocityIncrease
	a.Update(tea.KeyMsg{Type: tea.KeyRight})
	if a.cfg.Physics.VelocityIncrease <= before {
		t.Error("right did not raise the selected value")
	}

	a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if a.state != stateMenu {
		t.Error("esc did not return to the menu")
	}
}

func TestAppStartsLiveModel(t *testing.T) {
	a := newTestApp()
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if cmd == nil {
		t.Fatal("start returned no command")
	}
	if a.state != stateSim || a.live == nil {
		t.Fatalf("state = %d, err = %v", a.state, a.err)
	}
	if !a.live.Engine().IsRunning() {
		t.Error("live engine not running")
	}
	if got := a.live.Engine().Params().Gravity; got != config.Presets[a.selected].Gravity {
		t.Errorf("gravity = %v, want preset %v", got, config.Presets[a.selected].Gravity)
	}
	if !strings.Contains(a.View(), "RINGBALL") {
		t.Error("live view missing")
	}
}

func TestAppQuit(t *testing.T) {
	a := newTestApp()
	if _, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q in the menu should quit")
	}
}
