package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(canvasPadY, canvasPadX)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(statsWidth)
	graphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

const (
	canvasPadX = 2
	canvasPadY = 1
	statsWidth = 44
)

func (t Theme) header() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Bold(true).MarginBottom(1)
}
func (t Theme) label() lipgloss.Style  { return lipgloss.NewStyle().Foreground(t.Muted).Width(12) }
func (t Theme) value() lipgloss.Style  { return lipgloss.NewStyle().Foreground(t.Text) }
func (t Theme) active() lipgloss.Style { return lipgloss.NewStyle().Foreground(t.Primary).Bold(true) }
func (t Theme) help() lipgloss.Style   { return lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1) }

func (t Theme) status(s string) string {
	c := t.Success
	switch s {
	case "PAUSED", "DRAGGING":
		c = t.Warning
	case "STOPPED":
		c = t.Muted
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render(s)
}

func (t Theme) rec() string {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true).Blink(true).Render("● REC")
}

func (t Theme) fault() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

// SparklineChart renders a mini sparkline from values
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	// Sample to fit width, keeping the most recent values
	if len(values) > width {
		values = values[len(values)-width:]
	}

	var result strings.Builder
	for _, v := range values {
		idx := int((v - lo) / rng * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))
		result.WriteRune(chars[idx])
	}
	return result.String()
}

// ProgressBar renders an ASCII bar for a ratio in [0,1].
func ProgressBar(ratio float64, width int) string {
	filled := int(ratio * float64(width))
	filled = max(0, min(filled, width))
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}
