package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/streaklab/internal/model"
	"github.com/theirongolddev/streaklab/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		if idx >= len(sparkBlocks) {
			idx = len(sparkBlocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		buf.WriteRune(sparkBlocks[idx])
	}

	return style.Render(buf.String())
}

// DailyColumns renders one column per day, each as tall as the share of
// habits completed that day. height is the number of rows above the axis.
func DailyColumns(days []model.DailyStats, color lipgloss.Color, height int) string {
	if len(days) == 0 {
		return ""
	}
	if height < 2 {
		height = 2
	}
	t := theme.Active
	onStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	offStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	axisStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	filled := make([]int, len(days))
	for i, d := range days {
		if d.Habits > 0 {
			filled[i] = (d.Completed*height + d.Habits - 1) / d.Habits
		}
	}

	var b strings.Builder
	for row := height; row >= 1; row-- {
		for i := range days {
			if filled[i] >= row {
				b.WriteString(onStyle.Render("█"))
			} else {
				b.WriteString(offStyle.Render(" "))
			}
		}
		b.WriteString("\n")
	}
	first, last := days[0].Date, days[len(days)-1].Date
	gap := len(days) - len(first[5:]) - len(last[5:])
	if gap < 1 {
		b.WriteString(axisStyle.Render(last[5:]))
	} else {
		b.WriteString(axisStyle.Render(fmt.Sprintf("%s%s%s", first[5:], strings.Repeat(" ", gap), last[5:])))
	}
	return b.String()
}
