package components

import (
	"strings"

	"github.com/theirongolddev/streaklab/internal/model"
	"github.com/theirongolddev/streaklab/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

const (
	glyphDone  = "■"
	glyphEmpty = "·"
	gridLabelW = 4
)

var weekdayLabels = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// HabitGrid renders a habit's window as 7 rows filled column by column,
// one column per week, oldest on the left. The cell at cursor (an index
// into window, -1 for none) is drawn reversed. A month header sits above.
func HabitGrid(window []string, h model.Habit, cursor int) string {
	if len(window) == 0 {
		return ""
	}
	t := theme.Active

	done := t.Accent
	if len(h.Color) > 1 {
		done = lipgloss.Color(h.Color[1])
	} else if len(h.Color) == 1 {
		done = lipgloss.Color(h.Color[0])
	}

	doneStyle := lipgloss.NewStyle().Foreground(done).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	cursorStyle := lipgloss.NewStyle().Foreground(t.Background).Background(t.AccentBright).Bold(true)

	var b strings.Builder
	b.WriteString(labelStyle.Render(monthHeader(window)))
	b.WriteString("\n")

	for row := 0; row < 7 && row < len(window); row++ {
		label := strings.Repeat(" ", gridLabelW)
		if d, err := model.ParseDay(window[row]); err == nil {
			label = weekdayLabels[d.Weekday()] + " "
		}
		b.WriteString(labelStyle.Render(label))

		for i := row; i < len(window); i += 7 {
			isDone := h.Has(window[i])
			switch {
			case i == cursor && isDone:
				b.WriteString(cursorStyle.Render(glyphDone))
			case i == cursor:
				b.WriteString(cursorStyle.Render(glyphEmpty))
			case isDone:
				b.WriteString(doneStyle.Render(glyphDone))
			default:
				b.WriteString(emptyStyle.Render(glyphEmpty))
			}
		}
		if row < 6 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// GridWidth is the rendered width of HabitGrid for a window of n days.
func GridWidth(n int) int {
	return gridLabelW + (n+6)/7
}

// monthHeader places a three-letter month name above the first column of
// each month. Later months win when names would overlap, and the last one
// is pulled left to fit when its column is near the right edge.
func monthHeader(window []string) string {
	type label struct {
		start int
		name  string
	}

	cols := (len(window) + 6) / 7
	width := gridLabelW + cols
	var labels []label
	prevMonth := ""
	for c := 0; c < cols; c++ {
		day := window[c*7]
		d, err := model.ParseDay(day)
		if err != nil || day[5:7] == prevMonth {
			continue
		}
		prevMonth = day[5:7]
		labels = append(labels, label{start: gridLabelW + c, name: d.Format("Jan")})
	}

	line := []rune(strings.Repeat(" ", width))
	end := width
	for i := len(labels) - 1; i >= 0; i-- {
		l := labels[i]
		start := l.start
		if i == len(labels)-1 && start+len(l.name) > end {
			start = end - len(l.name)
		}
		if start < gridLabelW || start+len(l.name) > end {
			continue
		}
		copy(line[start:], []rune(l.name))
		end = start - 1
	}
	return string(line)
}
