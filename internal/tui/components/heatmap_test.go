package components

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/theirongolddev/streaklab/internal/model"
	"github.com/theirongolddev/streaklab/internal/pipeline"
	"github.com/theirongolddev/streaklab/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func TestHabitGridShape(t *testing.T) {
	theme.SetActive("flexoki-dark")
	today, _ := model.ParseDay("2024-03-10")
	window := pipeline.DefaultWindow(today)
	h := model.Habit{Color: []string{"#ff7eb3", "#ff758c", "#ffb347"}, Logs: []string{"2024-03-09", "2024-03-10"}}

	grid := HabitGrid(window, h, len(window)-1)
	lines := strings.Split(grid, "\n")
	if len(lines) != 8 {
		t.Fatalf("lines = %d, want month header + 7 rows", len(lines))
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w != GridWidth(len(window)) {
			t.Fatalf("line %d width = %d, want %d", i, w, GridWidth(len(window)))
		}
	}

	plain := ansi.Strip(grid)
	if got := strings.Count(plain, glyphDone); got != 2 {
		t.Fatalf("done cells = %d, want 2", got)
	}
	header := strings.TrimRight(strings.Split(plain, "\n")[0], " ")
	if !strings.HasSuffix(header, "Mar") {
		t.Fatalf("month header does not end with the current month:\n%s", plain)
	}
}

func TestMonthHeaderKeepsCurrentMonth(t *testing.T) {
	tests := []struct {
		today string
		first string
		last  string
	}{
		{"2024-03-10", "Mar", "Mar"},
		{"2026-10-19", "Nov", "Oct"},
		{"2024-03-25", "Apr", "Mar"},
	}
	for _, tt := range tests {
		today, _ := model.ParseDay(tt.today)
		window := pipeline.DefaultWindow(today)
		header := monthHeader(window)
		if w := len([]rune(header)); w != GridWidth(len(window)) {
			t.Fatalf("%s: header width = %d, want %d", tt.today, w, GridWidth(len(window)))
		}
		fields := strings.Fields(header)
		if len(fields) < 10 || fields[0] != tt.first || fields[len(fields)-1] != tt.last {
			t.Fatalf("%s: header = %q, want %s ... %s", tt.today, header, tt.first, tt.last)
		}
	}
}

func TestTabVisualWidthMatchesRender(t *testing.T) {
	for active := range Tabs {
		bar := RenderTabBar(active, 0)
		want := len(Tabs) - 1
		for i, tab := range Tabs {
			want += TabVisualWidth(tab, i == active)
		}
		if got := lipgloss.Width(bar); got != want {
			t.Fatalf("active=%d width = %d, want %d", active, got, want)
		}
	}
}

func TestConfettiFinishes(t *testing.T) {
	c := NewConfetti(40, 3, 20, []string{"#ff7eb3"}, rand.New(rand.NewPCG(1, 2)))
	if c.Done() {
		t.Fatal("fresh confetti reports done")
	}
	frames := 0
	for !c.Done() {
		c.Step()
		frames++
		if frames > maxConfettiFrames {
			t.Fatalf("confetti still running after %d frames", frames)
		}
	}

	out := c.Render()
	lines := strings.Split(out, "\n")
	if len(lines) != 3 || lipgloss.Width(lines[0]) != 40 {
		t.Fatalf("render = %d lines, width %d", len(lines), lipgloss.Width(lines[0]))
	}
}
