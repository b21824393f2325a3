package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func TestHeatLevel(t *testing.T) {
	tests := []struct {
		count, max, want int
	}{
		{0, 4, 0},
		{1, 4, 1},
		{2, 4, 2},
		{3, 4, 3},
		{4, 4, 4},
		{9, 4, 4},
		{1, 1, 4},
		{1, 0, 0},
	}
	for _, tt := range tests {
		if got := HeatLevel(tt.count, tt.max); got != tt.want {
			t.Fatalf("HeatLevel(%d, %d) = %d, want %d", tt.count, tt.max, got, tt.want)
		}
	}
}

func TestRenderHeatmapLayout(t *testing.T) {
	// Two weeks starting on a Monday.
	window := []string{
		"2024-03-04", "2024-03-05", "2024-03-06", "2024-03-07", "2024-03-08", "2024-03-09", "2024-03-10",
		"2024-03-11", "2024-03-12", "2024-03-13", "2024-03-14", "2024-03-15", "2024-03-16", "2024-03-17",
	}
	done := map[string]bool{"2024-03-04": true, "2024-03-12": true}
	count := func(d string) int {
		if done[d] {
			return 1
		}
		return 0
	}

	out := RenderHeatmap(window, count, 1, lipgloss.Color("#ff7eb3"))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("rows = %d, want 7", len(lines))
	}
	if !strings.Contains(lines[0], "Mon") || !strings.Contains(lines[6], "Sun") {
		t.Fatalf("weekday labels wrong:\n%s", out)
	}
	if !strings.Contains(lines[0], "█·") {
		t.Fatalf("monday row = %q, want done then not done", lines[0])
	}
	if !strings.Contains(lines[1], "·█") {
		t.Fatalf("tuesday row = %q, want not done then done", lines[1])
	}
}

func TestRenderTableAlignsColumns(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Habit", "Best"},
		Rows:    [][]string{{"Read", "12"}, {"---"}, {"Run", "3"}},
	})
	if !strings.Contains(out, " Read  ") || !strings.Contains(out, "   3 ") {
		t.Fatalf("table:\n%s", out)
	}
	if strings.Count(out, "├") != 2 {
		t.Fatalf("want header and row separators:\n%s", out)
	}
}

func TestFormatHelpers(t *testing.T) {
	today := time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local)
	cases := map[string]string{
		"":           "never",
		"2024-03-10": "today",
		"2024-03-09": "yesterday",
		"2024-03-01": "9d ago",
	}
	for in, want := range cases {
		if got := FormatLastDone(in, today); got != want {
			t.Fatalf("FormatLastDone(%q) = %q, want %q", in, got, want)
		}
	}
	if got := FormatStreak(1); got != "1 day" {
		t.Fatalf("FormatStreak(1) = %q", got)
	}
	if got := FormatPercent(0.5); got != "50.0%" {
		t.Fatalf("FormatPercent(0.5) = %q", got)
	}
	if got := FormatNumber(1234567); got != "1,234,567" {
		t.Fatalf("FormatNumber = %q", got)
	}
	if got := ShortID("0f8fad5b-d9cb-469f"); got != "0f8fad5b" {
		t.Fatalf("ShortID = %q", got)
	}
}
