package pipeline

import (
	"testing"

	"github.com/theirongolddev/streaklab/internal/model"
)

func testDoc() model.Document {
	return model.Document{Habits: []model.Habit{
		{ID: "a", Name: "Read", Logs: []string{"2024-01-01", "2024-01-02", "2024-01-03"}},
		{ID: "b", Name: "Run", Logs: []string{"2024-01-01", "2024-01-03"}},
		{ID: "c", Name: "Stretch", Logs: []string{}},
	}}
}

func TestAggregate(t *testing.T) {
	stats := Aggregate(testDoc(), mustDay(t, "2024-01-03"))

	if stats.Habits != 3 {
		t.Fatalf("Habits = %d, want 3", stats.Habits)
	}
	if stats.Completions != 5 {
		t.Fatalf("Completions = %d, want 5", stats.Completions)
	}
	if stats.DoneToday != 2 {
		t.Fatalf("DoneToday = %d, want 2", stats.DoneToday)
	}
	if stats.OnStreak != 1 {
		t.Fatalf("OnStreak = %d, want 1 (a single done day is not a streak)", stats.OnStreak)
	}
	if stats.LongestBest != 3 || stats.LongestHabit != "Read" {
		t.Fatalf("Longest = %d (%s), want 3 (Read)", stats.LongestBest, stats.LongestHabit)
	}
}

func TestAggregateDaysFollowsWindow(t *testing.T) {
	window := []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"}
	days := AggregateDays(testDoc(), window)

	want := []int{2, 1, 2, 0}
	if len(days) != len(want) {
		t.Fatalf("len = %d, want %d", len(days), len(want))
	}
	for i, d := range days {
		if d.Date != window[i] {
			t.Fatalf("days[%d].Date = %s, want %s", i, d.Date, window[i])
		}
		if d.Completed != want[i] {
			t.Fatalf("days[%d].Completed = %d, want %d", i, d.Completed, want[i])
		}
		if d.Habits != 3 {
			t.Fatalf("days[%d].Habits = %d, want 3", i, d.Habits)
		}
	}
}

func TestSummarizeKeepsOrderAndSortByBest(t *testing.T) {
	sums := Summarize(testDoc(), mustDay(t, "2024-01-03"))
	if sums[0].Habit.ID != "a" || sums[2].Habit.ID != "c" {
		t.Fatalf("Summarize reordered habits: %s..%s", sums[0].Habit.ID, sums[2].Habit.ID)
	}

	SortByBest(sums)
	if sums[0].Habit.Name != "Read" {
		t.Fatalf("top habit = %s, want Read", sums[0].Habit.Name)
	}
	if sums[2].Habit.Name != "Stretch" {
		t.Fatalf("last habit = %s, want Stretch", sums[2].Habit.Name)
	}
}

func TestFilterByName(t *testing.T) {
	sums := Summarize(testDoc(), mustDay(t, "2024-01-03"))
	got := FilterByName(sums, "r")
	if len(got) != 3 {
		t.Fatalf("len(filter r) = %d, want 3", len(got))
	}
	got = FilterByName(sums, "RU")
	if len(got) != 1 || got[0].Habit.ID != "b" {
		t.Fatalf("filter RU = %+v, want only Run", got)
	}
}
