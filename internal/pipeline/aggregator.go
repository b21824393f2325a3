package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/streaklab/internal/model"
)

// Summarize computes per-habit statistics, preserving display order.
func Summarize(doc model.Document, today time.Time) []model.HabitSummary {
	out := make([]model.HabitSummary, 0, len(doc.Habits))
	for _, h := range doc.Habits {
		out = append(out, model.HabitSummary{
			Habit: h,
			Stats: ComputeStats(h.Logs, today),
		})
	}
	return out
}

// Aggregate computes totals across every habit in doc.
func Aggregate(doc model.Document, today time.Time) model.GlobalStats {
	var stats model.GlobalStats
	todayKey := model.FormatDay(today)

	stats.Habits = len(doc.Habits)
	for _, h := range doc.Habits {
		s := ComputeStats(h.Logs, today)
		stats.Completions += s.Total
		if h.Has(todayKey) {
			stats.DoneToday++
		}
		if s.Current >= 2 {
			stats.OnStreak++
		}
		if s.Best > stats.LongestBest {
			stats.LongestBest = s.Best
			stats.LongestHabit = h.Name
		}
	}
	return stats
}

// AggregateDays counts completed habits for each date in window.
// Output keeps the window's ascending order.
func AggregateDays(doc model.Document, window []string) []model.DailyStats {
	counts := make(map[string]int, len(window))
	for _, h := range doc.Habits {
		for _, d := range h.Logs {
			counts[d]++
		}
	}

	days := make([]model.DailyStats, 0, len(window))
	for _, d := range window {
		days = append(days, model.DailyStats{
			Date:      d,
			Completed: counts[d],
			Habits:    len(doc.Habits),
		})
	}
	return days
}

// SortByBest orders summaries by best streak descending, then name.
func SortByBest(summaries []model.HabitSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].Stats.Best != summaries[j].Stats.Best {
			return summaries[i].Stats.Best > summaries[j].Stats.Best
		}
		return summaries[i].Habit.Name < summaries[j].Habit.Name
	})
}

// FilterByName returns summaries whose habit name contains substr
// (case-insensitive).
func FilterByName(summaries []model.HabitSummary, substr string) []model.HabitSummary {
	if substr == "" {
		return summaries
	}
	var out []model.HabitSummary
	for _, s := range summaries {
		if containsFold(s.Habit.Name, substr) {
			out = append(out, s)
		}
	}
	return out
}
