// Package pipeline derives streaks, the rolling date window and aggregate
// statistics from habit logs. Everything here is pure and recomputed on demand.
package pipeline

import (
	"time"

	"github.com/theirongolddev/streaklab/internal/model"
)

const (
	// WindowWeeks is the width of the heatmap grid in weeks.
	WindowWeeks = 53
	// DaysPerWeek is the height of the heatmap grid.
	DaysPerWeek = 7
	// WindowDays is the number of dates in the default window (371).
	WindowDays = WindowWeeks * DaysPerWeek
)

// DateWindow returns weeks*7 ascending YYYY-MM-DD strings ending on the
// calendar day of today. Steps use AddDate so DST shifts never skip or
// repeat a day.
func DateWindow(today time.Time, weeks int) []string {
	if weeks <= 0 {
		return nil
	}
	n := weeks * DaysPerWeek
	end := model.DayStart(today)

	dates := make([]string, n)
	for i := 0; i < n; i++ {
		dates[i] = end.AddDate(0, 0, i-(n-1)).Format(model.DayLayout)
	}
	return dates
}

// DefaultWindow returns the 53-week window ending today.
func DefaultWindow(today time.Time) []string {
	return DateWindow(today, WindowWeeks)
}

// LastNDays returns the n most recent days ending today, ascending.
func LastNDays(today time.Time, n int) []string {
	if n <= 0 {
		return nil
	}
	end := model.DayStart(today)
	dates := make([]string, n)
	for i := 0; i < n; i++ {
		dates[i] = end.AddDate(0, 0, i-(n-1)).Format(model.DayLayout)
	}
	return dates
}
