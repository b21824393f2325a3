// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/streaklab/internal/model"
)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatStreak formats a streak length in days.
// e.g., 0 -> "0", 1 -> "1 day", 12 -> "12 days"
func FormatStreak(n int) string {
	switch n {
	case 0:
		return "0"
	case 1:
		return "1 day"
	default:
		return strconv.Itoa(n) + " days"
	}
}

// FormatLastDone describes a YYYY-MM-DD day relative to today.
// e.g., "today", "yesterday", "5d ago", "never"
func FormatLastDone(day string, today time.Time) string {
	if day == "" {
		return "never"
	}
	t, err := model.ParseDay(day)
	if err != nil {
		return day
	}
	switch n := model.DaysBetween(t, today); {
	case n == 0:
		return "today"
	case n == 1:
		return "yesterday"
	case n > 1:
		return fmt.Sprintf("%dd ago", n)
	default:
		return day
	}
}

// ShortID returns the first 8 characters of an id, enough to type back.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && weekday < 7 {
		return days[weekday]
	}
	return "???"
}
