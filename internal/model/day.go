package model

import (
	"sort"
	"time"
)

// DayLayout is the calendar-day format used for logs and the date window.
const DayLayout = "2006-01-02"

// DayStart truncates t to midnight of its local calendar day.
// time.Truncate works on absolute time and would drift by the UTC offset.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FormatDay formats the calendar day t falls on in its own location.
func FormatDay(t time.Time) string {
	return DayStart(t).Format(DayLayout)
}

// ParseDay parses a YYYY-MM-DD string as local midnight.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, time.Local)
}

// DaysBetween returns the number of calendar days from a to b.
// Both are compared as UTC dates so DST transitions cannot shorten a day.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// InsertDay adds day to sorted logs if absent, keeping ascending order.
// The second return value is false when day was already present.
func InsertDay(logs []string, day string) ([]string, bool) {
	i, ok := searchDay(logs, day)
	if ok {
		return logs, false
	}
	logs = append(logs, "")
	copy(logs[i+1:], logs[i:])
	logs[i] = day
	return logs, true
}

// RemoveDay deletes day from sorted logs. The second return value is false
// when day was not present.
func RemoveDay(logs []string, day string) ([]string, bool) {
	i, ok := searchDay(logs, day)
	if !ok {
		return logs, false
	}
	return append(logs[:i], logs[i+1:]...), true
}

// NormalizeLogs sorts logs ascending and drops duplicates. A nil slice
// becomes an empty one so it encodes as [] rather than null.
func NormalizeLogs(logs []string) []string {
	out := append(make([]string, 0, len(logs)), logs...)
	sort.Strings(out)
	w := 0
	for i, d := range out {
		if i > 0 && d == out[w-1] {
			continue
		}
		out[w] = d
		w++
	}
	return out[:w]
}

func searchDay(logs []string, day string) (int, bool) {
	i := sort.SearchStrings(logs, day)
	return i, i < len(logs) && logs[i] == day
}
