package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/streaklab/internal/model"
)

// CurrentLookback bounds how far back the current streak walk goes.
const CurrentLookback = 365

// ComputeStats derives total, current streak, best streak and completion
// rates from a habit's logs as of today.
func ComputeStats(logs []string, today time.Time) model.HabitStats {
	set := make(map[string]struct{}, len(logs))
	for _, d := range logs {
		set[d] = struct{}{}
	}

	stats := model.HabitStats{
		Total:   len(set),
		Current: CurrentStreak(set, today),
		Best:    BestStreak(set),
		Rate7:   completionRate(set, today, 7),
		Rate30:  completionRate(set, today, 30),
		Rate365: completionRate(set, today, 365),
	}

	for d := range set {
		if d > stats.LastDone {
			stats.LastDone = d
		}
	}
	return stats
}

// CurrentStreak counts consecutive logged days walking back from today,
// stopping at the first gap. Zero if today itself is not logged.
func CurrentStreak(set map[string]struct{}, today time.Time) int {
	day := model.DayStart(today)
	cur := 0
	for i := 0; i < CurrentLookback; i++ {
		if _, ok := set[day.AddDate(0, 0, -i).Format(model.DayLayout)]; !ok {
			break
		}
		cur++
	}
	return cur
}

// BestStreak returns the longest run of consecutive calendar days in set.
// Unparsable entries break a run.
func BestStreak(set map[string]struct{}) int {
	days := make([]string, 0, len(set))
	for d := range set {
		days = append(days, d)
	}
	sort.Strings(days)

	best, run := 0, 0
	var prev time.Time
	prevOK := false
	for i, d := range days {
		t, err := model.ParseDay(d)
		ok := err == nil
		if i > 0 && ok && prevOK && model.DaysBetween(prev, t) == 1 {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
		prev, prevOK = t, ok
	}
	return best
}

func completionRate(set map[string]struct{}, today time.Time, n int) float64 {
	if n <= 0 {
		return 0
	}
	day := model.DayStart(today)
	done := 0
	for i := 0; i < n; i++ {
		if _, ok := set[day.AddDate(0, 0, -i).Format(model.DayLayout)]; ok {
			done++
		}
	}
	return float64(done) / float64(n)
}
