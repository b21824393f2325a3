package model

// HabitStats holds the streak statistics derived from one habit's logs.
type HabitStats struct {
	Total    int
	Current  int
	Best     int
	Rate7    float64 // share of the last 7 days completed, 0-1
	Rate30   float64
	Rate365  float64
	LastDone string // latest log day, "" if none
}

// GlobalStats holds totals across every habit in a document.
type GlobalStats struct {
	Habits       int
	Completions  int
	DoneToday    int
	OnStreak     int // habits whose current streak spans at least two days
	LongestBest  int
	LongestHabit string
}

// DailyStats holds how many habits were completed on one calendar day.
type DailyStats struct {
	Date      string
	Completed int
	Habits    int
}

// HabitSummary pairs a habit with its computed statistics.
type HabitSummary struct {
	Habit Habit
	Stats HabitStats
}
