package daemon

import (
	"github.com/theirongolddev/streaklab/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the collectors served at /metrics. They are registered on
// a per-service registry so tests can build several services.
type metrics struct {
	habits      prometheus.Gauge
	completions prometheus.Gauge
	doneToday   prometheus.Gauge
	current     *prometheus.GaugeVec
	best        *prometheus.GaugeVec
	polls       prometheus.Counter
	pollErrors  prometheus.Counter
	events      *prometheus.CounterVec
	pollSeconds prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		habits: f.NewGauge(prometheus.GaugeOpts{
			Name: "streaklab_habits",
			Help: "Number of tracked habits",
		}),
		completions: f.NewGauge(prometheus.GaugeOpts{
			Name: "streaklab_completions",
			Help: "Logged completions across all habits",
		}),
		doneToday: f.NewGauge(prometheus.GaugeOpts{
			Name: "streaklab_done_today",
			Help: "Habits completed today",
		}),
		current: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "streaklab_habit_current_streak_days",
			Help: "Current streak per habit",
		}, []string{"id", "name"}),
		best: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "streaklab_habit_best_streak_days",
			Help: "Best streak per habit",
		}, []string{"id", "name"}),
		polls: f.NewCounter(prometheus.CounterOpts{
			Name: "streaklab_daemon_polls_total",
			Help: "Store polls performed",
		}),
		pollErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "streaklab_daemon_poll_errors_total",
			Help: "Store polls that failed",
		}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "streaklab_daemon_events_total",
			Help: "Events published by type",
		}, []string{"type"}),
		pollSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "streaklab_daemon_poll_duration_seconds",
			Help:    "Store poll duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		}),
	}
}

func (m *metrics) observe(snap Snapshot, habits []HabitStatus) {
	m.habits.Set(float64(snap.Habits))
	m.completions.Set(float64(snap.Completions))
	m.doneToday.Set(float64(snap.DoneToday))

	// Deleted habits must not linger as stale series.
	m.current.Reset()
	m.best.Reset()
	for _, h := range habits {
		m.current.WithLabelValues(h.ID, h.Name).Set(float64(h.Current))
		m.best.WithLabelValues(h.ID, h.Name).Set(float64(h.Best))
	}
}

func snapshotFromStats(stats model.GlobalStats) Snapshot {
	return Snapshot{
		Habits:       stats.Habits,
		Completions:  stats.Completions,
		DoneToday:    stats.DoneToday,
		OnStreak:     stats.OnStreak,
		LongestBest:  stats.LongestBest,
		LongestHabit: stats.LongestHabit,
	}
}
