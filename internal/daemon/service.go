// Package daemon provides the long-running read-only habit monitor service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/streaklab/internal/logging"
	"github.com/theirongolddev/streaklab/internal/model"
	"github.com/theirongolddev/streaklab/internal/pipeline"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Event types.
const (
	EventSnapshot     = "snapshot"
	EventHabitAdded   = "habit_added"
	EventHabitRemoved = "habit_removed"
	EventMarked       = "marked"
	EventUnmarked     = "unmarked"
)

// Source reads the habit document. The daemon never writes it.
type Source interface {
	Peek(ctx context.Context) (model.Document, error)
}

// stamped is implemented by sources that know when the document was
// last written.
type stamped interface {
	UpdatedAt(ctx context.Context) (time.Time, bool, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	Source       Source
	Key          string // storage key, reported in status
	Backend      string
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	Logger       *zap.Logger
	// Registry receives the /metrics collectors. Nil means a fresh registry.
	Registry *prometheus.Registry
	Now      func() time.Time
}

// Snapshot is a compact totals view for status/event payloads.
type Snapshot struct {
	At           time.Time `json:"at"`
	Habits       int       `json:"habits"`
	Completions  int       `json:"completions"`
	DoneToday    int       `json:"done_today"`
	OnStreak     int       `json:"on_streak"`
	LongestBest  int       `json:"longest_best"`
	LongestHabit string    `json:"longest_habit,omitempty"`
}

// HabitStatus is one row of /v1/habits.
type HabitStatus struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Total    int     `json:"total"`
	Current  int     `json:"current"`
	Best     int     `json:"best"`
	Rate30   float64 `json:"rate_30"`
	LastDone string  `json:"last_done,omitempty"`
	DoneNow  bool    `json:"done_today"`
}

// Event is emitted whenever a poll observes a change.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	HabitID   string    `json:"habit_id,omitempty"`
	HabitName string    `json:"habit_name,omitempty"`
	Day       string    `json:"day,omitempty"`
	Snapshot  Snapshot  `json:"snapshot"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time  `json:"started_at"`
	LastPollAt      time.Time  `json:"last_poll_at"`
	PollIntervalSec int        `json:"poll_interval_sec"`
	PollCount       int64      `json:"poll_count"`
	Backend         string     `json:"backend,omitempty"`
	Key             string     `json:"key,omitempty"`
	StoreUpdatedAt  *time.Time `json:"store_updated_at,omitempty"`
	Summary         Snapshot   `json:"summary"`
	LastError       string     `json:"last_error,omitempty"`
	EventCount      int        `json:"event_count"`
	SubscriberCount int        `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	log     *zap.Logger
	reg     *prometheus.Registry
	metrics *metrics

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	storeAt     time.Time
	hasSnapshot bool
	doc         model.Document
	snapshot    Snapshot
	habits      []HabitStatus
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8797"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Service{
		cfg:       cfg,
		log:       logging.OrNop(cfg.Logger),
		reg:       reg,
		metrics:   newMetrics(reg),
		startedAt: cfg.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/habits", s.handleHabits)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	mux.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	return mux
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Source == nil {
		return errors.New("daemon: no habit source configured")
	}

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("daemon listening",
		zap.String("addr", s.cfg.Addr),
		zap.Duration("interval", s.cfg.Interval),
	)

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.log.Info("daemon shutting down")
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	start := s.cfg.Now()
	doc, err := s.cfg.Source.Peek(ctx)
	s.metrics.polls.Inc()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = s.cfg.Now()
		s.pollCount++
		s.mu.Unlock()
		s.metrics.pollErrors.Inc()
		s.log.Warn("daemon poll failed", zap.Error(err))
		return
	}
	for i := range doc.Habits {
		doc.Habits[i].Logs = model.NormalizeLogs(doc.Habits[i].Logs)
	}

	var storeAt time.Time
	if st, ok := s.cfg.Source.(stamped); ok {
		if at, ok, err := st.UpdatedAt(ctx); err != nil {
			s.log.Debug("reading store write time", zap.Error(err))
		} else if ok {
			storeAt = at
		}
	}

	now := s.cfg.Now()
	snap := snapshotFromStats(pipeline.Aggregate(doc, now))
	snap.At = now
	habits := habitStatuses(doc, now)

	s.mu.Lock()
	prev := s.doc
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.doc = doc
	s.snapshot = snap
	s.habits = habits
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""
	s.storeAt = storeAt

	var pending []Event
	if !prevExists {
		pending = []Event{{Type: EventSnapshot}}
	} else {
		pending = diffDocuments(prev, doc)
	}
	for i := range pending {
		s.nextEventID++
		pending[i].ID = s.nextEventID
		pending[i].Timestamp = now
		pending[i].Snapshot = snap
	}
	s.mu.Unlock()

	s.metrics.observe(snap, habits)
	s.metrics.pollSeconds.Observe(s.cfg.Now().Sub(start).Seconds())
	for _, ev := range pending {
		s.publishEvent(ev)
	}
	if len(pending) > 0 {
		s.log.Debug("daemon poll produced events", zap.Int("events", len(pending)))
	}
}

func habitStatuses(doc model.Document, now time.Time) []HabitStatus {
	today := model.FormatDay(now)
	out := make([]HabitStatus, 0, len(doc.Habits))
	for _, sum := range pipeline.Summarize(doc, now) {
		out = append(out, HabitStatus{
			ID:       sum.Habit.ID,
			Name:     sum.Habit.Name,
			Total:    sum.Stats.Total,
			Current:  sum.Stats.Current,
			Best:     sum.Stats.Best,
			Rate30:   sum.Stats.Rate30,
			LastDone: sum.Stats.LastDone,
			DoneNow:  sum.Habit.Has(today),
		})
	}
	return out
}

// diffDocuments lists what changed between two polls, without ids or
// timestamps. Habits are matched by id; renames produce no event.
// Both documents must have sorted logs.
func diffDocuments(prev, curr model.Document) []Event {
	var out []Event

	before := make(map[string]model.Habit, len(prev.Habits))
	for _, h := range prev.Habits {
		before[h.ID] = h
	}
	after := make(map[string]struct{}, len(curr.Habits))

	for _, h := range curr.Habits {
		after[h.ID] = struct{}{}
		old, ok := before[h.ID]
		if !ok {
			out = append(out, Event{Type: EventHabitAdded, HabitID: h.ID, HabitName: h.Name})
			for _, d := range h.Logs {
				out = append(out, Event{Type: EventMarked, HabitID: h.ID, HabitName: h.Name, Day: d})
			}
			continue
		}
		for _, d := range h.Logs {
			if !old.Has(d) {
				out = append(out, Event{Type: EventMarked, HabitID: h.ID, HabitName: h.Name, Day: d})
			}
		}
		for _, d := range old.Logs {
			if !h.Has(d) {
				out = append(out, Event{Type: EventUnmarked, HabitID: h.ID, HabitName: h.Name, Day: d})
			}
		}
	}

	for _, h := range prev.Habits {
		if _, ok := after[h.ID]; !ok {
			out = append(out, Event{Type: EventHabitRemoved, HabitID: h.ID, HabitName: h.Name})
		}
	}
	return out
}

func (s *Service) publishEvent(ev Event) {
	s.metrics.events.WithLabelValues(ev.Type).Inc()

	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var storeAt *time.Time
	if !s.storeAt.IsZero() {
		at := s.storeAt
		storeAt = &at
	}

	return Status{
		StoreUpdatedAt:  storeAt,
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Backend:         s.cfg.Backend,
		Key:             s.cfg.Key,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.snapshotStatus())
}

func (s *Service) handleHabits(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	habits := make([]HabitStatus, len(s.habits))
	copy(habits, s.habits)
	s.mu.RUnlock()

	writeJSON(w, habits)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, events)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: s.cfg.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
