// Package tracker owns one session's habit document and applies every
// mutation to it, persisting the whole document after each change.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/theirongolddev/streaklab/internal/logging"
	"github.com/theirongolddev/streaklab/internal/model"
	"github.com/theirongolddev/streaklab/internal/pipeline"
	"github.com/theirongolddev/streaklab/internal/snapshot"
	"github.com/theirongolddev/streaklab/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNotFound means no habit has the given id.
	ErrNotFound = errors.New("habit not found")
	// ErrEmptyName means a name was blank after trimming whitespace.
	ErrEmptyName = errors.New("habit name is empty")
	// ErrInvalidDate means a day is not a valid YYYY-MM-DD calendar date.
	ErrInvalidDate = errors.New("invalid date")
	// ErrAmbiguous means a habit reference matched more than one habit.
	ErrAmbiguous = errors.New("habit reference is ambiguous")
)

// Transition reports what ToggleLog did to a day.
type Transition int

const (
	// Unmarked means the day was removed from the habit's logs.
	Unmarked Transition = iota
	// Marked means the day was added to the habit's logs.
	Marked
)

func (t Transition) String() string {
	if t == Marked {
		return "marked"
	}
	return "unmarked"
}

// Persister writes the whole document. *store.DocumentStore satisfies it.
type Persister interface {
	Save(ctx context.Context, doc model.Document) error
}

// Celebration describes a day that just went from unmarked to marked.
type Celebration struct {
	HabitID   string    `json:"habitId"`
	HabitName string    `json:"habitName"`
	Day       string    `json:"day"`
	Current   int       `json:"current"`
	Best      int       `json:"best"`
	At        time.Time `json:"at"`
}

// Celebrator is notified after a Marked transition has been persisted.
type Celebrator interface {
	Celebrate(ctx context.Context, c Celebration) error
}

type nopCelebrator struct{}

func (nopCelebrator) Celebrate(context.Context, Celebration) error { return nil }

// Option configures a Tracker.
type Option func(*Tracker)

// WithIDFunc sets the habit id generator.
func WithIDFunc(fn func() string) Option {
	return func(t *Tracker) { t.newID = fn }
}

// WithPalette sets how new habits get their colors.
func WithPalette(fn PaletteFunc) Option {
	return func(t *Tracker) { t.palette = fn }
}

// WithClock sets the time source used for "today" and createdAt.
func WithClock(fn func() time.Time) Option {
	return func(t *Tracker) { t.now = fn }
}

// WithCelebrator sets the sink for newly marked days.
func WithCelebrator(c Celebrator) Option {
	return func(t *Tracker) {
		if c != nil {
			t.celebrate = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) { t.log = logging.OrNop(l) }
}

// Tracker is a single session over one habit document.
type Tracker struct {
	mu   sync.Mutex
	doc  model.Document
	save Persister

	newID     func() string
	palette   PaletteFunc
	now       func() time.Time
	celebrate Celebrator
	log       *zap.Logger

	window []string
	loaded store.LoadResult
}

// New wraps an already-loaded document. persister receives every mutation.
func New(doc model.Document, persister Persister, opts ...Option) *Tracker {
	t := &Tracker{
		doc:       normalizeDocument(doc),
		save:      persister,
		newID:     uuid.NewString,
		palette:   RandomPalette,
		now:       time.Now,
		celebrate: nopCelebrator{},
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.window = pipeline.DefaultWindow(t.now())
	return t
}

// Open loads the document from ds and returns a tracker persisting to it.
func Open(ctx context.Context, ds *store.DocumentStore, opts ...Option) (*Tracker, error) {
	res, err := ds.Load(ctx)
	if err != nil {
		return nil, err
	}
	t := New(res.Document, ds, opts...)
	t.loaded = res
	return t, nil
}

// Loaded reports how Open obtained the document.
func (t *Tracker) Loaded() store.LoadResult { return t.loaded }

// Now returns the tracker's current time.
func (t *Tracker) Now() time.Time { return t.now() }

// Today returns the current local calendar day as YYYY-MM-DD.
func (t *Tracker) Today() string {
	return model.FormatDay(t.now())
}

// Window returns the 371-day heatmap window ending on the day the tracker
// was created. It stays fixed for the tracker's lifetime.
func (t *Tracker) Window() []string {
	return append([]string(nil), t.window...)
}

// Habits returns a deep copy of every habit in display order.
func (t *Tracker) Habits() []model.Habit {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.doc.Clone().Habits
}

// Habit returns a copy of the habit with the given id.
func (t *Tracker) Habit(id string) (model.Habit, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.doc.Index(id)
	if i < 0 {
		return model.Habit{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return t.doc.Habits[i].Clone(), nil
}

// FindHabit resolves a user-typed reference: an exact id, a
// case-insensitive exact name, or a unique id prefix, in that order.
func (t *Tracker) FindHabit(ref string) (model.Habit, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Habit{}, fmt.Errorf("%w: empty reference", ErrNotFound)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if i := t.doc.Index(ref); i >= 0 {
		return t.doc.Habits[i].Clone(), nil
	}

	pick := func(match func(model.Habit) bool) (model.Habit, bool, error) {
		var found []model.Habit
		for _, h := range t.doc.Habits {
			if match(h) {
				found = append(found, h)
			}
		}
		switch len(found) {
		case 0:
			return model.Habit{}, false, nil
		case 1:
			return found[0].Clone(), true, nil
		default:
			return model.Habit{}, false, fmt.Errorf("%w: %q matches %d habits", ErrAmbiguous, ref, len(found))
		}
	}

	if h, ok, err := pick(func(h model.Habit) bool { return strings.EqualFold(h.Name, ref) }); ok || err != nil {
		return h, err
	}
	if h, ok, err := pick(func(h model.Habit) bool { return strings.HasPrefix(h.ID, ref) }); ok || err != nil {
		return h, err
	}
	return model.Habit{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
}

// AddHabit prepends a new habit with a fresh id and palette.
func (t *Tracker) AddHabit(ctx context.Context, name string) (model.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Habit{}, ErrEmptyName
	}

	h := model.Habit{
		ID:        t.newID(),
		Name:      name,
		Color:     t.palette(),
		CreatedAt: t.now().UTC().Format(time.RFC3339),
		Logs:      []string{},
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.doc.Habits = append([]model.Habit{h}, t.doc.Habits...)
	if err := t.persist(ctx); err != nil {
		return h.Clone(), fmt.Errorf("adding habit: %w", err)
	}
	t.log.Debug("added habit", zap.String("id", h.ID), zap.String("name", h.Name))
	return h.Clone(), nil
}

// RenameHabit replaces a habit's name in place.
func (t *Tracker) RenameHabit(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)

	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.doc.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if name == "" {
		return ErrEmptyName
	}

	t.doc.Habits[i].Name = name
	if err := t.persist(ctx); err != nil {
		return fmt.Errorf("renaming habit: %w", err)
	}
	t.log.Debug("renamed habit", zap.String("id", id), zap.String("name", name))
	return nil
}

// DeleteHabit removes a habit and its history.
func (t *Tracker) DeleteHabit(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.doc.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	t.doc.Habits = append(t.doc.Habits[:i], t.doc.Habits[i+1:]...)
	if err := t.persist(ctx); err != nil {
		return fmt.Errorf("deleting habit: %w", err)
	}
	t.log.Debug("deleted habit", zap.String("id", id))
	return nil
}

// ToggleLog flips whether day is logged for the habit. Logs stay sorted
// and free of duplicates. The celebrator only hears about Marked days, and
// only once the change is saved.
func (t *Tracker) ToggleLog(ctx context.Context, id, day string) (Transition, error) {
	if !ValidDay(day) {
		return Unmarked, fmt.Errorf("%w: %q", ErrInvalidDate, day)
	}

	t.mu.Lock()
	i := t.doc.Index(id)
	if i < 0 {
		t.mu.Unlock()
		return Unmarked, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	h := &t.doc.Habits[i]
	tr := Marked
	if logs, removed := model.RemoveDay(h.Logs, day); removed {
		h.Logs = logs
		tr = Unmarked
	} else {
		h.Logs, _ = model.InsertDay(h.Logs, day)
	}

	if err := t.persist(ctx); err != nil {
		t.mu.Unlock()
		return tr, fmt.Errorf("toggling %s: %w", day, err)
	}

	now := t.now()
	var c Celebration
	if tr == Marked {
		stats := pipeline.ComputeStats(h.Logs, now)
		c = Celebration{
			HabitID:   h.ID,
			HabitName: h.Name,
			Day:       day,
			Current:   stats.Current,
			Best:      stats.Best,
			At:        now,
		}
	}
	t.mu.Unlock()

	t.log.Debug("toggled day", zap.String("id", id), zap.String("day", day), zap.Stringer("transition", tr))
	if tr == Marked {
		if err := t.celebrate.Celebrate(ctx, c); err != nil {
			t.log.Warn("celebration failed", zap.String("id", id), zap.String("day", day), zap.Error(err))
		}
	}
	return tr, nil
}

// ImportSnapshot replaces the whole document with raw, a previously
// exported JSON snapshot. Anything snapshot.Decode rejects leaves the
// document untouched.
func (t *Tracker) ImportSnapshot(ctx context.Context, raw []byte) error {
	doc, err := snapshot.Decode(raw)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.doc = normalizeDocument(doc)
	if err := t.persist(ctx); err != nil {
		return fmt.Errorf("importing snapshot: %w", err)
	}
	t.log.Info("imported snapshot", zap.Int("habits", len(t.doc.Habits)))
	return nil
}

// ExportSnapshot returns a deep copy of the document.
func (t *Tracker) ExportSnapshot() model.Document {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.doc.Clone()
}

// Reset replaces the document with the empty one.
func (t *Tracker) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.doc = model.EmptyDocument()
	if err := t.persist(ctx); err != nil {
		return fmt.Errorf("resetting habits: %w", err)
	}
	t.log.Info("reset habit document")
	return nil
}

// Stats computes streak statistics for one habit as of today.
func (t *Tracker) Stats(id string) (model.HabitStats, error) {
	h, err := t.Habit(id)
	if err != nil {
		return model.HabitStats{}, err
	}
	return pipeline.ComputeStats(h.Logs, t.now()), nil
}

// Summaries computes statistics for every habit in display order.
func (t *Tracker) Summaries() []model.HabitSummary {
	return pipeline.Summarize(t.ExportSnapshot(), t.now())
}

// Totals computes statistics across every habit.
func (t *Tracker) Totals() model.GlobalStats {
	return pipeline.Aggregate(t.ExportSnapshot(), t.now())
}

// Daily returns per-day completion counts over the last n days.
func (t *Tracker) Daily(n int) []model.DailyStats {
	return pipeline.AggregateDays(t.ExportSnapshot(), pipeline.LastNDays(t.now(), n))
}

// ResolveDay turns a user-typed day into YYYY-MM-DD. It accepts a literal
// date, "today", "yesterday" or "-N" for N days ago.
func (t *Tracker) ResolveDay(ref string) (string, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	now := t.now()
	switch {
	case ref == "" || ref == "today":
		return model.FormatDay(now), nil
	case ref == "yesterday":
		return model.FormatDay(model.DayStart(now).AddDate(0, 0, -1)), nil
	case strings.HasPrefix(ref, "-"):
		n, err := strconv.Atoi(ref[1:])
		if err != nil || n < 0 {
			return "", fmt.Errorf("%w: %q", ErrInvalidDate, ref)
		}
		return model.FormatDay(model.DayStart(now).AddDate(0, 0, -n)), nil
	}
	if !ValidDay(ref) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, ref)
	}
	return ref, nil
}

// ValidDay reports whether s is a real calendar date in YYYY-MM-DD form.
func ValidDay(s string) bool {
	d, err := model.ParseDay(s)
	return err == nil && d.Format(model.DayLayout) == s
}

// persist must be called with t.mu held.
func (t *Tracker) persist(ctx context.Context) error {
	if t.save == nil {
		return nil
	}
	return t.save.Save(ctx, t.doc.Clone())
}

func normalizeDocument(doc model.Document) model.Document {
	out := doc.Clone()
	for i := range out.Habits {
		out.Habits[i].Logs = model.NormalizeLogs(out.Habits[i].Logs)
	}
	return out
}
