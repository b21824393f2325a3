package tracker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/theirongolddev/streaklab/internal/model"
	"github.com/theirongolddev/streaklab/internal/snapshot"
	"github.com/theirongolddev/streaklab/internal/store"
)

var fixedNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.Local)

type recordingCelebrator struct {
	got []Celebration
	err error
}

func (r *recordingCelebrator) Celebrate(_ context.Context, c Celebration) error {
	r.got = append(r.got, c)
	return r.err
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// flakyKV is a memory store whose writes fail once failSet is set.
type flakyKV struct {
	*store.Memory
	failSet error
}

func (f *flakyKV) Set(ctx context.Context, key, value string) error {
	if f.failSet != nil {
		return f.failSet
	}
	return f.Memory.Set(ctx, key, value)
}

func newTestTracker(t *testing.T, opts ...Option) (*Tracker, *flakyKV, *store.DocumentStore) {
	t.Helper()
	mem := &flakyKV{Memory: store.NewMemory()}
	ds := store.NewDocumentStore(mem, "", store.PreserveCorrupt, nil)
	base := []Option{
		WithIDFunc(seqIDs()),
		WithPalette(FixedPalette(0)),
		WithClock(func() time.Time { return fixedNow }),
	}
	tr, err := Open(context.Background(), ds, append(base, opts...)...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return tr, mem, ds
}

func TestOpenInitializesEmptyStore(t *testing.T) {
	tr, _, ds := newTestTracker(t)
	if !tr.Loaded().Initialized {
		t.Fatal("Loaded().Initialized = false on empty store")
	}
	res, err := ds.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Initialized || len(res.Document.Habits) != 0 {
		t.Fatalf("second load = %+v, want stored empty document", res)
	}
}

func TestAddHabitPrepends(t *testing.T) {
	tr, _, ds := newTestTracker(t)
	ctx := context.Background()

	if _, err := tr.AddHabit(ctx, "Read"); err != nil {
		t.Fatalf("AddHabit: %v", err)
	}
	h, err := tr.AddHabit(ctx, "  Run  ")
	if err != nil {
		t.Fatalf("AddHabit: %v", err)
	}

	habits := tr.Habits()
	if len(habits) != 2 {
		t.Fatalf("len(habits) = %d, want 2", len(habits))
	}
	if habits[0].ID != h.ID || habits[0].Name != "Run" {
		t.Fatalf("habits[0] = %+v, want new habit named Run", habits[0])
	}
	if len(habits[0].Logs) != 0 || habits[0].Logs == nil {
		t.Fatalf("new habit logs = %#v, want empty", habits[0].Logs)
	}
	if habits[0].CreatedAt != fixedNow.UTC().Format(time.RFC3339) {
		t.Fatalf("CreatedAt = %s", habits[0].CreatedAt)
	}
	if habits[0].Color[0] != Palettes[0][0] {
		t.Fatalf("Color = %v, want palette 0", habits[0].Color)
	}

	res, err := ds.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(res.Document.Habits) != 2 || res.Document.Habits[0].Name != "Run" {
		t.Fatalf("persisted = %+v", res.Document.Habits)
	}
}

func TestAddHabitRejectsBlankName(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	for _, name := range []string{"", "   ", "\t\n"} {
		if _, err := tr.AddHabit(context.Background(), name); !errors.Is(err, ErrEmptyName) {
			t.Fatalf("AddHabit(%q) error = %v, want ErrEmptyName", name, err)
		}
	}
	if n := len(tr.Habits()); n != 0 {
		t.Fatalf("len(habits) = %d, want 0", n)
	}
}

func TestRenamePreservesEverythingElse(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()
	h, _ := tr.AddHabit(ctx, "Read")
	if _, err := tr.ToggleLog(ctx, h.ID, "2024-03-09"); err != nil {
		t.Fatalf("ToggleLog: %v", err)
	}

	if err := tr.RenameHabit(ctx, h.ID, " Read more "); err != nil {
		t.Fatalf("RenameHabit: %v", err)
	}
	got, _ := tr.Habit(h.ID)
	if got.Name != "Read more" {
		t.Fatalf("Name = %q, want %q", got.Name, "Read more")
	}
	if got.Color[0] != h.Color[0] || got.CreatedAt != h.CreatedAt || len(got.Logs) != 1 {
		t.Fatalf("rename changed other fields: %+v", got)
	}

	if err := tr.RenameHabit(ctx, h.ID, " "); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("blank rename error = %v, want ErrEmptyName", err)
	}
	if err := tr.RenameHabit(ctx, "nope", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown rename error = %v, want ErrNotFound", err)
	}
	got, _ = tr.Habit(h.ID)
	if got.Name != "Read more" {
		t.Fatalf("failed renames mutated name to %q", got.Name)
	}
}

func TestDeleteHabit(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()
	a, _ := tr.AddHabit(ctx, "A")
	b, _ := tr.AddHabit(ctx, "B")

	if err := tr.DeleteHabit(ctx, a.ID); err != nil {
		t.Fatalf("DeleteHabit: %v", err)
	}
	habits := tr.Habits()
	if len(habits) != 1 || habits[0].ID != b.ID {
		t.Fatalf("habits = %+v, want only B", habits)
	}
	if err := tr.DeleteHabit(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete error = %v, want ErrNotFound", err)
	}
	if len(tr.Habits()) != 1 {
		t.Fatal("failed delete mutated the document")
	}
}

func TestToggleTwiceRestoresLogs(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()
	h, _ := tr.AddHabit(ctx, "Read")
	for _, d := range []string{"2024-03-01", "2024-03-05"} {
		if _, err := tr.ToggleLog(ctx, h.ID, d); err != nil {
			t.Fatalf("ToggleLog(%s): %v", d, err)
		}
	}
	before, _ := tr.Habit(h.ID)

	first, err := tr.ToggleLog(ctx, h.ID, "2024-03-03")
	if err != nil || first != Marked {
		t.Fatalf("first toggle = %v, %v; want Marked", first, err)
	}
	mid, _ := tr.Habit(h.ID)
	want := []string{"2024-03-01", "2024-03-03", "2024-03-05"}
	if fmt.Sprint(mid.Logs) != fmt.Sprint(want) {
		t.Fatalf("logs = %v, want %v", mid.Logs, want)
	}

	second, err := tr.ToggleLog(ctx, h.ID, "2024-03-03")
	if err != nil || second != Unmarked {
		t.Fatalf("second toggle = %v, %v; want Unmarked", second, err)
	}
	after, _ := tr.Habit(h.ID)
	if fmt.Sprint(after.Logs) != fmt.Sprint(before.Logs) {
		t.Fatalf("logs after double toggle = %v, want %v", after.Logs, before.Logs)
	}
}

func TestToggleSequenceNeverDuplicates(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()
	h, _ := tr.AddHabit(ctx, "Read")

	days := []string{"2024-03-02", "2024-03-01", "2024-03-02", "2024-03-02", "2024-03-04", "2024-03-01", "2024-03-03"}
	for _, d := range days {
		if _, err := tr.ToggleLog(ctx, h.ID, d); err != nil {
			t.Fatalf("ToggleLog(%s): %v", d, err)
		}
	}
	got, _ := tr.Habit(h.ID)
	for i := 1; i < len(got.Logs); i++ {
		if got.Logs[i] <= got.Logs[i-1] {
			t.Fatalf("logs not strictly ascending: %v", got.Logs)
		}
	}
	want := []string{"2024-03-02", "2024-03-03", "2024-03-04"}
	if fmt.Sprint(got.Logs) != fmt.Sprint(want) {
		t.Fatalf("logs = %v, want %v", got.Logs, want)
	}
}

func TestToggleRejectsBadInput(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()
	h, _ := tr.AddHabit(ctx, "Read")

	for _, d := range []string{"", "2024-3-1", "2024-02-30", "tomorrow"} {
		if _, err := tr.ToggleLog(ctx, h.ID, d); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("ToggleLog(%q) error = %v, want ErrInvalidDate", d, err)
		}
	}
	if _, err := tr.ToggleLog(ctx, "missing", "2024-03-01"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown id error = %v, want ErrNotFound", err)
	}
	got, _ := tr.Habit(h.ID)
	if len(got.Logs) != 0 {
		t.Fatalf("rejected toggles mutated logs: %v", got.Logs)
	}
}

func TestCelebratorOnlyOnMark(t *testing.T) {
	rec := &recordingCelebrator{}
	tr, _, _ := newTestTracker(t, WithCelebrator(rec))
	ctx := context.Background()
	h, _ := tr.AddHabit(ctx, "Read")

	_, _ = tr.ToggleLog(ctx, h.ID, "2024-03-09")
	_, _ = tr.ToggleLog(ctx, h.ID, "2024-03-10")
	_, _ = tr.ToggleLog(ctx, h.ID, "2024-03-10")

	if len(rec.got) != 2 {
		t.Fatalf("celebrations = %d, want 2", len(rec.got))
	}
	c := rec.got[1]
	if c.HabitID != h.ID || c.Day != "2024-03-10" || c.Current != 2 || c.Best != 2 {
		t.Fatalf("celebration = %+v", c)
	}
}

func TestCelebratorErrorIsNotReturned(t *testing.T) {
	rec := &recordingCelebrator{err: errors.New("broker down")}
	tr, _, _ := newTestTracker(t, WithCelebrator(rec))
	ctx := context.Background()
	h, _ := tr.AddHabit(ctx, "Read")

	tr2, err := tr.ToggleLog(ctx, h.ID, "2024-03-10")
	if err != nil || tr2 != Marked {
		t.Fatalf("ToggleLog = %v, %v; want Marked, nil", tr2, err)
	}
}

func TestSaveFailurePropagates(t *testing.T) {
	rec := &recordingCelebrator{}
	tr, mem, _ := newTestTracker(t, WithCelebrator(rec))
	ctx := context.Background()
	h, _ := tr.AddHabit(ctx, "Read")

	boom := errors.New("disk full")
	mem.failSet = boom

	if _, err := tr.AddHabit(ctx, "Run"); !errors.Is(err, boom) {
		t.Fatalf("AddHabit error = %v, want disk full", err)
	}
	if _, err := tr.ToggleLog(ctx, h.ID, "2024-03-10"); !errors.Is(err, boom) {
		t.Fatalf("ToggleLog error = %v, want disk full", err)
	}
	if len(rec.got) != 0 {
		t.Fatalf("celebrated %d unsaved marks", len(rec.got))
	}
	if err := tr.Reset(ctx); !errors.Is(err, boom) {
		t.Fatalf("Reset error = %v, want disk full", err)
	}
}

func TestImportRejectsAndKeepsDocument(t *testing.T) {
	tr, _, ds := newTestTracker(t)
	ctx := context.Background()
	h, _ := tr.AddHabit(ctx, "Read")

	cases := []struct {
		raw  string
		want error
	}{
		{"not json", snapshot.ErrUnparsable},
		{`{"nothabits": []}`, snapshot.ErrMissingHabits},
	}
	for _, c := range cases {
		if err := tr.ImportSnapshot(ctx, []byte(c.raw)); !errors.Is(err, c.want) {
			t.Fatalf("ImportSnapshot(%q) error = %v, want %v", c.raw, err, c.want)
		}
	}

	habits := tr.Habits()
	if len(habits) != 1 || habits[0].ID != h.ID {
		t.Fatalf("habits after rejected import = %+v", habits)
	}
	res, _ := ds.Load(ctx)
	if len(res.Document.Habits) != 1 {
		t.Fatalf("store after rejected import = %+v", res.Document)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src, _, _ := newTestTracker(t)
	ctx := context.Background()
	a, _ := src.AddHabit(ctx, "Read")
	b, _ := src.AddHabit(ctx, "Run")
	_, _ = src.ToggleLog(ctx, a.ID, "2024-03-08")
	_, _ = src.ToggleLog(ctx, b.ID, "2024-03-09")
	_, _ = src.ToggleLog(ctx, b.ID, "2024-03-10")

	var buf bytes.Buffer
	if err := snapshot.WriteJSON(&buf, src.ExportSnapshot()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	dst, _, _ := newTestTracker(t)
	if err := dst.ImportSnapshot(ctx, buf.Bytes()); err != nil {
		t.Fatalf("ImportSnapshot: %v", err)
	}

	want, got := src.Habits(), dst.Habits()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Name != want[i].Name || fmt.Sprint(got[i].Logs) != fmt.Sprint(want[i].Logs) {
			t.Fatalf("habit %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestImportNormalizesLogs(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	raw := `{"habits":[{"id":"x","name":"X","color":[],"createdAt":"","logs":["2024-03-02","2024-03-01","2024-03-02"]},{"id":"y","name":"Y"}]}`
	if err := tr.ImportSnapshot(context.Background(), []byte(raw)); err != nil {
		t.Fatalf("ImportSnapshot: %v", err)
	}
	x, _ := tr.Habit("x")
	if fmt.Sprint(x.Logs) != "[2024-03-01 2024-03-02]" {
		t.Fatalf("logs = %v", x.Logs)
	}
	y, _ := tr.Habit("y")
	if y.Logs == nil {
		t.Fatal("missing logs decoded as nil")
	}
}

func TestExportIsDeepCopy(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()
	h, _ := tr.AddHabit(ctx, "Read")
	_, _ = tr.ToggleLog(ctx, h.ID, "2024-03-10")

	doc := tr.ExportSnapshot()
	doc.Habits[0].Logs[0] = "1999-01-01"
	doc.Habits[0].Name = "changed"

	got, _ := tr.Habit(h.ID)
	if got.Name != "Read" || got.Logs[0] != "2024-03-10" {
		t.Fatalf("export aliased tracker state: %+v", got)
	}
}

func TestResetEmptiesDocument(t *testing.T) {
	tr, _, ds := newTestTracker(t)
	ctx := context.Background()
	_, _ = tr.AddHabit(ctx, "Read")
	if err := tr.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if n := len(tr.Habits()); n != 0 {
		t.Fatalf("len(habits) = %d, want 0", n)
	}
	res, _ := ds.Load(ctx)
	if len(res.Document.Habits) != 0 {
		t.Fatalf("stored habits = %d, want 0", len(res.Document.Habits))
	}
}

func TestFindHabit(t *testing.T) {
	doc := model.Document{Habits: []model.Habit{
		{ID: "abc123", Name: "Read"},
		{ID: "abd456", Name: "Run"},
		{ID: "zzz999", Name: "abc"},
	}}
	tr := New(doc, nil)

	tests := []struct {
		ref    string
		wantID string
		err    error
	}{
		{"abc123", "abc123", nil},
		{"read", "abc123", nil},
		{"ABC", "zzz999", nil},
		{"abd", "abd456", nil},
		{"ab", "", ErrAmbiguous},
		{"walk", "", ErrNotFound},
		{"", "", ErrNotFound},
	}
	for _, tt := range tests {
		h, err := tr.FindHabit(tt.ref)
		if tt.err != nil {
			if !errors.Is(err, tt.err) {
				t.Fatalf("FindHabit(%q) error = %v, want %v", tt.ref, err, tt.err)
			}
			continue
		}
		if err != nil || h.ID != tt.wantID {
			t.Fatalf("FindHabit(%q) = %s, %v; want %s", tt.ref, h.ID, err, tt.wantID)
		}
	}
}

func TestResolveDay(t *testing.T) {
	tr := New(model.EmptyDocument(), nil, WithClock(func() time.Time { return fixedNow }))

	tests := []struct {
		ref  string
		want string
	}{
		{"", "2024-03-10"},
		{"today", "2024-03-10"},
		{"Yesterday", "2024-03-09"},
		{"-10", "2024-02-29"},
		{"-0", "2024-03-10"},
		{"2023-12-31", "2023-12-31"},
	}
	for _, tt := range tests {
		got, err := tr.ResolveDay(tt.ref)
		if err != nil || got != tt.want {
			t.Fatalf("ResolveDay(%q) = %s, %v; want %s", tt.ref, got, err, tt.want)
		}
	}
	for _, bad := range []string{"-x", "--1", "2024-13-01", "soon"} {
		if _, err := tr.ResolveDay(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("ResolveDay(%q) error = %v, want ErrInvalidDate", bad, err)
		}
	}
}

func TestStatsAndTotals(t *testing.T) {
	doc := model.Document{Habits: []model.Habit{
		{ID: "a", Name: "Read", Logs: []string{"2024-03-08", "2024-03-09", "2024-03-10"}},
		{ID: "b", Name: "Run", Logs: []string{"2024-03-01", "2024-03-03"}},
	}}
	tr := New(doc, nil, WithClock(func() time.Time { return fixedNow }))

	s, err := tr.Stats("a")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if s.Total != 3 || s.Current != 3 || s.Best != 3 {
		t.Fatalf("stats = %+v, want 3/3/3", s)
	}
	if _, err := tr.Stats("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Stats(nope) error = %v, want ErrNotFound", err)
	}

	tot := tr.Totals()
	if tot.Habits != 2 || tot.Completions != 5 || tot.DoneToday != 1 || tot.LongestHabit != "Read" {
		t.Fatalf("totals = %+v", tot)
	}

	if w := tr.Window(); len(w) != 371 || w[len(w)-1] != "2024-03-10" {
		t.Fatalf("window len = %d last = %s", len(w), w[len(w)-1])
	}
	days := tr.Daily(3)
	if len(days) != 3 || days[2].Completed != 1 || days[1].Completed != 1 {
		t.Fatalf("daily = %+v", days)
	}
}

func TestPalettes(t *testing.T) {
	if len(Palettes) != 7 {
		t.Fatalf("len(Palettes) = %d, want 7", len(Palettes))
	}
	p := RandomPalette()
	p[0] = "mutated"
	for _, pal := range Palettes {
		if pal[0] == "mutated" {
			t.Fatal("RandomPalette aliases the built-in table")
		}
	}
	if got := FixedPalette(-1)(); got[0] != Palettes[6][0] {
		t.Fatalf("FixedPalette(-1) = %v, want palette 6", got)
	}
	n := 0
	next := CyclePalette(func() int { return n })
	for i := 0; i < 8; i++ {
		if got := next(); got[0] != Palettes[i%7][0] {
			t.Fatalf("CyclePalette step %d = %v", i, got)
		}
		n++
	}
}

func TestWindowStableAcrossMidnight(t *testing.T) {
	now := fixedNow
	tr, _, _ := newTestTracker(t, WithClock(func() time.Time { return now }))

	now = now.Add(24 * time.Hour)
	if got := tr.Today(); got != "2024-03-11" {
		t.Fatalf("Today = %s, want 2024-03-11", got)
	}
	w := tr.Window()
	if len(w) != 371 || w[len(w)-1] != "2024-03-10" {
		t.Fatalf("window last = %s, want 2024-03-10", w[len(w)-1])
	}

	w[0] = "mutated"
	if tr.Window()[0] == "mutated" {
		t.Fatal("Window returns the tracker's own slice")
	}
}
