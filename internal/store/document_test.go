package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/theirongolddev/streaklab/internal/config"
	"github.com/theirongolddev/streaklab/internal/model"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoadInitializesMissingDocument(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	ds := NewDocumentStore(kv, "", PreserveCorrupt, nil)

	res, err := ds.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !res.Initialized {
		t.Fatal("Initialized = false for an empty store")
	}
	if len(res.Document.Habits) != 0 {
		t.Fatalf("len(Habits) = %d, want 0", len(res.Document.Habits))
	}

	raw, ok, _ := kv.Get(ctx, config.DefaultKey)
	if !ok {
		t.Fatal("empty document was not persisted")
	}
	if raw != `{"habits":[]}` {
		t.Fatalf("persisted = %s, want {\"habits\":[]}", raw)
	}
}

func TestLoadCorruptPreservesStoredValue(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	_ = kv.Set(ctx, "k", "{not json")

	core, logs := observer.New(zapcore.WarnLevel)
	ds := NewDocumentStore(kv, "k", PreserveCorrupt, zap.New(core))

	res, err := ds.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !res.Corrupt || res.ParseErr == nil {
		t.Fatalf("Corrupt = %v, ParseErr = %v; want corrupt with error", res.Corrupt, res.ParseErr)
	}
	if len(res.Document.Habits) != 0 {
		t.Fatalf("len(Habits) = %d, want 0", len(res.Document.Habits))
	}
	if raw, _, _ := kv.Get(ctx, "k"); raw != "{not json" {
		t.Fatalf("corrupt value was rewritten to %q", raw)
	}
	if logs.FilterMessageSnippet("corrupt").Len() != 1 {
		t.Fatalf("expected one corrupt warning, got %d entries", logs.Len())
	}
}

func TestLoadCorruptOverwritePolicy(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	_ = kv.Set(ctx, "k", "[1,2,")

	ds := NewDocumentStore(kv, "k", OverwriteCorrupt, nil)
	if _, err := ds.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if raw, _, _ := kv.Get(ctx, "k"); raw != `{"habits":[]}` {
		t.Fatalf("stored = %q, want empty document", raw)
	}
}

func TestLoadNullHabitsNormalized(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	_ = kv.Set(ctx, "k", `{"habits":[{"id":"a","name":"Read","logs":null}]}`)

	res, err := NewDocumentStore(kv, "k", PreserveCorrupt, nil).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Corrupt {
		t.Fatal("valid document reported corrupt")
	}
	if res.Document.Habits[0].Logs == nil {
		t.Fatal("nil logs not normalized")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	ds := NewDocumentStore(kv, "k", PreserveCorrupt, nil)

	doc := model.Document{Habits: []model.Habit{{
		ID:        "a",
		Name:      "Read",
		Color:     []string{"#ff7eb3", "#ff758c", "#ffb347"},
		CreatedAt: "2024-01-01T10:00:00Z",
		Logs:      []string{"2024-01-01"},
	}}}
	if err := ds.Save(ctx, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	res, err := ds.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := res.Document.Habits[0]
	if got.ID != "a" || got.Name != "Read" || got.Color[2] != "#ffb347" || got.Logs[0] != "2024-01-01" {
		t.Fatalf("round trip = %+v", got)
	}
}

// failingKV rejects every write.
type failingKV struct {
	*Memory
	err error
}

func (f failingKV) Set(context.Context, string, string) error { return f.err }

func TestSaveErrorPropagates(t *testing.T) {
	kv := failingKV{Memory: NewMemory(), err: errors.New("quota exceeded")}
	ds := NewDocumentStore(kv, "k", PreserveCorrupt, nil)

	err := ds.Save(context.Background(), model.EmptyDocument())
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("Save error = %v, want quota exceeded", err)
	}
}

func TestParseCorruptPolicy(t *testing.T) {
	if p, err := ParseCorruptPolicy("overwrite"); err != nil || p != OverwriteCorrupt {
		t.Fatalf("overwrite -> %v, %v", p, err)
	}
	if p, err := ParseCorruptPolicy(""); err != nil || p != PreserveCorrupt {
		t.Fatalf("empty -> %v, %v", p, err)
	}
	if _, err := ParseCorruptPolicy("shred"); err == nil {
		t.Fatal("accepted unknown policy")
	}
}

func TestPeekDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	ds := NewDocumentStore(kv, "k", PreserveCorrupt, nil)

	doc, err := ds.Peek(ctx)
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if len(doc.Habits) != 0 {
		t.Fatalf("len(Habits) = %d, want 0", len(doc.Habits))
	}
	if _, ok, _ := kv.Get(ctx, "k"); ok {
		t.Fatal("Peek persisted a document")
	}

	_ = kv.Set(ctx, "k", "{not json")
	if _, err := ds.Peek(ctx); err == nil {
		t.Fatal("Peek on corrupt value: want error")
	}
	if raw, _, _ := kv.Get(ctx, "k"); raw != "{not json" {
		t.Fatalf("stored value changed to %q", raw)
	}
}

func TestReadsSortAndDedupeLogs(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	_ = kv.Set(ctx, "k", `{"habits":[{"id":"a","name":"Run","logs":["2024-01-03","2024-01-01","2024-01-03"]}]}`)
	ds := NewDocumentStore(kv, "k", PreserveCorrupt, nil)

	want := "2024-01-01 2024-01-03"
	peeked, err := ds.Peek(ctx)
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if got := strings.Join(peeked.Habits[0].Logs, " "); got != want {
		t.Fatalf("Peek logs = %s, want %s", got, want)
	}
	res, err := ds.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := strings.Join(res.Document.Habits[0].Logs, " "); got != want {
		t.Fatalf("Load logs = %s, want %s", got, want)
	}
	if !res.Document.Habits[0].Has("2024-01-03") {
		t.Fatal("Has(2024-01-03) = false after load")
	}
}
