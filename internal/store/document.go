package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/theirongolddev/streaklab/internal/config"
	"github.com/theirongolddev/streaklab/internal/logging"
	"github.com/theirongolddev/streaklab/internal/model"

	"go.uber.org/zap"
)

// CorruptPolicy decides what Load does with a value that fails to parse.
type CorruptPolicy int

const (
	// PreserveCorrupt leaves the stored value untouched so a later fix or
	// parser can still recover it. The same read fails on every load.
	PreserveCorrupt CorruptPolicy = iota
	// OverwriteCorrupt replaces the stored value with the empty document.
	OverwriteCorrupt
)

// ParseCorruptPolicy maps the config string to a policy.
func ParseCorruptPolicy(s string) (CorruptPolicy, error) {
	switch s {
	case config.CorruptPreserve, "":
		return PreserveCorrupt, nil
	case config.CorruptOverwrite:
		return OverwriteCorrupt, nil
	default:
		return PreserveCorrupt, fmt.Errorf("unknown on_corrupt policy %q", s)
	}
}

// LoadResult describes how the document was obtained.
type LoadResult struct {
	Document    model.Document
	Initialized bool  // nothing was stored; an empty document was written
	Corrupt     bool  // stored value failed to parse; Document is empty
	ParseErr    error // set when Corrupt
}

// DocumentStore reads and writes the whole habit document under one key.
type DocumentStore struct {
	kv     KV
	key    string
	policy CorruptPolicy
	log    *zap.Logger
}

// NewDocumentStore wraps kv. An empty key falls back to config.DefaultKey.
func NewDocumentStore(kv KV, key string, policy CorruptPolicy, log *zap.Logger) *DocumentStore {
	if key == "" {
		key = config.DefaultKey
	}
	return &DocumentStore{kv: kv, key: key, policy: policy, log: logging.OrNop(log)}
}

// Key returns the storage key.
func (s *DocumentStore) Key() string { return s.key }

// UpdatedAt reports when the document was last written. ok is false when
// the backend does not record write times or nothing is stored yet.
func (s *DocumentStore) UpdatedAt(ctx context.Context) (at time.Time, ok bool, err error) {
	ts, isTS := s.kv.(Timestamped)
	if !isTS {
		return time.Time{}, false, nil
	}
	at, err = ts.UpdatedAt(ctx, s.key)
	if err != nil {
		return time.Time{}, false, err
	}
	return at, !at.IsZero(), nil
}

// Load returns the stored document. A missing value is initialized to the
// empty document and persisted; an unparsable one yields an empty document
// and is handled per the store's CorruptPolicy. Backend errors are returned.
func (s *DocumentStore) Load(ctx context.Context) (LoadResult, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return LoadResult{}, fmt.Errorf("loading habits: %w", err)
	}

	if !ok {
		doc := model.EmptyDocument()
		if err := s.Save(ctx, doc); err != nil {
			return LoadResult{}, err
		}
		s.log.Info("initialized empty habit document", zap.String("key", s.key))
		return LoadResult{Document: doc, Initialized: true}, nil
	}

	doc, perr := decodeDocument(raw)
	if perr != nil {
		s.log.Warn("stored habit document is corrupt; starting empty",
			zap.String("key", s.key),
			zap.Int("bytes", len(raw)),
			zap.Error(perr),
		)
		res := LoadResult{Document: model.EmptyDocument(), Corrupt: true, ParseErr: perr}
		if s.policy == OverwriteCorrupt {
			if err := s.Save(ctx, res.Document); err != nil {
				return res, err
			}
		}
		return res, nil
	}

	return LoadResult{Document: doc}, nil
}

// Peek reads the stored document without initializing or repairing it.
// A missing key reads as the empty document.
func (s *DocumentStore) Peek(ctx context.Context) (model.Document, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return model.Document{}, fmt.Errorf("loading habits: %w", err)
	}
	if !ok {
		return model.EmptyDocument(), nil
	}
	doc, err := decodeDocument(raw)
	if err != nil {
		return model.Document{}, fmt.Errorf("decoding habits: %w", err)
	}
	return doc, nil
}

// Save writes the whole document, unconditionally.
func (s *DocumentStore) Save(ctx context.Context, doc model.Document) error {
	data, err := json.Marshal(normalize(doc))
	if err != nil {
		return fmt.Errorf("encoding habits: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("saving habits: %w", err)
	}
	s.log.Debug("saved habit document", zap.Int("habits", len(doc.Habits)), zap.Int("bytes", len(data)))
	return nil
}

func decodeDocument(raw string) (model.Document, error) {
	var doc model.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return model.Document{}, err
	}
	// Other writers may store logs unsorted; Habit.Has needs them sorted.
	for i := range doc.Habits {
		doc.Habits[i].Logs = model.NormalizeLogs(doc.Habits[i].Logs)
	}
	return normalize(doc), nil
}

// normalize makes nil slices encode as [] instead of null.
func normalize(doc model.Document) model.Document {
	if doc.Habits == nil {
		doc.Habits = []model.Habit{}
	}
	for i := range doc.Habits {
		if doc.Habits[i].Logs == nil {
			doc.Habits[i].Logs = []string{}
		}
	}
	return doc
}
