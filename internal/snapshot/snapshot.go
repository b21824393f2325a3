// Package snapshot decodes imported habit documents and encodes exports as
// JSON, CSV or YAML.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/streaklab/internal/model"
)

var (
	// ErrUnparsable means the import text is not a JSON object.
	ErrUnparsable = errors.New("snapshot is not valid JSON")
	// ErrMissingHabits means the JSON object has no usable habits field.
	ErrMissingHabits = errors.New("snapshot has no habits field")
)

// Format names an export encoding.
type Format string

// Supported export formats.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatCSV, FormatYAML:
		return Format(s), nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want json, csv or yaml)", s)
	}
}

// Decode parses raw import text. Only the document's shape is checked:
// it must be a JSON object whose habits field is a list of habit records.
func Decode(raw []byte) (model.Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return model.Document{}, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}

	habitsRaw, ok := top["habits"]
	if !ok || bytes.Equal(bytes.TrimSpace(habitsRaw), []byte("null")) {
		return model.Document{}, ErrMissingHabits
	}

	var habits []model.Habit
	if err := json.Unmarshal(habitsRaw, &habits); err != nil {
		return model.Document{}, fmt.Errorf("%w: %v", ErrMissingHabits, err)
	}
	if habits == nil {
		habits = []model.Habit{}
	}
	return model.Document{Habits: habits}, nil
}

// ExportFilename returns the download name for an export made at now.
func ExportFilename(f Format, now time.Time) string {
	day := model.FormatDay(now)
	switch f {
	case FormatCSV:
		return "streaklab-csv-" + day + ".csv"
	case FormatYAML:
		return "streaklab-export-" + day + ".yaml"
	default:
		return "streaklab-export-" + day + ".json"
	}
}
