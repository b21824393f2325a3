package snapshot

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/streaklab/internal/model"

	"gopkg.in/yaml.v3"
)

func sampleDoc() model.Document {
	return model.Document{Habits: []model.Habit{
		{ID: "h2", Name: "Run, fast", Color: []string{"#7ce1ff", "#5ee7df", "#a78bfa"}, CreatedAt: "2024-01-02T08:00:00Z", Logs: []string{"2024-01-02"}},
		{ID: "h1", Name: "Read", Color: []string{"#ff7eb3", "#ff758c", "#ffb347"}, CreatedAt: "2024-01-01T08:00:00Z", Logs: []string{"2024-01-01", "2024-01-03"}},
	}}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"not json", "habits: yes", ErrUnparsable},
		{"array at top", `[{"habits": []}]`, ErrUnparsable},
		{"missing habits", `{"nothabits": []}`, ErrMissingHabits},
		{"null habits", `{"habits": null}`, ErrMissingHabits},
		{"habits wrong shape", `{"habits": "lots"}`, ErrMissingHabits},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			if !errors.Is(err, tt.want) {
				t.Fatalf("Decode error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeAcceptsEmptyAndExtraFields(t *testing.T) {
	doc, err := Decode([]byte(`{"habits": [], "version": 2}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if doc.Habits == nil || len(doc.Habits) != 0 {
		t.Fatalf("Habits = %#v, want empty non-nil", doc.Habits)
	}
}

func TestJSONExportDecodesBack(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleDoc()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"habits\": [") {
		t.Fatalf("export is not two-space indented:\n%s", buf.String())
	}

	doc, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(doc.Habits) != 2 || doc.Habits[1].Logs[1] != "2024-01-03" {
		t.Fatalf("decoded = %+v", doc)
	}
}

func TestWriteCSV(t *testing.T) {
	window := []string{"2024-01-01", "2024-01-02", "2024-01-03"}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleDoc(), window); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	want := strings.Join([]string{
		`date,"Run, fast",Read`,
		"2024-01-01,0,1",
		"2024-01-02,1,0",
		"2024-01-03,0,1",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("csv =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteCSVNoHabits(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, model.EmptyDocument(), []string{"2024-01-01"}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if buf.String() != "date\n2024-01-01\n" {
		t.Fatalf("csv = %q", buf.String())
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatYAML, sampleDoc(), nil); err != nil {
		t.Fatalf("Write yaml: %v", err)
	}
	var doc model.Document
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if doc.Habits[0].Name != "Run, fast" || doc.Habits[1].CreatedAt != "2024-01-01T08:00:00Z" {
		t.Fatalf("yaml decoded = %+v", doc)
	}
}

func TestParseFormatAndFilename(t *testing.T) {
	if f, err := ParseFormat("yml"); err != nil || f != FormatYAML {
		t.Fatalf("ParseFormat(yml) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatal("ParseFormat accepted xml")
	}

	now := time.Date(2024, 7, 4, 10, 0, 0, 0, time.Local)
	if got := ExportFilename(FormatJSON, now); got != "streaklab-export-2024-07-04.json" {
		t.Fatalf("json filename = %s", got)
	}
	if got := ExportFilename(FormatCSV, now); got != "streaklab-csv-2024-07-04.csv" {
		t.Fatalf("csv filename = %s", got)
	}
}
