package snapshot

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/theirongolddev/streaklab/internal/model"

	"gopkg.in/yaml.v3"
)

// Write encodes doc in format f. window supplies CSV row order and is
// ignored by the other formats.
func Write(w io.Writer, f Format, doc model.Document, window []string) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, doc)
	case FormatCSV:
		return WriteCSV(w, doc, window)
	case FormatYAML:
		return WriteYAML(w, doc)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

// WriteJSON writes doc pretty-printed with two-space indentation.
// Clone turns nil logs into [] so they never encode as null.
func WriteJSON(w io.Writer, doc model.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc.Clone())
}

// WriteYAML writes doc as a YAML document.
func WriteYAML(w io.Writer, doc model.Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc.Clone()); err != nil {
		return err
	}
	return enc.Close()
}

// WriteCSV writes a date x habit matrix: header date,<names...>, then one
// row per window date with 1 where the habit was done and 0 otherwise.
func WriteCSV(w io.Writer, doc model.Document, window []string) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(doc.Habits)+1)
	header = append(header, "date")
	for _, h := range doc.Habits {
		header = append(header, h.Name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for _, d := range window {
		row[0] = d
		for i, h := range doc.Habits {
			if h.Has(d) {
				row[i+1] = "1"
			} else {
				row[i+1] = "0"
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
