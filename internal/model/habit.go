// Package model defines domain types for streaklab habits and statistics.
package model

// Habit is a tracked behavior and its completion history.
type Habit struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Color     []string `json:"color" yaml:"color"`
	CreatedAt string   `json:"createdAt" yaml:"createdAt"`
	Logs      []string `json:"logs" yaml:"logs"`
}

// Clone returns a deep copy of h.
func (h Habit) Clone() Habit {
	c := h
	c.Color = append([]string(nil), h.Color...)
	c.Logs = append(make([]string, 0, len(h.Logs)), h.Logs...)
	return c
}

// Has reports whether day is among the habit's logs.
// Logs are kept sorted, so this is a binary search.
func (h Habit) Has(day string) bool {
	_, ok := searchDay(h.Logs, day)
	return ok
}

// Document is the persisted top-level store: every habit, in display order.
type Document struct {
	Habits []Habit `json:"habits" yaml:"habits"`
}

// EmptyDocument returns a document with no habits.
func EmptyDocument() Document {
	return Document{Habits: []Habit{}}
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	out := Document{Habits: make([]Habit, 0, len(d.Habits))}
	for _, h := range d.Habits {
		out.Habits = append(out.Habits, h.Clone())
	}
	return out
}

// Index returns the position of the habit with the given id, or -1.
func (d Document) Index(id string) int {
	for i, h := range d.Habits {
		if h.ID == id {
			return i
		}
	}
	return -1
}
