package verses

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/starford/verseclock/internal/apperr"
)

const (
	// categoryWindow is the widest distance, in minutes, at which a
	// category-filtered lookup may borrow a verse from another time slot.
	categoryWindow = 30

	// MinSearchLen is the shortest search term that yields results.
	MinSearchLen = 2
	// MaxSearchResults caps the number of search hits.
	MaxSearchResults = 10

	dateLayout = "2006-01-02"
)

// Resolver answers time, date and text queries against a Table.
type Resolver struct {
	table *Table
}

// NewResolver wraps table. A nil table behaves as an empty one.
func NewResolver(table *Table) *Resolver {
	if table == nil {
		table = &Table{index: map[TimeKey]int{}}
	}
	return &Resolver{table: table}
}

// Table returns the underlying table.
func (r *Resolver) Table() *Table { return r.table }

// Resolve returns the verse for key. With an empty category it is the exact
// entry, or the closest one. With a category, the first entry in table order
// tagged with it and at most 30 minutes away wins; this is first-fit, not the
// nearest tagged entry. When nothing qualifies the category is ignored.
func (r *Resolver) Resolve(key TimeKey, category string) Entry {
	if category != "" {
		for k, e := range r.table.All() {
			if e.HasCategory(category) && distance(k, key) <= categoryWindow {
				return e
			}
		}
	}
	if e, ok := r.table.Lookup(key); ok {
		return e
	}
	return r.Closest(key)
}

// Closest returns the entry at the smallest linear minute distance from key.
// Ties go to the entry that comes first in table order.
func (r *Resolver) Closest(key TimeKey) Entry {
	best, bestDist := Fallback, -1
	for k, e := range r.table.All() {
		if d := distance(k, key); bestDist < 0 || d < bestDist {
			best, bestDist = e, d
		}
	}
	return best
}

// VerseOfDay picks the verse for a calendar date given as "YYYY-MM-DD".
// The same date always selects the same slot of the same table.
func (r *Resolver) VerseOfDay(date string) (Entry, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return Entry{}, fmt.Errorf("%w: %q", apperr.ErrInvalidDate, date)
	}
	if r.table.Len() == 0 {
		return Entry{}, apperr.ErrEmptyTable
	}
	_, e := r.table.At(DayIndex(date, r.table.Len()))
	return e, nil
}

// VerseOfDayAt is VerseOfDay for the UTC calendar date of t, so every
// timezone sees the same verse at the same instant.
func (r *Resolver) VerseOfDayAt(t time.Time) (Entry, error) {
	return r.VerseOfDay(DateAt(t))
}

// DateAt returns the UTC calendar date of t as "YYYY-MM-DD".
func DateAt(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// DayIndex maps a date string onto [0, size) with a 32-bit rolling hash
// h = h*31 + c over the string's UTF-16 code units.
func DayIndex(date string, size int) int {
	var h int32
	for _, c := range utf16.Encode([]rune(date)) {
		h = h*31 + int32(c)
	}
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	return int(abs % int64(size))
}

// Hit is a search result together with the slot it was found in.
type Hit struct {
	TimeKey string `json:"time_key"`
	Entry
}

// Search returns up to ten entries, in table order, whose text or one of
// whose categories contains term, ignoring case. Terms shorter than two
// UTF-16 code units match nothing.
func (r *Resolver) Search(term string) []Hit {
	term = strings.ToLower(term)
	if len(utf16.Encode([]rune(term))) < MinSearchLen {
		return nil
	}
	var hits []Hit
	for k, e := range r.table.All() {
		if !matches(e, term) {
			continue
		}
		hits = append(hits, Hit{TimeKey: k.String(), Entry: e})
		if len(hits) >= MaxSearchResults {
			break
		}
	}
	return hits
}

func matches(e Entry, term string) bool {
	if strings.Contains(strings.ToLower(e.Text), term) {
		return true
	}
	for _, c := range e.Categories {
		if strings.Contains(strings.ToLower(c), term) {
			return true
		}
	}
	return false
}

// Categories lists the categories known to the table.
func (r *Resolver) Categories() []string {
	return r.table.Categories()
}
