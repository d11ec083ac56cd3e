package verses

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/verseclock/internal/apperr"
	"github.com/starford/verseclock/internal/checksum"
)

// Item is one row of a verse table as it appears in the source document.
type Item struct {
	Key        string   `yaml:"-"`
	Text       string   `yaml:"text"`
	Categories []string `yaml:"categories"`
}

// Validate checks the key format and that the verse has text.
func (i Item) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Key, validation.Required, validation.Match(timeKeyRe)),
		validation.Field(&i.Text, validation.Required),
		validation.Field(&i.Categories, validation.Each(validation.Required)),
	)
}

type slot struct {
	key   TimeKey
	entry Entry
}

// Table maps time keys to verses. It is immutable once built and keeps the
// order in which entries were added; every lookup that scans the table walks
// it in that order.
type Table struct {
	slots    []slot
	index    map[TimeKey]int
	checksum string
}

// NewTable builds a table from items in the given order. Duplicate keys and
// an empty item list are rejected.
func NewTable(items ...Item) (*Table, error) {
	if len(items) == 0 {
		return nil, apperr.ErrEmptyTable
	}
	t := &Table{
		slots: make([]slot, 0, len(items)),
		index: make(map[TimeKey]int, len(items)),
	}
	var canon strings.Builder
	for n, it := range items {
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("verses: entry %d (%q): %w", n, it.Key, err)
		}
		key, err := ParseTimeKey(it.Key)
		if err != nil {
			return nil, fmt.Errorf("verses: entry %d: %w", n, err)
		}
		if _, dup := t.index[key]; dup {
			return nil, fmt.Errorf("verses: duplicate time key %s", key)
		}
		t.index[key] = len(t.slots)
		t.slots = append(t.slots, slot{
			key:   key,
			entry: Entry{Text: it.Text, Categories: slices.Clone(it.Categories)},
		})
		fmt.Fprintf(&canon, "%s\t%s\t%s\n", key, it.Text, strings.Join(it.Categories, ","))
	}
	t.checksum = checksum.Sum([]byte(canon.String()))
	return t, nil
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.slots) }

// Checksum identifies the table contents and order.
func (t *Table) Checksum() string { return t.checksum }

// Lookup returns the entry stored at exactly key.
func (t *Table) Lookup(key TimeKey) (Entry, bool) {
	i, ok := t.index[key]
	if !ok {
		return Entry{}, false
	}
	return t.slots[i].entry, true
}

// At returns the i-th entry in table order.
func (t *Table) At(i int) (TimeKey, Entry) {
	s := t.slots[i]
	return s.key, s.entry
}

// All iterates entries in table order.
func (t *Table) All() iter.Seq2[TimeKey, Entry] {
	return func(yield func(TimeKey, Entry) bool) {
		for _, s := range t.slots {
			if !yield(s.key, s.entry) {
				return
			}
		}
	}
}

// Categories returns the sorted set of categories used by any entry.
func (t *Table) Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range t.slots {
		for _, c := range s.entry.Categories {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out
}
