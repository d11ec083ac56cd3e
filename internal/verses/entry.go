// Package verses holds the static time-to-verse table and the resolver that
// maps a wall-clock minute to a verse.
package verses

import (
	"slices"
	"strings"
)

// referenceSep separates the reference from the body in Entry.Text.
const referenceSep = " - "

// Entry is a single verse: "<Reference> - <Body>" plus its category tags.
type Entry struct {
	Text       string   `json:"text" yaml:"text"`
	Categories []string `json:"categories" yaml:"categories"`
}

// Reference returns the part of the text before the first " - ".
func (e Entry) Reference() string {
	return ReferenceOf(e.Text)
}

// Body returns the part of the text after the first " - ", or the whole text
// when there is no separator.
func (e Entry) Body() string {
	if _, body, ok := strings.Cut(e.Text, referenceSep); ok {
		return body
	}
	return e.Text
}

// HasCategory reports whether category is one of the entry's tags.
func (e Entry) HasCategory(category string) bool {
	return slices.Contains(e.Categories, category)
}

// ReferenceOf extracts the reference from a verse text. Texts without a
// separator are their own reference.
func ReferenceOf(text string) string {
	ref, _, _ := strings.Cut(text, referenceSep)
	return ref
}

// Fallback is returned when the table has no entries to choose from.
var Fallback = Entry{
	Text:       "Psalm 119:105 - Your word is a lamp for my feet, a light on my path.",
	Categories: []string{"wisdom", "faith"},
}
