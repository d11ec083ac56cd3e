// Package userstate keeps the small per-installation preferences: theme and
// the first-visit flag.
package userstate

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/verseclock/internal/apperr"
	"github.com/starford/verseclock/internal/storage"
)

// Storage keys.
const (
	KeyFirstVisit = "bibleClockFirstVisit"
	KeyTheme      = "bibleClockTheme"
)

// Theme is the UI colour scheme.
type Theme string

// Themes.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme validates a theme name.
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	}
	return "", fmt.Errorf("%w: %q", apperr.ErrInvalidTheme, s)
}

// WelcomeMessage is shown once, on the first visit.
const WelcomeMessage = `Welcome to Bible Verse Clock!
This app shows you a Bible verse based on the current time.
- Each time corresponds to a meaningful verse
- Save your favorite verses
- Search for specific verses
- Filter by categories
- Read daily devotionals
May God's Word bring light to your day!`

// Store reads and writes user preferences.
type Store struct {
	kv  storage.Provider
	now func() time.Time
}

// NewStore creates a Store. now supplies local wall-clock time.
func NewStore(kv storage.Provider, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{kv: kv, now: now}
}

// Theme returns the stored theme. With nothing stored, night hours (18:00 to
// 06:00) pick dark and persist it, so the choice sticks; daytime reads as
// light without storing anything.
func (s *Store) Theme(ctx context.Context) (Theme, error) {
	v, ok, err := s.kv.Get(ctx, KeyTheme)
	if err != nil {
		return "", err
	}
	if ok {
		if Theme(v) == ThemeDark {
			return ThemeDark, nil
		}
		return ThemeLight, nil
	}
	if IsNight(s.now()) {
		if err := s.kv.Set(ctx, KeyTheme, string(ThemeDark)); err != nil {
			return "", err
		}
		return ThemeDark, nil
	}
	return ThemeLight, nil
}

// SetTheme stores an explicit choice.
func (s *Store) SetTheme(ctx context.Context, t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}
	return s.kv.Set(ctx, KeyTheme, string(t))
}

// ToggleTheme flips between light and dark and returns the new theme.
func (s *Store) ToggleTheme(ctx context.Context) (Theme, error) {
	cur, err := s.Theme(ctx)
	if err != nil {
		return "", err
	}
	next := ThemeDark
	if cur == ThemeDark {
		next = ThemeLight
	}
	return next, s.SetTheme(ctx, next)
}

// FirstVisit reports true exactly once per installation.
func (s *Store) FirstVisit(ctx context.Context) (bool, error) {
	_, seen, err := s.kv.Get(ctx, KeyFirstVisit)
	if err != nil {
		return false, err
	}
	if seen {
		return false, nil
	}
	return true, s.kv.Set(ctx, KeyFirstVisit, "true")
}

// IsNight reports whether t falls at or after 18:00 or before 06:00.
func IsNight(t time.Time) bool {
	h := t.Hour()
	return h >= 18 || h < 6
}
