// Package favorites persists the user's favorite verses as one JSON document
// in the key-value store.
package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/starford/verseclock/internal/storage"
	"github.com/starford/verseclock/internal/verses"
)

// Key is the storage key of the favorites collection.
const Key = "bibleClockFavorites"

// timestampLayout is ISO-8601 UTC with milliseconds, so stored values sort
// lexically in time order.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Entry is one favorite verse. Text is the identity.
type Entry struct {
	Text      string `json:"text"`
	Reference string `json:"reference"`
	Timestamp string `json:"timestamp"`
}

// Store reads and writes the favorites collection. Every mutation rewrites
// the whole collection; every read decodes it fresh.
type Store struct {
	kv     storage.Provider
	now    func() time.Time
	logger *slog.Logger

	mu sync.Mutex // serializes read-modify-write cycles
}

// NewStore creates a store over kv. A nil now uses time.Now.
func NewStore(kv storage.Provider, now func() time.Time, logger *slog.Logger) *Store {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, now: now, logger: logger}
}

// Toggle adds text when absent and removes it when present. It returns the
// membership after the change. An empty reference is derived from text.
func (s *Store) Toggle(ctx context.Context, text, reference string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	favs, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	if containsText(favs, text) {
		favs = without(favs, text)
		return false, s.save(ctx, favs)
	}
	if reference == "" {
		reference = verses.ReferenceOf(text)
	}
	favs = append(favs, Entry{
		Text:      text,
		Reference: reference,
		Timestamp: s.now().UTC().Format(timestampLayout),
	})
	return true, s.save(ctx, favs)
}

// Remove deletes every entry with text. Removing an absent entry succeeds.
func (s *Store) Remove(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	favs, err := s.load(ctx)
	if err != nil {
		return err
	}
	return s.save(ctx, without(favs, text))
}

// IsFavorite reports whether text is stored.
func (s *Store) IsFavorite(ctx context.Context, text string) (bool, error) {
	favs, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	return containsText(favs, text), nil
}

// List returns the favorites, most recent first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	favs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(favs, func(a, b Entry) int {
		return strings.Compare(b.Timestamp, a.Timestamp)
	})
	return favs, nil
}

// All is a lazy view of List. Each iteration reloads the collection; load
// errors are logged and end the sequence.
func (s *Store) All(ctx context.Context) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		favs, err := s.List(ctx)
		if err != nil {
			s.logger.Error("favorites: list failed", slog.String("error", err.Error()))
			return
		}
		for _, f := range favs {
			if !yield(f) {
				return
			}
		}
	}
}

// load decodes the stored collection. A corrupted document reads as empty.
func (s *Store) load(ctx context.Context) ([]Entry, error) {
	raw, ok, err := s.kv.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("favorites: load: %w", err)
	}
	if !ok || raw == "" {
		return []Entry{}, nil
	}
	var favs []Entry
	if err := json.Unmarshal([]byte(raw), &favs); err != nil {
		s.logger.Warn("favorites: corrupted collection, treating as empty",
			slog.String("key", Key),
			slog.String("error", err.Error()))
		return []Entry{}, nil
	}
	if favs == nil {
		favs = []Entry{}
	}
	return favs, nil
}

// save writes favs back. An empty collection removes the key.
func (s *Store) save(ctx context.Context, favs []Entry) error {
	if len(favs) == 0 {
		if err := s.kv.Delete(ctx, Key); err != nil {
			return fmt.Errorf("favorites: clear: %w", err)
		}
		return nil
	}
	data, err := json.Marshal(favs)
	if err != nil {
		return fmt.Errorf("favorites: encode: %w", err)
	}
	if err := s.kv.Set(ctx, Key, string(data)); err != nil {
		return fmt.Errorf("favorites: save: %w", err)
	}
	return nil
}

func containsText(favs []Entry, text string) bool {
	return slices.ContainsFunc(favs, func(f Entry) bool { return f.Text == text })
}

func without(favs []Entry, text string) []Entry {
	return slices.DeleteFunc(favs, func(f Entry) bool { return f.Text == text })
}
