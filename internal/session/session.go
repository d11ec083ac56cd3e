// Package session holds the per-client view state: the category filter and
// which verse is on screen, including timed reverts back to the clock verse.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/starford/verseclock/internal/verses"
)

// Kind tags what the displayed verse is.
type Kind string

// Display kinds.
const (
	KindCurrentTime  Kind = "current_time"
	KindVerseOfDay   Kind = "verse_of_day"
	KindFavorite     Kind = "favorite"
	KindSearchResult Kind = "search_result"
)

// AllCategories is the filter value that clears the filter.
const AllCategories = "all"

// Displayed is the verse currently on screen.
type Displayed struct {
	Kind     Kind         `json:"kind"`
	Entry    verses.Entry `json:"entry"`
	TimeKey  string       `json:"time_key,omitempty"`
	Filter   string       `json:"filter,omitempty"`
	RevertAt *time.Time   `json:"revert_at,omitempty"`
}

// Durations control how long temporary displays stay before reverting.
type Durations struct {
	VerseOfDay time.Duration
	Pinned     time.Duration // favorites and search results
}

// DefaultDurations are 10s for the verse of the day and 30s for a favorite
// or search result.
var DefaultDurations = Durations{VerseOfDay: 10 * time.Second, Pinned: 30 * time.Second}

// Timer is the part of *time.Timer the session uses.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

// Observer is notified after every display change, in the order the changes
// were applied. Observers must not call back into mutating Session methods.
type Observer func(Displayed)

// Session owns the filter and display state. All methods are safe for
// concurrent use.
type Session struct {
	resolver  *verses.Resolver
	now       func() time.Time
	after     AfterFunc
	durations Durations

	// notifyMu is taken before mu by every display change and held until
	// observers return, so notifications arrive in state order.
	notifyMu sync.Mutex

	mu        sync.Mutex
	filter    string
	display   Displayed
	gen       uint64 // bumped on every display change; stale reverts compare against it
	pending   Timer
	observers []Observer
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the wall-clock source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithAfterFunc replaces time.AfterFunc, mainly for tests.
func WithAfterFunc(f AfterFunc) Option {
	return func(s *Session) { s.after = f }
}

// WithDurations sets the revert delays.
func WithDurations(d Durations) Option {
	return func(s *Session) { s.durations = d }
}

// New creates a session showing the verse for the current time.
func New(resolver *verses.Resolver, opts ...Option) *Session {
	s := &Session{
		resolver:  resolver,
		now:       time.Now,
		durations: DefaultDurations,
		after: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.display = s.currentLocked()
	return s
}

// Subscribe registers an observer for display changes.
func (s *Session) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Filter returns the active category, or "" when unfiltered.
func (s *Session) Filter() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SetFilter sets the category filter; "" or "all" clears it. The clock verse
// is re-resolved immediately.
func (s *Session) SetFilter(category string) Displayed {
	if category == AllCategories {
		category = ""
	}
	s.mu.Lock()
	s.filter = category
	s.mu.Unlock()
	return s.Refresh()
}

// Display returns what is on screen.
func (s *Session) Display() Displayed {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.display
}

// Current resolves the clock verse for now under the active filter without
// changing the display.
func (s *Session) Current() Displayed {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

// Refresh re-resolves the clock verse. If the clock verse is on screen and
// changed, observers are notified. Temporary displays are left alone.
func (s *Session) Refresh() Displayed {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.mu.Lock()
	cur := s.currentLocked()
	if s.display.Kind != KindCurrentTime || sameDisplay(s.display, cur) {
		d := s.display
		s.mu.Unlock()
		return d
	}
	s.gen++
	s.display = cur
	obs := s.observersLocked()
	s.mu.Unlock()

	notify(obs, cur)
	return cur
}

// ShowVerseOfDay displays the verse for today's UTC date and reverts after
// the verse-of-day delay.
func (s *Session) ShowVerseOfDay() (Displayed, error) {
	e, err := s.resolver.VerseOfDayAt(s.now())
	if err != nil {
		return Displayed{}, err
	}
	return s.show(Displayed{Kind: KindVerseOfDay, Entry: e}, s.durations.VerseOfDay), nil
}

// ShowFavorite pins a favorite verse text and reverts after the pinned delay.
func (s *Session) ShowFavorite(text string) Displayed {
	return s.show(Displayed{Kind: KindFavorite, Entry: verses.Entry{Text: text}}, s.durations.Pinned)
}

// ShowSearchResult pins a search hit and reverts after the pinned delay.
func (s *Session) ShowSearchResult(hit verses.Hit) Displayed {
	return s.show(Displayed{Kind: KindSearchResult, Entry: hit.Entry, TimeKey: hit.TimeKey}, s.durations.Pinned)
}

// ReturnToCurrent cancels any pending revert and shows the clock verse.
func (s *Session) ReturnToCurrent() Displayed {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.mu.Lock()
	d := s.currentLocked()
	s.replaceLocked(d)
	obs := s.observersLocked()
	s.mu.Unlock()

	notify(obs, d)
	return d
}

// Run refreshes the clock verse whenever the minute rolls over, checking
// every interval, until ctx is cancelled.
func (s *Session) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := verses.KeyAt(s.now())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if k := verses.KeyAt(s.now()); k != last {
				last = k
				s.Refresh()
			}
		}
	}
}

// Close cancels any pending revert.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

func (s *Session) show(d Displayed, revertAfter time.Duration) Displayed {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.mu.Lock()
	if revertAfter > 0 {
		at := s.now().Add(revertAfter)
		d.RevertAt = &at
	}
	gen := s.replaceLocked(d)
	if revertAfter > 0 {
		s.pending = s.after(revertAfter, func() { s.revert(gen) })
	}
	obs := s.observersLocked()
	s.mu.Unlock()

	notify(obs, d)
	return d
}

// revert restores the clock verse unless the display changed since the
// revert was scheduled.
func (s *Session) revert(gen uint64) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	d := s.currentLocked()
	s.gen++
	s.pending = nil
	s.display = d
	obs := s.observersLocked()
	s.mu.Unlock()

	notify(obs, d)
}

// replaceLocked installs d, invalidating any scheduled revert, and returns
// the new generation.
func (s *Session) replaceLocked(d Displayed) uint64 {
	s.gen++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.display = d
	return s.gen
}

func (s *Session) currentLocked() Displayed {
	key := verses.KeyAt(s.now())
	return Displayed{
		Kind:    KindCurrentTime,
		Entry:   s.resolver.Resolve(key, s.filter),
		TimeKey: key.String(),
		Filter:  s.filter,
	}
}

func (s *Session) observersLocked() []Observer {
	if len(s.observers) == 0 {
		return nil
	}
	out := make([]Observer, len(s.observers))
	copy(out, s.observers)
	return out
}

func notify(obs []Observer, d Displayed) {
	for _, o := range obs {
		o(d)
	}
}

func sameDisplay(a, b Displayed) bool {
	return a.Kind == b.Kind && a.TimeKey == b.TimeKey && a.Filter == b.Filter && a.Entry.Text == b.Entry.Text
}
