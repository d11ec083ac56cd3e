// Package clockservice coordinates the verse resolver, the persisted user
// state and the display session behind one API for the transports.
package clockservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/verseclock/internal/apperr"
	"github.com/starford/verseclock/internal/devotional"
	"github.com/starford/verseclock/internal/favorites"
	"github.com/starford/verseclock/internal/session"
	"github.com/starford/verseclock/internal/userstate"
	"github.com/starford/verseclock/internal/verses"
)

// VerseDetail is a resolved verse with its slot and favorite status.
type VerseDetail struct {
	TimeKey    string   `json:"time_key,omitempty"`
	Text       string   `json:"text"`
	Reference  string   `json:"reference"`
	Body       string   `json:"body"`
	Categories []string `json:"categories"`
	Favorite   bool     `json:"favorite"`
}

// Welcome is returned by the first-visit check.
type Welcome struct {
	FirstVisit bool   `json:"first_visit"`
	Message    string `json:"message,omitempty"`
}

// Service is the application facade used by the HTTP API, the MCP server
// and the CLI.
type Service struct {
	resolver  *verses.Resolver
	favorites *favorites.Store
	state     *userstate.Store
	devotions *devotional.Generator
	session   *session.Session

	now       func() time.Time
	loc       *time.Location
	durations session.Durations
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the wall-clock source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the time zone used for clock keys and calendar dates.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// WithDurations sets the display revert delays.
func WithDurations(d session.Durations) Option {
	return func(s *Service) { s.durations = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService wires the components into a service with a fresh session.
func NewService(resolver *verses.Resolver, favs *favorites.Store, state *userstate.Store, gen *devotional.Generator, opts ...Option) *Service {
	s := &Service{
		resolver:  resolver,
		favorites: favs,
		state:     state,
		devotions: gen,
		now:       time.Now,
		loc:       time.Local,
		durations: session.DefaultDurations,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.session = session.New(resolver,
		session.WithClock(s.localNow),
		session.WithDurations(s.durations),
	)
	return s
}

// Session exposes the display session, mainly for subscribing to changes.
func (s *Service) Session() *session.Session { return s.session }

// Run keeps the clock verse current until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("minute ticker started")
	s.session.Run(ctx, time.Second)
	s.session.Close()
	return nil
}

// CurrentVerse resolves the verse for at ("HH:MM", empty for now). An empty
// category uses the session filter; "all" means unfiltered.
func (s *Service) CurrentVerse(ctx context.Context, at, category string) (*VerseDetail, error) {
	key := verses.KeyAt(s.localNow())
	if at != "" {
		k, err := verses.ParseTimeKey(at)
		if err != nil {
			return nil, err
		}
		key = k
	}
	switch category {
	case "":
		category = s.session.Filter()
	case session.AllCategories:
		category = ""
	}
	return s.detail(ctx, key.String(), s.resolver.Resolve(key, category))
}

// VerseOfDay returns the verse for date ("YYYY-MM-DD", empty for today's
// UTC date).
func (s *Service) VerseOfDay(ctx context.Context, date string) (*VerseDetail, error) {
	if date == "" {
		date = verses.DateAt(s.now())
	}
	e, err := s.resolver.VerseOfDay(date)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, "", e)
}

// Search delegates to the resolver.
func (s *Service) Search(_ context.Context, term string) []verses.Hit {
	return nonNilSlice(s.resolver.Search(term))
}

// Categories lists the table's categories.
func (s *Service) Categories(_ context.Context) []string {
	return nonNilSlice(s.resolver.Categories())
}

// Devotional generates a reflection for text, or for the displayed verse
// when text is empty.
func (s *Service) Devotional(_ context.Context, text string) devotional.Devotional {
	if strings.TrimSpace(text) == "" {
		text = s.session.Display().Entry.Text
	}
	return s.devotions.Generate(text)
}

// ListFavorites returns favorites, newest first.
func (s *Service) ListFavorites(ctx context.Context) ([]favorites.Entry, error) {
	list, err := s.favorites.List(ctx)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(list), nil
}

// IsFavorite reports whether text is saved.
func (s *Service) IsFavorite(ctx context.Context, text string) (bool, error) {
	return s.favorites.IsFavorite(ctx, text)
}

// ToggleFavorite flips membership of text and returns the new state.
func (s *Service) ToggleFavorite(ctx context.Context, text, reference string) (bool, error) {
	if strings.TrimSpace(text) == "" {
		return false, fmt.Errorf("%w: text is required", apperr.ErrInvalidInput)
	}
	fav, err := s.favorites.Toggle(ctx, text, reference)
	if err != nil {
		return false, err
	}
	s.logger.Info("favorite toggled", slog.String("reference", verses.ReferenceOf(text)), slog.Bool("favorite", fav))
	return fav, nil
}

// RemoveFavorite deletes text from favorites; removing an absent text is not
// an error.
func (s *Service) RemoveFavorite(ctx context.Context, text string) error {
	return s.favorites.Remove(ctx, text)
}

// Theme returns the effective theme.
func (s *Service) Theme(ctx context.Context) (userstate.Theme, error) {
	return s.state.Theme(ctx)
}

// SetTheme validates and stores theme.
func (s *Service) SetTheme(ctx context.Context, theme string) (userstate.Theme, error) {
	t, err := userstate.ParseTheme(theme)
	if err != nil {
		return "", err
	}
	return t, s.state.SetTheme(ctx, t)
}

// ToggleTheme flips the theme.
func (s *Service) ToggleTheme(ctx context.Context) (userstate.Theme, error) {
	return s.state.ToggleTheme(ctx)
}

// Welcome reports the first visit once, with the welcome message.
func (s *Service) Welcome(ctx context.Context) (*Welcome, error) {
	first, err := s.state.FirstVisit(ctx)
	if err != nil {
		return nil, err
	}
	w := &Welcome{FirstVisit: first}
	if first {
		w.Message = userstate.WelcomeMessage
	}
	return w, nil
}

// Filter returns the session category filter.
func (s *Service) Filter() string { return s.session.Filter() }

// SetFilter changes the session category filter.
func (s *Service) SetFilter(category string) session.Displayed {
	return s.session.SetFilter(strings.TrimSpace(category))
}

// Display returns what is on screen.
func (s *Service) Display() session.Displayed { return s.session.Display() }

// ShowCurrent returns the display to the clock verse.
func (s *Service) ShowCurrent() session.Displayed { return s.session.ReturnToCurrent() }

// ShowVerseOfDay displays today's verse for a short while.
func (s *Service) ShowVerseOfDay() (session.Displayed, error) { return s.session.ShowVerseOfDay() }

// ShowFavorite displays a saved favorite.
func (s *Service) ShowFavorite(ctx context.Context, text string) (session.Displayed, error) {
	ok, err := s.favorites.IsFavorite(ctx, text)
	if err != nil {
		return session.Displayed{}, err
	}
	if !ok {
		return session.Displayed{}, fmt.Errorf("favorite %q: %w", verses.ReferenceOf(text), apperr.ErrNotFound)
	}
	return s.session.ShowFavorite(text), nil
}

// ShowSearchResult displays the verse stored at timeKey.
func (s *Service) ShowSearchResult(timeKey string) (session.Displayed, error) {
	key, err := verses.ParseTimeKey(timeKey)
	if err != nil {
		return session.Displayed{}, err
	}
	e, ok := s.resolver.Table().Lookup(key)
	if !ok {
		return session.Displayed{}, fmt.Errorf("verse at %s: %w", key, apperr.ErrNotFound)
	}
	return s.session.ShowSearchResult(verses.Hit{TimeKey: key.String(), Entry: e}), nil
}

func (s *Service) localNow() time.Time {
	return s.now().In(s.loc)
}

func (s *Service) detail(ctx context.Context, key string, e verses.Entry) (*VerseDetail, error) {
	fav, err := s.favorites.IsFavorite(ctx, e.Text)
	if err != nil {
		return nil, err
	}
	return &VerseDetail{
		TimeKey:    key,
		Text:       e.Text,
		Reference:  e.Reference(),
		Body:       e.Body(),
		Categories: nonNilSlice(e.Categories),
		Favorite:   fav,
	}, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
