package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/verseclock/internal/clockservice"
	"github.com/starford/verseclock/internal/favorites"
	"github.com/starford/verseclock/internal/session"
	"github.com/starford/verseclock/internal/userstate"
	"github.com/starford/verseclock/internal/verses"
)

// VerseDetail is a resolved verse (aliased from the domain layer).
type VerseDetail = clockservice.VerseDetail

// Displayed is the verse on screen (aliased from the domain layer).
type Displayed = session.Displayed

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []verses.Hit `json:"results" validate:"required"`
}

// CategoriesResponse lists the categories of the verse table.
type CategoriesResponse struct {
	Categories []string `json:"categories" example:"faith,love" validate:"required"`
}

// DevotionalResponse is a generated devotional.
type DevotionalResponse struct {
	Title   string `json:"title" example:"Walking in Faith" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// FavoritesResponse wraps the favorites list, newest first.
type FavoritesResponse struct {
	Favorites []favorites.Entry `json:"favorites" validate:"required"`
}

// FavoriteStatusResponse reports membership of one verse text.
type FavoriteStatusResponse struct {
	Text     string `json:"text" validate:"required"`
	Favorite bool   `json:"favorite"`
}

// FavoriteRequest is the body for toggling a favorite.
type FavoriteRequest struct {
	Text      string `json:"text" example:"John 3:16 - For God so loved the world..." validate:"required"`
	Reference string `json:"reference,omitempty" example:"John 3:16"`
}

// Validate checks that the text is present.
func (r FavoriteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required),
	)
}

// ThemeRequest is the body for PUT /theme.
type ThemeRequest struct {
	Theme string `json:"theme" example:"dark" validate:"required"`
}

// Validate checks the theme name.
func (r ThemeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Theme, validation.Required, validation.In(string(userstate.ThemeLight), string(userstate.ThemeDark))),
	)
}

// ThemeResponse carries the effective theme.
type ThemeResponse struct {
	Theme userstate.Theme `json:"theme" example:"light" validate:"required"`
}

// FilterRequest is the body for PUT /filter. An empty category or "all"
// clears the filter.
type FilterRequest struct {
	Category string `json:"category" example:"peace"`
}

// Validate accepts any category; unknown ones simply never match.
func (r FilterRequest) Validate() error { return nil }

// FilterResponse carries the active filter and the resulting display.
type FilterResponse struct {
	Category string    `json:"category"`
	Display  Displayed `json:"display"`
}

// ShowSearchResultRequest selects a search hit by its time key.
type ShowSearchResultRequest struct {
	TimeKey string `json:"time_key" example:"03:16" validate:"required"`
}

// Validate checks that the time key is present.
func (r ShowSearchResultRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TimeKey, validation.Required),
	)
}
