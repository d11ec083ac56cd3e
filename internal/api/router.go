package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/verseclock/internal/clockservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// pub, if non-nil, receives favorites and theme change events.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *clockservice.Service, pub Publisher, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, pub)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Verses.
	r.Get("/verse/now", h.CurrentVerse)
	r.Get("/verse/day", h.VerseOfDay)
	r.Get("/search", h.Search)
	r.Get("/categories", h.Categories)
	r.Get("/devotional", h.Devotional)

	// Favorites.
	r.Get("/favorites", h.ListFavorites)
	r.Get("/favorites/status", h.FavoriteStatus)
	r.Post("/favorites/toggle", h.ToggleFavorite)
	r.Delete("/favorites", h.RemoveFavorite)

	// User state.
	r.Get("/theme", h.GetTheme)
	r.Put("/theme", h.SetTheme)
	r.Post("/theme/toggle", h.ToggleTheme)
	r.Get("/welcome", h.Welcome)

	// Session.
	r.Get("/filter", h.GetFilter)
	r.Put("/filter", h.SetFilter)
	r.Route("/display", func(r chi.Router) {
		r.Get("/", h.GetDisplay)
		r.Post("/current", h.ShowCurrent)
		r.Post("/verse-of-day", h.ShowVerseOfDay)
		r.Post("/favorite", h.ShowFavorite)
		r.Post("/search-result", h.ShowSearchResult)
	})

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
