package api

import (
	"net/http"
	"strings"

	"github.com/starford/verseclock/internal/clockservice"
	"github.com/starford/verseclock/internal/sse"
)

// Publisher receives change events for connected clients.
type Publisher interface {
	Publish(event sse.Event)
}

// Handler holds API route handlers.
type Handler struct {
	svc *clockservice.Service
	pub Publisher
}

// NewHandler creates a new Handler. pub may be nil.
func NewHandler(svc *clockservice.Service, pub Publisher) *Handler {
	return &Handler{svc: svc, pub: pub}
}

func (h *Handler) publish(typ string, data any) {
	if h.pub != nil {
		h.pub.Publish(sse.Event{Type: typ, Data: data})
	}
}

// CurrentVerse handles GET /api/verse/now.
//
//	@Summary		Resolve the verse for a clock time
//	@Tags			verses
//	@Produce		json
//	@Param			time		query		string	false	"Clock time HH:MM (defaults to now)"
//	@Param			category	query		string	false	"Category filter; 'all' clears the session filter"
//	@Success		200			{object}	VerseDetail
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/verse/now [get]
func (h *Handler) CurrentVerse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	v, err := h.svc.CurrentVerse(r.Context(), q.Get("time"), q.Get("category"))
	if err != nil {
		writeServiceError(w, "current verse", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// VerseOfDay handles GET /api/verse/day.
//
//	@Summary		Get the verse of the day
//	@Tags			verses
//	@Produce		json
//	@Param			date	query		string	false	"Date YYYY-MM-DD (defaults to today)"
//	@Success		200		{object}	VerseDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/verse/day [get]
func (h *Handler) VerseOfDay(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.VerseOfDay(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeServiceError(w, "verse of day", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Search handles GET /api/search.
//
//	@Summary		Search verse text and categories
//	@Tags			search
//	@Produce		json
//	@Param			q	query		string	false	"Search term; shorter than 2 characters yields no results"
//	@Success		200	{object}	SearchResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, SearchResponse{Results: h.svc.Search(r.Context(), q)})
}

// Categories handles GET /api/categories.
//
//	@Summary		List verse categories
//	@Tags			verses
//	@Produce		json
//	@Success		200	{object}	CategoriesResponse
//	@Security		BearerAuth
//	@Router			/categories [get]
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: h.svc.Categories(r.Context())})
}

// Devotional handles GET /api/devotional.
//
//	@Summary		Generate a devotional for a verse
//	@Tags			verses
//	@Produce		json
//	@Param			text	query		string	false	"Verse text (defaults to the displayed verse)"
//	@Success		200		{object}	DevotionalResponse
//	@Security		BearerAuth
//	@Router			/devotional [get]
func (h *Handler) Devotional(w http.ResponseWriter, r *http.Request) {
	d := h.svc.Devotional(r.Context(), r.URL.Query().Get("text"))
	writeJSON(w, http.StatusOK, DevotionalResponse{Title: d.Title, Content: d.Content})
}

// ListFavorites handles GET /api/favorites.
//
//	@Summary		List favorite verses, newest first
//	@Tags			favorites
//	@Produce		json
//	@Success		200	{object}	FavoritesResponse
//	@Security		BearerAuth
//	@Router			/favorites [get]
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListFavorites(r.Context())
	if err != nil {
		writeServiceError(w, "list favorites", err)
		return
	}
	writeJSON(w, http.StatusOK, FavoritesResponse{Favorites: list})
}

// FavoriteStatus handles GET /api/favorites/status.
//
//	@Summary		Check whether a verse is a favorite
//	@Tags			favorites
//	@Produce		json
//	@Param			text	query		string	true	"Verse text"
//	@Success		200		{object}	FavoriteStatusResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/favorites/status [get]
func (h *Handler) FavoriteStatus(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if text == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'text' is required"))
		return
	}
	fav, err := h.svc.IsFavorite(r.Context(), text)
	if err != nil {
		writeServiceError(w, "favorite status", err)
		return
	}
	writeJSON(w, http.StatusOK, FavoriteStatusResponse{Text: text, Favorite: fav})
}

// ToggleFavorite handles POST /api/favorites/toggle.
//
//	@Summary		Add or remove a favorite
//	@Tags			favorites
//	@Accept			json
//	@Produce		json
//	@Param			body	body		FavoriteRequest	true	"Verse to toggle"
//	@Success		200		{object}	FavoriteStatusResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/favorites/toggle [post]
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req FavoriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	fav, err := h.svc.ToggleFavorite(r.Context(), req.Text, req.Reference)
	if err != nil {
		writeServiceError(w, "toggle favorite", err)
		return
	}
	resp := FavoriteStatusResponse{Text: req.Text, Favorite: fav}
	h.publish(sse.EventFavoritesChanged, resp)
	writeJSON(w, http.StatusOK, resp)
}

// RemoveFavorite handles DELETE /api/favorites.
//
//	@Summary		Remove a favorite
//	@Tags			favorites
//	@Param			text	query	string	true	"Verse text"
//	@Success		204		"Favorite removed"
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/favorites [delete]
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if text == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'text' is required"))
		return
	}
	if err := h.svc.RemoveFavorite(r.Context(), text); err != nil {
		writeServiceError(w, "remove favorite", err)
		return
	}
	h.publish(sse.EventFavoritesChanged, FavoriteStatusResponse{Text: text, Favorite: false})
	w.WriteHeader(http.StatusNoContent)
}

// GetTheme handles GET /api/theme.
//
//	@Summary		Get the effective theme
//	@Tags			user
//	@Produce		json
//	@Success		200	{object}	ThemeResponse
//	@Security		BearerAuth
//	@Router			/theme [get]
func (h *Handler) GetTheme(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Theme(r.Context())
	if err != nil {
		writeServiceError(w, "get theme", err)
		return
	}
	writeJSON(w, http.StatusOK, ThemeResponse{Theme: t})
}

// SetTheme handles PUT /api/theme.
//
//	@Summary		Set the theme
//	@Tags			user
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ThemeRequest	true	"Theme"
//	@Success		200		{object}	ThemeResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/theme [put]
func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := h.svc.SetTheme(r.Context(), req.Theme)
	if err != nil {
		writeServiceError(w, "set theme", err)
		return
	}
	resp := ThemeResponse{Theme: t}
	h.publish(sse.EventThemeChanged, resp)
	writeJSON(w, http.StatusOK, resp)
}

// ToggleTheme handles POST /api/theme/toggle.
//
//	@Summary		Switch between light and dark
//	@Tags			user
//	@Produce		json
//	@Success		200	{object}	ThemeResponse
//	@Security		BearerAuth
//	@Router			/theme/toggle [post]
func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.ToggleTheme(r.Context())
	if err != nil {
		writeServiceError(w, "toggle theme", err)
		return
	}
	resp := ThemeResponse{Theme: t}
	h.publish(sse.EventThemeChanged, resp)
	writeJSON(w, http.StatusOK, resp)
}

// Welcome handles GET /api/welcome.
//
//	@Summary		First-visit check; the message is returned only once
//	@Tags			user
//	@Produce		json
//	@Success		200	{object}	clockservice.Welcome
//	@Security		BearerAuth
//	@Router			/welcome [get]
func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	wl, err := h.svc.Welcome(r.Context())
	if err != nil {
		writeServiceError(w, "welcome", err)
		return
	}
	writeJSON(w, http.StatusOK, wl)
}
