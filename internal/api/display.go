package api

import (
	"net/http"
)

// GetFilter handles GET /api/filter.
//
//	@Summary		Get the session category filter
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	FilterResponse
//	@Security		BearerAuth
//	@Router			/filter [get]
func (h *Handler) GetFilter(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, FilterResponse{Category: h.svc.Filter(), Display: h.svc.Display()})
}

// SetFilter handles PUT /api/filter.
//
//	@Summary		Set the session category filter
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		FilterRequest	true	"Category"
//	@Success		200		{object}	FilterResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/filter [put]
func (h *Handler) SetFilter(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d := h.svc.SetFilter(req.Category)
	writeJSON(w, http.StatusOK, FilterResponse{Category: h.svc.Filter(), Display: d})
}

// GetDisplay handles GET /api/display.
//
//	@Summary		Get the verse on screen
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	Displayed
//	@Security		BearerAuth
//	@Router			/display [get]
func (h *Handler) GetDisplay(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Display())
}

// ShowCurrent handles POST /api/display/current.
//
//	@Summary		Return to the clock verse
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	Displayed
//	@Security		BearerAuth
//	@Router			/display/current [post]
func (h *Handler) ShowCurrent(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ShowCurrent())
}

// ShowVerseOfDay handles POST /api/display/verse-of-day.
//
//	@Summary		Show the verse of the day briefly
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	Displayed
//	@Security		BearerAuth
//	@Router			/display/verse-of-day [post]
func (h *Handler) ShowVerseOfDay(w http.ResponseWriter, _ *http.Request) {
	d, err := h.svc.ShowVerseOfDay()
	if err != nil {
		writeServiceError(w, "show verse of day", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// ShowFavorite handles POST /api/display/favorite.
//
//	@Summary		Show a saved favorite
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		FavoriteRequest	true	"Favorite text"
//	@Success		200		{object}	Displayed
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/display/favorite [post]
func (h *Handler) ShowFavorite(w http.ResponseWriter, r *http.Request) {
	var req FavoriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d, err := h.svc.ShowFavorite(r.Context(), req.Text)
	if err != nil {
		writeServiceError(w, "show favorite", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// ShowSearchResult handles POST /api/display/search-result.
//
//	@Summary		Show a search hit
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ShowSearchResultRequest	true	"Hit time key"
//	@Success		200		{object}	Displayed
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/display/search-result [post]
func (h *Handler) ShowSearchResult(w http.ResponseWriter, r *http.Request) {
	var req ShowSearchResultRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	d, err := h.svc.ShowSearchResult(req.TimeKey)
	if err != nil {
		writeServiceError(w, "show search result", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
