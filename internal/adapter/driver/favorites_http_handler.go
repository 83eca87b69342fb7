package driver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kaiserbh/webiptv/internal/application"
	"github.com/kaiserbh/webiptv/internal/favorite"
)

// FavoritesHTTPHandler handles HTTP requests for the favorites set.
type FavoritesHTTPHandler struct {
	favorites *application.FavoriteService
}

// NewFavoritesHTTPHandler creates a new HTTP handler for favorites.
func NewFavoritesHTTPHandler(favorites *application.FavoriteService) *FavoritesHTTPHandler {
	return &FavoritesHTTPHandler{favorites: favorites}
}

// toggleRequest represents the JSON body for toggling a favorite.
type toggleRequest struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// toggleResponse reports whether the channel ended up favorited.
type toggleResponse struct {
	Favorited bool `json:"favorited"`
}

// favoriteResponse represents a favorite in JSON format.
type favoriteResponse struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

// ServeHTTP routes the request based on method and path.
func (h *FavoritesHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// GET /favorites/export - M3U document
	if r.Method == http.MethodGet && r.URL.Path == "/favorites/export" {
		h.handleExport(w, r)
		return
	}

	if r.URL.Path != "/favorites" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPut:
		h.handleToggle(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleList handles GET /favorites
func (h *FavoritesHTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.favorites.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]favoriteResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, favoriteResponse{URL: e.URL(), Name: e.Name(), Logo: e.Logo()})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleToggle handles PUT /favorites
func (h *FavoritesHTTPHandler) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	favorited, err := h.favorites.Toggle(r.Context(), req.URL, req.Name, req.Logo)
	if err != nil {
		if errors.Is(err, favorite.ErrEmptyURL) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{Favorited: favorited})
}

// handleExport handles GET /favorites/export
func (h *FavoritesHTTPHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "audio/x-mpegurl")
	w.Header().Set("Content-Disposition", `attachment; filename="favorites.m3u"`)
	if err := h.favorites.ExportM3U(r.Context(), w); err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
