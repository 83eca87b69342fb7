package driver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kaiserbh/webiptv/internal/application"
	"github.com/kaiserbh/webiptv/internal/channel"
	"github.com/kaiserbh/webiptv/internal/history"
	"github.com/kaiserbh/webiptv/internal/playlist"
	"github.com/kaiserbh/webiptv/internal/xtream"
)

// PlaylistHTTPHandler handles HTTP requests for loading playlist sources.
type PlaylistHTTPHandler struct {
	playlists *application.PlaylistService
	playback  *application.PlaybackService
}

// NewPlaylistHTTPHandler creates a new HTTP handler for playlist loading.
func NewPlaylistHTTPHandler(
	playlists *application.PlaylistService,
	playback *application.PlaybackService,
) *PlaylistHTTPHandler {
	return &PlaylistHTTPHandler{playlists: playlists, playback: playback}
}

// loadURLRequest represents the JSON body for loading a playlist URL.
type loadURLRequest struct {
	URL string `json:"url"`
}

// loadFileRequest represents the JSON body for an uploaded playlist file.
type loadFileRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// loadResponse represents the result of a playlist load. For a direct-play
// source, Playing carries the started session instead of a channel list.
type loadResponse struct {
	Name     string                      `json:"name,omitempty"`
	Channels int                         `json:"channels"`
	Playing  *application.PlaybackStatus `json:"playing,omitempty"`
}

// ServeHTTP routes the request based on method and path.
func (h *PlaylistHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	switch r.URL.Path {
	case "/playlist/url":
		h.handleLoadURL(w, r)
	case "/playlist/file":
		h.handleLoadFile(w, r)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// handleLoadURL handles POST /playlist/url
func (h *PlaylistHTTPHandler) handleLoadURL(w http.ResponseWriter, r *http.Request) {
	var req loadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	outcome, err := h.playlists.LoadURL(r.Context(), req.URL)
	if err != nil {
		writeLoadError(w, err)
		return
	}
	h.respond(w, r, outcome)
}

// handleLoadFile handles POST /playlist/file
func (h *PlaylistHTTPHandler) handleLoadFile(w http.ResponseWriter, r *http.Request) {
	var req loadFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "name and content are required")
		return
	}

	outcome, err := h.playlists.LoadFile(r.Context(), req.Name, req.Content)
	if err != nil {
		writeLoadError(w, err)
		return
	}
	h.respond(w, r, outcome)
}

// respond commits the outcome: direct sources start playback immediately,
// list sources report the new active list.
func (h *PlaylistHTTPHandler) respond(w http.ResponseWriter, r *http.Request, outcome application.LoadOutcome) {
	if outcome.IsDirect() {
		status, err := h.playback.Play(r.Context(), outcome.DirectURL)
		if err != nil {
			writePlayError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, loadResponse{Playing: &status})
		return
	}

	writeJSON(w, http.StatusOK, loadResponse{
		Name:     outcome.Name,
		Channels: len(outcome.Channels),
	})
}

// writeLoadError maps playlist resolution errors to HTTP statuses.
func writeLoadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, xtream.ErrAuth):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, xtream.ErrAPI):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, playlist.ErrParse), errors.Is(err, playlist.ErrInvalidJSON),
		errors.Is(err, channel.ErrEmptyURL), errors.Is(err, history.ErrEmptyLabel):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusBadGateway, "failed to load playlist")
	}
}
