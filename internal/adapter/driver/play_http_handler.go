package driver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kaiserbh/webiptv/internal/application"
	"github.com/kaiserbh/webiptv/internal/link"
	"github.com/kaiserbh/webiptv/internal/playback"
)

// PlayHTTPHandler handles HTTP requests for playback control.
type PlayHTTPHandler struct {
	playback *application.PlaybackService
	links    *application.LinkService
}

// NewPlayHTTPHandler creates a new HTTP handler for playback.
func NewPlayHTTPHandler(
	playback *application.PlaybackService,
	links *application.LinkService,
) *PlayHTTPHandler {
	return &PlayHTTPHandler{playback: playback, links: links}
}

// playRequest represents the JSON body for starting playback.
type playRequest struct {
	URL string `json:"url"`
}

// ServeHTTP routes the request based on method.
func (h *PlayHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handlePlay(w, r)
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodDelete:
		h.handleStop(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handlePlay handles POST /play
func (h *PlayHTTPHandler) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	status, err := h.playback.Play(r.Context(), req.URL)
	if err != nil {
		writePlayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// handleGet handles GET /play. With a ?channel= token it resolves the deep
// link and starts playback; without one it reports the session status.
func (h *PlayHTTPHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("channel")
	if token == "" {
		status, ok := h.playback.Status()
		if !ok {
			writeError(w, http.StatusNotFound, "no playback session")
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	url, err := h.links.Resolve(r.Context(), token)
	if err != nil {
		if errors.Is(err, link.ErrCannotResolve) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status, err := h.playback.Play(r.Context(), url)
	if err != nil {
		writePlayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// handleStop handles DELETE /play
func (h *PlayHTTPHandler) handleStop(w http.ResponseWriter, _ *http.Request) {
	if err := h.playback.Stop(); err != nil {
		if errors.Is(err, playback.ErrNoActiveSession) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writePlayError maps playback errors to HTTP statuses.
func writePlayError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, playback.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, application.ErrStreamOffline):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
