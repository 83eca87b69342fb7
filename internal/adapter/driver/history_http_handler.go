package driver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/kaiserbh/webiptv/internal/application"
	"github.com/kaiserbh/webiptv/internal/history"
)

// HistoryHTTPHandler handles HTTP requests for the load-attempt history.
type HistoryHTTPHandler struct {
	histories *application.HistoryService
	playlists *application.PlaylistService
	playback  *application.PlaybackService
}

// NewHistoryHTTPHandler creates a new HTTP handler for history.
func NewHistoryHTTPHandler(
	histories *application.HistoryService,
	playlists *application.PlaylistService,
	playback *application.PlaybackService,
) *HistoryHTTPHandler {
	return &HistoryHTTPHandler{histories: histories, playlists: playlists, playback: playback}
}

// historyEntryResponse represents a history entry in JSON format.
type historyEntryResponse struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
	URL   string `json:"url,omitempty"`
}

// ServeHTTP routes the request based on method and path.
func (h *HistoryHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/history")

	// GET /history - list all entries
	if r.Method == http.MethodGet && path == "" {
		h.handleList(w, r)
		return
	}

	// DELETE /history - clear all entries
	if r.Method == http.MethodDelete && path == "" {
		h.handleClear(w, r)
		return
	}

	// POST /history/{i}/replay - reload the entry at index i
	if r.Method == http.MethodPost && strings.HasSuffix(path, "/replay") {
		index, err := parseIndex(strings.TrimSuffix(path, "/replay"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid history index")
			return
		}
		h.handleReplay(w, r, index)
		return
	}

	// DELETE /history/{i} - delete the entry at index i
	if r.Method == http.MethodDelete {
		index, err := parseIndex(path)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid history index")
			return
		}
		h.handleDelete(w, r, index)
		return
	}

	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func parseIndex(path string) (int, error) {
	return strconv.Atoi(strings.TrimPrefix(path, "/"))
}

// handleList handles GET /history
func (h *HistoryHTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.histories.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]historyEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, historyEntryResponse{
			Kind:  string(e.Kind()),
			Label: e.Label(),
			URL:   e.SourceURL(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleReplay handles POST /history/{i}/replay
func (h *HistoryHTTPHandler) handleReplay(w http.ResponseWriter, r *http.Request, index int) {
	outcome, err := h.playlists.Replay(r.Context(), index)
	if err != nil {
		if errors.Is(err, history.ErrIndexOutOfRange) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeLoadError(w, err)
		return
	}

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

// handleDelete handles DELETE /history/{i}
func (h *HistoryHTTPHandler) handleDelete(w http.ResponseWriter, r *http.Request, index int) {
	if err := h.histories.Delete(r.Context(), index); err != nil {
		if errors.Is(err, history.ErrIndexOutOfRange) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleClear handles DELETE /history
func (h *HistoryHTTPHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.histories.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
