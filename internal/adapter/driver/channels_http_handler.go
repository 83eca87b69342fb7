package driver

import (
	"encoding/json"
	"net/http"

	"github.com/kaiserbh/webiptv/internal/application"
	"github.com/kaiserbh/webiptv/internal/channel"
)

// ChannelsHTTPHandler handles HTTP requests for the active channel list.
type ChannelsHTTPHandler struct {
	playlists *application.PlaylistService
	links     *application.LinkService
}

// NewChannelsHTTPHandler creates a new HTTP handler for channels.
func NewChannelsHTTPHandler(
	playlists *application.PlaylistService,
	links *application.LinkService,
) *ChannelsHTTPHandler {
	return &ChannelsHTTPHandler{playlists: playlists, links: links}
}

// errorResponse represents a JSON error response.
type errorResponse struct {
	Error string `json:"error"`
}

// channelResponse represents a channel in JSON format. Link is the shareable
// token accepted by GET /play?channel=.
type channelResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Logo string `json:"logo,omitempty"`
	Link string `json:"link"`
}

// channelListResponse represents the active playlist in JSON format.
type channelListResponse struct {
	Name     string            `json:"name"`
	Channels []channelResponse `json:"channels"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// ServeHTTP handles GET /channels with an optional ?q= name filter.
func (h *ChannelsHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	list := h.playlists.Search(r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, channelListResponse{
		Name:     h.playlists.Name(),
		Channels: h.toChannelResponses(list),
	})
}

func (h *ChannelsHTTPHandler) toChannelResponses(list channel.List) []channelResponse {
	resp := make([]channelResponse, 0, len(list))
	for _, ch := range list {
		resp = append(resp, channelResponse{
			Name: ch.Name(),
			URL:  ch.URL(),
			Logo: ch.Logo(),
			Link: h.links.Encode(ch.URL()),
		})
	}
	return resp
}
