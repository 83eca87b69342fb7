package driver

import (
	"net/http"

	"github.com/kaiserbh/webiptv/internal/application"
	"github.com/kaiserbh/webiptv/internal/channel"
	"github.com/kaiserbh/webiptv/internal/probe"
)

// AnalysisHTTPHandler handles HTTP requests for channel liveness analysis.
type AnalysisHTTPHandler struct {
	playlists *application.PlaylistService
	prober    *application.ProbeService
}

// NewAnalysisHTTPHandler creates a new HTTP handler for analysis.
func NewAnalysisHTTPHandler(
	playlists *application.PlaylistService,
	prober *application.ProbeService,
) *AnalysisHTTPHandler {
	return &AnalysisHTTPHandler{playlists: playlists, prober: prober}
}

// probedChannelResponse represents one probed channel in JSON format.
type probedChannelResponse struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Reachable bool   `json:"reachable"`
	LatencyMS int64  `json:"latency_ms"`
	Detail    string `json:"detail,omitempty"`
}

// analysisResponse represents a liveness report in JSON format.
type analysisResponse struct {
	Total    int                     `json:"total"`
	Online   int                     `json:"online"`
	Offline  int                     `json:"offline"`
	Channels []probedChannelResponse `json:"channels"`
}

// ServeHTTP handles POST /analysis: probe every channel in the active list.
func (h *AnalysisHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	list := h.playlists.Channels()
	if len(list) == 0 {
		writeError(w, http.StatusConflict, "no playlist loaded")
		return
	}

	report, results := h.prober.Analyze(r.Context(), list)

	resp := analysisResponse{
		Total:    report.Total(),
		Online:   report.OnlineCount(),
		Offline:  report.OfflineCount(),
		Channels: toProbedChannels(list, results),
	}
	writeJSON(w, http.StatusOK, resp)
}

func toProbedChannels(list channel.List, results []probe.Result) []probedChannelResponse {
	resp := make([]probedChannelResponse, 0, len(list))
	for i, ch := range list {
		resp = append(resp, probedChannelResponse{
			Name:      ch.Name(),
			URL:       ch.URL(),
			Reachable: results[i].Reachable(),
			LatencyMS: results[i].Latency().Milliseconds(),
			Detail:    results[i].Detail(),
		})
	}
	return resp
}
