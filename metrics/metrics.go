package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionsActive tracks whether a playback session is currently live
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "webiptv_playback_sessions_active",
		Help: "Number of active playback sessions (0 or 1)",
	})

	// PlaybackAttempts tracks playback attempts by format and attempt kind
	PlaybackAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webiptv_playback_attempts_total",
		Help: "Total number of playback attempts",
	}, []string{"format", "attempt"})

	// PlaybackFallbacks tracks automatic manifest-to-segment fallbacks
	PlaybackFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webiptv_playback_fallbacks_total",
		Help: "Total number of automatic adaptive-to-raw-segment fallbacks",
	})

	// PlaybackFailures tracks terminal playback failures by reason
	PlaybackFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webiptv_playback_failures_total",
		Help: "Total number of terminal playback failures",
	}, []string{"reason"})

	// PlaybackStarted tracks sessions that reached actual playback
	PlaybackStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webiptv_playback_started_total",
		Help: "Total number of sessions that reached actual playback",
	})

	// PlaylistChannels tracks the size of the active channel list
	PlaylistChannels = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "webiptv_playlist_channels",
		Help: "Number of channels in the active playlist",
	})

	// PlaylistLoads tracks playlist load attempts by source kind and outcome
	PlaylistLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webiptv_playlist_loads_total",
		Help: "Total number of playlist load attempts",
	}, []string{"source", "outcome"})

	// ProbedChannels tracks liveness probe outcomes
	ProbedChannels = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webiptv_probed_channels_total",
		Help: "Total number of probed channels by result",
	}, []string{"result"})
)

// ObserveProbe records one probe outcome.
func ObserveProbe(reachable bool) {
	if reachable {
		ProbedChannels.WithLabelValues("online").Inc()
	} else {
		ProbedChannels.WithLabelValues("offline").Inc()
	}
}
