// Package playback holds the domain vocabulary of the playback engine:
// stream format classification, session states and attempt kinds.
package playback

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Domain errors
var (
	ErrUnsupportedFormat = errors.New("playback: unsupported stream format")
	ErrNoActiveSession   = errors.New("playback: no active session")
)

// Format classifies a stream URL by its delivery format.
type Format int

const (
	// FormatAdaptive is an HLS-style manifest or raw transport segment
	// (.m3u8 / .ts), handled by the adaptive engine.
	FormatAdaptive Format = iota
	// FormatDASH is a DASH manifest (.mpd), handled by the manifest engine.
	FormatDASH
	// FormatProgressive is a progressive file or generic network URL
	// (.mp4, http(s), rtmp), assigned directly to the media sink.
	FormatProgressive
	// FormatUnsupported fell through every known classification.
	FormatUnsupported
)

func (f Format) String() string {
	switch f {
	case FormatAdaptive:
		return "adaptive"
	case FormatDASH:
		return "dash"
	case FormatProgressive:
		return "progressive"
	default:
		return "unsupported"
	}
}

var genericURLRe = regexp.MustCompile(`^(http|https|rtmp)://`)

// Classify decides the playback strategy for a URL by extension/pattern.
// Adaptive markers win over progressive ones, matching strategy dispatch
// order: a ".m3u8" URL with ".mp4" in its query string is still adaptive.
func Classify(url string) Format {
	switch {
	case strings.Contains(url, ".m3u8") || strings.Contains(url, ".ts"):
		return FormatAdaptive
	case strings.Contains(url, ".mpd"):
		return FormatDASH
	case strings.Contains(url, ".mp4") || genericURLRe.MatchString(url):
		return FormatProgressive
	default:
		return FormatUnsupported
	}
}

// State is a playback session's position in its lifecycle.
type State int

const (
	// StateIdle means no session is active.
	StateIdle State = iota
	// StateLoading means a session is between setup and first playback.
	StateLoading
	// StatePlaying means the sink reported actual playback.
	StatePlaying
	// StateFailedRecoverable means the session failed but a fallback
	// attempt is being started.
	StateFailedRecoverable
	// StateFailedTerminal means the session failed and will not be retried.
	StateFailedTerminal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StateFailedRecoverable:
		return "failed-recoverable"
	case StateFailedTerminal:
		return "failed-terminal"
	default:
		return "unknown"
	}
}

// Attempt marks how a session's URL was chosen.
type Attempt int

const (
	// AttemptPrimary is the first try against the channel's own URL.
	AttemptPrimary Attempt = iota
	// AttemptFallback is the automatic retry with the manifest extension
	// swapped to the raw-segment extension.
	AttemptFallback
	// AttemptDirect plays a file sniffed out of a closed manifest,
	// bypassing the adaptive engine.
	AttemptDirect
)

func (a Attempt) String() string {
	switch a {
	case AttemptPrimary:
		return "primary"
	case AttemptFallback:
		return "fallback"
	case AttemptDirect:
		return "direct"
	default:
		return "unknown"
	}
}

// FallbackURL returns the raw-segment variant of an adaptive manifest URL,
// the sole automatic format substitution. Returns false when the URL does
// not end in the manifest extension.
func FallbackURL(url string) (string, bool) {
	if !strings.HasSuffix(url, ".m3u8") {
		return "", false
	}
	return strings.TrimSuffix(url, ".m3u8") + ".ts", true
}

// Timings are the session's failure-detection budgets. Grace periods exist
// because engines emit transient errors that self-resolve; declaring
// failure immediately would produce false negatives on healthy streams.
type Timings struct {
	// LoadTimeout bounds the whole load: no playback-start signal before
	// expiry is a network failure.
	LoadTimeout time.Duration
	// SettleDelay is the pause before the first playback attempt after an
	// engine readiness signal.
	SettleDelay time.Duration
	// GraceEngine delays failure after an adaptive/DASH engine error.
	GraceEngine time.Duration
	// GraceSink delays failure after a media-sink error.
	GraceSink time.Duration
	// FallbackDelay is the pause before retrying with the swapped
	// extension.
	FallbackDelay time.Duration
}

// DefaultTimings returns the production failure-detection budgets.
func DefaultTimings() Timings {
	return Timings{
		LoadTimeout:   20 * time.Second,
		SettleDelay:   500 * time.Millisecond,
		GraceEngine:   5 * time.Second,
		GraceSink:     3 * time.Second,
		FallbackDelay: time.Second,
	}
}
