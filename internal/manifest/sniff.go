// Package manifest inspects fetched HLS manifest text before the adaptive
// engine is committed to it. Closed playlists that wrap a single progressive
// file are detected here so they can be played directly: a general-purpose
// adaptive engine fetching such a file segment-by-segment fails on
// cross-origin requests that a plain media sink tolerates.
package manifest

import (
	"net/url"
	"strings"
)

const (
	endListMarker = "#EXT-X-ENDLIST"
	infoMarker    = "#EXTINF"
)

// offlinePatterns mark placeholder files served in place of a real stream.
var offlinePatterns = []string{
	"down.mp4",
	"offline.mp4",
	"stream_offline",
	"channel_offline",
}

// Kind classifies the outcome of sniffing a manifest.
type Kind int

const (
	// KindLive means the manifest describes an open (live) playlist and the
	// adaptive engine should handle it.
	KindLive Kind = iota
	// KindDirect means the manifest wraps a progressive file that should be
	// played directly, bypassing the adaptive engine.
	KindDirect
	// KindOffline means the manifest points at an offline placeholder file;
	// playback must not be attempted.
	KindOffline
)

// Result is the classification of a sniffed manifest. MediaURL is set for
// KindDirect and KindOffline.
type Result struct {
	Kind     Kind
	MediaURL string
}

// Sniff classifies manifest content fetched from manifestURL.
//
// Manifests without an end-of-list marker are live streams and are left to
// the adaptive engine. Closed manifests are scanned for inlined media URLs:
// relative ones are resolved against the manifest's own URL, and a URL is a
// direct-file candidate when it contains a .mp4 marker or directly follows
// an info line. The first candidate wins. Candidates matching an offline
// placeholder pattern classify the channel as deliberately offline.
func Sniff(manifestURL, content string) Result {
	if !strings.Contains(content, endListMarker) {
		return Result{Kind: KindLive}
	}

	base, err := url.Parse(manifestURL)
	if err != nil {
		return Result{Kind: KindLive}
	}

	lines := strings.Split(content, "\n")
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		mediaURL := resolveMediaURL(base, line)

		afterInfo := i > 0 && strings.HasPrefix(strings.TrimSpace(lines[i-1]), infoMarker)
		if !strings.Contains(mediaURL, ".mp4") && !afterInfo {
			continue
		}

		if IsOfflinePlaceholder(mediaURL) {
			return Result{Kind: KindOffline, MediaURL: mediaURL}
		}
		return Result{Kind: KindDirect, MediaURL: mediaURL}
	}

	return Result{Kind: KindLive}
}

// IsOfflinePlaceholder reports whether the URL matches a known
// offline-placeholder pattern such as down.mp4 or stream_offline.
func IsOfflinePlaceholder(mediaURL string) bool {
	lower := strings.ToLower(mediaURL)
	for _, pattern := range offlinePatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// resolveMediaURL makes a playlist entry absolute. Protocol-relative,
// root-relative and path-relative entries all resolve against the manifest
// URL; absolute entries pass through unchanged.
func resolveMediaURL(base *url.URL, entry string) string {
	if strings.HasPrefix(entry, "http") {
		return entry
	}

	origin := base.Scheme + "://" + base.Host

	switch {
	case strings.HasPrefix(entry, "//"):
		return base.Scheme + ":" + entry
	case strings.HasPrefix(entry, "/"):
		return origin + entry
	default:
		basePath := base.Path
		if idx := strings.LastIndex(basePath, "/"); idx >= 0 {
			basePath = basePath[:idx+1]
		} else {
			basePath = "/"
		}
		return origin + basePath + entry
	}
}
