// Package xtream classifies Xtream Codes portal URLs and flattens the
// panel's JSON API responses into channel lists. Network calls are left to
// the caller; this package only builds request URLs and parses responses.
package xtream

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Domain errors
var (
	ErrNotPortal = errors.New("xtream: not an xtream codes portal url")
	ErrAuth      = errors.New("xtream: account is not active")
	ErrAPI       = errors.New("xtream: api reported an error")
)

const (
	playlistEndpoint = "get.php"
	apiEndpoint      = "player_api.php"

	defaultType   = "m3u_plus"
	defaultOutput = "ts"
)

// Variant distinguishes the two portal flavors.
type Variant int

const (
	// VariantM3U is the playlist-generation endpoint: fetch and M3U-parse.
	VariantM3U Variant = iota
	// VariantAPI is the JSON account/stream API.
	VariantAPI
)

// Portal is a parsed Xtream Codes portal URL.
type Portal struct {
	variant  Variant
	base     string
	username string
	password string
	raw      *url.URL
}

// IsPortalURL reports whether the URL targets an Xtream Codes portal: the
// path contains the playlist-generation or account-info endpoint and both
// username and password query parameters are present.
func IsPortalURL(raw string) bool {
	_, err := Parse(raw)
	return err == nil
}

// Parse validates and decomposes a portal URL.
// Returns ErrNotPortal for anything that is not an Xtream Codes portal.
func Parse(raw string) (Portal, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Portal{}, ErrNotPortal
	}

	var variant Variant
	switch {
	case strings.Contains(u.Path, playlistEndpoint):
		variant = VariantM3U
	case strings.Contains(u.Path, apiEndpoint):
		variant = VariantAPI
	default:
		return Portal{}, ErrNotPortal
	}

	q := u.Query()
	if !q.Has("username") || !q.Has("password") {
		return Portal{}, ErrNotPortal
	}

	return Portal{
		variant:  variant,
		base:     u.Scheme + "://" + u.Host,
		username: q.Get("username"),
		password: q.Get("password"),
		raw:      u,
	}, nil
}

// Variant returns the portal flavor.
func (p Portal) Variant() Variant { return p.variant }

// Base returns the portal's scheme://host origin.
func (p Portal) Base() string { return p.base }

// PlaylistURL returns the playlist-generation URL with the type and output
// parameters defaulted when absent. Valid for VariantM3U portals.
func (p Portal) PlaylistURL() string {
	u := *p.raw
	q := u.Query()
	if !q.Has("type") {
		q.Set("type", defaultType)
	}
	if !q.Has("output") {
		q.Set("output", defaultOutput)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// AccountURL returns the account-validation request URL.
func (p Portal) AccountURL() string {
	return p.apiURL("")
}

// LiveStreamsURL returns the live-stream listing request URL.
func (p Portal) LiveStreamsURL() string {
	return p.apiURL("get_live_streams")
}

// VODStreamsURL returns the video-on-demand listing request URL.
func (p Portal) VODStreamsURL() string {
	return p.apiURL("get_vod_streams")
}

func (p Portal) apiURL(action string) string {
	u := fmt.Sprintf("%s/%s?username=%s&password=%s",
		p.base, apiEndpoint,
		url.QueryEscape(p.username), url.QueryEscape(p.password))
	if action != "" {
		u += "&action=" + action
	}
	return u
}

// liveStreamURL synthesizes a stream URL when the API omits a direct one.
// The path template is the most common panel layout; other layouts exist in
// the wild, so this is best effort.
func (p Portal) liveStreamURL(streamID string) string {
	return fmt.Sprintf("%s/live/%s/%s/%s.m3u8", p.base, p.username, p.password, streamID)
}

func (p Portal) vodStreamURL(streamID string) string {
	return fmt.Sprintf("%s/movie/%s/%s/%s.m3u8", p.base, p.username, p.password, streamID)
}
