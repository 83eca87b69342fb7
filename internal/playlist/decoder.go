// Package playlist turns raw playlist documents (M3U text, JSON manifests)
// into normalized channel lists, and encodes channel lists back to M3U.
package playlist

import (
	"errors"
	"regexp"
	"strings"

	"github.com/kaiserbh/webiptv/internal/channel"
)

// ErrParse is returned when a document yields no usable channels at all.
// Individual malformed entries degrade by being skipped instead.
var ErrParse = errors.New("playlist: no usable channels")

const (
	headerMarker = "#EXTM3U"
	infoMarker   = "#EXTINF"
)

var logoAttrRe = regexp.MustCompile(`tvg-logo="([^"]+)"`)

// DecodeM3U parses M3U text into a channel list.
//
// A line starting with #EXTINF opens a pending record: the display name is
// the text after the last comma, the logo comes from an optional
// tvg-logo="..." attribute. The next non-empty, non-comment line is consumed
// as that record's URL and closes it. A URL line with no preceding info line
// is dropped; it never pairs with a stale prior record. Malformed entries
// are skipped rather than aborting the parse.
func DecodeM3U(content string) channel.List {
	var channels channel.List

	var pending *pendingEntry
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, infoMarker) {
			pending = parseInfoLine(line)
			continue
		}

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if pending == nil {
			// URL line with no info line: no implicit channel.
			continue
		}

		ch, err := channel.New(pending.name, line, pending.logo)
		pending = nil
		if err != nil {
			continue
		}
		channels = append(channels, ch)
	}

	return channels
}

// LooksLikeM3U reports whether raw content should be treated as an M3U
// playlist. Used when dispatching uploads with unknown extensions.
func LooksLikeM3U(content string) bool {
	trimmed := strings.TrimSpace(content)
	return strings.HasPrefix(trimmed, headerMarker) || strings.Contains(content, infoMarker)
}

type pendingEntry struct {
	name string
	logo string
}

// parseInfoLine extracts the display name and optional logo from an #EXTINF
// line. The name is everything after the last comma; attribute values may
// themselves contain commas, so the last comma is the only safe separator.
func parseInfoLine(line string) *pendingEntry {
	entry := &pendingEntry{}

	if idx := strings.LastIndex(line, ","); idx >= 0 && idx+1 < len(line) {
		entry.name = strings.TrimSpace(line[idx+1:])
	}

	if m := logoAttrRe.FindStringSubmatch(line); m != nil {
		entry.logo = m[1]
	}

	return entry
}
