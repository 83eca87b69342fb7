package xtream

import (
	"encoding/json"
	"fmt"

	"github.com/kaiserbh/webiptv/internal/channel"
)

// vodPrefix distinguishes video-on-demand entries in the flattened list.
const vodPrefix = "[VOD] "

// flexString tolerates panels that serialize ids as numbers or strings.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type accountResponse struct {
	UserInfo *struct {
		Status string `json:"status"`
	} `json:"user_info"`
	Error string `json:"error"`
}

// ValidateAccount parses the account-info response and checks that the
// account is usable. Returns ErrAPI when the panel reports an error, and
// ErrAuth when the account's status is anything but "Active".
func ValidateAccount(data []byte) error {
	var resp accountResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("%w: %v", ErrAPI, err)
	}

	if resp.Error != "" {
		return fmt.Errorf("%w: %s", ErrAPI, resp.Error)
	}

	if resp.UserInfo != nil && resp.UserInfo.Status != "" && resp.UserInfo.Status != "Active" {
		return fmt.Errorf("%w: status %q", ErrAuth, resp.UserInfo.Status)
	}

	return nil
}

type streamEntry struct {
	Name       string     `json:"name"`
	StreamURL  string     `json:"stream_url"`
	StreamID   flexString `json:"stream_id"`
	StreamIcon string     `json:"stream_icon"`
	Cover      string     `json:"cover"`
}

func (e streamEntry) logo() string {
	if e.StreamIcon != "" {
		return e.StreamIcon
	}
	return e.Cover
}

// apiError detects list responses that carry an error object instead of an
// array.
type apiError struct {
	Error string `json:"error"`
}

func parseStreamList(data []byte) ([]streamEntry, error) {
	var entries []streamEntry
	if err := json.Unmarshal(data, &entries); err == nil {
		return entries, nil
	}

	var apiErr apiError
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrAPI, apiErr.Error)
	}

	return nil, fmt.Errorf("%w: malformed stream list", ErrAPI)
}

// ParseLiveStreams flattens a live-stream listing into channels. Entries
// without a name or any way to build a URL are skipped. When the panel
// supplies a direct stream URL it is used verbatim; otherwise one is
// synthesized from the portal credentials and stream id.
func (p Portal) ParseLiveStreams(data []byte) (channel.List, error) {
	entries, err := parseStreamList(data)
	if err != nil {
		return nil, err
	}

	var channels channel.List
	for _, e := range entries {
		if e.Name == "" {
			continue
		}

		streamURL := e.StreamURL
		if streamURL == "" {
			if e.StreamID == "" {
				continue
			}
			streamURL = p.liveStreamURL(string(e.StreamID))
		}

		ch, err := channel.New(e.Name, streamURL, e.logo())
		if err != nil {
			continue
		}
		channels = append(channels, ch)
	}

	return channels, nil
}

// ParseVODStreams flattens a video-on-demand listing into channels with the
// VOD name prefix. Same skipping and synthesis rules as live streams.
func (p Portal) ParseVODStreams(data []byte) (channel.List, error) {
	entries, err := parseStreamList(data)
	if err != nil {
		return nil, err
	}

	var channels channel.List
	for _, e := range entries {
		if e.Name == "" {
			continue
		}

		streamURL := e.StreamURL
		if streamURL == "" {
			if e.StreamID == "" {
				continue
			}
			streamURL = p.vodStreamURL(string(e.StreamID))
		}

		ch, err := channel.New(vodPrefix+e.Name, streamURL, e.logo())
		if err != nil {
			continue
		}
		channels = append(channels, ch)
	}

	return channels, nil
}
