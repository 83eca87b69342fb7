package playlist

import (
	"encoding/json"
	"errors"

	"github.com/kaiserbh/webiptv/internal/channel"
)

// ErrInvalidJSON is returned when JSON content is neither a single-stream
// manifest nor a channel list.
var ErrInvalidJSON = errors.New("playlist: invalid json manifest")

// Document is the result of decoding a JSON manifest. Exactly one of URL
// (single stream to play directly) or Channels (a list) is populated.
type Document struct {
	URL      string
	Channels channel.List
}

type jsonManifest struct {
	URL      string        `json:"url"`
	Channels []jsonChannel `json:"channels"`
}

type jsonChannel struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Logo string `json:"logo"`
}

// DecodeJSON parses a JSON manifest: either {"url": "..."} for a single
// stream, or {"channels": [{name,url,logo}, ...]} for a channel list.
// Entries without a URL are skipped; entries without a name get the default.
func DecodeJSON(data []byte) (Document, error) {
	var manifest jsonManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return Document{}, ErrInvalidJSON
	}

	if manifest.URL != "" {
		return Document{URL: manifest.URL}, nil
	}

	if manifest.Channels == nil {
		return Document{}, ErrInvalidJSON
	}

	var channels channel.List
	for _, jc := range manifest.Channels {
		ch, err := channel.New(jc.Name, jc.URL, jc.Logo)
		if err != nil {
			continue
		}
		channels = append(channels, ch)
	}

	return Document{Channels: channels}, nil
}
