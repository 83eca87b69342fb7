package channel

import (
	"errors"
	"strings"
)

// Domain errors
var (
	ErrEmptyURL = errors.New("channel url cannot be empty")
)

// DefaultName is used when a playlist entry carries no display name.
const DefaultName = "Unknown Channel"

// Channel represents a single playable stream entry.
// The URL is the channel's identity: favorites membership, current-selection
// highlighting and link resolution all compare by URL.
type Channel struct {
	name string
	url  string
	logo string
}

// New creates a Channel with the given name, url and optional logo.
// The name is trimmed and defaults to DefaultName when empty.
// Returns ErrEmptyURL if the url is empty or contains only whitespace.
func New(name, url, logo string) (Channel, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Channel{}, ErrEmptyURL
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}

	return Channel{name: name, url: url, logo: logo}, nil
}

// Reconstruct rebuilds a Channel from persisted state.
// Intended for repository adapters only; bypasses validation.
func Reconstruct(name, url, logo string) Channel {
	return Channel{name: name, url: url, logo: logo}
}

// Name returns the channel's display name.
func (c Channel) Name() string { return c.name }

// URL returns the channel's stream URL.
func (c Channel) URL() string { return c.url }

// Logo returns the channel's logo URL, or an empty string if none is known.
func (c Channel) Logo() string { return c.logo }

// List is an ordered sequence of channels. Order is insertion order and is
// the display/navigation order. A list is replaced, never merged.
type List []Channel

// Filter derives a view of the list containing only channels whose name
// contains the query, case-insensitively. The receiver is not mutated.
func (l List) Filter(query string) List {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return l
	}

	var filtered List
	for _, ch := range l {
		if strings.Contains(strings.ToLower(ch.Name()), query) {
			filtered = append(filtered, ch)
		}
	}
	return filtered
}

// URLs returns the stream URLs of all channels in list order.
func (l List) URLs() []string {
	urls := make([]string, 0, len(l))
	for _, ch := range l {
		urls = append(urls, ch.URL())
	}
	return urls
}

// Contains reports whether any channel in the list has the given URL.
func (l List) Contains(url string) bool {
	for _, ch := range l {
		if ch.URL() == url {
			return true
		}
	}
	return false
}
