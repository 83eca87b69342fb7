// Package favorite models the user's favorite channels: a set keyed by
// stream URL with toggle semantics.
package favorite

import "errors"

// ErrEmptyURL is returned when a favorite is created without a URL.
var ErrEmptyURL = errors.New("favorite url cannot be empty")

// Entry is a bookmarked channel.
type Entry struct {
	url  string
	name string
	logo string
}

// New creates a favorite entry. The URL is the set key and must be present.
func New(url, name, logo string) (Entry, error) {
	if url == "" {
		return Entry{}, ErrEmptyURL
	}
	if name == "" {
		name = "Favorite"
	}
	return Entry{url: url, name: name, logo: logo}, nil
}

// Reconstruct rebuilds an Entry from persisted state.
// Intended for repository adapters only; bypasses validation.
func Reconstruct(url, name, logo string) Entry {
	return Entry{url: url, name: name, logo: logo}
}

func (e Entry) URL() string  { return e.url }
func (e Entry) Name() string { return e.name }
func (e Entry) Logo() string { return e.logo }

// Contains reports whether the set holds an entry with the given URL.
func Contains(entries []Entry, url string) bool {
	for _, e := range entries {
		if e.url == url {
			return true
		}
	}
	return false
}
