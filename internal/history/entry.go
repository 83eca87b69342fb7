// Package history models the append-only log of playlist load attempts.
package history

import "errors"

// Domain errors
var (
	ErrEmptyLabel      = errors.New("history entry label cannot be empty")
	ErrInvalidKind     = errors.New("history entry kind must be url or file")
	ErrIndexOutOfRange = errors.New("history index out of range")
)

// Kind discriminates how a history entry was loaded.
type Kind string

const (
	// KindURL is a playlist or stream loaded from a pasted URL.
	KindURL Kind = "url"
	// KindFile is an uploaded file; RawContent is retained for replay
	// without re-upload.
	KindFile Kind = "file"
)

// Entry is one recorded load attempt.
type Entry struct {
	kind       Kind
	label      string
	sourceURL  string
	rawContent string
}

// NewURLEntry records a URL load. The URL serves as both label and source.
func NewURLEntry(url string) (Entry, error) {
	if url == "" {
		return Entry{}, ErrEmptyLabel
	}
	return Entry{kind: KindURL, label: url, sourceURL: url}, nil
}

// NewFileEntry records an uploaded file with its raw content.
func NewFileEntry(name, content string) (Entry, error) {
	if name == "" {
		return Entry{}, ErrEmptyLabel
	}
	return Entry{kind: KindFile, label: name, rawContent: content}, nil
}

// Reconstruct rebuilds an Entry from persisted state.
// Intended for repository adapters only; bypasses validation.
func Reconstruct(kind Kind, label, sourceURL, rawContent string) Entry {
	return Entry{kind: kind, label: label, sourceURL: sourceURL, rawContent: rawContent}
}

func (e Entry) Kind() Kind         { return e.kind }
func (e Entry) Label() string      { return e.label }
func (e Entry) SourceURL() string  { return e.sourceURL }
func (e Entry) RawContent() string { return e.rawContent }

// Duplicates reports whether the candidate entry repeats an existing one.
// A url entry is a duplicate when an existing url entry carries the same
// source URL or the same label; a file entry when an existing file entry
// carries the same label.
func Duplicates(existing []Entry, candidate Entry) bool {
	for _, e := range existing {
		if e.kind != candidate.kind {
			continue
		}
		switch candidate.kind {
		case KindURL:
			if e.sourceURL == candidate.sourceURL || e.label == candidate.label {
				return true
			}
		case KindFile:
			if e.label == candidate.label {
				return true
			}
		}
	}
	return false
}
