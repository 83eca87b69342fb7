// Package link derives short, shareable tokens from channel URLs.
//
// The transform is obfuscation, not a security boundary: the URL's bytes are
// XORed against a key derived from the URL's own SHA-1 hash, base64url
// encoded and truncated. Truncation makes the token lossy, so decoding works
// by re-encoding a bounded candidate set and matching tokens.
package link

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

// ErrCannotResolve is returned when no candidate URL re-encodes to the
// requested token.
var ErrCannotResolve = errors.New("link: cannot decode channel link")

const (
	keyLength   = 16
	tokenLength = 28
)

// Encode derives the shareable token for a channel URL. The same URL always
// encodes to the same token.
func Encode(url string) string {
	sum := sha1.Sum([]byte(url))
	key := hex.EncodeToString(sum[:])[:keyLength]

	data := []byte(url)
	mixed := make([]byte, len(data))
	for i := range data {
		mixed[i] = data[i] ^ key[i%keyLength]
	}

	token := base64.RawURLEncoding.EncodeToString(mixed)
	if len(token) > tokenLength {
		token = token[:tokenLength]
	}
	return token
}

// Decode resolves a token back to a URL by re-encoding each candidate and
// returning the first whose token matches. Candidate order is significant:
// callers pass the current playlist first, then history, then the persisted
// last playlist. Returns ErrCannotResolve when no candidate matches.
func Decode(token string, candidates []string) (string, error) {
	for _, url := range candidates {
		if Encode(url) == token {
			return url, nil
		}
	}
	return "", ErrCannotResolve
}
