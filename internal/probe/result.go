// Package probe models liveness-check results for channel lists.
package probe

import (
	"errors"
	"strings"
	"time"

	"github.com/kaiserbh/webiptv/internal/channel"
)

// Domain errors
var (
	ErrEmptyURL         = errors.New("probe url cannot be empty")
	ErrInvalidTimestamp = errors.New("probe timestamp must not be zero")
)

// Result is the outcome of one liveness probe. It is an immutable value
// object.
type Result struct {
	url       string
	timestamp time.Time
	reachable bool
	latency   time.Duration
	detail    string
}

// NewResult creates a probe result with validation.
func NewResult(url string, timestamp time.Time, reachable bool, latency time.Duration, detail string) (Result, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Result{}, ErrEmptyURL
	}
	if timestamp.IsZero() {
		return Result{}, ErrInvalidTimestamp
	}
	return Result{
		url:       url,
		timestamp: timestamp,
		reachable: reachable,
		latency:   latency,
		detail:    detail,
	}, nil
}

func (r Result) URL() string            { return r.url }
func (r Result) Timestamp() time.Time   { return r.timestamp }
func (r Result) Reachable() bool        { return r.reachable }
func (r Result) Latency() time.Duration { return r.latency }
func (r Result) Detail() string         { return r.detail }

// Report aggregates one probe pass over a channel list. All three views
// preserve the list's original relative order.
type Report struct {
	All     channel.List
	Online  channel.List
	Offline channel.List
}

// NewReport partitions channels by reachability, keyed by URL. Channels
// without a recorded result count as offline.
func NewReport(list channel.List, reachable map[string]bool) Report {
	report := Report{All: list}
	for _, ch := range list {
		if reachable[ch.URL()] {
			report.Online = append(report.Online, ch)
		} else {
			report.Offline = append(report.Offline, ch)
		}
	}
	return report
}

// Total returns the number of probed channels.
func (r Report) Total() int { return len(r.All) }

// OnlineCount returns the number of reachable channels.
func (r Report) OnlineCount() int { return len(r.Online) }

// OfflineCount returns the number of unreachable channels.
func (r Report) OfflineCount() int { return len(r.Offline) }
