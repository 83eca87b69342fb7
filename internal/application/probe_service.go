package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kaiserbh/webiptv/internal/channel"
	"github.com/kaiserbh/webiptv/internal/port/driven"
	"github.com/kaiserbh/webiptv/internal/probe"
	"github.com/kaiserbh/webiptv/metrics"
)

// ProbeService checks channel liveness. All entries are probed concurrently
// and one unreachable sibling never affects the others.
type ProbeService struct {
	fetcher driven.Fetcher
	logger  *slog.Logger
	timeout time.Duration
}

// NewProbeService creates a new ProbeService.
func NewProbeService(fetcher driven.Fetcher, logger *slog.Logger, timeout time.Duration) *ProbeService {
	return &ProbeService{fetcher: fetcher, logger: logger, timeout: timeout}
}

// Analyze probes every channel in the list concurrently and aggregates the
// outcomes into a report plus one detailed result per channel, in list order.
func (s *ProbeService) Analyze(ctx context.Context, list channel.List) (probe.Report, []probe.Result) {
	results := make([]probe.Result, len(list))

	var wg sync.WaitGroup
	for i, ch := range list {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			results[i] = s.probeOne(ctx, url)
		}(i, ch.URL())
	}
	wg.Wait()

	reachable := make(map[string]bool, len(list))
	for i, ch := range list {
		reachable[ch.URL()] = results[i].Reachable()
		metrics.ObserveProbe(results[i].Reachable())
	}

	report := probe.NewReport(list, reachable)
	s.logger.Info("channel analysis completed",
		"total", report.Total(), "online", report.OnlineCount(), "offline", report.OfflineCount())
	return report, results
}

// probeOne checks a single URL with the method its shape calls for: segment
// streams answer GET but often refuse HEAD, while file and manifest formats
// are cheap to verify by headers alone.
func (s *ProbeService) probeOne(ctx context.Context, url string) probe.Result {
	probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	reachable, detail := s.check(probeCtx, url)
	latency := time.Since(start)

	result, err := probe.NewResult(url, time.Now(), reachable, latency, detail)
	if err != nil {
		s.logger.Warn("failed to build probe result", "url", url, "error", err)
		return probe.Result{}
	}
	return result
}

func (s *ProbeService) check(ctx context.Context, url string) (bool, string) {
	lower := strings.ToLower(url)

	switch {
	case strings.Contains(lower, ".m3u8") || strings.Contains(lower, ".ts"):
		status, err := s.fetcher.Check(ctx, url)
		if err != nil {
			return false, err.Error()
		}
		return acceptableStatus(status), fmt.Sprintf("status %d", status)

	case strings.Contains(lower, ".mpd") || strings.Contains(lower, ".mp4"):
		res, err := s.fetcher.Head(ctx, url)
		if err != nil {
			return false, err.Error()
		}
		if !acceptableStatus(res.StatusCode) {
			return false, fmt.Sprintf("status %d", res.StatusCode)
		}
		if !strings.Contains(strings.ToLower(res.ContentType), "video") {
			return false, fmt.Sprintf("content type %q", res.ContentType)
		}
		return true, fmt.Sprintf("status %d", res.StatusCode)

	default:
		res, err := s.fetcher.Head(ctx, url)
		if err != nil {
			return false, err.Error()
		}
		return acceptableStatus(res.StatusCode), fmt.Sprintf("status %d", res.StatusCode)
	}
}

func acceptableStatus(status int) bool {
	return status >= 200 && status < 400
}
