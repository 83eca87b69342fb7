package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/kaiserbh/webiptv/internal/channel"
	"github.com/kaiserbh/webiptv/internal/history"
	"github.com/kaiserbh/webiptv/internal/playlist"
	"github.com/kaiserbh/webiptv/internal/port/driven"
	"github.com/kaiserbh/webiptv/internal/xtream"
	"github.com/kaiserbh/webiptv/metrics"
)

// LoadOutcome is the result of resolving a playlist source. Exactly one of
// Channels (the new active list) or DirectURL (a single stream to play
// immediately) is populated.
type LoadOutcome struct {
	Name      string
	Channels  channel.List
	DirectURL string
}

// IsDirect reports whether the source resolved to a single stream instead of
// a channel list.
func (o LoadOutcome) IsDirect() bool { return o.DirectURL != "" }

// PlaylistService ingests playlist sources (URLs, uploads, Xtream portals),
// keeps the active channel list and records load attempts in history.
type PlaylistService struct {
	fetcher      driven.Fetcher
	historyRepo  driven.HistoryRepository
	playlistRepo driven.PlaylistRepository
	prefRepo     driven.PreferenceRepository
	logger       *slog.Logger

	mu     sync.RWMutex
	active channel.List
	name   string
}

// NewPlaylistService creates a new PlaylistService.
func NewPlaylistService(
	fetcher driven.Fetcher,
	historyRepo driven.HistoryRepository,
	playlistRepo driven.PlaylistRepository,
	prefRepo driven.PreferenceRepository,
	logger *slog.Logger,
) *PlaylistService {
	return &PlaylistService{
		fetcher:      fetcher,
		historyRepo:  historyRepo,
		playlistRepo: playlistRepo,
		prefRepo:     prefRepo,
		logger:       logger,
	}
}

// Restore loads the last persisted channel list into memory. Called once at
// startup; a missing or empty record leaves the active list empty.
func (s *PlaylistService) Restore(ctx context.Context) error {
	list, err := s.playlistRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load persisted playlist: %w", err)
	}
	name, err := s.prefRepo.Get(ctx, driven.PrefPlaylistName)
	if err != nil {
		return fmt.Errorf("failed to load playlist name: %w", err)
	}

	s.mu.Lock()
	s.active = list
	s.name = name
	s.mu.Unlock()
	metrics.PlaylistChannels.Set(float64(len(list)))

	if len(list) > 0 {
		s.logger.Info("restored persisted playlist", "name", name, "channels", len(list))
	}
	return nil
}

// Channels returns the active channel list.
func (s *PlaylistService) Channels() channel.List {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Search returns the active channels whose names contain the query,
// case-insensitively. An empty query returns the whole list.
func (s *PlaylistService) Search(query string) channel.List {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active.Filter(query)
}

// Name returns the display name of the active playlist.
func (s *PlaylistService) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// LoadURL resolves a pasted URL into a channel list or a direct stream. The
// attempt is recorded in history before resolution, so failed sources can be
// retried from the history view.
func (s *PlaylistService) LoadURL(ctx context.Context, rawURL string) (LoadOutcome, error) {
	rawURL = strings.TrimSpace(rawURL)

	entry, err := history.NewURLEntry(rawURL)
	if err != nil {
		return LoadOutcome{}, err
	}
	s.recordHistory(ctx, entry)

	outcome, err := s.resolveURL(ctx, rawURL)
	if err != nil {
		metrics.PlaylistLoads.WithLabelValues("url", "error").Inc()
		return LoadOutcome{}, err
	}
	return outcome, s.apply(ctx, "url", outcome)
}

// LoadFile ingests an uploaded playlist file. The raw content is retained in
// history so the file can be replayed without re-uploading.
func (s *PlaylistService) LoadFile(ctx context.Context, name, content string) (LoadOutcome, error) {
	entry, err := history.NewFileEntry(name, content)
	if err != nil {
		return LoadOutcome{}, err
	}
	s.recordHistory(ctx, entry)

	outcome, err := s.resolveContent(name, content)
	if err != nil {
		metrics.PlaylistLoads.WithLabelValues("file", "error").Inc()
		return LoadOutcome{}, err
	}
	return outcome, s.apply(ctx, "file", outcome)
}

// Replay re-runs the history entry at the given index. URL entries resolve
// from the network again; file entries replay from their retained content.
// Replays are not re-recorded in history.
func (s *PlaylistService) Replay(ctx context.Context, index int) (LoadOutcome, error) {
	entries, err := s.historyRepo.FindAll(ctx)
	if err != nil {
		return LoadOutcome{}, fmt.Errorf("failed to fetch history: %w", err)
	}
	if index < 0 || index >= len(entries) {
		return LoadOutcome{}, history.ErrIndexOutOfRange
	}

	entry := entries[index]

	var outcome LoadOutcome
	switch entry.Kind() {
	case history.KindURL:
		outcome, err = s.resolveURL(ctx, entry.SourceURL())
	case history.KindFile:
		outcome, err = s.resolveContent(entry.Label(), entry.RawContent())
	default:
		return LoadOutcome{}, history.ErrInvalidKind
	}
	if err != nil {
		metrics.PlaylistLoads.WithLabelValues("history", "error").Inc()
		return LoadOutcome{}, err
	}
	return outcome, s.apply(ctx, "history", outcome)
}

// resolveURL dispatches a URL to the right loader by shape: Xtream portals
// go through the panel resolver, playlist extensions are fetched and parsed,
// and anything else is a stream to play directly. Only bare ".m3u" counts as
// a playlist document; ".m3u8" is an HLS manifest and plays directly.
func (s *PlaylistService) resolveURL(ctx context.Context, rawURL string) (LoadOutcome, error) {
	if portal, err := xtream.Parse(rawURL); err == nil {
		return s.loadPortal(ctx, portal)
	}

	lower := strings.ToLower(rawURL)
	switch {
	case strings.HasSuffix(lower, ".m3u"):
		body, err := s.fetcher.Fetch(ctx, rawURL)
		if err != nil {
			return LoadOutcome{}, fmt.Errorf("failed to fetch playlist: %w", err)
		}
		return s.resolveContent(rawURL, string(body))

	case strings.Contains(lower, ".json"):
		body, err := s.fetcher.Fetch(ctx, rawURL)
		if err != nil {
			return LoadOutcome{}, fmt.Errorf("failed to fetch playlist: %w", err)
		}
		return resolveJSON(rawURL, body)

	case strings.Contains(lower, ".txt"):
		body, err := s.fetcher.Fetch(ctx, rawURL)
		if err != nil {
			return LoadOutcome{}, fmt.Errorf("failed to fetch stream reference: %w", err)
		}
		target := strings.TrimSpace(string(body))
		if target == "" {
			return LoadOutcome{}, playlist.ErrParse
		}
		return LoadOutcome{DirectURL: target}, nil

	default:
		return LoadOutcome{DirectURL: rawURL}, nil
	}
}

// resolveContent classifies raw document content: M3U markers win, then a
// JSON manifest, then a bare stream URL on the first line.
func (s *PlaylistService) resolveContent(name, content string) (LoadOutcome, error) {
	if playlist.LooksLikeM3U(content) {
		channels := playlist.DecodeM3U(content)
		if len(channels) == 0 {
			return LoadOutcome{}, playlist.ErrParse
		}
		return LoadOutcome{Name: name, Channels: channels}, nil
	}

	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "{") {
		return resolveJSON(name, []byte(content))
	}
	if strings.HasPrefix(trimmed, "http") {
		return LoadOutcome{DirectURL: trimmed}, nil
	}

	return LoadOutcome{}, playlist.ErrParse
}

func resolveJSON(name string, body []byte) (LoadOutcome, error) {
	doc, err := playlist.DecodeJSON(body)
	if err != nil {
		return LoadOutcome{}, err
	}
	if doc.URL != "" {
		return LoadOutcome{DirectURL: doc.URL}, nil
	}
	if len(doc.Channels) == 0 {
		return LoadOutcome{}, playlist.ErrParse
	}
	return LoadOutcome{Name: name, Channels: doc.Channels}, nil
}

// loadPortal resolves an Xtream Codes portal URL. The playlist flavor is a
// fetch-and-parse; the API flavor validates the account, lists live streams
// and appends video-on-demand entries best effort.
func (s *PlaylistService) loadPortal(ctx context.Context, portal xtream.Portal) (LoadOutcome, error) {
	if portal.Variant() == xtream.VariantM3U {
		body, err := s.fetcher.Fetch(ctx, portal.PlaylistURL())
		if err != nil {
			return LoadOutcome{}, fmt.Errorf("failed to fetch portal playlist: %w", err)
		}
		channels := playlist.DecodeM3U(string(body))
		if len(channels) == 0 {
			return LoadOutcome{}, playlist.ErrParse
		}
		return LoadOutcome{Name: portal.Base(), Channels: channels}, nil
	}

	account, err := s.fetcher.Fetch(ctx, portal.AccountURL())
	if err != nil {
		return LoadOutcome{}, fmt.Errorf("failed to reach portal api: %w", err)
	}
	if err := xtream.ValidateAccount(account); err != nil {
		return LoadOutcome{}, err
	}

	live, err := s.fetcher.Fetch(ctx, portal.LiveStreamsURL())
	if err != nil {
		return LoadOutcome{}, fmt.Errorf("failed to fetch live streams: %w", err)
	}
	channels, err := portal.ParseLiveStreams(live)
	if err != nil {
		return LoadOutcome{}, err
	}

	// Not every panel grants video-on-demand; failures here only cost the
	// extra entries.
	if vodBody, err := s.fetcher.Fetch(ctx, portal.VODStreamsURL()); err == nil {
		if vod, err := portal.ParseVODStreams(vodBody); err == nil {
			channels = append(channels, vod...)
		} else {
			s.logger.Debug("skipping vod listing", "error", err)
		}
	} else {
		s.logger.Debug("vod listing unavailable", "error", err)
	}

	if len(channels) == 0 {
		return LoadOutcome{}, playlist.ErrParse
	}
	return LoadOutcome{Name: portal.Base(), Channels: channels}, nil
}

// apply commits a successful load: list outcomes replace the active list and
// are persisted for the next start, direct plays clear the persisted list.
// Persistence failures are logged but never fail the load.
func (s *PlaylistService) apply(ctx context.Context, source string, outcome LoadOutcome) error {
	if outcome.IsDirect() {
		metrics.PlaylistLoads.WithLabelValues(source, "direct").Inc()
		if err := s.playlistRepo.Clear(ctx); err != nil {
			s.logger.Warn("failed to clear persisted playlist", "error", err)
		}
		if err := s.prefRepo.Remove(ctx, driven.PrefPlaylistName); err != nil {
			s.logger.Warn("failed to clear playlist name", "error", err)
		}
		s.mu.Lock()
		s.active = nil
		s.name = ""
		s.mu.Unlock()
		metrics.PlaylistChannels.Set(0)
		return nil
	}

	s.mu.Lock()
	s.active = outcome.Channels
	s.name = outcome.Name
	s.mu.Unlock()

	metrics.PlaylistLoads.WithLabelValues(source, "list").Inc()
	metrics.PlaylistChannels.Set(float64(len(outcome.Channels)))
	s.logger.Info("playlist loaded",
		"source", source, "name", outcome.Name, "channels", len(outcome.Channels))

	if err := s.playlistRepo.Save(ctx, outcome.Channels); err != nil {
		s.logger.Warn("failed to persist playlist", "error", err)
	}
	if err := s.prefRepo.Set(ctx, driven.PrefPlaylistName, outcome.Name); err != nil {
		s.logger.Warn("failed to persist playlist name", "error", err)
	}
	return nil
}

// recordHistory appends a load attempt unless it duplicates an existing
// entry. History failures never block a load.
func (s *PlaylistService) recordHistory(ctx context.Context, entry history.Entry) {
	existing, err := s.historyRepo.FindAll(ctx)
	if err != nil {
		s.logger.Warn("failed to read history", "error", err)
		return
	}
	if history.Duplicates(existing, entry) {
		return
	}
	if err := s.historyRepo.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to record history", "error", err)
	}
}
