package application

import (
	"context"
	"log/slog"

	"github.com/kaiserbh/webiptv/internal/history"
	"github.com/kaiserbh/webiptv/internal/link"
	"github.com/kaiserbh/webiptv/internal/port/driven"
)

// LinkService encodes channel URLs into shareable tokens and resolves tokens
// back against the URLs this installation has seen.
type LinkService struct {
	playlists    *PlaylistService
	historyRepo  driven.HistoryRepository
	playlistRepo driven.PlaylistRepository
	logger       *slog.Logger
}

// NewLinkService creates a new LinkService.
func NewLinkService(
	playlists *PlaylistService,
	historyRepo driven.HistoryRepository,
	playlistRepo driven.PlaylistRepository,
	logger *slog.Logger,
) *LinkService {
	return &LinkService{
		playlists:    playlists,
		historyRepo:  historyRepo,
		playlistRepo: playlistRepo,
		logger:       logger,
	}
}

// Encode returns the shareable token for a channel URL.
func (s *LinkService) Encode(url string) string {
	return link.Encode(url)
}

// Resolve maps a token back to a channel URL. Candidates are gathered from
// the active list, the URL history and the persisted playlist; a token for a
// URL this installation never saw returns link.ErrCannotResolve.
func (s *LinkService) Resolve(ctx context.Context, token string) (string, error) {
	candidates := s.playlists.Channels().URLs()

	if entries, err := s.historyRepo.FindAll(ctx); err == nil {
		for _, e := range entries {
			if e.Kind() == history.KindURL {
				candidates = append(candidates, e.SourceURL())
			}
		}
	} else {
		s.logger.Warn("failed to read history for link resolution", "error", err)
	}

	if persisted, err := s.playlistRepo.Load(ctx); err == nil {
		candidates = append(candidates, persisted.URLs()...)
	} else {
		s.logger.Warn("failed to read persisted playlist for link resolution", "error", err)
	}

	url, err := link.Decode(token, candidates)
	if err != nil {
		s.logger.Info("channel link did not resolve", "token", token)
		return "", err
	}
	return url, nil
}
