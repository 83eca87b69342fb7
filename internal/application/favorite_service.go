package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/kaiserbh/webiptv/internal/channel"
	"github.com/kaiserbh/webiptv/internal/favorite"
	"github.com/kaiserbh/webiptv/internal/playlist"
	"github.com/kaiserbh/webiptv/internal/port/driven"
)

// FavoriteService manages the persisted favorites set.
type FavoriteService struct {
	repo   driven.FavoriteRepository
	logger *slog.Logger
}

// NewFavoriteService creates a new FavoriteService.
func NewFavoriteService(repo driven.FavoriteRepository, logger *slog.Logger) *FavoriteService {
	return &FavoriteService{repo: repo, logger: logger}
}

// Toggle adds the channel to favorites, or removes it when already present.
// Returns true when the channel ended up favorited.
func (s *FavoriteService) Toggle(ctx context.Context, url, name, logo string) (bool, error) {
	existing, err := s.repo.FindAll(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to fetch favorites: %w", err)
	}

	if favorite.Contains(existing, url) {
		if err := s.repo.Delete(ctx, url); err != nil {
			return false, fmt.Errorf("failed to remove favorite: %w", err)
		}
		s.logger.Info("favorite removed", "url", url)
		return false, nil
	}

	entry, err := favorite.New(url, name, logo)
	if err != nil {
		return false, err
	}
	if err := s.repo.Save(ctx, entry); err != nil {
		return false, fmt.Errorf("failed to save favorite: %w", err)
	}
	s.logger.Info("favorite added", "url", url, "name", entry.Name())
	return true, nil
}

// List returns all favorites in insertion order.
func (s *FavoriteService) List(ctx context.Context) ([]favorite.Entry, error) {
	entries, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch favorites: %w", err)
	}
	return entries, nil
}

// ExportM3U writes the favorites as an M3U document so they can be loaded
// back as a regular playlist.
func (s *FavoriteService) ExportM3U(ctx context.Context, w io.Writer) error {
	entries, err := s.repo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch favorites: %w", err)
	}

	list := make(channel.List, 0, len(entries))
	for _, e := range entries {
		list = append(list, channel.Reconstruct(e.Name(), e.URL(), e.Logo()))
	}
	return playlist.EncodeM3U(w, list)
}
