package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kaiserbh/webiptv/internal/history"
	"github.com/kaiserbh/webiptv/internal/port/driven"
)

// HistoryService exposes the load-attempt log. Replaying an entry is the
// PlaylistService's job; this service only lists and prunes.
type HistoryService struct {
	repo   driven.HistoryRepository
	logger *slog.Logger
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(repo driven.HistoryRepository, logger *slog.Logger) *HistoryService {
	return &HistoryService{repo: repo, logger: logger}
}

// List returns all history entries in insertion order.
func (s *HistoryService) List(ctx context.Context) ([]history.Entry, error) {
	entries, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	return entries, nil
}

// Delete removes the entry at the given position.
func (s *HistoryService) Delete(ctx context.Context, index int) error {
	if err := s.repo.DeleteAt(ctx, index); err != nil {
		return err
	}
	s.logger.Info("history entry deleted", "index", index)
	return nil
}

// Clear removes all history entries.
func (s *HistoryService) Clear(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	s.logger.Info("history cleared")
	return nil
}
