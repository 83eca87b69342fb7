package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/kaiserbh/webiptv/internal/history"
)

func newHistoryService(repo *memHistoryRepo) *HistoryService {
	return NewHistoryService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func seedHistory(t *testing.T, repo *memHistoryRepo, urls ...string) {
	t.Helper()
	for _, u := range urls {
		entry, err := history.NewURLEntry(u)
		if err != nil {
			t.Fatalf("seed failed: %v", err)
		}
		if err := repo.Append(context.Background(), entry); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
}

func TestHistoryService_ListKeepsInsertionOrder(t *testing.T) {
	repo := &memHistoryRepo{}
	seedHistory(t, repo, "http://host/1.m3u8", "http://host/2.m3u8")
	svc := newHistoryService(repo)

	entries, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 || entries[0].SourceURL() != "http://host/1.m3u8" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestHistoryService_DeleteAt(t *testing.T) {
	repo := &memHistoryRepo{}
	seedHistory(t, repo, "http://host/1.m3u8", "http://host/2.m3u8", "http://host/3.m3u8")
	svc := newHistoryService(repo)

	if err := svc.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	entries, _ := svc.List(context.Background())
	if len(entries) != 2 || entries[1].SourceURL() != "http://host/3.m3u8" {
		t.Fatalf("unexpected entries after delete: %+v", entries)
	}

	if err := svc.Delete(context.Background(), 5); !errors.Is(err, history.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestHistoryService_Clear(t *testing.T) {
	repo := &memHistoryRepo{}
	seedHistory(t, repo, "http://host/1.m3u8")
	svc := newHistoryService(repo)

	if err := svc.Clear(context.Background()); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	entries, _ := svc.List(context.Background())
	if len(entries) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(entries))
	}
}
