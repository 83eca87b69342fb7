package driver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kaiserbh/webiptv/internal/history"
)

func seedTestHistory(t *testing.T, s *testServices, urls ...string) {
	t.Helper()
	for _, u := range urls {
		entry, err := history.NewURLEntry(u)
		if err != nil {
			t.Fatalf("seed failed: %v", err)
		}
		if err := s.historyRepo.Append(context.Background(), entry); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
}

func newHistoryHandler(s *testServices) *HistoryHTTPHandler {
	return NewHistoryHTTPHandler(s.histories, s.playlists, s.playback)
}

func TestHistoryHTTPHandler_List(t *testing.T) {
	s := newTestServices()
	seedTestHistory(t, s, "http://host/1.m3u8", "http://host/2.m3u8")
	handler := newHistoryHandler(s)

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []historyEntryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 || resp[0].URL != "http://host/1.m3u8" || resp[0].Kind != "url" {
		t.Errorf("unexpected history response: %+v", resp)
	}
}

func TestHistoryHTTPHandler_Replay(t *testing.T) {
	s := newTestServices()
	s.fetcher.fetchFunc = func(_ context.Context, _ string) ([]byte, error) {
		return []byte(testM3U), nil
	}
	seedTestHistory(t, s, "http://host/list.m3u")
	handler := newHistoryHandler(s)

	req := httptest.NewRequest(http.MethodPost, "/history/0/replay", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp loadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Channels != 2 {
		t.Errorf("expected the replay to restore 2 channels, got %+v", resp)
	}
}

func TestHistoryHTTPHandler_ReplayOutOfRange(t *testing.T) {
	s := newTestServices()
	handler := newHistoryHandler(s)

	req := httptest.NewRequest(http.MethodPost, "/history/7/replay", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHistoryHTTPHandler_DeleteAt(t *testing.T) {
	s := newTestServices()
	seedTestHistory(t, s, "http://host/1.m3u8", "http://host/2.m3u8")
	handler := newHistoryHandler(s)

	req := httptest.NewRequest(http.MethodDelete, "/history/0", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	entries, _ := s.historyRepo.FindAll(context.Background())
	if len(entries) != 1 || entries[0].SourceURL() != "http://host/2.m3u8" {
		t.Errorf("unexpected entries after delete: %+v", entries)
	}
}

func TestHistoryHTTPHandler_DeleteInvalidIndex(t *testing.T) {
	s := newTestServices()
	handler := newHistoryHandler(s)

	req := httptest.NewRequest(http.MethodDelete, "/history/abc", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHistoryHTTPHandler_Clear(t *testing.T) {
	s := newTestServices()
	seedTestHistory(t, s, "http://host/1.m3u8")
	handler := newHistoryHandler(s)

	req := httptest.NewRequest(http.MethodDelete, "/history", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	entries, _ := s.historyRepo.FindAll(context.Background())
	if len(entries) != 0 {
		t.Errorf("expected empty history, got %+v", entries)
	}
}
