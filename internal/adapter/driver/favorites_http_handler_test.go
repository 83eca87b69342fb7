package driver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func toggleFavorite(t *testing.T, handler *FavoritesHTTPHandler, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, "/favorites", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestFavoritesHTTPHandler_ToggleAndList(t *testing.T) {
	s := newTestServices()
	handler := NewFavoritesHTTPHandler(s.favorites)

	rec := toggleFavorite(t, handler, `{"url":"http://host/a.m3u8","name":"Channel A"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var toggled toggleResponse
	if err := json.NewDecoder(rec.Body).Decode(&toggled); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !toggled.Favorited {
		t.Fatal("expected the first toggle to favorite")
	}

	req := httptest.NewRequest(http.MethodGet, "/favorites", nil)
	listRec := httptest.NewRecorder()
	handler.ServeHTTP(listRec, req)

	var entries []favoriteResponse
	if err := json.NewDecoder(listRec.Body).Decode(&entries); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "Channel A" {
		t.Errorf("unexpected favorites: %+v", entries)
	}

	rec = toggleFavorite(t, handler, `{"url":"http://host/a.m3u8","name":"Channel A"}`)
	if err := json.NewDecoder(rec.Body).Decode(&toggled); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if toggled.Favorited {
		t.Fatal("expected the second toggle to unfavorite")
	}
}

func TestFavoritesHTTPHandler_ToggleWithoutURL(t *testing.T) {
	s := newTestServices()
	handler := NewFavoritesHTTPHandler(s.favorites)

	rec := toggleFavorite(t, handler, `{"name":"No URL"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestFavoritesHTTPHandler_Export(t *testing.T) {
	s := newTestServices()
	handler := NewFavoritesHTTPHandler(s.favorites)
	toggleFavorite(t, handler, `{"url":"http://host/a.m3u8","name":"Channel A","logo":"http://logo/a.png"}`)

	req := httptest.NewRequest(http.MethodGet, "/favorites/export", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "audio/x-mpegurl" {
		t.Errorf("unexpected content type %q", got)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "#EXTM3U\n") || !strings.Contains(body, "Channel A\nhttp://host/a.m3u8\n") {
		t.Errorf("unexpected export body: %q", body)
	}
}
