package driver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kaiserbh/webiptv/internal/application"
)

func TestPlayHTTPHandler_PostStartsSession(t *testing.T) {
	s := newTestServices()
	handler := NewPlayHTTPHandler(s.playback, s.links)

	body := strings.NewReader(`{"url":"http://host/stream.m3u8"}`)
	req := httptest.NewRequest(http.MethodPost, "/play", body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var status application.PlaybackStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if status.Format != "adaptive" || status.URL != "http://host/stream.m3u8" {
		t.Errorf("unexpected session: %+v", status)
	}
}

func TestPlayHTTPHandler_PostUnsupportedFormat(t *testing.T) {
	s := newTestServices()
	handler := NewPlayHTTPHandler(s.playback, s.links)

	body := strings.NewReader(`{"url":"not-a-stream"}`)
	req := httptest.NewRequest(http.MethodPost, "/play", body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPlayHTTPHandler_DeepLink(t *testing.T) {
	s := newTestServices()
	loadTestPlaylist(t, s)
	handler := NewPlayHTTPHandler(s.playback, s.links)

	token := s.links.Encode("http://host/a.m3u8")
	req := httptest.NewRequest(http.MethodGet, "/play?channel="+token, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var status application.PlaybackStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if status.URL != "http://host/a.m3u8" {
		t.Errorf("expected the deep link to start the encoded channel, got %+v", status)
	}
}

func TestPlayHTTPHandler_DeepLinkUnknownToken(t *testing.T) {
	s := newTestServices()
	handler := NewPlayHTTPHandler(s.playback, s.links)

	req := httptest.NewRequest(http.MethodGet, "/play?channel=AAAAAAAAAAAAAAAAAAAAAAAAAAAA", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPlayHTTPHandler_StatusWithoutSession(t *testing.T) {
	s := newTestServices()
	handler := NewPlayHTTPHandler(s.playback, s.links)

	req := httptest.NewRequest(http.MethodGet, "/play", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPlayHTTPHandler_Stop(t *testing.T) {
	s := newTestServices()
	handler := NewPlayHTTPHandler(s.playback, s.links)

	body := strings.NewReader(`{"url":"http://host/stream.m3u8"}`)
	post := httptest.NewRequest(http.MethodPost, "/play", body)
	handler.ServeHTTP(httptest.NewRecorder(), post)

	req := httptest.NewRequest(http.MethodDelete, "/play", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	// A second stop has nothing to tear down.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/play", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after the session is gone, got %d", rec.Code)
	}
}
