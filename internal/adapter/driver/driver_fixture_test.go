package driver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/kaiserbh/webiptv/internal/adapter/driven"
	"github.com/kaiserbh/webiptv/internal/application"
	"github.com/kaiserbh/webiptv/internal/channel"
	"github.com/kaiserbh/webiptv/internal/favorite"
	"github.com/kaiserbh/webiptv/internal/history"
	"github.com/kaiserbh/webiptv/internal/playback"
	port "github.com/kaiserbh/webiptv/internal/port/driven"
)

// mockFetcher is a mock implementation of the fetcher port.
type mockFetcher struct {
	fetchFunc func(ctx context.Context, url string) ([]byte, error)
	headFunc  func(ctx context.Context, url string) (port.HeadResult, error)
	checkFunc func(ctx context.Context, url string) (int, error)
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, url)
	}
	return nil, errors.New("not reachable")
}

func (m *mockFetcher) Head(ctx context.Context, url string) (port.HeadResult, error) {
	if m.headFunc != nil {
		return m.headFunc(ctx, url)
	}
	return port.HeadResult{}, errors.New("not reachable")
}

func (m *mockFetcher) Check(ctx context.Context, url string) (int, error) {
	if m.checkFunc != nil {
		return m.checkFunc(ctx, url)
	}
	return 0, errors.New("not reachable")
}

// mockHistoryRepository is an in-memory history repository.
type mockHistoryRepository struct {
	mu      sync.Mutex
	entries []history.Entry
}

func (m *mockHistoryRepository) Append(_ context.Context, entry history.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockHistoryRepository) FindAll(_ context.Context) ([]history.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]history.Entry(nil), m.entries...), nil
}

func (m *mockHistoryRepository) DeleteAt(_ context.Context, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.entries) {
		return history.ErrIndexOutOfRange
	}
	m.entries = append(m.entries[:index], m.entries[index+1:]...)
	return nil
}

func (m *mockHistoryRepository) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

// mockFavoriteRepository is an in-memory favorite repository.
type mockFavoriteRepository struct {
	mu      sync.Mutex
	entries []favorite.Entry
}

func (m *mockFavoriteRepository) Save(_ context.Context, entry favorite.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.URL() == entry.URL() {
			m.entries[i] = entry
			return nil
		}
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockFavoriteRepository) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.URL() == url {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockFavoriteRepository) FindAll(_ context.Context) ([]favorite.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]favorite.Entry(nil), m.entries...), nil
}

// mockPlaylistRepository is an in-memory playlist repository.
type mockPlaylistRepository struct {
	mu   sync.Mutex
	list channel.List
}

func (m *mockPlaylistRepository) Save(_ context.Context, list channel.List) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.list = list
	return nil
}

func (m *mockPlaylistRepository) Load(_ context.Context) (channel.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list, nil
}

func (m *mockPlaylistRepository) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.list = nil
	return nil
}

// mockPreferenceRepository is an in-memory preference repository.
type mockPreferenceRepository struct {
	mu      sync.Mutex
	values  map[string]string
	pingErr error
}

func newMockPreferenceRepository() *mockPreferenceRepository {
	return &mockPreferenceRepository{values: make(map[string]string)}
}

func (m *mockPreferenceRepository) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *mockPreferenceRepository) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *mockPreferenceRepository) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *mockPreferenceRepository) Ping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pingErr
}

// testServices wires real services over in-memory adapters. Playback runs on
// loopback media so sessions reach the playing state on their own.
type testServices struct {
	playlists *application.PlaylistService
	playback  *application.PlaybackService
	favorites *application.FavoriteService
	histories *application.HistoryService
	links     *application.LinkService
	prober    *application.ProbeService
	health    *application.HealthService

	fetcher      *mockFetcher
	historyRepo  *mockHistoryRepository
	favoriteRepo *mockFavoriteRepository
	playlistRepo *mockPlaylistRepository
	prefRepo     *mockPreferenceRepository
	hub          *NotificationHub
}

func newTestServices() *testServices {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s := &testServices{
		fetcher:      &mockFetcher{},
		historyRepo:  &mockHistoryRepository{},
		favoriteRepo: &mockFavoriteRepository{},
		playlistRepo: &mockPlaylistRepository{},
		prefRepo:     newMockPreferenceRepository(),
		hub:          NewNotificationHub(),
	}

	timings := playback.Timings{
		LoadTimeout:   time.Second,
		SettleDelay:   time.Millisecond,
		GraceEngine:   20 * time.Millisecond,
		GraceSink:     20 * time.Millisecond,
		FallbackDelay: time.Millisecond,
	}
	engines := &driven.LoopbackEngineFactory{Delay: time.Millisecond}
	sink := driven.NewLoopbackSink(time.Millisecond)

	s.playlists = application.NewPlaylistService(
		s.fetcher, s.historyRepo, s.playlistRepo, s.prefRepo, logger)
	s.playback = application.NewPlaybackService(
		engines, sink, s.fetcher, s.hub, logger, timings)
	s.favorites = application.NewFavoriteService(s.favoriteRepo, logger)
	s.histories = application.NewHistoryService(s.historyRepo, logger)
	s.links = application.NewLinkService(s.playlists, s.historyRepo, s.playlistRepo, logger)
	s.prober = application.NewProbeService(s.fetcher, logger, time.Second)
	s.health = application.NewHealthService(s.prefRepo)

	return s
}

const testM3U = "#EXTM3U\n" +
	"#EXTINF:-1 tvg-logo=\"http://logo/a.png\",Channel A\n" +
	"http://host/a.m3u8\n" +
	"#EXTINF:-1,Channel B\n" +
	"http://host/b.ts\n"
