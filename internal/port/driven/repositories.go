package driven

import (
	"context"

	"github.com/kaiserbh/webiptv/internal/channel"
	"github.com/kaiserbh/webiptv/internal/favorite"
	"github.com/kaiserbh/webiptv/internal/history"
)

// HistoryRepository persists the append-only load-attempt log.
type HistoryRepository interface {
	Append(ctx context.Context, entry history.Entry) error
	FindAll(ctx context.Context) ([]history.Entry, error)
	DeleteAt(ctx context.Context, index int) error
	DeleteAll(ctx context.Context) error
}

// FavoriteRepository persists the favorites set. Entries keep insertion
// order.
type FavoriteRepository interface {
	Save(ctx context.Context, entry favorite.Entry) error
	Delete(ctx context.Context, url string) error
	FindAll(ctx context.Context) ([]favorite.Entry, error)
}

// PlaylistRepository persists the last successfully loaded channel list.
// Writes are whole-record replacements.
type PlaylistRepository interface {
	Save(ctx context.Context, list channel.List) error
	Load(ctx context.Context) (channel.List, error)
	Clear(ctx context.Context) error
}

// PreferenceRepository is a small key-value store for user preferences
// (playlist name, theme). It doubles as the store's health probe.
type PreferenceRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// Preference keys.
const (
	PrefPlaylistName = "playlistName"
	PrefTheme        = "theme"
)
