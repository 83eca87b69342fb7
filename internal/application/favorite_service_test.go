package application

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/kaiserbh/webiptv/internal/favorite"
)

type memFavoriteRepo struct {
	mu      sync.Mutex
	entries []favorite.Entry
}

func (r *memFavoriteRepo) Save(_ context.Context, entry favorite.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.URL() == entry.URL() {
			r.entries[i] = entry
			return nil
		}
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memFavoriteRepo) Delete(_ context.Context, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.URL() == url {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memFavoriteRepo) FindAll(_ context.Context) ([]favorite.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]favorite.Entry(nil), r.entries...), nil
}

func newFavoriteService(repo *memFavoriteRepo) *FavoriteService {
	return NewFavoriteService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFavoriteService_ToggleTwiceIsIdentity(t *testing.T) {
	repo := &memFavoriteRepo{}
	svc := newFavoriteService(repo)
	ctx := context.Background()

	added, err := svc.Toggle(ctx, "http://host/a.m3u8", "Channel A", "http://logo/a.png")
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !added {
		t.Fatal("expected the first toggle to add")
	}
	if entries, _ := svc.List(ctx); len(entries) != 1 {
		t.Fatalf("expected one favorite, got %d", len(entries))
	}

	added, err = svc.Toggle(ctx, "http://host/a.m3u8", "Channel A", "http://logo/a.png")
	if err != nil {
		t.Fatalf("second Toggle failed: %v", err)
	}
	if added {
		t.Fatal("expected the second toggle to remove")
	}
	if entries, _ := svc.List(ctx); len(entries) != 0 {
		t.Fatalf("expected no favorites, got %d", len(entries))
	}
}

func TestFavoriteService_ToggleDefaultsName(t *testing.T) {
	svc := newFavoriteService(&memFavoriteRepo{})
	ctx := context.Background()

	if _, err := svc.Toggle(ctx, "http://host/a.m3u8", "", ""); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}

	entries, _ := svc.List(ctx)
	if len(entries) != 1 || entries[0].Name() == "" {
		t.Fatalf("expected a defaulted name, got %+v", entries)
	}
}

func TestFavoriteService_ExportM3U(t *testing.T) {
	svc := newFavoriteService(&memFavoriteRepo{})
	ctx := context.Background()

	if _, err := svc.Toggle(ctx, "http://host/a.m3u8", "Channel A", "http://logo/a.png"); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if _, err := svc.Toggle(ctx, "http://host/b.ts", "Channel B", ""); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}

	var buf bytes.Buffer
	if err := svc.ExportM3U(ctx, &buf); err != nil {
		t.Fatalf("ExportM3U failed: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "#EXTM3U\n") {
		t.Errorf("expected M3U header, got %q", out)
	}
	for _, want := range []string{
		`tvg-logo="http://logo/a.png"`,
		",Channel A\nhttp://host/a.m3u8\n",
		",Channel B\nhttp://host/b.ts\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected export to contain %q, got %q", want, out)
		}
	}
}
