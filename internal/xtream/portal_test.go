package xtream

import (
	"errors"
	"net/url"
	"testing"
)

func TestIsPortalURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{
			name: "api endpoint with credentials",
			url:  "http://portal.example.com/player_api.php?username=a&password=b",
			want: true,
		},
		{
			name: "playlist endpoint with credentials",
			url:  "http://portal.example.com/get.php?username=a&password=b",
			want: true,
		},
		{
			name: "api endpoint without password",
			url:  "http://portal.example.com/player_api.php?username=a",
			want: false,
		},
		{
			name: "credentials without known endpoint",
			url:  "http://portal.example.com/index.php?username=a&password=b",
			want: false,
		},
		{
			name: "plain manifest url",
			url:  "http://cdn.example.com/stream.m3u8",
			want: false,
		},
		{
			name: "not a url",
			url:  "://bad",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPortalURL(tt.url); got != tt.want {
				t.Errorf("IsPortalURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestParseVariant(t *testing.T) {
	p, err := Parse("http://portal.example.com/get.php?username=a&password=b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Variant() != VariantM3U {
		t.Errorf("expected VariantM3U, got %v", p.Variant())
	}

	p, err = Parse("http://portal.example.com/player_api.php?username=a&password=b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Variant() != VariantAPI {
		t.Errorf("expected VariantAPI, got %v", p.Variant())
	}

	if _, err := Parse("http://portal.example.com/"); !errors.Is(err, ErrNotPortal) {
		t.Errorf("expected ErrNotPortal, got %v", err)
	}
}

func TestPlaylistURLDefaults(t *testing.T) {
	p, err := Parse("http://portal.example.com/get.php?username=a&password=b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	u, err := url.Parse(p.PlaylistURL())
	if err != nil {
		t.Fatalf("playlist url does not parse: %v", err)
	}
	q := u.Query()
	if q.Get("type") != "m3u_plus" {
		t.Errorf("expected default type m3u_plus, got %q", q.Get("type"))
	}
	if q.Get("output") != "ts" {
		t.Errorf("expected default output ts, got %q", q.Get("output"))
	}
	if q.Get("username") != "a" || q.Get("password") != "b" {
		t.Errorf("credentials lost: %s", u)
	}
}

func TestPlaylistURLKeepsExplicitParams(t *testing.T) {
	p, err := Parse("http://portal.example.com/get.php?username=a&password=b&type=m3u&output=hls")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	u, _ := url.Parse(p.PlaylistURL())
	q := u.Query()
	if q.Get("type") != "m3u" || q.Get("output") != "hls" {
		t.Errorf("explicit params must not be overridden: %s", u)
	}
}

func TestAPIRequestURLs(t *testing.T) {
	p, err := Parse("http://portal.example.com/player_api.php?username=a&password=b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := p.AccountURL(); got != "http://portal.example.com/player_api.php?username=a&password=b" {
		t.Errorf("unexpected account url: %s", got)
	}
	if got := p.LiveStreamsURL(); got != "http://portal.example.com/player_api.php?username=a&password=b&action=get_live_streams" {
		t.Errorf("unexpected live streams url: %s", got)
	}
	if got := p.VODStreamsURL(); got != "http://portal.example.com/player_api.php?username=a&password=b&action=get_vod_streams" {
		t.Errorf("unexpected vod streams url: %s", got)
	}
}
