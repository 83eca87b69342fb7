package playlist

import (
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/kaiserbh/webiptv/internal/channel"
)

func TestEncodeM3U(t *testing.T) {
	is := is.New(t)

	list := channel.List{
		channel.Reconstruct("Channel A", "http://x/a.m3u8", "http://x/l.png"),
		channel.Reconstruct("Channel B", "http://x/b.m3u8", ""),
	}

	var sb strings.Builder
	err := EncodeM3U(&sb, list)
	is.NoErr(err)

	want := "#EXTM3U\n" +
		"#EXTINF:-1 tvg-logo=\"http://x/l.png\",Channel A\nhttp://x/a.m3u8\n" +
		"#EXTINF:-1,Channel B\nhttp://x/b.m3u8\n"
	is.Equal(sb.String(), want)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	is := is.New(t)

	list := channel.List{
		channel.Reconstruct("Noticias 24", "http://x/n.m3u8", "http://x/n.png"),
		channel.Reconstruct("Cine Clásico", "http://x/c.mp4", ""),
	}

	var sb strings.Builder
	is.NoErr(EncodeM3U(&sb, list))

	decoded := DecodeM3U(sb.String())
	is.Equal(len(decoded), len(list))
	for i := range list {
		is.Equal(decoded[i].Name(), list[i].Name())
		is.Equal(decoded[i].URL(), list[i].URL())
		is.Equal(decoded[i].Logo(), list[i].Logo())
	}
}
