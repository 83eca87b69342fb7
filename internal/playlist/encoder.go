package playlist

import (
	"fmt"
	"io"

	"github.com/kaiserbh/webiptv/internal/channel"
)

// EncodeM3U writes the channel list as an M3U document: one header line,
// then per channel an info line (optional logo attribute, display name)
// followed by the raw URL line. This is the exported-favorites format.
func EncodeM3U(w io.Writer, list channel.List) error {
	if _, err := fmt.Fprintf(w, "%s\n", headerMarker); err != nil {
		return err
	}

	for _, ch := range list {
		if err := encodeChannel(w, ch); err != nil {
			return err
		}
	}

	return nil
}

func encodeChannel(w io.Writer, ch channel.Channel) error {
	if _, err := fmt.Fprintf(w, "%s:-1", infoMarker); err != nil {
		return err
	}

	if ch.Logo() != "" {
		if _, err := fmt.Fprintf(w, " tvg-logo=\"%s\"", ch.Logo()); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, ",%s\n%s\n", ch.Name(), ch.URL()); err != nil {
		return err
	}

	return nil
}
