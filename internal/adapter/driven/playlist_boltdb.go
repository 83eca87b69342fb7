package driven

import (
	"context"
	"encoding/json"
	"errors"

	"go.etcd.io/bbolt"

	"github.com/kaiserbh/webiptv/internal/channel"
)

const (
	playlistBucket  = "playlist"
	playlistLastKey = "last"
)

// PlaylistBoltDBRepository implements the PlaylistRepository port using
// BoltDB. The last loaded playlist is stored under a single key as a whole
// record; saves are replacements, never merges.
type PlaylistBoltDBRepository struct {
	db *bbolt.DB
}

// NewPlaylistBoltDBRepository creates a new BoltDB-backed playlist
// repository. It initializes the required bucket if it doesn't exist.
func NewPlaylistBoltDBRepository(db *bbolt.DB) (*PlaylistBoltDBRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(playlistBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &PlaylistBoltDBRepository{db: db}, nil
}

// channelDTO is the JSON serialization format for a persisted channel.
type channelDTO struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Logo string `json:"logo,omitempty"`
}

// Save replaces the persisted last playlist.
func (r *PlaylistBoltDBRepository) Save(ctx context.Context, list channel.List) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dtos := make([]channelDTO, 0, len(list))
	for _, ch := range list {
		dtos = append(dtos, channelDTO{Name: ch.Name(), URL: ch.URL(), Logo: ch.Logo()})
	}

	data, err := json.Marshal(dtos)
	if err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(playlistBucket))
		if bucket == nil {
			return errors.New("playlist bucket not found")
		}
		return bucket.Put([]byte(playlistLastKey), data)
	})
}

// Load returns the persisted last playlist, or an empty list when none was
// saved.
func (r *PlaylistBoltDBRepository) Load(ctx context.Context) (channel.List, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var list channel.List

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(playlistBucket))
		if bucket == nil {
			return errors.New("playlist bucket not found")
		}

		data := bucket.Get([]byte(playlistLastKey))
		if data == nil {
			return nil
		}

		var dtos []channelDTO
		if err := json.Unmarshal(data, &dtos); err != nil {
			return err
		}

		for _, dto := range dtos {
			list = append(list, channel.Reconstruct(dto.Name, dto.URL, dto.Logo))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return list, nil
}

// Clear removes the persisted last playlist.
func (r *PlaylistBoltDBRepository) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(playlistBucket))
		if bucket == nil {
			return errors.New("playlist bucket not found")
		}
		return bucket.Delete([]byte(playlistLastKey))
	})
}
