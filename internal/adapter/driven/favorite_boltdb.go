package driven

import (
	"context"
	"encoding/json"
	"errors"

	"go.etcd.io/bbolt"

	"github.com/kaiserbh/webiptv/internal/favorite"
)

const favoritesBucket = "favorites"

// FavoriteBoltDBRepository implements the FavoriteRepository port using
// BoltDB. Entries are keyed by sequence, with the URL stored in the value;
// this keeps insertion order, which is the display order of the favorites
// list.
type FavoriteBoltDBRepository struct {
	db *bbolt.DB
}

// NewFavoriteBoltDBRepository creates a new BoltDB-backed favorites
// repository. It initializes the required bucket if it doesn't exist.
func NewFavoriteBoltDBRepository(db *bbolt.DB) (*FavoriteBoltDBRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(favoritesBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &FavoriteBoltDBRepository{db: db}, nil
}

// favoriteDTO is the JSON serialization format for a favorite entry.
type favoriteDTO struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

// Save persists a favorite entry at the end of the set.
func (r *FavoriteBoltDBRepository) Save(ctx context.Context, entry favorite.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(favoritesBucket))
		if bucket == nil {
			return errors.New("favorites bucket not found")
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}

		data, err := json.Marshal(favoriteDTO{
			URL:  entry.URL(),
			Name: entry.Name(),
			Logo: entry.Logo(),
		})
		if err != nil {
			return err
		}

		return bucket.Put(sequenceKey(seq), data)
	})
}

// Delete removes the entry with the given URL, if present.
func (r *FavoriteBoltDBRepository) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(favoritesBucket))
		if bucket == nil {
			return errors.New("favorites bucket not found")
		}

		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var dto favoriteDTO
			if err := json.Unmarshal(v, &dto); err != nil {
				return err
			}
			if dto.URL == url {
				return bucket.Delete(k)
			}
		}
		return nil
	})
}

// FindAll returns all favorites in insertion order.
func (r *FavoriteBoltDBRepository) FindAll(ctx context.Context) ([]favorite.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []favorite.Entry

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(favoritesBucket))
		if bucket == nil {
			return errors.New("favorites bucket not found")
		}

		return bucket.ForEach(func(_, v []byte) error {
			var dto favoriteDTO
			if err := json.Unmarshal(v, &dto); err != nil {
				return err
			}
			entries = append(entries, favorite.Reconstruct(dto.URL, dto.Name, dto.Logo))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}
