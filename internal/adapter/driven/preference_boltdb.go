package driven

import (
	"context"
	"errors"

	"go.etcd.io/bbolt"
)

const preferencesBucket = "preferences"

// PreferenceBoltDBRepository implements the PreferenceRepository port using
// BoltDB: a flat string key-value bucket. A missing key reads as an empty
// string.
type PreferenceBoltDBRepository struct {
	db *bbolt.DB
}

// NewPreferenceBoltDBRepository creates a new BoltDB-backed preference
// repository. It initializes the required bucket if it doesn't exist.
func NewPreferenceBoltDBRepository(db *bbolt.DB) (*PreferenceBoltDBRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(preferencesBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &PreferenceBoltDBRepository{db: db}, nil
}

// Get returns the stored value for key, or an empty string when absent.
func (r *PreferenceBoltDBRepository) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var value string
	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(preferencesBucket))
		if bucket == nil {
			return errors.New("preferences bucket not found")
		}
		if data := bucket.Get([]byte(key)); data != nil {
			value = string(data)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return value, nil
}

// Set stores the value under key, replacing any prior value.
func (r *PreferenceBoltDBRepository) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(preferencesBucket))
		if bucket == nil {
			return errors.New("preferences bucket not found")
		}
		return bucket.Put([]byte(key), []byte(value))
	})
}

// Ping verifies the store is readable.
func (r *PreferenceBoltDBRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(preferencesBucket)) == nil {
			return errors.New("preferences bucket not found")
		}
		return nil
	})
}

// Remove deletes the value under key, if present.
func (r *PreferenceBoltDBRepository) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(preferencesBucket))
		if bucket == nil {
			return errors.New("preferences bucket not found")
		}
		return bucket.Delete([]byte(key))
	})
}
