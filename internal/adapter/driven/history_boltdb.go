package driven

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"

	"go.etcd.io/bbolt"

	"github.com/kaiserbh/webiptv/internal/history"
)

const historyBucket = "history"

// HistoryBoltDBRepository implements the HistoryRepository port using BoltDB.
// Entries are keyed by an auto-incrementing sequence so iteration order is
// insertion order.
type HistoryBoltDBRepository struct {
	db *bbolt.DB
}

// NewHistoryBoltDBRepository creates a new BoltDB-backed history repository.
// It initializes the required bucket if it doesn't exist.
func NewHistoryBoltDBRepository(db *bbolt.DB) (*HistoryBoltDBRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(historyBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &HistoryBoltDBRepository{db: db}, nil
}

// historyDTO is the JSON serialization format for a history entry.
type historyDTO struct {
	Kind       string `json:"kind"`
	Label      string `json:"label"`
	SourceURL  string `json:"source_url,omitempty"`
	RawContent string `json:"raw_content,omitempty"`
}

func historyToDTO(e history.Entry) historyDTO {
	return historyDTO{
		Kind:       string(e.Kind()),
		Label:      e.Label(),
		SourceURL:  e.SourceURL(),
		RawContent: e.RawContent(),
	}
}

func dtoToHistory(data []byte) (history.Entry, error) {
	var dto historyDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return history.Entry{}, err
	}
	return history.Reconstruct(history.Kind(dto.Kind), dto.Label, dto.SourceURL, dto.RawContent), nil
}

// Append persists a history entry at the end of the log.
func (r *HistoryBoltDBRepository) Append(ctx context.Context, entry history.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(historyBucket))
		if bucket == nil {
			return errors.New("history bucket not found")
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}

		data, err := json.Marshal(historyToDTO(entry))
		if err != nil {
			return err
		}

		return bucket.Put(sequenceKey(seq), data)
	})
}

// FindAll returns all history entries in insertion order.
func (r *HistoryBoltDBRepository) FindAll(ctx context.Context) ([]history.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []history.Entry

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(historyBucket))
		if bucket == nil {
			return errors.New("history bucket not found")
		}

		return bucket.ForEach(func(_, v []byte) error {
			entry, err := dtoToHistory(v)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// DeleteAt removes the entry at the given position in insertion order.
// Returns history.ErrIndexOutOfRange when no such entry exists.
func (r *HistoryBoltDBRepository) DeleteAt(ctx context.Context, index int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if index < 0 {
		return history.ErrIndexOutOfRange
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(historyBucket))
		if bucket == nil {
			return errors.New("history bucket not found")
		}

		c := bucket.Cursor()
		pos := 0
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if pos == index {
				return bucket.Delete(k)
			}
			pos++
		}
		return history.ErrIndexOutOfRange
	})
}

// DeleteAll clears the whole log.
func (r *HistoryBoltDBRepository) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(historyBucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(historyBucket))
		return err
	})
}

// sequenceKey encodes a bucket sequence number as a big-endian key so
// lexicographic cursor order matches insertion order.
func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
