// Package boltdb implements the idempotency record store on BoltDB.
// A single-file KV store is enough here: records are small, write-once and
// swept by TTL, and the store must survive process restarts so a retry
// arriving after a redeploy is still recognized.
package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/clinovo/medsync/internal/models"
	"github.com/clinovo/medsync/internal/server/storage"
)

var bucketIdempotency = []byte("idempotency")

// Storage represents the BoltDB idempotency store
type Storage struct {
	db *bbolt.DB
}

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketIdempotency); err != nil {
			return fmt.Errorf("failed to create idempotency bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// GetIdempotencyRecord retrieves a record by key
// Returns storage.ErrKeyNotFound if no record exists
func (s *Storage) GetIdempotencyRecord(ctx context.Context, key string) (*models.IdempotencyRecord, error) {
	var rec *models.IdempotencyRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketIdempotency)
		if bucket == nil {
			return fmt.Errorf("idempotency bucket not found")
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return storage.ErrKeyNotFound
		}

		rec = &models.IdempotencyRecord{}
		if err := json.Unmarshal(data, rec); err != nil {
			return fmt.Errorf("failed to unmarshal idempotency record: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return rec, nil
}

// PutIdempotencyRecord stores a new record
func (s *Storage) PutIdempotencyRecord(ctx context.Context, rec *models.IdempotencyRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketIdempotency)
		if bucket == nil {
			return fmt.Errorf("idempotency bucket not found")
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal idempotency record: %w", err)
		}

		if err := bucket.Put([]byte(rec.Key), data); err != nil {
			return fmt.Errorf("failed to save idempotency record: %w", err)
		}

		return nil
	})
}

// DeleteIdempotencyRecord deletes a record by key
// Returns storage.ErrKeyNotFound if no record exists
func (s *Storage) DeleteIdempotencyRecord(ctx context.Context, key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketIdempotency)
		if bucket == nil {
			return fmt.Errorf("idempotency bucket not found")
		}

		if bucket.Get([]byte(key)) == nil {
			return storage.ErrKeyNotFound
		}

		if err := bucket.Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete idempotency record: %w", err)
		}

		return nil
	})
}

// DeleteExpiredIdempotencyRecords removes up to limit records whose expiry
// has passed at now. Returns the number of deleted records.
// A record that fails to decode is treated as expired and removed.
func (s *Storage) DeleteExpiredIdempotencyRecords(ctx context.Context, now time.Time, limit int) (int, error) {
	deleted := 0

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketIdempotency)
		if bucket == nil {
			return fmt.Errorf("idempotency bucket not found")
		}

		var expired [][]byte

		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if limit > 0 && len(expired) >= limit {
				break
			}

			var rec models.IdempotencyRecord
			if err := json.Unmarshal(v, &rec); err != nil || rec.Expired(now) {
				key := make([]byte, len(k))
				copy(key, k)
				expired = append(expired, key)
			}
		}

		for _, key := range expired {
			if err := bucket.Delete(key); err != nil {
				return fmt.Errorf("failed to delete expired record: %w", err)
			}
			deleted++
		}

		return nil
	})

	if err != nil {
		return deleted, err
	}

	return deleted, nil
}
