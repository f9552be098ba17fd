package storage

import (
	"context"
	"time"

	"github.com/clinovo/medsync/internal/models"
)

// IdempotencyStorage defines the interface for idempotency record persistence.
// Records are write-once: there is no update operation.
type IdempotencyStorage interface {
	// GetIdempotencyRecord retrieves a record by key
	// Returns ErrKeyNotFound if no record exists
	GetIdempotencyRecord(ctx context.Context, key string) (*models.IdempotencyRecord, error)

	// PutIdempotencyRecord stores a new record
	PutIdempotencyRecord(ctx context.Context, rec *models.IdempotencyRecord) error

	// DeleteIdempotencyRecord deletes a record by key
	// Returns ErrKeyNotFound if no record exists
	DeleteIdempotencyRecord(ctx context.Context, key string) error

	// DeleteExpiredIdempotencyRecords removes up to limit records whose
	// expiry has passed at now. Returns the number of deleted records.
	DeleteExpiredIdempotencyRecords(ctx context.Context, now time.Time, limit int) (int, error)
}
